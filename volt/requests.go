// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// FriendRequest is a pending request from one user to another.
type FriendRequest struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	CreatedAt int64  `json:"createdAt"`
}

// FriendRequestsService manages pending friend requests.
type FriendRequestsService struct {
	db   *DB
	coll collection[FriendRequest]
}

// List returns every request involving the user, oldest first.
func (service *FriendRequestsService) List(userID string) ([]FriendRequest, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var requests []FriendRequest
	for _, request := range records {
		if request.From == userID || request.To == userID {
			requests = append(requests, request)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt != requests[j].CreatedAt {
			return requests[i].CreatedAt < requests[j].CreatedAt
		}
		return requests[i].ID < requests[j].ID
	})
	return requests, nil
}

// Send creates a request. It fails with ErrAlreadyExists when the same
// sender already has a request pending to the same recipient.
func (service *FriendRequestsService) Send(ctx context.Context, from, to string) (_ FriendRequest, err error) {
	defer mon.Task()(&ctx)(&err)

	if from == to {
		return FriendRequest{}, storage.ErrConstraint.New("cannot request self")
	}
	request := FriendRequest{
		ID:        newID("fr"),
		From:      from,
		To:        to,
		CreatedAt: now(),
	}
	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		for _, body := range snap {
			var pending FriendRequest
			if err := storage.Decode(body, &pending); err != nil {
				return err
			}
			if pending.From == from && pending.To == to {
				return storage.ErrAlreadyExists.New("pending request from %s to %s", from, to)
			}
		}
		body, err := storage.Encode(request)
		if err != nil {
			return err
		}
		snap[request.ID] = body
		return nil
	})
	if err != nil {
		return FriendRequest{}, err
	}
	return request, nil
}

// Accept deletes the request and adds the symmetric friendship.
func (service *FriendRequestsService) Accept(ctx context.Context, requestID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	request, ok, err := service.coll.get(requestID)
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrNotFound.New("friend request %s", requestID)
	}
	if err := service.coll.remove(ctx, requestID); err != nil {
		return err
	}
	return service.db.Friends.Add(ctx, request.From, request.To)
}

// Reject deletes the request without creating a friendship.
func (service *FriendRequestsService) Reject(ctx context.Context, requestID string) error {
	return service.dropExisting(ctx, requestID)
}

// Cancel withdraws a request the sender no longer wants delivered.
func (service *FriendRequestsService) Cancel(ctx context.Context, requestID string) error {
	return service.dropExisting(ctx, requestID)
}

func (service *FriendRequestsService) dropExisting(ctx context.Context, requestID string) error {
	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		if _, ok := snap[requestID]; !ok {
			return storage.ErrNotFound.New("friend request %s", requestID)
		}
		delete(snap, requestID)
		return nil
	})
}
