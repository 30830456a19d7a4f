// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// FriendList is one user's friend edges, keyed by the user's identity.
type FriendList struct {
	ID      string   `json:"id"`
	Friends []string `json:"friends"`
}

func (list *FriendList) has(userID string) bool {
	for _, id := range list.Friends {
		if id == userID {
			return true
		}
	}
	return false
}

func (list *FriendList) add(userID string) {
	if !list.has(userID) {
		list.Friends = append(list.Friends, userID)
		sort.Strings(list.Friends)
	}
}

func (list *FriendList) drop(userID string) {
	kept := list.Friends[:0]
	for _, id := range list.Friends {
		if id != userID {
			kept = append(kept, id)
		}
	}
	list.Friends = kept
}

// FriendsService manages the symmetric friends graph.
type FriendsService struct {
	db   *DB
	coll collection[FriendList]
}

// List returns a user's friends.
func (service *FriendsService) List(userID string) ([]string, error) {
	list, ok, err := service.coll.get(userID)
	if err != nil || !ok {
		return nil, err
	}
	return list.Friends, nil
}

// AreFriends reports whether the edge exists.
func (service *FriendsService) AreFriends(a, b string) (bool, error) {
	list, ok, err := service.coll.get(a)
	if err != nil || !ok {
		return false, err
	}
	return list.has(b), nil
}

// Add creates the friendship in both directions. Adding an existing
// edge is a no-op.
func (service *FriendsService) Add(ctx context.Context, a, b string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if a == b {
		return storage.ErrConstraint.New("cannot befriend self")
	}
	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		return editBoth(snap, a, b, func(list *FriendList, other string) {
			list.add(other)
		})
	})
}

// Remove deletes the friendship in both directions.
func (service *FriendsService) Remove(ctx context.Context, a, b string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		return editBoth(snap, a, b, func(list *FriendList, other string) {
			list.drop(other)
		})
	})
}

// editBoth applies a symmetric edit to both endpoints' lists inside one
// collection write.
func editBoth(snap storage.Snapshot, a, b string, edit func(*FriendList, string)) error {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		list := FriendList{ID: pair[0]}
		if body, ok := snap[pair[0]]; ok {
			if err := storage.Decode(body, &list); err != nil {
				return err
			}
		}
		edit(&list, pair[1])
		body, err := storage.Encode(list)
		if err != nil {
			return err
		}
		snap[pair[0]] = body
	}
	return nil
}
