// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// Invite is a join code for a server. Its record identity is the code.
type Invite struct {
	Code      string `json:"code"`
	ServerID  string `json:"serverId"`
	CreatorID string `json:"creatorId,omitempty"`
	Uses      int    `json:"uses"`
	MaxUses   int    `json:"maxUses,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// InvitesService manages invite codes.
type InvitesService struct {
	db   *DB
	coll collection[Invite]
}

// Create mints a fresh random code for the server. maxUses of zero
// means unlimited; expiresAt of zero means never.
func (service *InvitesService) Create(ctx context.Context, serverID, creatorID string, maxUses int, expiresAt int64) (_ Invite, err error) {
	defer mon.Task()(&ctx)(&err)

	invite := Invite{
		ServerID:  serverID,
		CreatorID: creatorID,
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
		CreatedAt: now(),
	}
	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		for {
			invite.Code = newInviteCode()
			if _, taken := snap[invite.Code]; !taken {
				break
			}
		}
		body, err := storage.Encode(invite)
		if err != nil {
			return err
		}
		snap[invite.Code] = body
		return nil
	})
	if err != nil {
		return Invite{}, err
	}
	return invite, nil
}

// Get returns an invite or ErrNotFound.
func (service *InvitesService) Get(code string) (Invite, error) {
	invite, ok, err := service.coll.get(code)
	if err != nil {
		return Invite{}, err
	}
	if !ok {
		return Invite{}, storage.ErrNotFound.New("invite %s", code)
	}
	return invite, nil
}

// Use consumes one use of the invite and returns the server it joins.
// The check-and-increment runs under the collection lock, so concurrent
// callers see a strict use budget: exhausted or out-of-date invites
// fail with ErrExpired.
func (service *InvitesService) Use(ctx context.Context, code string) (serverID string, err error) {
	defer mon.Task()(&ctx)(&err)

	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		body, ok := snap[code]
		if !ok {
			return storage.ErrNotFound.New("invite %s", code)
		}
		var invite Invite
		if err := storage.Decode(body, &invite); err != nil {
			return err
		}
		if invite.MaxUses > 0 && invite.Uses >= invite.MaxUses {
			return storage.ErrExpired.New("invite %s is exhausted", code)
		}
		if invite.ExpiresAt > 0 && now() >= invite.ExpiresAt {
			return storage.ErrExpired.New("invite %s expired", code)
		}
		invite.Uses++
		encoded, err := storage.Encode(invite)
		if err != nil {
			return err
		}
		snap[code] = encoded
		serverID = invite.ServerID
		return nil
	})
	if err != nil {
		return "", err
	}
	return serverID, nil
}

// Delete removes an invite.
func (service *InvitesService) Delete(ctx context.Context, code string) error {
	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		if _, ok := snap[code]; !ok {
			return storage.ErrNotFound.New("invite %s", code)
		}
		delete(snap, code)
		return nil
	})
}

// ListByServer returns a server's invites, newest first.
func (service *InvitesService) ListByServer(serverID string) ([]Invite, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var invites []Invite
	for _, invite := range records {
		if invite.ServerID == serverID {
			invites = append(invites, invite)
		}
	}
	sort.Slice(invites, func(i, j int) bool {
		if invites[i].CreatedAt != invites[j].CreatedAt {
			return invites[i].CreatedAt > invites[j].CreatedAt
		}
		return invites[i].Code < invites[j].Code
	})
	return invites, nil
}
