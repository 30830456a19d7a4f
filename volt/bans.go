// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// Ban records who was banned, by whom, and why.
type Ban struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	ServerID string `json:"serverId,omitempty"`
	BannedBy string `json:"bannedBy,omitempty"`
	Reason   string `json:"reason,omitempty"`
	BannedAt int64  `json:"bannedAt"`
}

func sortBansNewestFirst(bans []Ban) {
	sort.Slice(bans, func(i, j int) bool {
		if bans[i].BannedAt != bans[j].BannedAt {
			return bans[i].BannedAt > bans[j].BannedAt
		}
		return bans[i].ID > bans[j].ID
	})
}

// GlobalBansService tracks platform-wide bans keyed by user id.
type GlobalBansService struct {
	db   *DB
	coll collection[Ban]
}

// IsBanned reports whether the user is banned platform-wide.
func (service *GlobalBansService) IsBanned(userID string) (bool, error) {
	_, ok, err := service.coll.get(userID)
	return ok, err
}

// Get returns the ban record for a user or ErrNotFound.
func (service *GlobalBansService) Get(userID string) (Ban, error) {
	ban, ok, err := service.coll.get(userID)
	if err != nil {
		return Ban{}, err
	}
	if !ok {
		return Ban{}, storage.ErrNotFound.New("global ban for %s", userID)
	}
	return ban, nil
}

// List returns all global bans, newest first.
func (service *GlobalBansService) List() ([]Ban, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	bans := make([]Ban, 0, len(records))
	for _, ban := range records {
		bans = append(bans, ban)
	}
	sortBansNewestFirst(bans)
	return bans, nil
}

// Ban records a platform-wide ban. Banning an already banned user
// overwrites the record.
func (service *GlobalBansService) Ban(ctx context.Context, userID, bannedBy, reason string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if userID == "" {
		return storage.ErrConstraint.New("ban needs a user id")
	}
	return service.coll.put(ctx, userID, Ban{
		ID:       userID,
		UserID:   userID,
		BannedBy: bannedBy,
		Reason:   reason,
		BannedAt: now(),
	})
}

// Unban lifts a platform-wide ban.
func (service *GlobalBansService) Unban(ctx context.Context, userID string) error {
	return service.coll.remove(ctx, userID)
}

// ServerBansService tracks per-server bans keyed by "serverID:userID".
type ServerBansService struct {
	db   *DB
	coll collection[Ban]
}

func serverBanKey(serverID, userID string) string { return serverID + ":" + userID }

// IsBanned reports whether the user is banned from the server.
func (service *ServerBansService) IsBanned(serverID, userID string) (bool, error) {
	_, ok, err := service.coll.get(serverBanKey(serverID, userID))
	return ok, err
}

// ListByServer returns the server's bans, newest first.
func (service *ServerBansService) ListByServer(serverID string) ([]Ban, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var bans []Ban
	for _, ban := range records {
		if ban.ServerID == serverID {
			bans = append(bans, ban)
		}
	}
	sortBansNewestFirst(bans)
	return bans, nil
}

// Ban bans a user from a server.
func (service *ServerBansService) Ban(ctx context.Context, serverID, userID, bannedBy, reason string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if serverID == "" || userID == "" {
		return storage.ErrConstraint.New("server ban needs server and user ids")
	}
	key := serverBanKey(serverID, userID)
	return service.coll.put(ctx, key, Ban{
		ID:       key,
		UserID:   userID,
		ServerID: serverID,
		BannedBy: bannedBy,
		Reason:   reason,
		BannedAt: now(),
	})
}

// Unban lifts a server ban.
func (service *ServerBansService) Unban(ctx context.Context, serverID, userID string) error {
	return service.coll.remove(ctx, serverBanKey(serverID, userID))
}
