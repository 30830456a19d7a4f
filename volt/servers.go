// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"encoding/json"

	"github.com/Enclicainteractive/volt/internal/jsonutil"
	"github.com/Enclicainteractive/volt/storage"
)

// Server is one chat server (a "volt").
type Server struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	OwnerID   string `json:"ownerId,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges unmodelled fields back into the record.
func (server Server) MarshalJSON() ([]byte, error) {
	type alias Server
	return jsonutil.Marshal(alias(server), server.Extra)
}

// UnmarshalJSON keeps unmodelled fields aside in Extra.
func (server *Server) UnmarshalJSON(data []byte) error {
	type alias Server
	var known alias
	extra, err := jsonutil.Unmarshal(data, &known)
	if err != nil {
		return err
	}
	*server = Server(known)
	server.Extra = extra
	return nil
}

// ServersService manages servers.
type ServersService struct {
	db   *DB
	coll collection[Server]
}

// Get returns a server or ErrNotFound.
func (service *ServersService) Get(id string) (Server, error) {
	server, ok, err := service.coll.get(id)
	if err != nil {
		return Server{}, err
	}
	if !ok {
		return Server{}, storage.ErrNotFound.New("server %s", id)
	}
	return server, nil
}

// Create stores a new server.
func (service *ServersService) Create(ctx context.Context, server Server) (_ Server, err error) {
	defer mon.Task()(&ctx)(&err)

	if server.ID == "" {
		server.ID = newID("srv")
	}
	server.CreatedAt = now()
	server.UpdatedAt = server.CreatedAt
	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		if _, exists := snap[server.ID]; exists {
			return storage.ErrAlreadyExists.New("server %s", server.ID)
		}
		body, err := storage.Encode(server)
		if err != nil {
			return err
		}
		snap[server.ID] = body
		return nil
	})
	if err != nil {
		return Server{}, err
	}
	return server, nil
}

// Update applies fn to an existing server.
func (service *ServersService) Update(ctx context.Context, id string, fn func(*Server)) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, id, func(server *Server, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("server %s", id)
		}
		fn(server)
		server.ID = id
		server.UpdatedAt = now()
		return nil
	})
}

// Delete removes the server and cascades to its channels.
func (service *ServersService) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		if _, ok := snap[id]; !ok {
			return storage.ErrNotFound.New("server %s", id)
		}
		delete(snap, id)
		return nil
	})
	if err != nil {
		return err
	}
	return service.db.Channels.deleteByServer(ctx, id)
}
