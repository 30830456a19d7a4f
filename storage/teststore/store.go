// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package teststore implements an in-memory adapter for tests.
package teststore

import (
	"context"
	"sync"

	"github.com/Enclicainteractive/volt/storage"
)

// Client implements an in-memory storage.Adapter with call counters and
// error injection, so callers can script failure scenarios.
type Client struct {
	mu sync.Mutex

	kind        storage.Kind
	collections storage.Data

	CallCount struct {
		Load  int
		Save  int
		Close int
	}

	// ForcedError, when set, is returned by every Load and Save.
	ForcedError error
	// FailSaves, when set, fails Save calls only.
	FailSaves error
}

// New creates an empty in-memory store reporting the given kind.
func New(kind storage.Kind) *Client {
	return &Client{
		kind:        kind,
		collections: storage.Data{},
	}
}

// Load returns a copy of the collection contents.
func (store *Client) Load(ctx context.Context, coll storage.Collection) (storage.Snapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Load++
	if store.ForcedError != nil {
		return nil, store.ForcedError
	}
	snap := store.collections[coll].Clone()
	if snap == nil {
		snap = storage.Snapshot{}
	}
	return snap, nil
}

// Save replaces the collection contents with a copy of snap.
func (store *Client) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Save++
	if store.ForcedError != nil {
		return store.ForcedError
	}
	if store.FailSaves != nil {
		return store.FailSaves
	}
	if len(snap) == 0 {
		delete(store.collections, coll)
		return nil
	}
	store.collections[coll] = snap.Clone()
	return nil
}

// Close counts the call and succeeds.
func (store *Client) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Close++
	return nil
}

// Kind reports the configured adapter tag.
func (store *Client) Kind() storage.Kind { return store.kind }
