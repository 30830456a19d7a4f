// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"encoding/json"

	"github.com/Enclicainteractive/volt/storage"
)

// collection is the generic keyed-map helper every service builds on.
// It decodes cache snapshots into typed records and encodes edits back.
type collection[T any] struct {
	db   *DB
	name storage.Collection
}

// get returns the record with the given identity, reporting absence
// without error.
func (c collection[T]) get(id string) (T, bool, error) {
	var record T
	body, ok := c.db.cache().View(c.name)[id]
	if !ok {
		return record, false, nil
	}
	if err := storage.Decode(body, &record); err != nil {
		return record, false, err
	}
	return record, true, nil
}

// all decodes the whole collection.
func (c collection[T]) all() (map[string]T, error) {
	snap := c.db.cache().View(c.name)
	records := make(map[string]T, len(snap))
	for id, body := range snap {
		var record T
		if err := storage.Decode(body, &record); err != nil {
			return nil, err
		}
		records[id] = record
	}
	return records, nil
}

// put writes one record under the collection lock.
func (c collection[T]) put(ctx context.Context, id string, record T) error {
	return c.update(ctx, func(snap storage.Snapshot) error {
		body, err := storage.Encode(record)
		if err != nil {
			return err
		}
		snap[id] = body
		return nil
	})
}

// remove deletes one record; deleting an absent record is a no-op.
func (c collection[T]) remove(ctx context.Context, id string) error {
	return c.update(ctx, func(snap storage.Snapshot) error {
		delete(snap, id)
		return nil
	})
}

// update applies an edit to the raw snapshot under the collection lock
// and writes it back through the cache.
func (c collection[T]) update(ctx context.Context, fn func(storage.Snapshot) error) error {
	return c.db.cache().Update(ctx, c.name, func(snap storage.Snapshot) (storage.Snapshot, error) {
		if err := fn(snap); err != nil {
			return nil, err
		}
		return snap, nil
	})
}

// mutate loads one typed record, lets fn edit it and stores the result,
// all under the collection lock. fn receives whether the record existed.
func (c collection[T]) mutate(ctx context.Context, id string, fn func(record *T, exists bool) error) error {
	return c.update(ctx, func(snap storage.Snapshot) error {
		var record T
		body, exists := snap[id]
		if exists {
			if err := storage.Decode(body, &record); err != nil {
				return err
			}
		}
		if err := fn(&record, exists); err != nil {
			return err
		}
		encoded, err := storage.Encode(record)
		if err != nil {
			return err
		}
		snap[id] = encoded
		return nil
	})
}

// mutateAll decodes the whole collection, lets fn edit the typed map
// and re-encodes the result, all under the collection lock. Used by
// services whose edits span records (fan-out, capped eviction).
func (c collection[T]) mutateAll(ctx context.Context, fn func(records map[string]T) error) error {
	return c.db.cache().Update(ctx, c.name, func(snap storage.Snapshot) (storage.Snapshot, error) {
		records := make(map[string]T, len(snap))
		for id, body := range snap {
			var record T
			if err := storage.Decode(body, &record); err != nil {
				return nil, err
			}
			records[id] = record
		}
		if err := fn(records); err != nil {
			return nil, err
		}
		next := make(storage.Snapshot, len(records))
		for id, record := range records {
			body, err := storage.Encode(record)
			if err != nil {
				return nil, err
			}
			next[id] = body
		}
		return next, nil
	})
}

// RawService exposes undecoded CRUD for collections without modelled
// record types (bots, categories, key material and the like).
type RawService struct {
	db   *DB
	name storage.Collection
}

// Get returns the raw record body.
func (service *RawService) Get(id string) (json.RawMessage, bool) {
	body, ok := service.db.cache().View(service.name)[id]
	return body, ok
}

// List returns the whole collection.
func (service *RawService) List() storage.Snapshot {
	return service.db.cache().View(service.name)
}

// Put stores a raw record body.
func (service *RawService) Put(ctx context.Context, id string, body json.RawMessage) error {
	return service.db.cache().Update(ctx, service.name, func(snap storage.Snapshot) (storage.Snapshot, error) {
		snap[id] = storage.CloneValue(body)
		return snap, nil
	})
}

// Delete removes a record; absent records are a no-op.
func (service *RawService) Delete(ctx context.Context, id string) error {
	return service.db.cache().Update(ctx, service.name, func(snap storage.Snapshot) (storage.Snapshot, error) {
		delete(snap, id)
		return snap, nil
	})
}

// SingletonService wraps the one-entry keyed-map representation used by
// federation and server_start.
type SingletonService struct {
	db   *DB
	name storage.Collection
}

// singletonKey is the fixed identity of the single record.
const singletonKey = "default"

// Get returns the singleton body.
func (service *SingletonService) Get() (json.RawMessage, bool) {
	body, ok := service.db.cache().View(service.name)[singletonKey]
	return body, ok
}

// Set replaces the singleton body.
func (service *SingletonService) Set(ctx context.Context, body json.RawMessage) error {
	return service.db.cache().Update(ctx, service.name, func(snap storage.Snapshot) (storage.Snapshot, error) {
		snap[singletonKey] = storage.CloneValue(body)
		return snap, nil
	})
}
