// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package cache holds the in-process snapshot of every collection and
// writes changes through to the active adapter.
package cache

import (
	"context"
	"sync"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var (
	mon = monkit.Package()

	// Error is the cache error class.
	Error = errs.Class("storage cache error")
)

// Cache is the authoritative runtime read source. Reads never touch the
// adapter after preload; writes update the snapshot and write through.
//
// For local adapters (and always in durable mode) the write-through is
// awaited before Update returns. For remote adapters in eager mode the
// write-through runs on a per-collection flusher that always persists
// the latest snapshot; errors are logged only.
type Cache struct {
	log     *zap.Logger
	adapter storage.Adapter
	durable bool

	mu    sync.Mutex
	colls map[storage.Collection]*collState

	inflight sync.WaitGroup
}

type collState struct {
	writeMu sync.Mutex // serialises Update calls on this collection

	dataMu sync.RWMutex
	snap   storage.Snapshot

	flushMu  sync.Mutex
	dirty    bool
	flushing bool
}

// New creates a cache over adapter. Call Preload before serving reads.
func New(log *zap.Logger, adapter storage.Adapter, durable bool) *Cache {
	return &Cache{
		log:     log,
		adapter: adapter,
		durable: durable,
		colls:   map[storage.Collection]*collState{},
	}
}

// Preload reads every collection from the adapter into memory.
func (cache *Cache) Preload(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	var group errgroup.Group
	for _, coll := range storage.All {
		coll := coll
		group.Go(func() error {
			snap, err := cache.adapter.Load(ctx, coll)
			if err != nil {
				return Error.Wrap(err)
			}
			if snap == nil {
				snap = storage.Snapshot{}
			}
			state := cache.state(coll)
			state.dataMu.Lock()
			state.snap = snap
			state.dataMu.Unlock()
			return nil
		})
	}
	return group.Wait()
}

func (cache *Cache) state(coll storage.Collection) *collState {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	state, ok := cache.colls[coll]
	if !ok {
		state = &collState{snap: storage.Snapshot{}}
		cache.colls[coll] = state
	}
	return state
}

// View returns a copy of the collection's current snapshot.
func (cache *Cache) View(coll storage.Collection) storage.Snapshot {
	state := cache.state(coll)
	state.dataMu.RLock()
	defer state.dataMu.RUnlock()
	return state.snap.Clone()
}

// Update applies fn to a copy of the collection under the collection's
// write lock, installs the result and writes it through to the adapter.
// Returning an error from fn abandons the update.
func (cache *Cache) Update(ctx context.Context, coll storage.Collection, fn func(storage.Snapshot) (storage.Snapshot, error)) (err error) {
	defer mon.Task()(&ctx)(&err)

	state := cache.state(coll)
	state.writeMu.Lock()
	defer state.writeMu.Unlock()

	state.dataMu.RLock()
	working := state.snap.Clone()
	state.dataMu.RUnlock()
	if working == nil {
		working = storage.Snapshot{}
	}

	next, err := fn(working)
	if err != nil {
		return err
	}
	if next == nil {
		next = storage.Snapshot{}
	}

	state.dataMu.Lock()
	state.snap = next
	state.dataMu.Unlock()

	if cache.durable || !cache.adapter.Kind().Remote() {
		return Error.Wrap(cache.adapter.Save(ctx, coll, next.Clone()))
	}
	cache.scheduleFlush(coll, state)
	return nil
}

// scheduleFlush marks the collection dirty and ensures a flusher is
// draining it. The flusher always saves the latest snapshot, so
// out-of-order writes cannot clobber newer data.
func (cache *Cache) scheduleFlush(coll storage.Collection, state *collState) {
	state.flushMu.Lock()
	state.dirty = true
	if state.flushing {
		state.flushMu.Unlock()
		return
	}
	state.flushing = true
	state.flushMu.Unlock()

	cache.inflight.Add(1)
	go func() {
		defer cache.inflight.Done()
		for {
			state.flushMu.Lock()
			if !state.dirty {
				state.flushing = false
				state.flushMu.Unlock()
				return
			}
			state.dirty = false
			state.flushMu.Unlock()

			state.dataMu.RLock()
			snap := state.snap.Clone()
			state.dataMu.RUnlock()

			if err := cache.adapter.Save(context.Background(), coll, snap); err != nil {
				cache.log.Error("async write-through failed",
					zap.String("collection", string(coll)),
					zap.Error(err))
			}
		}
	}()
}

// Flush waits for every scheduled write-through to finish.
func (cache *Cache) Flush() {
	cache.inflight.Wait()
}
