// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/teststore"
)

func put(id string) func(storage.Snapshot) (storage.Snapshot, error) {
	return func(snap storage.Snapshot) (storage.Snapshot, error) {
		snap[id] = json.RawMessage(fmt.Sprintf(`{"id":%q}`, id))
		return snap, nil
	}
}

func TestCoherenceEager(t *testing.T) {
	// an eager cache over a remote adapter must still serve its own
	// writes immediately
	store := teststore.New(storage.KV)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	require.NoError(t, cache.Update(context.Background(), storage.Users, put("u_1")))
	require.Contains(t, cache.View(storage.Users), "u_1")

	cache.Flush()
	snap, err := store.Load(context.Background(), storage.Users)
	require.NoError(t, err)
	require.Contains(t, snap, "u_1")
}

// nilLoadAdapter reports absent collections as nil snapshots, the way a
// sparse adapter might.
type nilLoadAdapter struct{ *teststore.Client }

func (adapter nilLoadAdapter) Load(ctx context.Context, coll storage.Collection) (storage.Snapshot, error) {
	snap, err := adapter.Client.Load(ctx, coll)
	if err != nil || len(snap) == 0 {
		return nil, err
	}
	return snap, nil
}

func TestFirstWriteToEmptyCollection(t *testing.T) {
	// a nil snapshot from the adapter must not leak into Update's
	// working copy
	store := nilLoadAdapter{teststore.New(storage.KV)}
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	require.NoError(t, cache.Update(context.Background(), storage.Invites, put("inv_1")))
	require.Contains(t, cache.View(storage.Invites), "inv_1")
}

func TestDurableWriteThrough(t *testing.T) {
	store := teststore.New(storage.KV)
	cache := New(zaptest.NewLogger(t), store, true)
	require.NoError(t, cache.Preload(context.Background()))

	require.NoError(t, cache.Update(context.Background(), storage.Users, put("u_1")))

	// the save happened before Update returned
	snap, err := store.Load(context.Background(), storage.Users)
	require.NoError(t, err)
	require.Contains(t, snap, "u_1")
}

func TestDurableSurfacesSaveError(t *testing.T) {
	store := teststore.New(storage.KV)
	cache := New(zaptest.NewLogger(t), store, true)
	require.NoError(t, cache.Preload(context.Background()))

	store.FailSaves = errors.New("disk full")
	err := cache.Update(context.Background(), storage.Users, put("u_1"))
	require.Error(t, err)
}

func TestEagerLogsSaveError(t *testing.T) {
	store := teststore.New(storage.KV)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	store.FailSaves = errors.New("connection reset")
	// the caller never sees the async failure
	require.NoError(t, cache.Update(context.Background(), storage.Users, put("u_1")))
	cache.Flush()

	// the cache still serves the write
	require.Contains(t, cache.View(storage.Users), "u_1")
}

func TestLocalAdapterIsSynchronous(t *testing.T) {
	store := teststore.New(storage.FileTree)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	store.FailSaves = errors.New("disk full")
	// local adapters write through synchronously even in eager mode
	require.Error(t, cache.Update(context.Background(), storage.Users, put("u_1")))
}

func TestUpdateErrorAbandons(t *testing.T) {
	store := teststore.New(storage.FileTree)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	boom := errors.New("boom")
	err := cache.Update(context.Background(), storage.Users, func(snap storage.Snapshot) (storage.Snapshot, error) {
		snap["u_1"] = json.RawMessage(`{}`)
		return nil, boom
	})
	require.Equal(t, boom, err)
	require.Empty(t, cache.View(storage.Users))
}

func TestViewReturnsCopy(t *testing.T) {
	store := teststore.New(storage.FileTree)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))
	require.NoError(t, cache.Update(context.Background(), storage.Users, put("u_1")))

	view := cache.View(storage.Users)
	delete(view, "u_1")
	require.Contains(t, cache.View(storage.Users), "u_1")
}

func TestParallelUpdatesAllLand(t *testing.T) {
	store := teststore.New(storage.KV)
	cache := New(zaptest.NewLogger(t), store, false)
	require.NoError(t, cache.Preload(context.Background()))

	const n = 32
	var group sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		group.Add(1)
		go func() {
			defer group.Done()
			_ = cache.Update(context.Background(), storage.Messages, put(fmt.Sprintf("m_%d", i)))
		}()
	}
	group.Wait()
	cache.Flush()

	require.Len(t, cache.View(storage.Messages), n)
	snap, err := store.Load(context.Background(), storage.Messages)
	require.NoError(t, err)
	require.Len(t, snap, n)
}
