// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package testsuite runs the adapter contract against any back-end.
package testsuite

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Enclicainteractive/volt/storage"
)

// RunTests runs the common storage.Adapter contract tests.
func RunTests(t *testing.T, adapter storage.Adapter) {
	t.Run("MissingCollection", func(t *testing.T) { testMissing(t, adapter) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, adapter) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, adapter) })
	t.Run("EmptySave", func(t *testing.T) { testEmptySave(t, adapter) })
	t.Run("ShapePreserved", func(t *testing.T) { testShapePreserved(t, adapter) })
	t.Run("ParallelCollections", func(t *testing.T) { testParallel(t, adapter) })
}

func testMissing(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	snap, err := adapter.Load(ctx, storage.Bots)
	require.NoError(t, err)
	require.NotNil(t, snap, "absent collections load as empty, never nil")
	require.Empty(t, snap)
}

func testRoundTrip(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	want := storage.Snapshot{
		"u_1": json.RawMessage(`{"id":"u_1","username":"alice"}`),
		"u_2": json.RawMessage(`{"id":"u_2","username":"bob","meta":{"nested":[1,2,3]}}`),
	}
	require.NoError(t, adapter.Save(ctx, storage.Users, want))

	got, err := adapter.Load(ctx, storage.Users)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for id, body := range want {
		require.JSONEq(t, string(body), string(got[id]), "record %s", id)
	}
}

func testOverwrite(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	first := storage.Snapshot{"s_1": json.RawMessage(`{"name":"general"}`)}
	second := storage.Snapshot{"s_2": json.RawMessage(`{"name":"random"}`)}

	require.NoError(t, adapter.Save(ctx, storage.Servers, first))
	require.NoError(t, adapter.Save(ctx, storage.Servers, second))

	got, err := adapter.Load(ctx, storage.Servers)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Contains(t, got, "s_2")
}

func testEmptySave(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	require.NoError(t, adapter.Save(ctx, storage.Invites, storage.Snapshot{
		"ABCD1234": json.RawMessage(`{"code":"ABCD1234"}`),
	}))
	require.NoError(t, adapter.Save(ctx, storage.Invites, storage.Snapshot{}))

	got, err := adapter.Load(ctx, storage.Invites)
	require.NoError(t, err)
	require.Empty(t, got)
}

// testShapePreserved verifies a legacy server-bucketed channels payload
// (record body is an array) survives a round trip byte-for-byte in
// meaning.
func testShapePreserved(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	bucketed := storage.Snapshot{
		"srv_1": json.RawMessage(`[{"id":"ch_1","name":"general"},{"id":"ch_2","name":"random"}]`),
	}
	require.NoError(t, adapter.Save(ctx, storage.Channels, bucketed))

	got, err := adapter.Load(ctx, storage.Channels)
	require.NoError(t, err)
	require.JSONEq(t, string(bucketed["srv_1"]), string(got["srv_1"]))
}

func testParallel(t *testing.T, adapter storage.Adapter) {
	ctx := context.Background()

	colls := []storage.Collection{storage.Friends, storage.Blocked, storage.Categories}
	done := make(chan error, len(colls))
	for i, coll := range colls {
		i, coll := i, coll
		go func() {
			snap := storage.Snapshot{
				fmt.Sprintf("r_%d", i): json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)),
			}
			done <- adapter.Save(ctx, coll, snap)
		}()
	}
	for range colls {
		require.NoError(t, <-done)
	}
	for i, coll := range colls {
		got, err := adapter.Load(ctx, coll)
		require.NoError(t, err)
		require.Contains(t, got, fmt.Sprintf("r_%d", i))
	}
}
