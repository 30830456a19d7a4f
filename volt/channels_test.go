// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
)

func seedLegacyChannels(t *testing.T, db *DB) {
	require.NoError(t, db.Router().Cache().Update(context.Background(), storage.Channels,
		func(snap storage.Snapshot) (storage.Snapshot, error) {
			snap["srv_1"] = []byte(`[{"id":"ch_1","name":"general"},{"id":"ch_2","name":"random"}]`)
			return snap, nil
		}))
}

// rawShapeIsBucketed reports whether every stored value is a JSON
// array, i.e. the legacy server-bucketed shape.
func rawShapeIsBucketed(snap storage.Snapshot) bool {
	for _, body := range snap {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return false
		}
	}
	return len(snap) > 0
}

func TestLegacyShapePreservedAcrossMutations(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)
	seedLegacyChannels(t, db)

	created, err := db.Channels.Create(context.Background(), Channel{ServerID: "srv_1", Name: "voice"})
	require.NoError(t, err)
	require.NoError(t, db.Channels.Update(context.Background(), "ch_1",
		func(channel *Channel) { channel.Name = "lobby" }))
	require.NoError(t, db.Channels.Delete(context.Background(), "ch_2"))

	snap := db.Router().Cache().View(storage.Channels)
	require.True(t, rawShapeIsBucketed(snap), "mutations must re-emit the loaded shape")

	channels, err := db.Channels.ListByServer("srv_1")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	// legacy bucket order is preserved
	require.Equal(t, "ch_1", channels[0].ID)
	require.Equal(t, "lobby", channels[0].Name)
	require.Equal(t, created.ID, channels[1].ID)
}

func TestCanonicalShapeStaysKeyed(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)

	created, err := db.Channels.Create(context.Background(), Channel{ServerID: "srv_1", Name: "general"})
	require.NoError(t, err)

	snap := db.Router().Cache().View(storage.Channels)
	require.Contains(t, snap, created.ID)
	require.False(t, rawShapeIsBucketed(snap))

	_, err = db.Channels.Create(context.Background(), Channel{ID: created.ID, ServerID: "srv_1"})
	require.True(t, storage.ErrAlreadyExists.Has(err))
}

func TestServerDeleteCascadesChannels(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)

	server, err := db.Servers.Create(context.Background(), Server{Name: "volt"})
	require.NoError(t, err)
	kept, err := db.Channels.Create(context.Background(), Channel{ServerID: "other", Name: "keep"})
	require.NoError(t, err)
	doomed, err := db.Channels.Create(context.Background(), Channel{ServerID: server.ID, Name: "general"})
	require.NoError(t, err)

	require.NoError(t, db.Servers.Delete(context.Background(), server.ID))

	_, err = db.Channels.Get(doomed.ID)
	require.True(t, storage.ErrNotFound.Has(err))
	_, err = db.Channels.Get(kept.ID)
	require.NoError(t, err)
	_, err = db.Servers.Get(server.ID)
	require.True(t, storage.ErrNotFound.Has(err))
}
