// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package router

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
)

func TestFallbackToFileTree(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	// nothing listens on port 1, so the kv adapter cannot come up
	router, err := New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type: storage.KV,
		Options: storage.Options{
			Host:    "localhost",
			Port:    1,
			DataDir: ctx.Dir("data"),
		},
	})
	require.NoError(t, err)
	defer ctx.Check(router.Close)

	require.Equal(t, storage.FileTree, router.Kind())
	require.Equal(t, storage.FileTree, router.Config().Type)

	// the fallback adapter serves reads and writes normally
	require.NoError(t, router.Cache().Update(context.Background(), storage.Users,
		func(snap storage.Snapshot) (storage.Snapshot, error) {
			snap["u_1"] = json.RawMessage(`{"id":"u_1"}`)
			return snap, nil
		}))
	require.Contains(t, router.Cache().View(storage.Users), "u_1")
}

func TestUnknownKind(t *testing.T) {
	_, err := New(context.Background(), zaptest.NewLogger(t), storage.Config{Type: "mongo"})
	require.Error(t, err)
	require.True(t, storage.ErrConfig.Has(err))
}

func TestReinit(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	fileConfig := storage.Config{
		Type:    storage.FileTree,
		Options: storage.Options{DataDir: ctx.Dir("data")},
	}
	router, err := New(context.Background(), zaptest.NewLogger(t), fileConfig)
	require.NoError(t, err)
	defer ctx.Check(router.Close)

	require.NoError(t, router.Cache().Update(context.Background(), storage.Servers,
		func(snap storage.Snapshot) (storage.Snapshot, error) {
			snap["s_1"] = json.RawMessage(`{"id":"s_1"}`)
			return snap, nil
		}))

	rowConfig := storage.Config{
		Type:    storage.RowStore,
		Options: storage.Options{DBPath: ctx.File("db", "volt.db")},
	}
	require.NoError(t, router.Reinit(context.Background(), rowConfig))
	require.Equal(t, storage.RowStore, router.Kind())
	// the fresh back-end starts empty; moving data is the migration
	// engine's job
	require.Empty(t, router.Cache().View(storage.Servers))

	// switching back restores the file-tree contents
	require.NoError(t, router.Reinit(context.Background(), fileConfig))
	require.Equal(t, storage.FileTree, router.Kind())
	require.Contains(t, router.Cache().View(storage.Servers), "s_1")
}

func TestReinitFailureKeepsCurrent(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	router, err := New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type:    storage.FileTree,
		Options: storage.Options{DataDir: ctx.Dir("data")},
	})
	require.NoError(t, err)
	defer ctx.Check(router.Close)

	err = router.Reinit(context.Background(), storage.Config{
		Type:    storage.KV,
		Options: storage.Options{Host: "localhost", Port: 1},
	})
	require.Error(t, err)
	require.Equal(t, storage.FileTree, router.Kind())
}

func TestDistributeNoopForNonSQL(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	router, err := New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type:    storage.FileTree,
		Options: storage.Options{DataDir: ctx.Dir("data")},
	})
	require.NoError(t, err)
	defer ctx.Check(router.Close)

	report, err := router.Distribute(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Distributed)
}

func TestKVAdapter(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	port, err := strconv.Atoi(server.Port())
	require.NoError(t, err)

	router, err := New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type: storage.KV,
		Options: storage.Options{
			Host: server.Host(),
			Port: port,
		},
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, router.Close()) }()

	require.Equal(t, storage.KV, router.Kind())
}
