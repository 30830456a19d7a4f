// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package shim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/router"
)

func openRowStoreRouter(t *testing.T, ctx *testcontext.Context) *router.Router {
	rtr, err := router.New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type: storage.RowStore,
		Options: storage.Options{
			DBPath:  ctx.File("db", "volt.db"),
			DataDir: ctx.Dir("data"),
		},
	})
	require.NoError(t, err)
	return rtr
}

func TestManagedPathDetection(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	rtr := openRowStoreRouter(t, ctx)
	defer ctx.Check(rtr.Close)
	shim := New(zaptest.NewLogger(t), rtr)

	dataDir := rtr.Config().Options.DataDir
	require.True(t, shim.IsManagedPath(filepath.Join(dataDir, "users.json")))
	require.True(t, shim.IsManagedPath(filepath.Join(dataDir, "friend-requests.json")))
	require.False(t, shim.IsManagedPath(filepath.Join(dataDir, "notes.txt")))
	require.False(t, shim.IsManagedPath(filepath.Join(dataDir, "sub", "users.json")))
	require.False(t, shim.IsManagedPath("/elsewhere/users.json"))
}

func TestFileTreeKeepsFilesAuthoritative(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	rtr, err := router.New(context.Background(), zaptest.NewLogger(t), storage.Config{
		Type:    storage.FileTree,
		Options: storage.Options{DataDir: ctx.Dir("data")},
	})
	require.NoError(t, err)
	defer ctx.Check(rtr.Close)

	shim := New(zaptest.NewLogger(t), rtr)
	require.False(t, shim.IsManagedPath(filepath.Join(rtr.Config().Options.DataDir, "users.json")))
}

func TestLoadSaveByPath(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	rtr := openRowStoreRouter(t, ctx)
	defer ctx.Check(rtr.Close)
	shim := New(zaptest.NewLogger(t), rtr)

	path := filepath.Join(rtr.Config().Options.DataDir, "users.json")

	// empty collection returns the default
	body, err := shim.LoadByPath(context.Background(), path, json.RawMessage(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(body))

	require.NoError(t, shim.SaveByPath(context.Background(), path,
		json.RawMessage(`{"u_1":{"id":"u_1","username":"alice"}}`)))

	body, err = shim.LoadByPath(context.Background(), path, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"u_1":{"id":"u_1","username":"alice"}}`, string(body))

	// the write went through the service layer, not the disk
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.Contains(t, rtr.Cache().View(storage.Users), "u_1")
}

func TestWrappersForwardUnmanaged(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	rtr := openRowStoreRouter(t, ctx)
	defer ctx.Check(rtr.Close)
	shim := New(zaptest.NewLogger(t), rtr)

	plain := ctx.File("other", "notes.txt")
	require.NoError(t, shim.WriteFile(context.Background(), plain, []byte("hello"), 0600))

	data, err := shim.ReadFile(context.Background(), plain)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	ok, err := shim.Exists(plain)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = shim.Exists(ctx.File("other", "missing.txt"))
	require.NoError(t, err)
	require.False(t, ok)

	// os error identity survives the wrapper
	_, err = shim.ReadFile(context.Background(), ctx.File("other", "missing.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestManagedExistsAlwaysTrue(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	rtr := openRowStoreRouter(t, ctx)
	defer ctx.Check(rtr.Close)
	shim := New(zaptest.NewLogger(t), rtr)

	ok, err := shim.Exists(filepath.Join(rtr.Config().Options.DataDir, "invites.json"))
	require.NoError(t, err)
	require.True(t, ok)
}
