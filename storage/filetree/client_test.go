// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package filetree

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
	"github.com/Enclicainteractive/volt/storage/testsuite"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := New(zaptest.NewLogger(t), ctx.Dir("data"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}

func TestFileLayout(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("data")
	client, err := New(zaptest.NewLogger(t), dir)
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	snap := storage.Snapshot{
		"req_1": json.RawMessage(`{"id":"req_1","from":"alice","to":"bob"}`),
	}
	require.NoError(t, client.Save(context.Background(), storage.FriendRequests, snap))

	// underscores become hyphens on disk
	body, err := os.ReadFile(filepath.Join(dir, "friend-requests.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"req_1":{"id":"req_1","from":"alice","to":"bob"}}`, string(body))
	// two-space indent
	require.Contains(t, string(body), "\n  \"req_1\"")
}

func TestMissingFileIsEmpty(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := New(zaptest.NewLogger(t), ctx.Dir("data"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	snap, err := client.Load(context.Background(), storage.Users)
	require.NoError(t, err)
	require.Empty(t, snap)
}
