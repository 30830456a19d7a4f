// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/router"
)

// newTestDB opens a full service stack over a file-tree back-end in a
// temp directory.
func newTestDB(t *testing.T, ctx *testcontext.Context) *DB {
	log := zaptest.NewLogger(t)
	rtr, err := router.New(context.Background(), log, storage.Config{
		Type:    storage.FileTree,
		Options: storage.Options{DataDir: ctx.Dir("data")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rtr.Close()) })
	return Open(log, rtr, DefaultConfig())
}

// stubClock replaces the package clock with a strictly increasing
// counter and returns a pointer so tests can jump it forward. Not safe
// for concurrent service calls; tests that exercise concurrency keep
// the real clock.
func stubClock(t *testing.T) *int64 {
	tick := int64(1_000_000)
	prev := now
	now = func() int64 { tick++; return tick }
	t.Cleanup(func() { now = prev })
	return &tick
}
