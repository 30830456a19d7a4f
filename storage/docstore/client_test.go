// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package docstore

import (
	"context"
	"encoding/json"
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

	client, err := New(zaptest.NewLogger(t), ctx.File("db", "volt-docs.db"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	path := ctx.File("db", "volt-docs.db")

	first, err := New(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	want := storage.Snapshot{"srv_1": json.RawMessage(`{"id":"srv_1","name":"volt"}`)}
	require.NoError(t, first.Save(context.Background(), storage.Servers, want))
	require.NoError(t, first.Close())

	second, err := New(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	defer ctx.Check(second.Close)

	got, err := second.Load(context.Background(), storage.Servers)
	require.NoError(t, err)
	require.JSONEq(t, string(want["srv_1"]), string(got["srv_1"]))
}
