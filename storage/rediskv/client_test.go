// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package rediskv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/testsuite"
)

func TestSuite(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := New(zaptest.NewLogger(t), server.Addr(), "", 0, "volt:")
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	testsuite.RunTests(t, client)
}

func TestUnreachable(t *testing.T) {
	_, err := New(zaptest.NewLogger(t), "localhost:1", "", 0, "volt:")
	require.Error(t, err)
	require.True(t, storage.ErrAdapterUnavailable.Has(err))
}

func TestPrefixIsolation(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	first, err := New(zaptest.NewLogger(t), server.Addr(), "", 0, "one:")
	require.NoError(t, err)
	defer func() { require.NoError(t, first.Close()) }()
	second, err := New(zaptest.NewLogger(t), server.Addr(), "", 0, "two:")
	require.NoError(t, err)
	defer func() { require.NoError(t, second.Close()) }()

	require.NoError(t, first.Save(context.Background(), storage.Users, storage.Snapshot{
		"u_1": json.RawMessage(`{"id":"u_1"}`),
	}))

	got, err := second.Load(context.Background(), storage.Users)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestConcurrentSavesDoNotTear(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := New(zaptest.NewLogger(t), server.Addr(), "", 0, "volt:")
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	// each writer replaces the collection with a single record; an
	// interleaved scan/delete phase would leave records from several
	// writers behind
	const n = 16
	var group sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		group.Add(1)
		go func() {
			defer group.Done()
			_ = client.Save(context.Background(), storage.Users, storage.Snapshot{
				fmt.Sprintf("only_%d", i): json.RawMessage(`{}`),
			})
		}()
	}
	group.Wait()

	got, err := client.Load(context.Background(), storage.Users)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestEscapeMatch(t *testing.T) {
	require.Equal(t, `volt\*:\[x\]:`, string(escapeMatch([]byte(`volt*:[x]:`))))
	require.Equal(t, `plain:`, string(escapeMatch([]byte(`plain:`))))
}
