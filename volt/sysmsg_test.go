// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Enclicainteractive/volt/internal/testcontext"
)

func TestSystemMessageFanOut(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	stubClock(t)
	db := newTestDB(t, ctx)

	delivered, err := db.SystemMessages.Send(context.Background(),
		[]string{"alice", "bob", ""}, "Maintenance", "downtime at noon", "maint-1")
	require.NoError(t, err)
	require.Equal(t, 2, delivered, "empty recipients are skipped")

	// the same dedupe key is suppressed for recipients that already
	// hold the notice
	delivered, err = db.SystemMessages.Send(context.Background(),
		[]string{"alice", "carol"}, "Maintenance", "downtime at noon", "maint-1")
	require.NoError(t, err)
	require.Equal(t, 1, delivered)

	count, err := db.SystemMessages.UnreadCount("alice")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	messages, err := db.SystemMessages.ListForUser("alice")
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// reading does not reopen the key
	require.NoError(t, db.SystemMessages.MarkRead(context.Background(), "alice", messages[0].ID))
	delivered, err = db.SystemMessages.Send(context.Background(),
		[]string{"alice"}, "Maintenance", "downtime moved", "maint-1")
	require.NoError(t, err)
	require.Zero(t, delivered)

	// deleting the notice does
	require.NoError(t, db.SystemMessages.Delete(context.Background(), "alice", messages[0].ID))
	delivered, err = db.SystemMessages.Send(context.Background(),
		[]string{"alice"}, "Maintenance", "downtime moved", "maint-1")
	require.NoError(t, err)
	require.Equal(t, 1, delivered)
}

func TestSystemMessageReadTracking(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	stubClock(t)
	db := newTestDB(t, ctx)

	_, err := db.SystemMessages.Send(context.Background(), []string{"alice"}, "a", "first", "")
	require.NoError(t, err)
	_, err = db.SystemMessages.Send(context.Background(), []string{"alice"}, "b", "second", "")
	require.NoError(t, err)
	_, err = db.SystemMessages.Send(context.Background(), []string{"bob"}, "c", "third", "")
	require.NoError(t, err)

	messages, err := db.SystemMessages.ListForUser("alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "second", messages[0].Content, "newest first")

	// only the recipient may mark or delete
	require.Error(t, db.SystemMessages.MarkRead(context.Background(), "bob", messages[0].ID))
	require.Error(t, db.SystemMessages.Delete(context.Background(), "bob", messages[0].ID))

	require.NoError(t, db.SystemMessages.MarkAllRead(context.Background(), "alice"))
	count, err := db.SystemMessages.UnreadCount("alice")
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = db.SystemMessages.UnreadCount("bob")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, db.SystemMessages.ClearAll(context.Background(), "alice"))
	messages, err = db.SystemMessages.ListForUser("alice")
	require.NoError(t, err)
	require.Empty(t, messages)

	// bob's notices survive alice's clear
	messages, err = db.SystemMessages.ListForUser("bob")
	require.NoError(t, err)
	require.Len(t, messages, 1)
}
