// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
)

func TestListChannelOrderingAndPaging(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	stubClock(t)
	db := newTestDB(t, ctx)

	var ids []string
	for i := 0; i < 8; i++ {
		message, err := db.Messages.Create(context.Background(), "ch_1", "alice", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		ids = append(ids, message.ID)
	}
	_, err := db.Messages.Create(context.Background(), "ch_other", "bob", "elsewhere")
	require.NoError(t, err)

	// ascending creation order, limited to the tail
	tail, err := db.Messages.ListChannel("ch_1", 3, "")
	require.NoError(t, err)
	require.Len(t, tail, 3)
	require.Equal(t, "m5", tail[0].Content)
	require.Equal(t, "m7", tail[2].Content)

	// beforeID pages further back
	page, err := db.Messages.ListChannel("ch_1", 3, ids[5])
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, "m2", page[0].Content)
	require.Equal(t, "m4", page[2].Content)

	// an unknown boundary is ignored
	all, err := db.Messages.ListChannel("ch_1", 100, "m_unknown")
	require.NoError(t, err)
	require.Len(t, all, 8)
}

func TestMessageDeleteClearsReactions(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)

	message, err := db.Messages.Create(context.Background(), "ch_1", "alice", "hello")
	require.NoError(t, err)

	require.NoError(t, db.Reactions.Add(context.Background(), message.ID, "👍", "bob"))
	// the same user reacting twice with one emoji does not double-count
	require.NoError(t, db.Reactions.Add(context.Background(), message.ID, "👍", "bob"))
	require.NoError(t, db.Reactions.Add(context.Background(), message.ID, "🎉", "carol"))

	set, err := db.Reactions.Get(message.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, set["👍"])

	require.NoError(t, db.Messages.Delete(context.Background(), message.ID))
	set, err = db.Reactions.Get(message.ID)
	require.NoError(t, err)
	require.Empty(t, set)
}

func TestReactionRemovePrunes(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)

	require.NoError(t, db.Reactions.Add(context.Background(), "msg_1", "👍", "bob"))
	require.NoError(t, db.Reactions.Add(context.Background(), "msg_1", "👍", "carol"))

	require.NoError(t, db.Reactions.Remove(context.Background(), "msg_1", "👍", "bob"))
	set, err := db.Reactions.Get("msg_1")
	require.NoError(t, err)
	require.Equal(t, []string{"carol"}, set["👍"])

	// removing the last reaction drops the whole record
	require.NoError(t, db.Reactions.Remove(context.Background(), "msg_1", "👍", "carol"))
	require.NotContains(t, db.Router().Cache().View(storage.Reactions), "msg_1")
}
