// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Enclicainteractive/volt/internal/testcontext"
	"github.com/Enclicainteractive/volt/storage"
)

func TestUsersTimestamps(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	stubClock(t)
	db := newTestDB(t, ctx)

	require.NoError(t, db.Users.Upsert(context.Background(), User{ID: "u_1", Username: "alice"}))
	first, err := db.Users.Get("u_1")
	require.NoError(t, err)
	require.NotZero(t, first.CreatedAt)
	require.NotZero(t, first.UpdatedAt)

	require.NoError(t, db.Users.Upsert(context.Background(), User{ID: "u_1", Username: "alice2"}))
	second, err := db.Users.Get("u_1")
	require.NoError(t, err)
	require.Equal(t, "alice2", second.Username)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Greater(t, second.UpdatedAt, first.UpdatedAt)

	_, err = db.Users.Get("u_missing")
	require.True(t, storage.ErrNotFound.Has(err))
}

func TestUsersKeepUnmodelledFields(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := newTestDB(t, ctx)

	// a record written by an older or newer build carries fields this
	// model does not know
	require.NoError(t, db.Router().Cache().Update(context.Background(), storage.Users,
		func(snap storage.Snapshot) (storage.Snapshot, error) {
			snap["u_1"] = []byte(`{"id":"u_1","username":"alice","theme":"dark","flags":{"beta":true}}`)
			return snap, nil
		}))

	require.NoError(t, db.Users.SetStatus(context.Background(), "u_1", "online"))

	raw := db.Router().Cache().View(storage.Users)["u_1"]
	require.Contains(t, string(raw), `"theme":"dark"`)
	require.Contains(t, string(raw), `"beta":true`)
	require.Contains(t, string(raw), `"status":"online"`)
}

func TestAgeVerification(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	clock := stubClock(t)
	db := newTestDB(t, ctx)

	require.NoError(t, db.Users.Upsert(context.Background(), User{ID: "adult"}))
	require.NoError(t, db.Users.Upsert(context.Background(), User{ID: "child"}))

	require.Error(t, db.Users.SetAgeVerification(context.Background(), "adult", "alien"))

	require.NoError(t, db.Users.SetAgeVerification(context.Background(), "adult", AgeAdult))
	require.NoError(t, db.Users.SetAgeVerification(context.Background(), "child", AgeChild))

	ok, err := db.Users.IsAgeVerified("adult")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = db.Users.IsAgeVerified("child")
	require.NoError(t, err)
	require.True(t, ok)

	// a long time passes
	*clock += 2 * db.config.ChildVerificationTTL.Milliseconds()

	ok, err = db.Users.IsAgeVerified("adult")
	require.NoError(t, err)
	require.True(t, ok, "adult verification must not expire")
	ok, err = db.Users.IsAgeVerified("child")
	require.NoError(t, err)
	require.False(t, ok, "child verification must lapse")

	ok, err = db.Users.IsAgeVerified("unverified")
	require.NoError(t, err)
	require.False(t, ok)
}
