// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func TestRoundTripKeepsUnknownFields(t *testing.T) {
	data := []byte(`{"id":"u_1","name":"alice","theme":"dark","badges":[1,2]}`)

	var known record
	extra, err := Unmarshal(data, &known)
	require.NoError(t, err)
	require.Equal(t, "u_1", known.ID)
	require.Equal(t, "alice", known.Name)
	require.Len(t, extra, 2)
	require.Contains(t, extra, "theme")
	require.Contains(t, extra, "badges")

	known.Name = "alice2"
	out, err := Marshal(known, extra)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"u_1","name":"alice2","theme":"dark","badges":[1,2]}`, string(out))
}

func TestNoExtraFields(t *testing.T) {
	var known record
	extra, err := Unmarshal([]byte(`{"id":"u_1","name":"alice"}`), &known)
	require.NoError(t, err)
	require.Nil(t, extra)
}

func TestKnownFieldWins(t *testing.T) {
	// a stale extra entry for a modelled field must not clobber it
	out, err := Marshal(record{ID: "u_1", Name: "new"}, map[string]json.RawMessage{
		"name": json.RawMessage(`"old"`),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"u_1","name":"new"}`, string(out))
}

func TestOmitemptyFieldIsClaimed(t *testing.T) {
	// name is omitempty but set from the data, so it must not leak into
	// extra
	var known record
	extra, err := Unmarshal([]byte(`{"id":"u_1","name":"alice","x":1}`), &known)
	require.NoError(t, err)
	require.NotContains(t, extra, "name")
	require.Contains(t, extra, "x")
}
