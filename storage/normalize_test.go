// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeKeys(t *testing.T) {
	got := NormalizeKeys(json.RawMessage(`{"Host":"volt.example","name":"alpha"}`))
	require.JSONEq(t, `{"host":"volt.example","name":"alpha"}`, string(got))

	// canonical value wins when both spellings appear
	got = NormalizeKeys(json.RawMessage(`{"Host":"legacy","host":"canonical"}`))
	require.JSONEq(t, `{"host":"canonical"}`, string(got))

	// nested objects and arrays are rewritten too
	got = NormalizeKeys(json.RawMessage(`{"peers":[{"Host":"a"},{"Host":"b"}]}`))
	require.JSONEq(t, `{"peers":[{"host":"a"},{"host":"b"}]}`, string(got))

	// invalid bodies pass through unchanged
	invalid := json.RawMessage(`{"Host":`)
	require.Equal(t, invalid, NormalizeKeys(invalid))
}

func TestNormalizeSnapshot(t *testing.T) {
	snap := Snapshot{
		"fed_1": json.RawMessage(`{"Host":"remote.example"}`),
		"fed_2": json.RawMessage(`{"host":"kept.example"}`),
	}
	got := NormalizeSnapshot(snap)
	require.JSONEq(t, `{"host":"remote.example"}`, string(got["fed_1"]))
	require.JSONEq(t, `{"host":"kept.example"}`, string(got["fed_2"]))
}
