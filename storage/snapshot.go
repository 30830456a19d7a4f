// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import "encoding/json"

// Snapshot is the full contents of one collection: record identity to
// encoded record body. Bodies are opaque to the storage layer; a legacy
// server-bucketed channels entry carries a JSON array as its body.
type Snapshot map[string]json.RawMessage

// Clone creates a deep copy of the snapshot.
func (snap Snapshot) Clone() Snapshot {
	if snap == nil {
		return nil
	}
	result := make(Snapshot, len(snap))
	for id, body := range snap {
		result[id] = CloneValue(body)
	}
	return result
}

// CloneValue creates a copy of an encoded record body.
func CloneValue(value json.RawMessage) json.RawMessage {
	return append(value[:0:0], value...)
}

// Data is a full data set: every collection's snapshot, keyed by
// collection. Export, import and migration all move Data values.
type Data map[Collection]Snapshot

// Counts reports the record count per non-empty collection.
func (data Data) Counts() map[Collection]int {
	counts := make(map[Collection]int)
	for coll, snap := range data {
		if len(snap) > 0 {
			counts[coll] = len(snap)
		}
	}
	return counts
}

// Encode marshals a value into a record body.
func Encode(value interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return nil, ErrSerialization.Wrap(err)
	}
	return body, nil
}

// Decode unmarshals a record body into value.
func Decode(body json.RawMessage, value interface{}) error {
	if err := json.Unmarshal(body, value); err != nil {
		return ErrSerialization.Wrap(err)
	}
	return nil
}
