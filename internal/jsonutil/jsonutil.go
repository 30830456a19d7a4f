// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package jsonutil round-trips records that carry fields the typed
// model does not know about yet.
package jsonutil

import "encoding/json"

// Unmarshal decodes data into known and returns every field that the
// known type did not claim. Returns nil when there are no such fields.
func Unmarshal(data []byte, known interface{}) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	claimed, err := fieldSet(known)
	if err != nil {
		return nil, err
	}
	for key := range claimed {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// Marshal encodes known and merges extra fields back in. A field
// present on the known type always wins over its extra counterpart.
func Marshal(known interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	encoded, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return encoded, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &all); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, claimed := all[key]; !claimed {
			all[key] = value
		}
	}
	return json.Marshal(all)
}

func fieldSet(known interface{}) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
