// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import "encoding/json"

// canonicalKeys maps key spellings that diverged historically to their
// canonical form. The canonical value wins when both appear.
var canonicalKeys = map[string]string{
	"Host": "host",
}

// NormalizeKeys rewrites legacy key spellings anywhere in an encoded
// record body. It is applied to every record on import.
func NormalizeKeys(body json.RawMessage) json.RawMessage {
	var tree interface{}
	if err := json.Unmarshal(body, &tree); err != nil {
		return body
	}
	normalized, changed := normalizeTree(tree)
	if !changed {
		return body
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return body
	}
	return encoded
}

// NormalizeSnapshot applies NormalizeKeys to every record body.
func NormalizeSnapshot(snap Snapshot) Snapshot {
	result := make(Snapshot, len(snap))
	for id, body := range snap {
		result[id] = NormalizeKeys(body)
	}
	return result
}

func normalizeTree(tree interface{}) (interface{}, bool) {
	switch node := tree.(type) {
	case map[string]interface{}:
		changed := false
		for key, value := range node {
			canonical, legacy := canonicalKeys[key]
			if legacy {
				if _, exists := node[canonical]; !exists {
					value, _ = normalizeTree(value)
					node[canonical] = value
				}
				delete(node, key)
				changed = true
				continue
			}
			if normalized, childChanged := normalizeTree(value); childChanged {
				node[key] = normalized
				changed = true
			}
		}
		return node, changed
	case []interface{}:
		changed := false
		for i, value := range node {
			if normalized, childChanged := normalizeTree(value); childChanged {
				node[i] = normalized
				changed = true
			}
		}
		return node, changed
	}
	return tree, false
}
