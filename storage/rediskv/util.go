// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package rediskv

// escapeMatch escapes redis glob characters so a key prefix can be used
// verbatim in a SCAN MATCH pattern.
func escapeMatch(match []byte) []byte {
	start := 0
	escaped := []byte{}
	for i, b := range match {
		switch b {
		case '?', '*', '[', ']', '\\':
			escaped = append(escaped, match[start:i]...)
			escaped = append(escaped, '\\', b)
			start = i + 1
		}
	}
	if start == 0 {
		return match
	}

	return append(escaped, match[start:]...)
}
