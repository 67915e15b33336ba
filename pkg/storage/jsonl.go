/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"encoding/json"
	"strings"

	"k8s.io/klog/v2"
)

// sliceJsonLines implements the cursor/limit contract shared by both
// backends. cursor counts raw lines, not parsed records; a cursor past
// EOF returns an empty slice with the cursor unchanged.
func sliceJsonLines(key string, data []byte, cursor, limit int) ([]json.RawMessage, int, bool) {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, cursor, false
	}
	lines := strings.Split(text, "\n")
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(lines) {
		return nil, cursor, false
	}
	if limit <= 0 {
		limit = 1
	}

	var events []json.RawMessage
	consumed := 0
	for i := cursor; i < len(lines) && len(events) < limit; i++ {
		consumed = i - cursor + 1
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			klog.Warningf("skipping invalid event line %d in %s", i, key)
			continue
		}
		events = append(events, json.RawMessage(line))
	}
	next := cursor + consumed
	return events, next, next < len(lines)
}

// appendJsonLine serializes obj as a single NDJSON line.
func appendJsonLine(existing []byte, obj interface{}) ([]byte, error) {
	line, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	out := existing
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, line...)
	out = append(out, '\n')
	return out, nil
}
