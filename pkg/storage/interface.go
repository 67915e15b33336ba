/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package storage is the key-addressed blob store the render pipeline
// publishes to. Two backends exist: an S3-compatible store (Cloudflare R2
// in production) and a local filesystem staging store.
package storage

import (
	"context"
	"encoding/json"
)

type TileObject struct {
	Key  string
	Data []byte
}

type Interface interface {
	// Exists reports whether key is present. IO errors are surfaced, not
	// mapped to false.
	Exists(ctx context.Context, key string) (bool, error)
	PutFile(ctx context.Context, srcPath, key, contentType string) error
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	// GetJSON decodes the object at key into v. A missing key yields an
	// ObjectNotFound error, distinguishable from a decode failure.
	GetJSON(ctx context.Context, key string, v interface{}) error
	// PutTilesParallel uploads items with at most workers concurrent puts,
	// invoking onUploaded once per successful upload. The first error is
	// surfaced only after every in-flight attempt has finished.
	PutTilesParallel(ctx context.Context, items []TileObject, workers int, onUploaded func(key string)) error
	// AppendJSONL appends obj as one JSON line. Single-process ordering
	// follows call order; cross-process ordering is not guaranteed.
	AppendJSONL(ctx context.Context, key string, obj interface{}) error
	// ReadJSONLSlice skips cursor lines and returns up to limit parsed
	// records plus the cursor after the last consumed line. Invalid lines
	// are skipped with a warning.
	ReadJSONLSlice(ctx context.Context, key string, cursor, limit int) ([]json.RawMessage, int, bool, error)
	// PublicURL returns the absolute URL clients fetch key from. Never a
	// local filesystem path.
	PublicURL(key string) string
}
