/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"gotest.tools/assert"
)

func newTestStore(t *testing.T) *LocalClient {
	t.Helper()
	store, err := NewLocalClient(t.TempDir(), "http://localhost:8000/static")
	assert.NilError(t, err)
	return store
}

func TestLocalClientRejectsNonHttpBase(t *testing.T) {
	_, err := NewLocalClient(t.TempDir(), "/var/panoconfig360_cache")
	assert.Assert(t, err != nil)
}

func TestLocalPutGetExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	key := "clients/acme/cubemap/kitchen/tiles/b/metadata.json"
	ok, err := store.Exists(ctx, key)
	assert.NilError(t, err)
	assert.Equal(t, ok, false)

	err = store.PutBytes(ctx, key, []byte(`{"status":"ready","tiles_count":120}`), ContentTypeJson)
	assert.NilError(t, err)

	ok, err = store.Exists(ctx, key)
	assert.NilError(t, err)
	assert.Equal(t, ok, true)

	var meta struct {
		Status     string `json:"status"`
		TilesCount int    `json:"tiles_count"`
	}
	assert.NilError(t, store.GetJSON(ctx, key, &meta))
	assert.Equal(t, meta.Status, "ready")
	assert.Equal(t, meta.TilesCount, 120)
}

func TestLocalGetJSONNotFound(t *testing.T) {
	store := newTestStore(t)
	var v map[string]interface{}
	err := store.GetJSON(context.Background(), "clients/acme/missing.json", &v)
	assert.Assert(t, err != nil)
}

func TestLocalPutFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := filepath.Join(t.TempDir(), "tile.jpg")
	assert.NilError(t, os.WriteFile(src, []byte("jpegbytes"), 0o644))

	key := "clients/acme/cubemap/kitchen/tiles/b/b_f_0_0_0.jpg"
	assert.NilError(t, store.PutFile(ctx, src, key, ContentTypeJpeg))

	ok, err := store.Exists(ctx, key)
	assert.NilError(t, err)
	assert.Equal(t, ok, true)
}

func TestLocalPublicURL(t *testing.T) {
	store := newTestStore(t)
	url := store.PublicURL("clients/acme/cubemap/kitchen/tiles/b/b_f_0_0_0.jpg")
	assert.Equal(t, url, "http://localhost:8000/static/clients/acme/cubemap/kitchen/tiles/b/b_f_0_0_0.jpg")
}

func TestPutTilesParallel(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var items []TileObject
	for i := 0; i < 20; i++ {
		items = append(items, TileObject{
			Key:  fmt.Sprintf("clients/acme/cubemap/kitchen/tiles/b/b_f_0_%d_0.jpg", i),
			Data: []byte{0xff, 0xd8, byte(i)},
		})
	}

	var uploaded int32
	err := store.PutTilesParallel(ctx, items, 4, func(string) {
		atomic.AddInt32(&uploaded, 1)
	})
	assert.NilError(t, err)
	assert.Equal(t, atomic.LoadInt32(&uploaded), int32(20))

	for _, item := range items {
		ok, err := store.Exists(ctx, item.Key)
		assert.NilError(t, err)
		assert.Equal(t, ok, true)
	}
}

func TestAppendAndSliceJSONL(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := "clients/acme/cubemap/kitchen/tiles/b/tile_events.ndjson"

	for i := 0; i < 10; i++ {
		err := store.AppendJSONL(ctx, key, map[string]interface{}{"seq": i, "state": "visible"})
		assert.NilError(t, err)
	}

	events, next, hasMore, err := store.ReadJSONLSlice(ctx, key, 0, 4)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 4)
	assert.Equal(t, next, 4)
	assert.Equal(t, hasMore, true)
	assert.Equal(t, string(events[0]), `{"seq":0,"state":"visible"}`)

	events, next, hasMore, err = store.ReadJSONLSlice(ctx, key, next, 100)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 6)
	assert.Equal(t, next, 10)
	assert.Equal(t, hasMore, false)
	assert.Equal(t, string(events[0]), `{"seq":4,"state":"visible"}`)

	// cursor past EOF
	events, next, hasMore, err = store.ReadJSONLSlice(ctx, key, 42, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 0)
	assert.Equal(t, next, 42)
	assert.Equal(t, hasMore, false)
}

func TestSliceSkipsInvalidLines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := "clients/acme/cubemap/kitchen/tiles/b/tile_events.ndjson"

	data := "{\"seq\":0}\nnot-json\n{\"seq\":2}\n"
	assert.NilError(t, store.PutBytes(ctx, key, []byte(data), ContentTypeNdjson))

	events, next, hasMore, err := store.ReadJSONLSlice(ctx, key, 0, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 2)
	assert.Equal(t, next, 3)
	assert.Equal(t, hasMore, false)
}

func TestSliceMissingLog(t *testing.T) {
	store := newTestStore(t)
	events, next, hasMore, err := store.ReadJSONLSlice(context.Background(),
		"clients/acme/cubemap/kitchen/tiles/b/tile_events.ndjson", 0, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 0)
	assert.Equal(t, next, 0)
	assert.Equal(t, hasMore, false)
}
