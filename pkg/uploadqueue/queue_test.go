/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package uploadqueue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func genTileFile(t *testing.T, dir string, i int) (string, string) {
	t.Helper()
	filename := fmt.Sprintf("b_f_0_%d_0.jpg", i)
	path := filepath.Join(dir, filename)
	assert.NilError(t, os.WriteFile(path, []byte{0xff, 0xd8, byte(i)}, 0o644))
	return path, filename
}

func TestParallelUpload(t *testing.T) {
	dir := t.TempDir()
	tileRoot := "clients/acme/cubemap/kitchen/tiles/b"

	var mu sync.Mutex
	uploaded := map[string]bool{}
	q := New(tileRoot, func(localPath, key string) error {
		mu.Lock()
		defer mu.Unlock()
		uploaded[key] = true
		return nil
	}, 4, nil)
	q.Start()

	var filenames []string
	for i := 0; i < 30; i++ {
		path, filename := genTileFile(t, dir, i)
		filenames = append(filenames, filename)
		assert.NilError(t, q.Enqueue(path, filename, 0))
	}
	assert.NilError(t, q.CloseAndWait())

	assert.Equal(t, q.UploadedCount(), 30)
	states := q.States()
	for _, filename := range filenames {
		assert.Equal(t, states[filename], StateVisible)
		assert.Equal(t, uploaded[tileRoot+"/"+filename], true)
	}
}

func TestCleanupAfterUpload(t *testing.T) {
	dir := t.TempDir()
	q := New("root", func(localPath, key string) error {
		if strings.Contains(key, "_3_") {
			return errors.New("network down")
		}
		return nil
	}, 2, nil)
	q.Start()

	var paths []string
	for i := 0; i < 8; i++ {
		path, filename := genTileFile(t, dir, i)
		paths = append(paths, path)
		assert.NilError(t, q.Enqueue(path, filename, 0))
	}
	err := q.CloseAndWait()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "1 tile uploads failed")

	// local files are gone even for the failed tile
	for _, path := range paths {
		_, statErr := os.Stat(path)
		assert.Equal(t, os.IsNotExist(statErr), true, "file remains: %s", path)
	}
	assert.Equal(t, q.UploadedCount(), 7)
}

func TestCloseAndWaitIdempotent(t *testing.T) {
	dir := t.TempDir()
	q := New("root", func(string, string) error { return errors.New("fail") }, 1, nil)
	q.Start()
	path, filename := genTileFile(t, dir, 0)
	assert.NilError(t, q.Enqueue(path, filename, 0))

	err1 := q.CloseAndWait()
	err2 := q.CloseAndWait()
	assert.Assert(t, err1 != nil)
	assert.Equal(t, err1, err2)

	// enqueue after close is rejected
	path2, filename2 := genTileFile(t, dir, 1)
	assert.Assert(t, q.Enqueue(path2, filename2, 0) != nil)
}

func TestStateChangeEvents(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var events []State
	q := New("root", func(string, string) error { return nil }, 1,
		func(filename string, state State, lod int) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, state)
		})
	q.Start()

	path, filename := genTileFile(t, dir, 0)
	assert.NilError(t, q.Enqueue(path, filename, 0))
	assert.NilError(t, q.CloseAndWait())

	mu.Lock()
	defer mu.Unlock()
	assert.DeepEqual(t, events, []State{StateGenerated, StateQueued, StateUploading, StateVisible})
}

func TestBackpressure(t *testing.T) {
	dir := t.TempDir()
	gate := make(chan struct{})
	q := New("root", func(string, string) error {
		<-gate
		return nil
	}, 1, nil)
	q.Start()

	for i := 0; i < DefaultMaxInFlight; i++ {
		path, filename := genTileFile(t, dir, i)
		assert.NilError(t, q.Enqueue(path, filename, 0))
	}

	extraPath, extraName := genTileFile(t, dir, DefaultMaxInFlight)
	blocked := make(chan struct{})
	go func() {
		_ = q.Enqueue(extraPath, extraName, 0)
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("enqueue did not block at the in-flight bound")
	case <-time.After(100 * time.Millisecond):
	}

	close(gate)
	select {
	case <-blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("enqueue stayed blocked after the queue drained")
	}
	assert.NilError(t, q.CloseAndWait())
}
