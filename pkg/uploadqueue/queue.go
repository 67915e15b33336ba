/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package uploadqueue drains generated tile files into the object store
// with a bounded worker pool, tracking per-tile state and deleting each
// local file after its upload attempt.
package uploadqueue

import (
	"fmt"
	"os"
	"sync"

	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
)

type State string

const (
	StateGenerated State = "generated"
	StateQueued    State = "queued"
	StateUploading State = "uploading"
	StateVisible   State = "visible"
)

// DefaultMaxInFlight bounds the number of enqueued-but-not-finished
// tiles; Enqueue blocks the producer beyond it.
const DefaultMaxInFlight = 256

type UploadFunc func(localPath, key string) error

// StateChangeFunc observes per-tile transitions. Called outside the
// queue's locks; implementations may block without stalling state
// bookkeeping of other tiles.
type StateChangeFunc func(filename string, state State, lod int)

type task struct {
	localPath string
	filename  string
	lod       int
}

type Queue struct {
	tileRoot      string
	uploadFn      UploadFunc
	workers       int
	onStateChange StateChangeFunc

	tasks chan task
	slots chan struct{}
	wg    sync.WaitGroup

	mu            sync.Mutex
	states        map[string]State
	uploadedCount int
	uploadErrs    []error

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

func New(tileRoot string, uploadFn UploadFunc, workers int, onStateChange StateChangeFunc) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		tileRoot:      tileRoot,
		uploadFn:      uploadFn,
		workers:       workers,
		onStateChange: onStateChange,
		tasks:         make(chan task, DefaultMaxInFlight),
		slots:         make(chan struct{}, DefaultMaxInFlight),
		states:        make(map[string]State),
	}
}

func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Enqueue registers a generated tile for upload. Blocks when the
// in-flight bound is reached until a worker frees a slot.
func (q *Queue) Enqueue(localPath, filename string, lod int) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("upload queue is closed")
	}
	q.states[filename] = StateGenerated
	q.mu.Unlock()
	q.notify(filename, StateGenerated, lod)

	q.slots <- struct{}{}

	q.setState(filename, StateQueued)
	q.notify(filename, StateQueued, lod)
	klog.V(2).Infof("tile queued: %s", filename)

	q.tasks <- task{localPath: localPath, filename: filename, lod: lod}
	return nil
}

// CloseAndWait signals no more work, waits for in-flight uploads and
// returns the aggregate error if any upload failed. Idempotent.
func (q *Queue) CloseAndWait() error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.tasks)
		q.wg.Wait()

		q.mu.Lock()
		defer q.mu.Unlock()
		if n := len(q.uploadErrs); n > 0 {
			q.closeErr = errors.NewUploadFailed(
				fmt.Sprintf("%d tile uploads failed: %v", n, q.uploadErrs[0]))
		}
	})
	return q.closeErr
}

func (q *Queue) UploadedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.uploadedCount
}

func (q *Queue) States() map[string]State {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]State, len(q.states))
	for k, v := range q.states {
		out[k] = v
	}
	return out
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for tile := range q.tasks {
		q.process(tile)
		<-q.slots
	}
}

func (q *Queue) process(tile task) {
	key := q.tileRoot + "/" + tile.filename
	q.setState(tile.filename, StateUploading)
	q.notify(tile.filename, StateUploading, tile.lod)
	klog.V(2).Infof("upload started: %s", key)

	err := q.uploadFn(tile.localPath, key)
	if err != nil {
		klog.ErrorS(err, "tile upload failed", "key", key)
		q.mu.Lock()
		q.uploadErrs = append(q.uploadErrs, err)
		q.mu.Unlock()
	} else {
		q.mu.Lock()
		q.states[tile.filename] = StateVisible
		q.uploadedCount++
		q.mu.Unlock()
		q.notify(tile.filename, StateVisible, tile.lod)
		klog.V(2).Infof("upload completed: %s", key)
	}

	// the temp file goes away on success and on failure
	if rmErr := os.Remove(tile.localPath); rmErr != nil && !os.IsNotExist(rmErr) {
		klog.ErrorS(rmErr, "failed to remove local tile", "path", tile.localPath)
	} else {
		klog.V(3).Infof("local file removed: %s", tile.localPath)
	}
}

func (q *Queue) setState(filename string, state State) {
	q.mu.Lock()
	q.states[filename] = state
	q.mu.Unlock()
}

func (q *Queue) notify(filename string, state State, lod int) {
	if q.onStateChange != nil {
		q.onStateChange(filename, state, lod)
	}
}
