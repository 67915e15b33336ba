/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package buildstatus

import (
	"sync"
	"testing"

	"gotest.tools/assert"
)

const testBuild = "000102000000"

func TestUnknownBuildIsIdle(t *testing.T) {
	r := NewRegistry()
	rec := r.Get("ffffffffffff")
	assert.Equal(t, rec.Status, StatusIdle)
	assert.Equal(t, rec.LodReady, LodReadyNone)
}

func TestSetStatusMerge(t *testing.T) {
	r := NewRegistry()
	r.SetStatus(testBuild, StatusProcessing, func(rec *Record) {
		rec.TileRoot = "clients/acme/cubemap/kitchen/tiles/" + testBuild
	})

	rec := r.Get(testBuild)
	assert.Equal(t, rec.Status, StatusProcessing)
	assert.Equal(t, rec.TileRoot, "clients/acme/cubemap/kitchen/tiles/"+testBuild)
	assert.Equal(t, rec.LodReady, LodReadyNone)
	assert.Assert(t, rec.StartedAt != nil)

	// merge keeps earlier fields
	r.SetStatus(testBuild, StatusUploading, func(rec *Record) {
		rec.TilesTotal = DefaultTilesTotal
	})
	rec = r.Get(testBuild)
	assert.Equal(t, rec.Status, StatusUploading)
	assert.Equal(t, rec.TileRoot, "clients/acme/cubemap/kitchen/tiles/"+testBuild)
	assert.Equal(t, rec.TilesTotal, DefaultTilesTotal)
}

func TestIncrementTilesUploaded(t *testing.T) {
	r := NewRegistry()
	r.SetStatus(testBuild, StatusUploading, func(rec *Record) {
		rec.TilesTotal = 48
	})

	for i := 0; i < 24; i++ {
		r.IncrementTilesUploaded(testBuild)
	}
	rec := r.Get(testBuild)
	assert.Equal(t, rec.TilesUploaded, 24)
	assert.Equal(t, rec.Progress, 0.5)
	assert.Equal(t, rec.PercentComplete, 0.5)

	// capped at tiles_total
	for i := 0; i < 100; i++ {
		r.IncrementTilesUploaded(testBuild)
	}
	rec = r.Get(testBuild)
	assert.Equal(t, rec.TilesUploaded, 48)
	assert.Equal(t, rec.Progress, 1.0)
}

func TestIncrementUnknownBuildIsNoop(t *testing.T) {
	r := NewRegistry()
	r.IncrementTilesUploaded(testBuild)
	assert.Equal(t, r.Get(testBuild).Status, StatusIdle)
}

func TestCompletionTimestamps(t *testing.T) {
	r := NewRegistry()
	r.SetStatus(testBuild, StatusProcessing, nil)
	r.SetStatus(testBuild, StatusCompleted, func(rec *Record) {
		rec.LodReady = 1
		rec.Progress = 1.0
	})
	rec := r.Get(testBuild)
	assert.Equal(t, rec.Status, StatusCompleted)
	assert.Equal(t, rec.LodReady, 1)
	assert.Assert(t, rec.CompletedAt != nil)

	r.SetStatus("eeeeeeeeeeee", StatusError, func(rec *Record) {
		rec.Error = "upload failed"
	})
	rec = r.Get("eeeeeeeeeeee")
	assert.Equal(t, rec.Status, StatusError)
	assert.Equal(t, rec.Error, "upload failed")
	assert.Assert(t, rec.FailedAt != nil)
}

func TestConcurrentIncrements(t *testing.T) {
	r := NewRegistry()
	r.SetStatus(testBuild, StatusUploading, func(rec *Record) {
		rec.TilesTotal = 120
	})

	var wg sync.WaitGroup
	for i := 0; i < 120; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.IncrementTilesUploaded(testBuild)
		}()
	}
	wg.Wait()
	rec := r.Get(testBuild)
	assert.Equal(t, rec.TilesUploaded, 120)
	assert.Equal(t, rec.Progress, 1.0)
}
