/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package buildstatus is the process-local registry tracking pipeline
// progress per build-string. Lost on restart; callers fall back to the
// published metadata when a build is unknown here.
package buildstatus

import (
	"sync"
	"time"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusUploading  Status = "uploading"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// DefaultTilesTotal is the floor for tiles_total while the exact count
// is still unknown (LOD0's 24 plus at least one more LOD batch).
const DefaultTilesTotal = 48

// LodReady values: -1 none published, 0 coarse ready, 1 full pyramid.
const LodReadyNone = -1

type Record struct {
	Status          Status     `json:"status"`
	TileRoot        string     `json:"tile_root,omitempty"`
	TilesUploaded   int        `json:"tiles_uploaded"`
	TilesTotal      int        `json:"tiles_total,omitempty"`
	Progress        float64    `json:"progress"`
	PercentComplete float64    `json:"percent_complete"`
	FacesReady      bool       `json:"faces_ready"`
	TilesReady      bool       `json:"tiles_ready"`
	LodReady        int        `json:"lod_ready"`
	Error           string     `json:"error,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
}

type Registry struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// Get returns a copy of the build's record, or an idle record when the
// build is unknown to this process.
func (r *Registry) Get(build string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[build]; ok {
		return rec
	}
	return Record{Status: StatusIdle, LodReady: LodReadyNone}
}

// SetStatus merge-updates the build's record: status is set, mutate (if
// any) edits the remaining fields, then percent_complete is aligned
// with progress unless mutate overrode it.
func (r *Registry) SetStatus(build string, status Status, mutate func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[build]
	if !ok {
		rec = Record{LodReady: LodReadyNone}
		now := time.Now().UTC()
		rec.StartedAt = &now
	}
	before := rec.PercentComplete
	rec.Status = status
	if mutate != nil {
		mutate(&rec)
	}
	if rec.PercentComplete == before {
		rec.PercentComplete = rec.Progress
	}
	now := time.Now().UTC()
	switch status {
	case StatusCompleted:
		rec.CompletedAt = &now
	case StatusError:
		rec.FailedAt = &now
	}
	r.records[build] = rec
}

// IncrementTilesUploaded bumps the upload counter, capped at
// tiles_total when known, and recomputes progress.
func (r *Registry) IncrementTilesUploaded(build string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[build]
	if !ok {
		return
	}
	rec.TilesUploaded++
	if rec.TilesTotal > 0 {
		if rec.TilesUploaded > rec.TilesTotal {
			rec.TilesUploaded = rec.TilesTotal
		}
		rec.Progress = float64(rec.TilesUploaded) / float64(rec.TilesTotal)
		rec.PercentComplete = rec.Progress
	}
	r.records[build] = rec
}
