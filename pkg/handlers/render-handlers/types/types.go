/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

import (
	"encoding/json"

	"github.com/arielsmarin/straty-backend-stable/pkg/buildstatus"
)

// route parameter names
const (
	Build = "build"
	Key   = "key"
)

const (
	ServiceName    = "panoconfig360-backend"
	ServiceVersion = "0.0.1"
)

// render response statuses
const (
	StatusCached     = "cached"
	StatusGenerated  = "generated"
	StatusProcessing = "processing"
	StatusQueued     = "queued"
)

const ReasonRenderCapacity = "render_capacity"

type RenderRequest struct {
	Client    string            `json:"client"`
	Scene     string            `json:"scene,omitempty"`
	Selection map[string]string `json:"selection,omitempty"`
}

// TileManifest is expanded by clients into individual tile URLs:
// {baseUrl}/{tileRoot}/{pattern with f,z,x,y substituted}.
type TileManifest struct {
	BaseUrl  string `json:"baseUrl"`
	TileRoot string `json:"tileRoot"`
	Pattern  string `json:"pattern"`
	Build    string `json:"build"`
}

type RenderResponse struct {
	Status string        `json:"status"`
	Build  string        `json:"build"`
	Tiles  *TileManifest `json:"tiles,omitempty"`
	Client string        `json:"client,omitempty"`
	Scene  string        `json:"scene,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

type Render2DResponse struct {
	Status string `json:"status"`
	Build  string `json:"build"`
	Url    string `json:"url"`
	Client string `json:"client,omitempty"`
	Scene  string `json:"scene,omitempty"`
}

type StatusResponse struct {
	buildstatus.Record
	Build string        `json:"build"`
	Tiles *TileManifest `json:"tiles,omitempty"`
}

type EventsData struct {
	Events    []json.RawMessage `json:"events"`
	Cursor    int               `json:"cursor"`
	HasMore   bool              `json:"hasMore"`
	Completed bool              `json:"completed"`
}

type EventsResponse struct {
	Status string     `json:"status"`
	Data   EventsData `json:"data"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Metadata is the blob at {tileRoot}/metadata.json. Written twice: once
// after LOD0 with status "processing", once after LOD1 with "ready".
type Metadata struct {
	Status     string `json:"status"`
	LastStage  string `json:"last_stage,omitempty"`
	Build      string `json:"build"`
	TilesCount int    `json:"tiles_count"`
}

const (
	MetadataProcessing = "processing"
	MetadataReady      = "ready"
	StageLod0Ready     = "lod0_ready"
)

// TileEvent is one NDJSON line in the tile event log.
type TileEvent struct {
	Tile      string `json:"tile"`
	State     string `json:"state"`
	Lod       int    `json:"lod"`
	Timestamp string `json:"ts"`
}
