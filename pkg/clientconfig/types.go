/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package clientconfig

import "encoding/json"

// ClientConfig is the per-tenant project definition stored at
// clients/{client}/{client}_cfg.json.
type ClientConfig struct {
	ClientId string           `json:"client_id,omitempty"`
	Scenes   map[string]Scene `json:"scenes,omitempty"`
	// Layers is the legacy single-scene form; the loader folds it into a
	// synthetic "default" scene when Scenes is absent.
	Layers []Layer         `json:"layers,omitempty"`
	Naming json.RawMessage `json:"naming,omitempty"`
}

type Scene struct {
	SceneIndex int     `json:"scene_index"`
	Layers     []Layer `json:"layers"`
}

type Layer struct {
	Id         string `json:"id"`
	BuildOrder int    `json:"build_order"`
	Items      []Item `json:"items,omitempty"`
	Mask       string `json:"mask,omitempty"`
}

type Item struct {
	Id    string `json:"id"`
	Index int    `json:"index"`
	File  string `json:"file,omitempty"`
}

// Selection maps a layer id to the chosen item id for that layer.
type Selection map[string]string

// SceneContext is the resolved per-request bundle handed to the compositor.
type SceneContext struct {
	SceneId    string
	SceneIndex int
	Layers     []Layer
	AssetsRoot string
}
