/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package clientconfig

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
)

// fixedLayers mirrors the build-string slot count; a layer outside this
// range can never contribute to a cache key.
const fixedLayers = 5

// DefaultSceneId names the scene synthesized for legacy configs that
// carry a top-level layer list instead of a scenes map.
const DefaultSceneId = "default"

// Load fetches and validates the tenant config from the object store.
func Load(ctx context.Context, store storage.Interface, client string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := store.GetJSON(ctx, storage.ConfigKey(client), &cfg); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFound(fmt.Sprintf("config for client %s not found", client))
		}
		if isDecodeError(err) {
			return nil, errors.NewConfigInvalid(fmt.Sprintf("config for client %s: %v", client, err))
		}
		return nil, err
	}

	if len(cfg.Scenes) == 0 {
		if len(cfg.Layers) == 0 {
			return nil, errors.NewConfigInvalid(
				fmt.Sprintf("config for client %s has neither scenes nor layers", client))
		}
		cfg.Scenes = map[string]Scene{
			DefaultSceneId: {SceneIndex: 0, Layers: cfg.Layers},
		}
	}
	for sceneId, scene := range cfg.Scenes {
		if err := validateScene(sceneId, scene); err != nil {
			return nil, err
		}
	}
	cfg.ClientId = client
	return &cfg, nil
}

func validateScene(sceneId string, scene Scene) error {
	seenOrder := make(map[int]string)
	for _, layer := range scene.Layers {
		if layer.Id == "" {
			return errors.NewConfigInvalid(fmt.Sprintf("scene %s has a layer without id", sceneId))
		}
		if layer.BuildOrder < 0 || layer.BuildOrder >= fixedLayers {
			return errors.NewConfigInvalid(fmt.Sprintf(
				"scene %s layer %s: build_order %d out of range", sceneId, layer.Id, layer.BuildOrder))
		}
		if prev, dup := seenOrder[layer.BuildOrder]; dup {
			return errors.NewConfigInvalid(fmt.Sprintf(
				"scene %s: layers %s and %s share build_order %d", sceneId, prev, layer.Id, layer.BuildOrder))
		}
		seenOrder[layer.BuildOrder] = layer.Id

		seenIndex := make(map[int]string)
		for _, item := range layer.Items {
			if item.Index < 0 || item.Index >= 36*36 {
				return errors.NewConfigInvalid(fmt.Sprintf(
					"scene %s layer %s item %s: index %d does not fit the build encoding",
					sceneId, layer.Id, item.Id, item.Index))
			}
			if prev, dup := seenIndex[item.Index]; dup {
				return errors.NewConfigInvalid(fmt.Sprintf(
					"scene %s layer %s: items %s and %s share index %d",
					sceneId, layer.Id, prev, item.Id, item.Index))
			}
			seenIndex[item.Index] = item.Id
		}
	}
	return nil
}

// ResolveSceneContext picks the request's scene and derives the local
// assets root for the compositor. An empty sceneId selects the scene
// with the lowest scene_index, ties broken by id.
func ResolveSceneContext(cfg *ClientConfig, sceneId, cacheRoot string) (*SceneContext, error) {
	if sceneId == "" {
		sceneId = defaultSceneId(cfg)
	}
	scene, ok := cfg.Scenes[sceneId]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("scene %s not found for client %s", sceneId, cfg.ClientId))
	}
	return &SceneContext{
		SceneId:    sceneId,
		SceneIndex: scene.SceneIndex,
		Layers:     scene.Layers,
		AssetsRoot: filepath.Join(cacheRoot, "clients", cfg.ClientId, "scenes", sceneId),
	}, nil
}

func defaultSceneId(cfg *ClientConfig) string {
	ids := make([]string, 0, len(cfg.Scenes))
	for id := range cfg.Scenes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := cfg.Scenes[ids[i]].SceneIndex, cfg.Scenes[ids[j]].SceneIndex
		if si != sj {
			return si < sj
		}
		return ids[i] < ids[j]
	})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return goerrors.As(err, &syntaxErr) || goerrors.As(err, &typeErr)
}
