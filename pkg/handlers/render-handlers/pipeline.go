/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/buildstatus"
	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/cubemap"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
	"github.com/arielsmarin/straty-backend-stable/pkg/uploadqueue"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/jsonutils"
)

// runLod0 is the synchronous, user-visible half of the pipeline:
// composite the scene, cut the coarse tiles in memory, publish them in
// parallel and write the first metadata blob. The flattened image is
// returned for the background pass to reuse.
func (h *Handler) runLod0(ctx context.Context, sceneCtx *clientconfig.SceneContext,
	selection clientconfig.Selection, buildStr, tileRoot string) (*image.NRGBA, error) {
	flat, err := h.compositor.StackLayers(sceneCtx.SceneId, sceneCtx.Layers,
		selection, sceneCtx.AssetsRoot, "")
	if err != nil {
		return nil, err
	}

	tiles, err := h.splitter.SplitToMemory(flat, cubemap.TileSize, buildStr, 0, 0)
	if err != nil {
		return nil, err
	}

	tilesTotal := buildstatus.DefaultTilesTotal
	if len(tiles) > tilesTotal {
		tilesTotal = len(tiles)
	}
	h.registry.SetStatus(buildStr, buildstatus.StatusUploading, func(rec *buildstatus.Record) {
		rec.TilesTotal = tilesTotal
	})

	items := make([]storage.TileObject, 0, len(tiles))
	for _, tile := range tiles {
		items = append(items, storage.TileObject{Key: storage.TileKey(tileRoot, tile.Filename), Data: tile.Data})
	}

	// a single consumer serializes registry updates and the event log
	uploadedCh := make(chan string, len(items))
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for key := range uploadedCh {
			h.registry.IncrementTilesUploaded(buildStr)
			h.appendTileEvent(ctx, tileRoot, filepath.Base(key), 0)
		}
	}()

	err = h.store.PutTilesParallel(ctx, items, h.tileWorkers, func(key string) {
		uploadedCh <- key
	})
	close(uploadedCh)
	<-consumerDone
	if err != nil {
		return nil, err
	}

	h.registry.SetStatus(buildStr, buildstatus.StatusProcessing, func(rec *buildstatus.Record) {
		rec.LodReady = 0
		rec.FacesReady = true
		rec.TilesReady = true
	})

	if err = h.writeMetadata(ctx, tileRoot, &types.Metadata{
		Status:     types.MetadataProcessing,
		LastStage:  types.StageLod0Ready,
		Build:      buildStr,
		TilesCount: len(tiles),
	}); err != nil {
		return nil, err
	}
	klog.Infof("lod0 published: build=%s tiles=%d", buildStr, len(tiles))
	return flat, nil
}

// runLod1 is the background half: cut the fine tiles to a temp
// directory and drain them through the upload queue. Failures never
// reach the original HTTP response; they surface via the status
// endpoint.
func (h *Handler) runLod1(ctx context.Context, flat *image.NRGBA, buildStr, tileRoot string) {
	total := cubemap.TileCount(cubemap.TileSize, 0, 1)
	h.registry.SetStatus(buildStr, buildstatus.StatusUploading, func(rec *buildstatus.Record) {
		rec.TilesTotal = total
	})

	tmpDir, err := os.MkdirTemp("", "cubemap-"+buildStr+"-")
	if err != nil {
		h.failBuild(buildStr, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	queue := uploadqueue.New(tileRoot,
		func(localPath, key string) error {
			return h.store.PutFile(ctx, localPath, key, storage.ContentTypeJpeg)
		},
		h.tileWorkers,
		func(filename string, state uploadqueue.State, lod int) {
			if state != uploadqueue.StateVisible {
				return
			}
			h.registry.IncrementTilesUploaded(buildStr)
			h.appendTileEvent(ctx, tileRoot, filename, lod)
		})
	queue.Start()

	splitErr := h.splitter.SplitToDirectory(flat, cubemap.TileSize, buildStr, 1, 1, tmpDir,
		func(path, filename string, lod int) error {
			return queue.Enqueue(path, filename, lod)
		})
	closeErr := queue.CloseAndWait()
	if splitErr != nil {
		h.failBuild(buildStr, splitErr)
		return
	}
	if closeErr != nil {
		h.failBuild(buildStr, closeErr)
		return
	}

	if err = h.writeMetadata(ctx, tileRoot, &types.Metadata{
		Status:     types.MetadataReady,
		Build:      buildStr,
		TilesCount: total,
	}); err != nil {
		h.failBuild(buildStr, err)
		return
	}

	h.registry.SetStatus(buildStr, buildstatus.StatusCompleted, func(rec *buildstatus.Record) {
		rec.LodReady = 1
		rec.Progress = 1.0
		rec.PercentComplete = 1.0
		rec.TilesUploaded = rec.TilesTotal
	})
	klog.Infof("render completed: build=%s tiles=%d", buildStr, total)
}

func (h *Handler) failBuild(buildStr string, err error) {
	klog.ErrorS(err, "background render failed", "build", buildStr)
	h.registry.SetStatus(buildStr, buildstatus.StatusError, func(rec *buildstatus.Record) {
		rec.Error = err.Error()
	})
}

func (h *Handler) writeMetadata(ctx context.Context, tileRoot string, meta *types.Metadata) error {
	return h.store.PutBytes(ctx, storage.MetadataKey(tileRoot),
		jsonutils.MarshalSilently(meta), storage.ContentTypeJson)
}

func (h *Handler) appendTileEvent(ctx context.Context, tileRoot, filename string, lod int) {
	event := &types.TileEvent{
		Tile:      filename,
		State:     string(uploadqueue.StateVisible),
		Lod:       lod,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := h.store.AppendJSONL(ctx, storage.EventsKey(tileRoot), event); err != nil {
		klog.ErrorS(err, "failed to append tile event", "tile", filename)
	}
}
