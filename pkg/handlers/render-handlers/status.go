/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/build"
	"github.com/arielsmarin/straty-backend-stable/pkg/buildstatus"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
)

func (h *Handler) GetStatus(c *gin.Context) {
	handle(c, h.getStatus)
}

func (h *Handler) getStatus(c *gin.Context) (interface{}, error) {
	buildStr := c.Param(types.Build)
	if err := build.ValidateBuildString(buildStr); err != nil {
		// unknown or malformed builds read as idle, not as an error:
		// the process may simply have restarted
		return &types.StatusResponse{
			Record: buildstatus.Record{Status: buildstatus.StatusIdle, LodReady: buildstatus.LodReadyNone},
			Build:  buildStr,
		}, nil
	}

	client := c.Query("client")
	scene := c.Query("scene")

	var manifest *types.TileManifest
	if client != "" && scene != "" &&
		build.ValidateSafeId(client, "client") == nil &&
		build.ValidateSafeId(scene, "scene") == nil {
		tileRoot := storage.TileRoot(client, scene, buildStr)
		manifest = h.manifest(tileRoot, buildStr)
		h.reconcileWithMetadata(c, buildStr, tileRoot)
	}

	rec := h.registry.Get(buildStr)
	return &types.StatusResponse{Record: rec, Build: buildStr, Tiles: manifest}, nil
}

// reconcileWithMetadata promotes the in-memory record to completed when
// the published metadata proves the build finished, possibly in a
// previous process. Completion requires a positive tile count.
func (h *Handler) reconcileWithMetadata(c *gin.Context, buildStr, tileRoot string) {
	rec := h.registry.Get(buildStr)
	if rec.Status == buildstatus.StatusCompleted {
		return
	}
	var meta types.Metadata
	err := h.store.GetJSON(c.Request.Context(), storage.MetadataKey(tileRoot), &meta)
	if err != nil {
		if !errors.IsNotFound(err) {
			return
		}
		return
	}
	if meta.Status != types.MetadataReady || meta.TilesCount <= 0 {
		return
	}
	h.registry.SetStatus(buildStr, buildstatus.StatusCompleted, func(rec *buildstatus.Record) {
		rec.TileRoot = tileRoot
		rec.TilesTotal = meta.TilesCount
		rec.TilesUploaded = meta.TilesCount
		rec.Progress = 1.0
		rec.PercentComplete = 1.0
		rec.LodReady = 1
		rec.FacesReady = true
		rec.TilesReady = true
	})
}
