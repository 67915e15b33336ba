/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/build"
	"github.com/arielsmarin/straty-backend-stable/pkg/buildstatus"
	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
	apiutils "github.com/arielsmarin/straty-backend-stable/pkg/utils"
)

func (h *Handler) Render(c *gin.Context) {
	handle(c, h.render)
}

func (h *Handler) render(c *gin.Context) (interface{}, error) {
	if err := h.allowRequest(); err != nil {
		return nil, err
	}

	req := &types.RenderRequest{}
	if _, err := apiutils.ParseRequestBody(c.Request, req); err != nil {
		return nil, err
	}
	if err := validateRenderRequest(req); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	cfg, err := clientconfig.Load(ctx, h.store, req.Client)
	if err != nil {
		return nil, err
	}
	sceneCtx, err := clientconfig.ResolveSceneContext(cfg, req.Scene, h.cacheRoot)
	if err != nil {
		return nil, err
	}

	buildStr := build.FromSelection(sceneCtx.SceneIndex, sceneCtx.Layers, req.Selection)
	tileRoot := storage.TileRoot(req.Client, sceneCtx.SceneId, buildStr)
	manifest := h.manifest(tileRoot, buildStr)
	metadataKey := storage.MetadataKey(tileRoot)

	exists, err := h.store.Exists(ctx, metadataKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return &types.RenderResponse{Status: types.StatusCached, Build: buildStr, Tiles: manifest}, nil
	}

	renderKey := fmt.Sprintf("%s:%s:%s", req.Client, sceneCtx.SceneId, buildStr)
	lock := h.renderLock(renderKey)
	lock.Lock()
	defer lock.Unlock()

	// a concurrent duplicate may have finished while we waited
	exists, err = h.store.Exists(ctx, metadataKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return &types.RenderResponse{Status: types.StatusCached, Build: buildStr, Tiles: manifest}, nil
	}

	if !h.renderSem.TryAcquire(1) {
		c.Status(http.StatusAccepted)
		return &types.RenderResponse{
			Status: types.StatusQueued,
			Build:  buildStr,
			Tiles:  manifest,
			Reason: types.ReasonRenderCapacity,
		}, nil
	}

	h.markActive(renderKey)
	h.registry.SetStatus(buildStr, buildstatus.StatusProcessing, func(rec *buildstatus.Record) {
		rec.TileRoot = tileRoot
	})

	flat, err := h.runLod0(ctx, sceneCtx, req.Selection, buildStr, tileRoot)
	if err != nil {
		h.registry.SetStatus(buildStr, buildstatus.StatusError, func(rec *buildstatus.Record) {
			rec.Error = err.Error()
		})
		h.renderSem.Release(1)
		h.unmarkActive(renderKey)
		return nil, err
	}

	// the request context dies with the response; the background pass
	// gets its own
	go func() {
		defer h.renderSem.Release(1)
		defer h.unmarkActive(renderKey)
		h.runLod1(context.Background(), flat, buildStr, tileRoot)
	}()

	klog.Infof("render admitted: client=%s scene=%s build=%s", req.Client, sceneCtx.SceneId, buildStr)
	c.Status(http.StatusAccepted)
	return &types.RenderResponse{Status: types.StatusProcessing, Build: buildStr, Tiles: manifest}, nil
}

func validateRenderRequest(req *types.RenderRequest) error {
	if req.Client == "" {
		return errors.NewBadRequest("client is required")
	}
	if err := build.ValidateSafeId(req.Client, "client"); err != nil {
		return err
	}
	if req.Scene != "" {
		if err := build.ValidateSafeId(req.Scene, "scene"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) manifest(tileRoot, buildStr string) *types.TileManifest {
	return &types.TileManifest{
		BaseUrl:  h.store.PublicURL(""),
		TileRoot: tileRoot,
		Pattern:  fmt.Sprintf("%s_{f}_{z}_{x}_{y}.jpg", buildStr),
		Build:    buildStr,
	}
}
