/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/build"
	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
	"github.com/arielsmarin/straty-backend-stable/pkg/imageutil"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
	apiutils "github.com/arielsmarin/straty-backend-stable/pkg/utils"
)

func (h *Handler) Render2D(c *gin.Context) {
	handle(c, h.render2d)
}

// render2d is the flat preview path: alpha-composite the selected
// overlays, publish a single JPEG and return its URL. Unlike the
// cubemap path it completes synchronously and has no background stage.
func (h *Handler) render2d(c *gin.Context) (interface{}, error) {
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
	key := storage.Render2DKey(req.Client, sceneCtx.SceneId, buildStr)

	exists, err := h.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return &types.Render2DResponse{
			Status: types.StatusCached,
			Build:  buildStr,
			Url:    h.store.PublicURL(key),
			Client: req.Client,
			Scene:  sceneCtx.SceneId,
		}, nil
	}

	flat, err := h.compositor.StackOverlays(sceneCtx.SceneId, sceneCtx.Layers,
		req.Selection, sceneCtx.AssetsRoot, "2d_")
	if err != nil {
		return nil, err
	}
	data, err := imageutil.EncodeJPEG(flat, h.jpegQuality)
	if err != nil {
		return nil, err
	}
	if err = h.store.PutBytes(ctx, key, data, storage.ContentTypeJpeg); err != nil {
		return nil, err
	}

	klog.Infof("2d render published: client=%s scene=%s build=%s", req.Client, sceneCtx.SceneId, buildStr)
	return &types.Render2DResponse{
		Status: types.StatusGenerated,
		Build:  buildStr,
		Url:    h.store.PublicURL(key),
		Client: req.Client,
		Scene:  sceneCtx.SceneId,
	}, nil
}
