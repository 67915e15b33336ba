/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
)

func InitRenderRouters(e *gin.Engine, h *Handler) {
	group := e.Group("/api")
	{
		group.POST("render", h.Render)
		group.POST("render2d", h.Render2D)
		group.GET("render/events", h.GetRenderEvents)
		group.GET(fmt.Sprintf("status/:%s", types.Build), h.GetStatus)
		group.GET("health", h.Health)
	}

	// tile fetches from before tiles moved to the object store
	e.GET(fmt.Sprintf("/panoconfig360_cache/*%s", types.Key), h.RedirectLegacyTile)
}
