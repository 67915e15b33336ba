/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
)

func (h *Handler) Health(c *gin.Context) {
	handle(c, func(*gin.Context) (interface{}, error) {
		return &types.HealthResponse{
			Status:  "ok",
			Service: types.ServiceName,
			Version: types.ServiceVersion,
		}, nil
	})
}
