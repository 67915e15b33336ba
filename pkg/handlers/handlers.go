/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/config"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	render_handlers "github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers"
	apiutils "github.com/arielsmarin/straty-backend-stable/pkg/utils"
)

// InitHttpHandlers initializes the HTTP handlers for the API server.
// It creates a new Gin engine, sets up middleware including logging,
// recovery and CORS, and registers the render API routes.
// Returns the configured Gin engine or an error if initialization fails.
func InitHttpHandlers(ctx context.Context) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(apiutils.Logger(), gin.Recovery())
	if mw := corsMiddleware(); mw != nil {
		engine.Use(mw)
	}
	engine.NoRoute(func(c *gin.Context) {
		apiutils.AbortWithApiError(c, errors.NewNotFound(c.Request.RequestURI+" not found"))
	})

	renderHandler, err := render_handlers.NewHandler(ctx)
	if err != nil {
		return nil, err
	}
	render_handlers.InitRenderRouters(engine, renderHandler)
	return engine, nil
}

// corsMiddleware builds the CORS layer from config. No configured
// origins means no cross-origin access at all.
func corsMiddleware() gin.HandlerFunc {
	origins := config.GetCorsOrigins()
	if len(origins) == 0 {
		klog.Warning("cors.origins is empty, cross-origin requests will be rejected")
		return nil
	}
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
