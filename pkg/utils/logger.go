/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Logger is the gin access-log middleware, writing one line per request
// through klog so HTTP logs land with the rest of the process output.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		if len(c.Errors) > 0 {
			klog.Errorf("%s %s %d %v %s", c.Request.Method, path, status, latency,
				c.Errors.ByType(gin.ErrorTypeAny).String())
			return
		}
		klog.Infof("%s %s %d %v", c.Request.Method, path, status, latency)
	}
}
