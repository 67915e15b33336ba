/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/build"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
)

var legacyTileRegexp = regexp.MustCompile(
	`^clients/([a-z0-9-]+)/cubemap/([a-z0-9-]+)/tiles/([0-9a-z]+)/([0-9a-z]+)_[rludfb]_[01]_[0-3]_[0-3]\.jpg$`)

// RedirectLegacyTile serves the old tile-fetch path from when tiles
// were read off the local cache directory. Valid tile keys get a
// permanent redirect to the object store; anything else is a 404.
func (h *Handler) RedirectLegacyTile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param(types.Key), "/")
	if !h.validLegacyTileKey(key) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Redirect(http.StatusMovedPermanently, h.store.PublicURL(key))
}

func (h *Handler) validLegacyTileKey(key string) bool {
	m := legacyTileRegexp.FindStringSubmatch(key)
	if m == nil {
		return false
	}
	client, scene, dirBuild, fileBuild := m[1], m[2], m[3], m[4]
	if build.ValidateSafeId(client, "client") != nil ||
		build.ValidateSafeId(scene, "scene") != nil ||
		build.ValidateBuildString(dirBuild) != nil {
		return false
	}
	// the filename must belong to the build directory it sits in
	return fileBuild == dirBuild
}
