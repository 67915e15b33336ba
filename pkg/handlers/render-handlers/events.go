/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers/render-handlers/types"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 500
)

var tileRootRegexp = regexp.MustCompile(`^clients/[a-z0-9-]+/cubemap/[a-z0-9-]+/tiles/[0-9a-z]+$`)

func (h *Handler) GetRenderEvents(c *gin.Context) {
	handle(c, h.getRenderEvents)
}

func (h *Handler) getRenderEvents(c *gin.Context) (interface{}, error) {
	tileRoot := c.Query("tile_root")
	if !tileRootRegexp.MatchString(tileRoot) {
		return nil, errors.NewBadRequest(fmt.Sprintf("invalid tile_root %q", tileRoot))
	}
	cursor, err := parseQueryInt(c, "cursor", 0)
	if err != nil || cursor < 0 {
		return nil, errors.NewBadRequest("cursor must be a non-negative integer")
	}
	limit, err := parseQueryInt(c, "limit", defaultEventsLimit)
	if err != nil || limit < 1 || limit > maxEventsLimit {
		return nil, errors.NewBadRequest(fmt.Sprintf("limit must be in [1,%d]", maxEventsLimit))
	}

	ctx := c.Request.Context()
	events, next, hasMore, err := h.store.ReadJSONLSlice(ctx, storage.EventsKey(tileRoot), cursor, limit)
	if err != nil {
		return nil, err
	}

	completed := false
	var meta types.Metadata
	if metaErr := h.store.GetJSON(ctx, storage.MetadataKey(tileRoot), &meta); metaErr == nil {
		completed = meta.Status == types.MetadataReady && meta.TilesCount > 0
	}

	if events == nil {
		events = []json.RawMessage{}
	}
	return &types.EventsResponse{
		Status: "ok",
		Data: types.EventsData{
			Events:    events,
			Cursor:    next,
			HasMore:   hasMore,
			Completed: completed,
		},
	}, nil
}

func parseQueryInt(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
