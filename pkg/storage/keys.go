/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"fmt"
	"strings"
)

const (
	ContentTypeJpeg   = "image/jpeg"
	ContentTypeJson   = "application/json"
	ContentTypeNdjson = "application/x-ndjson"
)

const (
	// Tiles are immutable once published; clients may cache forever.
	cacheControlTiles = "public, max-age=31536000, immutable"
	// Metadata flips from processing to ready, so only a short TTL.
	cacheControlMetadata = "public, max-age=300"
	cacheControlEvents   = "no-cache"
)

func ConfigKey(client string) string {
	return fmt.Sprintf("clients/%s/%s_cfg.json", client, client)
}

func TileRoot(client, scene, build string) string {
	return fmt.Sprintf("clients/%s/cubemap/%s/tiles/%s", client, scene, build)
}

func MetadataKey(tileRoot string) string {
	return tileRoot + "/metadata.json"
}

func EventsKey(tileRoot string) string {
	return tileRoot + "/tile_events.ndjson"
}

func TileKey(tileRoot, filename string) string {
	return tileRoot + "/" + filename
}

func Render2DKey(client, scene, build string) string {
	return fmt.Sprintf("clients/%s/renders/%s/2d_%s.jpg", client, scene, build)
}

// CacheControlForKey picks the Cache-Control header by key class.
func CacheControlForKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return cacheControlTiles
	case strings.HasSuffix(key, ".ndjson"):
		return cacheControlEvents
	case strings.HasSuffix(key, ".json"):
		return cacheControlMetadata
	}
	return ""
}

// ContentTypeForKey derives the MIME type from the key suffix.
func ContentTypeForKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return ContentTypeJpeg
	case strings.HasSuffix(key, ".ndjson"):
		return ContentTypeNdjson
	case strings.HasSuffix(key, ".json"):
		return ContentTypeJson
	}
	return "application/octet-stream"
}
