/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix = "server."
	serverPort   = serverPrefix + "port"

	// cors
	corsPrefix  = "cors."
	corsOrigins = corsPrefix + "origins"

	// storage
	storagePrefix        = "storage."
	storageBackend       = storagePrefix + "backend"
	storagePublicUrlBase = storagePrefix + "public_url_base"
	storageBucket        = storagePrefix + "bucket"
	storageEndpoint      = storagePrefix + "endpoint"
	storageRegion        = storagePrefix + "region"
	storageAccessKey     = "access_key"
	storageSecretKey     = "secret_key"
	storageSecretPath    = storagePrefix + "secret_path"

	// cache
	cachePrefix = "cache."
	cacheRoot   = cachePrefix + "root"

	// clients
	clientsPrefix     = "clients."
	clientsConfigDir  = clientsPrefix + "config_dir"
	clientsAssetsDir  = clientsPrefix + "assets_dir"
	clientsRemoteBase = clientsPrefix + "remote_base"

	// render
	renderPrefix         = "render."
	renderTileWorkers    = renderPrefix + "tile_workers"
	renderFaceWorkers    = renderPrefix + "face_workers"
	renderJpegQuality    = renderPrefix + "jpeg_quality"
	renderMinIntervalMs  = renderPrefix + "min_interval_ms"
	renderMaxRenderLocks = renderPrefix + "max_render_locks"
	renderMaxActive      = renderPrefix + "max_active"
)
