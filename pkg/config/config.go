/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func SetValue(key, value string) {
	viper.Set(key, value)
}

func LoadConfig(path string) error {
	bindEnvs()
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

// bindEnvs maps deployment environment variables onto config keys so that
// containerized installs can run without a config file edit. The R2_*
// names are the ones earlier deployments already export.
func bindEnvs() {
	_ = viper.BindEnv(serverPort, "SERVER_PORT")
	_ = viper.BindEnv(storageBackend, "STORAGE_BACKEND")
	_ = viper.BindEnv(storagePublicUrlBase, "PUBLIC_URL_BASE")
	_ = viper.BindEnv(storageBucket, "STORAGE_BUCKET", "R2_BUCKET_NAME")
	_ = viper.BindEnv(storageEndpoint, "STORAGE_ENDPOINT", "R2_ENDPOINT_URL")
	_ = viper.BindEnv(storagePrefix+storageAccessKey, "STORAGE_ACCESS_KEY", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv(storagePrefix+storageSecretKey, "STORAGE_SECRET_KEY", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv(corsOrigins, "CORS_ORIGINS")
	_ = viper.BindEnv(cacheRoot, "CACHE_ROOT")
	_ = viper.BindEnv(renderTileWorkers, "TILE_WORKERS")
	_ = viper.BindEnv(renderFaceWorkers, "FACE_WORKERS")
	_ = viper.BindEnv(renderJpegQuality, "JPEG_QUALITY")
	_ = viper.BindEnv(renderMinIntervalMs, "MIN_INTERVAL_MS")
	_ = viper.BindEnv(renderMaxRenderLocks, "MAX_RENDER_LOCKS")
	_ = viper.BindEnv(renderMaxActive, "MAX_ACTIVE_RENDERS")
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

func getStrings(key string) []string {
	val := viper.GetString(key)
	return removeBlank(strings.Split(val, ","))
}

func removeBlank(slice []string) []string {
	var result []string
	for _, val := range slice {
		if trim := strings.TrimSpace(val); trim != "" {
			result = append(result, trim)
		}
	}
	return result
}

func GetServerPort() int {
	return getInt(serverPort, 8000)
}

func GetCorsOrigins() []string {
	return getStrings(corsOrigins)
}

func GetStorageBackend() string {
	return getString(storageBackend, "r2")
}

func GetPublicUrlBase() string {
	return strings.TrimRight(getString(storagePublicUrlBase, ""), "/")
}

func GetStorageBucket() string {
	return getString(storageBucket, "")
}

func GetStorageEndpoint() string {
	return getString(storageEndpoint, "")
}

func GetStorageRegion() string {
	return getString(storageRegion, "auto")
}

func GetStorageAccessKey() string {
	if ak := getString(storagePrefix+storageAccessKey, ""); ak != "" {
		return ak
	}
	return getFromFile(storageSecretPath, storageAccessKey)
}

func GetStorageSecretKey() string {
	if sk := getString(storagePrefix+storageSecretKey, ""); sk != "" {
		return sk
	}
	return getFromFile(storageSecretPath, storageSecretKey)
}

func GetCacheRoot() string {
	return getString(cacheRoot, "panoconfig360_cache")
}

func GetClientConfigDir() string {
	return getString(clientsConfigDir, "clients")
}

func GetClientAssetsDir() string {
	return getString(clientsAssetsDir, "clients")
}

// GetClientRemoteBase is the base URL probed for assets that are not on
// local disk. Empty disables the remote fallback.
func GetClientRemoteBase() string {
	return strings.TrimRight(getString(clientsRemoteBase, ""), "/")
}

func GetTileWorkers() int {
	return getInt(renderTileWorkers, 4)
}

func GetFaceWorkers() int {
	return getInt(renderFaceWorkers, 3)
}

func GetJpegQuality() int {
	return getInt(renderJpegQuality, 85)
}

func GetMinIntervalMs() int {
	return getInt(renderMinIntervalMs, 1000)
}

func GetMaxRenderLocks() int {
	return getInt(renderMaxRenderLocks, 256)
}

func GetMaxActiveRenders() int {
	return getInt(renderMaxActive, 2)
}

func getFromFile(configPath, item string) string {
	path := getString(configPath, "")
	data, err := os.ReadFile(filepath.Join(path, item))
	if err != nil {
		return ""
	}
	key := string(data)
	return strings.TrimRight(key, "\r\n")
}
