/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package assets resolves a logical asset base path (no extension) to a
// local image file, pulling it from the remote asset store on a miss.
package assets

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/httpclient"
)

// extensions in preference order.
var extensions = []string{".png", ".jpg", ".jpeg"}

type Resolver struct {
	client httpclient.Interface
	// remoteBase is the URL prefix probed for assets missing locally.
	// Empty disables the fallback.
	remoteBase string
	// cacheRoot is stripped from local paths to form remote keys.
	cacheRoot string
}

func NewResolver(client httpclient.Interface, remoteBase, cacheRoot string) *Resolver {
	if client == nil {
		client = httpclient.NewHttpClient()
	}
	return &Resolver{
		client:     client,
		remoteBase: strings.TrimRight(remoteBase, "/"),
		cacheRoot:  cacheRoot,
	}
}

// Resolve probes basePath with each known extension locally, then
// remotely with a streamed cache-through download. The returned path is
// always a local file.
func (r *Resolver) Resolve(basePath string) (string, error) {
	for _, ext := range extensions {
		candidate := basePath + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	var lastURL string
	if r.remoteBase != "" {
		for _, ext := range extensions {
			url := r.remoteURL(basePath, ext)
			lastURL = url
			localPath := basePath + ext
			if err := r.download(url, localPath); err != nil {
				continue
			}
			return localPath, nil
		}
	}
	return "", errors.NewAssetMissing(
		fmt.Sprintf("asset not found: local base %s, remote %s", basePath, lastURL))
}

func (r *Resolver) remoteURL(basePath, ext string) string {
	key := filepath.ToSlash(basePath)
	if r.cacheRoot != "" {
		key = strings.TrimPrefix(key, filepath.ToSlash(r.cacheRoot))
		key = strings.TrimPrefix(key, "/")
	}
	return r.remoteBase + "/" + key + ext
}

func (r *Resolver) download(url, localPath string) error {
	body, status, err := r.client.GetStream(url)
	if err != nil {
		if status != http.StatusNotFound {
			klog.ErrorS(err, "asset fetch failed", "url", url)
		}
		return err
	}
	defer body.Close()

	if err = os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	tmp := localPath + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err = io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err = os.Rename(tmp, localPath); err != nil {
		os.Remove(tmp)
		return err
	}
	klog.Infof("cached remote asset %s at %s", url, localPath)
	return nil
}
