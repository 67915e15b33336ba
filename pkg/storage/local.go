/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
)

// LocalClient stages blobs on the local filesystem. Used for development
// and as the test backend; the public URL base still has to be an http
// URL so API responses never leak filesystem paths.
type LocalClient struct {
	root       string
	publicBase string

	appendMu sync.Mutex
}

func NewLocalClient(root, publicBase string) (*LocalClient, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is not configured")
	}
	if !strings.HasPrefix(publicBase, "http") {
		return nil, fmt.Errorf("public url base %q must be an http URL", publicBase)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	klog.Infof("init local storage at %s", root)
	return &LocalClient{root: root, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (c *LocalClient) path(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(key))
}

func (c *LocalClient) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(c.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (c *LocalClient) PutFile(_ context.Context, srcPath, key, _ string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst := c.path(key)
	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

func (c *LocalClient) PutBytes(_ context.Context, key string, data []byte, _ string) error {
	dst := c.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (c *LocalClient) GetJSON(_ context.Context, key string, v interface{}) error {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewObjectNotFound(key)
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *LocalClient) PutTilesParallel(ctx context.Context, items []TileObject,
	workers int, onUploaded func(key string)) error {
	return putTilesParallel(ctx, c, items, workers, onUploaded)
}

func (c *LocalClient) AppendJSONL(_ context.Context, key string, obj interface{}) error {
	c.appendMu.Lock()
	defer c.appendMu.Unlock()

	line, err := appendJsonLine(nil, obj)
	if err != nil {
		return err
	}
	dst := c.path(key)
	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(dst, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.Write(line)
	return err
}

func (c *LocalClient) ReadJSONLSlice(_ context.Context, key string,
	cursor, limit int) ([]json.RawMessage, int, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cursor, false, nil
		}
		return nil, cursor, false, err
	}
	events, next, hasMore := sliceJsonLines(key, data, cursor, limit)
	return events, next, hasMore, nil
}

func (c *LocalClient) PublicURL(key string) string {
	return c.publicBase + "/" + key
}
