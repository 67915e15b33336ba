/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package assets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/httpclient"
)

func TestResolveLocalPreference(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base_kitchen")
	assert.NilError(t, os.WriteFile(base+".jpg", []byte("jpg"), 0o644))
	assert.NilError(t, os.WriteFile(base+".png", []byte("png"), 0o644))

	r := NewResolver(httpclient.NewHttpClient(), "", "")
	path, err := r.Resolve(base)
	assert.NilError(t, err)
	// png wins over jpg
	assert.Equal(t, path, base+".png")
}

func TestResolveRemoteFallback(t *testing.T) {
	body := []byte("png-bytes-from-remote")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/clients/acme/scenes/kitchen/base_kitchen.png" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	root := t.TempDir()
	base := filepath.Join(root, "clients", "acme", "scenes", "kitchen", "base_kitchen")
	r := NewResolver(httpclient.NewHttpClient(), server.URL, root)

	path, err := r.Resolve(base)
	assert.NilError(t, err)
	assert.Equal(t, path, base+".png")

	got, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(got), string(body))

	// second resolve is a pure local hit
	path2, err := r.Resolve(base)
	assert.NilError(t, err)
	assert.Equal(t, path2, path)
}

func TestResolveRemoteSecondExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if filepath.Ext(req.URL.Path) == ".jpg" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("jpg-bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	root := t.TempDir()
	base := filepath.Join(root, "materials", "oak")
	r := NewResolver(httpclient.NewHttpClient(), server.URL, root)

	path, err := r.Resolve(base)
	assert.NilError(t, err)
	assert.Equal(t, path, base+".jpg")
}

func TestResolveMissingEverywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	root := t.TempDir()
	r := NewResolver(httpclient.NewHttpClient(), server.URL, root)
	_, err := r.Resolve(filepath.Join(root, "materials", "missing"))
	assert.Assert(t, err != nil)
	assert.Equal(t, errors.IsAssetMissing(err), true)
}

func TestResolveMissingNoRemote(t *testing.T) {
	r := NewResolver(httpclient.NewHttpClient(), "", "")
	_, err := r.Resolve(filepath.Join(t.TempDir(), "base_missing"))
	assert.Equal(t, errors.IsAssetMissing(err), true)
}
