/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"context"
	"testing"

	"gotest.tools/assert"

	"github.com/arielsmarin/straty-backend-stable/pkg/config"
)

func TestFactoryLocal(t *testing.T) {
	config.SetValue("cache.root", t.TempDir())
	config.SetValue("storage.public_url_base", "http://localhost:8000/static")

	store, err := New(context.Background(), BackendLocal)
	assert.NilError(t, err)
	_, ok := store.(*LocalClient)
	assert.Equal(t, ok, true)
}

func TestFactoryUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "gcs")
	assert.Assert(t, err != nil)
}
