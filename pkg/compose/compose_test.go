/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package compose

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"github.com/arielsmarin/straty-backend-stable/pkg/assets"
	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/imageutil"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/httpclient"
)

func writePng(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	assert.NilError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	assert.NilError(t, err)
	defer file.Close()
	assert.NilError(t, png.Encode(file, imageutil.Solid(w, h, c)))
}

func genScene(t *testing.T) (string, []clientconfig.Layer) {
	root := t.TempDir()
	writePng(t, filepath.Join(root, "base_kitchen.png"), 12, 2, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	writePng(t, filepath.Join(root, "materials", "oak.png"), 12, 2, color.NRGBA{R: 200, G: 150, B: 100, A: 255})
	writePng(t, filepath.Join(root, "masks", "floor_mask.png"), 12, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	layers := []clientconfig.Layer{{
		Id:         "floor",
		BuildOrder: 0,
		Mask:       "floor_mask.png",
		Items:      []clientconfig.Item{{Id: "oak", Index: 1, File: "oak.jpg"}},
	}}
	return root, layers
}

func newCompositor() *Compositor {
	return NewCompositor(assets.NewResolver(httpclient.NewHttpClient(), "", ""))
}

func TestStackLayers(t *testing.T) {
	root, layers := genScene(t)

	img, err := newCompositor().StackLayers("kitchen", layers,
		clientconfig.Selection{"floor": "oak"}, root, "")
	assert.NilError(t, err)
	assert.Equal(t, img.Bounds().Dx(), 12)
	assert.Equal(t, img.Bounds().Dy(), 2)

	// full-white mask: the material replaces the base
	r, g, b, _ := img.At(3, 1).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(200))
	assert.Equal(t, uint8(g>>8), uint8(150))
	assert.Equal(t, uint8(b>>8), uint8(100))
}

func TestStackLayersNoSelection(t *testing.T) {
	root, layers := genScene(t)

	img, err := newCompositor().StackLayers("kitchen", layers, nil, root, "")
	assert.NilError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(10))
}

func TestStackLayersMissingMaterialSkipped(t *testing.T) {
	root, layers := genScene(t)
	layers[0].Items[0].File = "missing.jpg"

	img, err := newCompositor().StackLayers("kitchen", layers,
		clientconfig.Selection{"floor": "oak"}, root, "")
	assert.NilError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(10))
}

func TestStackLayersMissingBase(t *testing.T) {
	_, err := newCompositor().StackLayers("kitchen", nil, nil, t.TempDir(), "")
	assert.Assert(t, err != nil)
	assert.Equal(t, errors.IsAssetMissing(err), true)
}

func TestStackOverlays(t *testing.T) {
	root := t.TempDir()
	writePng(t, filepath.Join(root, "base_kitchen.png"), 8, 8, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	writePng(t, filepath.Join(root, "oak.png"), 8, 8, color.NRGBA{R: 250, G: 0, B: 0, A: 255})

	layers := []clientconfig.Layer{{
		Id:         "floor",
		BuildOrder: 0,
		Items:      []clientconfig.Item{{Id: "oak", Index: 1, File: "oak.png"}},
	}}
	img, err := newCompositor().StackOverlays("kitchen", layers,
		clientconfig.Selection{"floor": "oak"}, root, "")
	assert.NilError(t, err)
	r, _, _, _ := img.At(4, 4).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(250))
}

func TestStackLayersBuildOrder(t *testing.T) {
	root := t.TempDir()
	writePng(t, filepath.Join(root, "base_kitchen.png"), 4, 4, color.NRGBA{A: 255})
	writePng(t, filepath.Join(root, "materials", "first.png"), 4, 4, color.NRGBA{R: 100, A: 255})
	writePng(t, filepath.Join(root, "materials", "second.png"), 4, 4, color.NRGBA{R: 222, A: 255})
	writePng(t, filepath.Join(root, "masks", "m.png"), 4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	// declared out of order; build_order must win
	layers := []clientconfig.Layer{
		{Id: "top", BuildOrder: 1, Mask: "m.png",
			Items: []clientconfig.Item{{Id: "x", Index: 1, File: "second.png"}}},
		{Id: "bottom", BuildOrder: 0, Mask: "m.png",
			Items: []clientconfig.Item{{Id: "y", Index: 1, File: "first.png"}}},
	}
	img, err := newCompositor().StackLayers("kitchen", layers,
		clientconfig.Selection{"top": "x", "bottom": "y"}, root, "")
	assert.NilError(t, err)
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(222))
}
