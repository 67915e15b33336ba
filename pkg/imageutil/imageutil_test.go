/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"gotest.tools/assert"
)

func TestResizeToMatch(t *testing.T) {
	img := Solid(100, 50, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	same := ResizeToMatch(img, 100, 50)
	assert.Equal(t, same, img)

	scaled := ResizeToMatch(img, 200, 100)
	assert.Equal(t, scaled.Bounds().Dx(), 200)
	assert.Equal(t, scaled.Bounds().Dy(), 100)
}

func TestMaskBlend(t *testing.T) {
	base := Solid(4, 4, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	material := Solid(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	// full-white mask replaces the base entirely
	mask := Solid(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out := MaskBlend(base, material, mask)
	r, g, b, _ := out.At(1, 1).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(200))
	assert.Equal(t, uint8(g>>8), uint8(100))
	assert.Equal(t, uint8(b>>8), uint8(50))

	// black mask keeps the base
	mask = Solid(4, 4, color.NRGBA{A: 255})
	out = MaskBlend(base, material, mask)
	r, g, b, _ = out.At(1, 1).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(0))
	assert.Equal(t, uint8(g>>8), uint8(0))
	assert.Equal(t, uint8(b>>8), uint8(0))

	// mid-gray mask lands halfway
	mask = Solid(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	out = MaskBlend(base, material, mask)
	r, _, _, _ = out.At(1, 1).RGBA()
	got := int(uint8(r >> 8))
	assert.Assert(t, got >= 99 && got <= 102, "got %d", got)
}

func TestMaskBlendResizesInputs(t *testing.T) {
	base := Solid(8, 8, color.NRGBA{A: 255})
	material := Solid(2, 2, color.NRGBA{R: 255, A: 255})
	mask := Solid(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out := MaskBlend(base, material, mask)
	assert.Equal(t, out.Bounds().Dx(), 8)
	assert.Equal(t, out.Bounds().Dy(), 8)
	r, _, _, _ := out.At(4, 4).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(255))
}

func TestRotations(t *testing.T) {
	// 2x1 image: left red, right blue
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	ccw := RotateCCW90(img)
	assert.Equal(t, ccw.Bounds().Dx(), 1)
	assert.Equal(t, ccw.Bounds().Dy(), 2)
	// CCW: the right (blue) pixel ends up on top
	_, _, b, _ := ccw.At(0, 0).RGBA()
	assert.Equal(t, uint8(b>>8), uint8(255))

	cw := RotateCW90(img)
	// CW: the left (red) pixel ends up on top
	r, _, _, _ := cw.At(0, 0).RGBA()
	assert.Equal(t, uint8(r>>8), uint8(255))
}

func TestFlipH(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	flipped := FlipH(img)
	_, _, b, _ := flipped.At(0, 0).RGBA()
	assert.Equal(t, uint8(b>>8), uint8(255))
}

func TestEncodeJPEG(t *testing.T) {
	img := Solid(16, 16, color.NRGBA{R: 128, G: 64, B: 32, A: 255})
	data, err := EncodeJPEG(img, 80)
	assert.NilError(t, err)
	assert.Assert(t, len(data) > 0)
	// JPEG SOI marker
	assert.Assert(t, bytes.HasPrefix(data, []byte{0xff, 0xd8}))

	// out-of-range quality falls back to the default
	data2, err := EncodeJPEG(img, 0)
	assert.NilError(t, err)
	assert.Assert(t, len(data2) > 0)
}
