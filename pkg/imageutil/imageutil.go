/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package imageutil wraps the raster primitives the render pipeline needs:
// 8-bit RGB loading, linear resize, mask blending, alpha compositing,
// quarter rotations and JPEG encoding with metadata stripped.
package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
)

const DefaultJpegQuality = 85

// Load reads an image from disk and normalizes it to 8-bit NRGBA.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.NewAssetMissing(err.Error())
	}
	return imaging.Clone(img), nil
}

// Decode reads an image from a stream and normalizes it to 8-bit NRGBA.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

// EnsureOpaque drops the alpha channel so downstream JPEG encoding is a
// straight 3-channel write.
func EnsureOpaque(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// ResizeToMatch scales img to exactly w x h with a linear kernel. A
// no-op when the size already matches.
func ResizeToMatch(img *image.NRGBA, w, h int) *image.NRGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// MaskBlend computes base*(1-m) + material*m per channel, where m is the
// mask's grayscale value scaled to [0,1]. Material and mask are resized
// to the base dimensions first.
func MaskBlend(base, material, mask *image.NRGBA) *image.NRGBA {
	w := base.Bounds().Dx()
	h := base.Bounds().Dy()
	material = ResizeToMatch(material, w, h)
	mask = ResizeToMatch(mask, w, h)

	out := imaging.Clone(base)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			oi := out.PixOffset(x, y)
			mi := material.PixOffset(x, y)
			ki := mask.PixOffset(x, y)
			m := grayValue(mask.Pix[ki], mask.Pix[ki+1], mask.Pix[ki+2]) / 255.0
			for c := 0; c < 3; c++ {
				v := float64(out.Pix[oi+c])*(1-m) + float64(material.Pix[mi+c])*m
				out.Pix[oi+c] = clampByte(v)
			}
			out.Pix[oi+3] = 0xff
		}
	}
	return out
}

// OverlayAlpha composites overlay alpha-over onto base, resizing the
// overlay to the base dimensions first.
func OverlayAlpha(base, overlay *image.NRGBA) *image.NRGBA {
	overlay = ResizeToMatch(overlay, base.Bounds().Dx(), base.Bounds().Dy())
	return imaging.Overlay(base, overlay, image.Pt(0, 0), 1.0)
}

// FlipH mirrors the image around its vertical axis.
func FlipH(img *image.NRGBA) *image.NRGBA {
	return imaging.FlipH(img)
}

// RotateCCW90 rotates 90 degrees counter-clockwise (270 clockwise).
func RotateCCW90(img *image.NRGBA) *image.NRGBA {
	return imaging.Rotate90(img)
}

// RotateCW90 rotates 90 degrees clockwise.
func RotateCW90(img *image.NRGBA) *image.NRGBA {
	return imaging.Rotate270(img)
}

// Crop extracts the given region as a new image.
func Crop(img *image.NRGBA, rect image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, rect)
}

// EncodeJPEG serializes img as a baseline JPEG with the given quality.
// The encoder writes no EXIF or ICC segments.
func EncodeJPEG(img *image.NRGBA, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJpegQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Solid builds a uniformly colored image, used by fixtures and the
// compositor fallback paths.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func grayValue(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
