/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package build derives the deterministic build-string cache key from a
// scene and a per-layer material selection, and validates the identifiers
// that compose object-store keys.
package build

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
)

const (
	SceneChars  = 2
	LayerChars  = 2
	FixedLayers = 5
	BuildLen    = SceneChars + FixedLayers*LayerChars
)

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	buildRegexp  = regexp.MustCompile(fmt.Sprintf(`^[0-9a-z]{%d}$`, BuildLen))
	safeIdRegexp = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]{0,62}[a-z0-9])?$`)
)

// EncodeBase36 renders n as a zero-padded lowercase base-36 string of
// exactly width chars. Values that do not fit are a programmer error and
// are truncated to the low-order digits.
func EncodeBase36(n, width int) string {
	if n < 0 {
		n = 0
	}
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = base36Digits[n%36]
		n /= 36
	}
	return string(buf)
}

// FromSelection computes the build-string for a scene and selection.
// Each layer slot defaults to zero when the layer is unselected or the
// selected item is unknown, so "unselected" and "default" share a cache key.
func FromSelection(sceneIndex int, layers []clientconfig.Layer, selection clientconfig.Selection) string {
	layerValues := make([]int, FixedLayers)
	for _, layer := range layers {
		if layer.BuildOrder < 0 || layer.BuildOrder >= FixedLayers {
			continue
		}
		itemId, ok := selection[layer.Id]
		if !ok {
			continue
		}
		for _, item := range layer.Items {
			if item.Id == itemId {
				layerValues[layer.BuildOrder] = item.Index
				break
			}
		}
	}

	var sb strings.Builder
	sb.Grow(BuildLen)
	sb.WriteString(EncodeBase36(sceneIndex, SceneChars))
	for _, v := range layerValues {
		sb.WriteString(EncodeBase36(v, LayerChars))
	}
	return sb.String()
}

// ValidateBuildString accepts exactly BuildLen lowercase base-36 chars.
func ValidateBuildString(s string) error {
	if !buildRegexp.MatchString(s) {
		return errors.NewBadRequest(fmt.Sprintf("invalid build string %q", s))
	}
	return nil
}

// ValidateSafeId guards every path segment that composes an object-store
// key against traversal and unsafe characters.
func ValidateSafeId(s, field string) error {
	if strings.Contains(s, "..") || strings.ContainsAny(s, `/\`) {
		return errors.NewBadRequest(fmt.Sprintf("invalid %s %q", field, s))
	}
	if !safeIdRegexp.MatchString(s) {
		return errors.NewBadRequest(fmt.Sprintf("invalid %s %q", field, s))
	}
	return nil
}
