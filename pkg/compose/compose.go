/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package compose flattens a scene: the base panorama plus the selected
// material of every layer, in build order. The production path blends
// materials through grayscale masks; the 2D preview path composites
// alpha overlays.
package compose

import (
	"image"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/assets"
	"github.com/arielsmarin/straty-backend-stable/pkg/clientconfig"
	"github.com/arielsmarin/straty-backend-stable/pkg/imageutil"
)

type Compositor struct {
	resolver *assets.Resolver
}

func NewCompositor(resolver *assets.Resolver) *Compositor {
	return &Compositor{resolver: resolver}
}

// StackLayers is the production compositing path: for each layer with a
// selected material, blend the material over the running image through
// the layer's mask. A missing base is fatal; missing materials or masks
// are logged and skipped.
func (c *Compositor) StackLayers(sceneId string, layers []clientconfig.Layer,
	selection clientconfig.Selection, assetsRoot, assetPrefix string) (*image.NRGBA, error) {
	result, err := c.loadBase(sceneId, assetsRoot, assetPrefix)
	if err != nil {
		return nil, err
	}

	for _, layer := range sortedByBuildOrder(layers) {
		item := selectedItem(layer, selection)
		if item == nil || item.File == "" {
			continue
		}
		materialPath, err := c.resolver.Resolve(
			filepath.Join(assetsRoot, "materials", assetPrefix+trimImageExt(item.File)))
		if err != nil {
			klog.Warningf("skipping layer %s: material %s not found", layer.Id, item.File)
			continue
		}
		if layer.Mask == "" {
			klog.Warningf("skipping layer %s: no mask configured", layer.Id)
			continue
		}
		maskPath, err := c.resolver.Resolve(
			filepath.Join(assetsRoot, "masks", assetPrefix+trimImageExt(layer.Mask)))
		if err != nil {
			klog.Warningf("skipping layer %s: mask %s not found", layer.Id, layer.Mask)
			continue
		}

		material, err := imageutil.Load(materialPath)
		if err != nil {
			klog.Warningf("skipping layer %s: %v", layer.Id, err)
			continue
		}
		mask, err := imageutil.Load(maskPath)
		if err != nil {
			klog.Warningf("skipping layer %s: %v", layer.Id, err)
			continue
		}
		result = imageutil.MaskBlend(result, material, mask)
	}
	return result, nil
}

// StackOverlays is the 2D preview path: alpha-composite each selected
// overlay PNG onto the base.
func (c *Compositor) StackOverlays(sceneId string, layers []clientconfig.Layer,
	selection clientconfig.Selection, assetsRoot, assetPrefix string) (*image.NRGBA, error) {
	result, err := c.loadBase(sceneId, assetsRoot, assetPrefix)
	if err != nil {
		return nil, err
	}

	for _, layer := range sortedByBuildOrder(layers) {
		item := selectedItem(layer, selection)
		if item == nil || item.File == "" {
			continue
		}
		overlayPath, err := c.resolver.Resolve(
			filepath.Join(assetsRoot, assetPrefix+trimImageExt(item.File)))
		if err != nil {
			klog.Warningf("skipping layer %s: overlay %s not found", layer.Id, item.File)
			continue
		}
		overlay, err := imageutil.Load(overlayPath)
		if err != nil {
			klog.Warningf("skipping layer %s: %v", layer.Id, err)
			continue
		}
		result = imageutil.OverlayAlpha(result, overlay)
	}
	return imageutil.EnsureOpaque(result), nil
}

func (c *Compositor) loadBase(sceneId, assetsRoot, assetPrefix string) (*image.NRGBA, error) {
	basePath, err := c.resolver.Resolve(filepath.Join(assetsRoot, assetPrefix+"base_"+sceneId))
	if err != nil {
		return nil, err
	}
	base, err := imageutil.Load(basePath)
	if err != nil {
		return nil, err
	}
	return imageutil.EnsureOpaque(base), nil
}

func sortedByBuildOrder(layers []clientconfig.Layer) []clientconfig.Layer {
	out := make([]clientconfig.Layer, len(layers))
	copy(out, layers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BuildOrder < out[j].BuildOrder
	})
	return out
}

func selectedItem(layer clientconfig.Layer, selection clientconfig.Selection) *clientconfig.Item {
	itemId, ok := selection[layer.Id]
	if !ok {
		return nil
	}
	for i := range layer.Items {
		if layer.Items[i].Id == itemId {
			return &layer.Items[i]
		}
	}
	return nil
}

func trimImageExt(name string) string {
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
