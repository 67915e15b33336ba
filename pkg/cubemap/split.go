/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

// Package cubemap turns a flattened horizontal cubemap strip into
// oriented faces and JPEG tiles for a fixed two-level LOD pyramid.
package cubemap

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/imageutil"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/concurrent"
)

const (
	TileSize  = 512
	FaceCount = 6
	MinLod    = 0
	MaxLod    = 1
)

// Lod describes one pyramid level. The pyramid is fixed: LOD0 is the
// coarse 2x2 grid, LOD1 the fine 4x4 grid.
type Lod struct {
	Level    int
	FaceSize int
}

var Lods = []Lod{
	{Level: 0, FaceSize: 1024},
	{Level: 1, FaceSize: 2048},
}

// TilesPerCubemap is the total across both LODs: 6*(4+16).
const TilesPerCubemap = 120

type Tile struct {
	Filename string
	Data     []byte
	Lod      int
}

// faceLetters is the published viewer-frame alphabet.
var faceLetters = []string{"r", "l", "u", "d", "f", "b"}

type Splitter struct {
	faceWorkers int
	jpegQuality int
}

func NewSplitter(faceWorkers, jpegQuality int) *Splitter {
	if faceWorkers < 1 {
		faceWorkers = 1
	}
	if faceWorkers > FaceCount {
		faceWorkers = FaceCount
	}
	if cpus := runtime.NumCPU(); faceWorkers > cpus {
		faceWorkers = cpus
	}
	return &Splitter{faceWorkers: faceWorkers, jpegQuality: jpegQuality}
}

// SplitToMemory cuts flat into oriented faces and returns every tile of
// the requested LOD range as encoded JPEG bytes. Tiles are ordered by
// face, then LOD, then row-major grid position.
func (s *Splitter) SplitToMemory(flat *image.NRGBA, tileSize int, build string,
	minLod, maxLod int) ([]Tile, error) {
	faces, err := splitFaces(flat)
	if err != nil {
		return nil, err
	}
	if err = validateLodRange(tileSize, minLod, maxLod); err != nil {
		return nil, err
	}

	perFace := make([][]Tile, FaceCount)
	_, err = concurrent.ExecIndexed(FaceCount, s.faceWorkers, func(i int) error {
		tiles, faceErr := s.tileFace(faces[i], faceLetters[i], tileSize, build, minLod, maxLod)
		if faceErr != nil {
			return faceErr
		}
		perFace[i] = tiles
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []Tile
	for _, tiles := range perFace {
		out = append(out, tiles...)
	}
	return out, nil
}

// SplitToDirectory produces the same bytes and filenames as
// SplitToMemory but writes each tile under dir, handing the path to
// onTile as soon as the file is closed. Callbacks for a single face
// arrive in order; faces may interleave.
func (s *Splitter) SplitToDirectory(flat *image.NRGBA, tileSize int, build string,
	minLod, maxLod int, dir string, onTile func(path, filename string, lod int) error) error {
	faces, err := splitFaces(flat)
	if err != nil {
		return err
	}
	if err = validateLodRange(tileSize, minLod, maxLod); err != nil {
		return err
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	_, err = concurrent.ExecIndexed(FaceCount, s.faceWorkers, func(i int) error {
		tiles, faceErr := s.tileFace(faces[i], faceLetters[i], tileSize, build, minLod, maxLod)
		if faceErr != nil {
			return faceErr
		}
		for _, tile := range tiles {
			path := filepath.Join(dir, tile.Filename)
			if writeErr := os.WriteFile(path, tile.Data, 0o644); writeErr != nil {
				return writeErr
			}
			if onTile != nil {
				if cbErr := onTile(path, tile.Filename, tile.Lod); cbErr != nil {
					return cbErr
				}
			}
		}
		return nil
	})
	return err
}

// splitFaces normalizes the strip and returns the six faces oriented for
// the viewer frame, indexed parallel to faceLetters.
func splitFaces(flat *image.NRGBA) ([]*image.NRGBA, error) {
	h := flat.Bounds().Dy()
	w := flat.Bounds().Dx()
	if h == 0 || w != FaceCount*h {
		return nil, errors.NewBadRequest("cubemap horizontal inválido")
	}

	// producer convention reads opposite to the viewer cube
	flipped := imageutil.FlipH(flat)

	// strip order after the flip: px nx py ny pz nz
	strip := make([]*image.NRGBA, FaceCount)
	for i := 0; i < FaceCount; i++ {
		strip[i] = imageutil.Crop(flipped, image.Rect(i*h, 0, (i+1)*h, h))
	}

	faces := make([]*image.NRGBA, FaceCount)
	faces[0] = strip[0]                        // px -> r
	faces[1] = strip[1]                        // nx -> l
	faces[2] = imageutil.RotateCCW90(strip[2]) // py -> u
	faces[3] = imageutil.RotateCW90(strip[3])  // ny -> d
	faces[4] = strip[4]                        // pz -> f
	faces[5] = strip[5]                        // nz -> b
	return faces, nil
}

func (s *Splitter) tileFace(face *image.NRGBA, letter string, tileSize int,
	build string, minLod, maxLod int) ([]Tile, error) {
	var out []Tile
	for _, lod := range Lods {
		if lod.Level < minLod || lod.Level > maxLod {
			continue
		}
		scaled := imageutil.ResizeToMatch(face, lod.FaceSize, lod.FaceSize)
		grid := lod.FaceSize / tileSize
		for y := 0; y < grid; y++ {
			for x := 0; x < grid; x++ {
				crop := imageutil.Crop(scaled,
					image.Rect(x*tileSize, y*tileSize, (x+1)*tileSize, (y+1)*tileSize))
				data, err := imageutil.EncodeJPEG(crop, s.jpegQuality)
				if err != nil {
					return nil, err
				}
				out = append(out, Tile{
					Filename: fmt.Sprintf("%s_%s_%d_%d_%d.jpg", build, letter, lod.Level, x, y),
					Data:     data,
					Lod:      lod.Level,
				})
			}
		}
	}
	return out, nil
}

func validateLodRange(tileSize, minLod, maxLod int) error {
	if tileSize <= 0 {
		return errors.NewBadRequest(fmt.Sprintf("invalid tile size %d", tileSize))
	}
	if minLod < MinLod || maxLod > MaxLod || minLod > maxLod {
		return errors.NewBadRequest(fmt.Sprintf("invalid lod range [%d,%d]", minLod, maxLod))
	}
	for _, lod := range Lods {
		if lod.Level < minLod || lod.Level > maxLod {
			continue
		}
		if lod.FaceSize%tileSize != 0 {
			return errors.NewBadRequest("cubemap horizontal inválido")
		}
	}
	return nil
}

// TileCount returns the number of tiles the LOD range yields.
func TileCount(tileSize, minLod, maxLod int) int {
	total := 0
	for _, lod := range Lods {
		if lod.Level < minLod || lod.Level > maxLod {
			continue
		}
		grid := lod.FaceSize / tileSize
		total += FaceCount * grid * grid
	}
	return total
}

// SortTiles orders tiles by LOD, face, then grid position. Useful for
// deterministic publication order in tests.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Lod != tiles[j].Lod {
			return tiles[i].Lod < tiles[j].Lod
		}
		return tiles[i].Filename < tiles[j].Filename
	})
}
