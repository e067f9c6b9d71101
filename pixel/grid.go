// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pixel provides the immutable grids exchanged during render
// verification: color grids for captures, references and diffs, and
// per-pixel tolerance and depth buffers that accompany them.
package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// ErrOutOfRange is returned when a sample outside of a grid is requested.
var ErrOutOfRange = errors.New("pixel: coordinate out of range")

// Grid is a rectangular, row-major grid of RGBA color samples with its
// origin at the top left. A Grid is never modified after it is made;
// operations that transform grids always return new ones.
type Grid struct {
	width, height int
	pix           []uint8
}

// NewGrid returns a grid holding a copy of the given image, translated
// so that the image bounds minimum becomes (0, 0).
func NewGrid(im image.Image) *Grid {
	rgba := clone.AsRGBA(im)
	sz := rgba.Bounds().Size()
	g := &Grid{width: sz.X, height: sz.Y, pix: make([]uint8, sz.X*sz.Y*4)}
	for y := 0; y < sz.Y; y++ {
		si := rgba.PixOffset(rgba.Rect.Min.X, rgba.Rect.Min.Y+y)
		copy(g.pix[y*sz.X*4:(y+1)*sz.X*4], rgba.Pix[si:si+sz.X*4])
	}
	return g
}

// NewUniform returns a width x height grid filled with c. It is
// typically used to build references for single-color expectations.
func NewUniform(width, height int, c color.RGBA) *Grid {
	g := &Grid{width: max(width, 0), height: max(height, 0)}
	g.pix = make([]uint8, g.width*g.height*4)
	for i := 0; i < len(g.pix); i += 4 {
		g.pix[i+0] = c.R
		g.pix[i+1] = c.G
		g.pix[i+2] = c.B
		g.pix[i+3] = c.A
	}
	return g
}

// FromPix returns a grid holding a copy of the given row-major RGBA
// samples, 4 bytes per pixel.
func FromPix(width, height int, pix []uint8) (*Grid, error) {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel.FromPix: %d bytes do not hold a %dx%d grid", len(pix), width, height)
	}
	return &Grid{width: width, height: height, pix: append([]uint8(nil), pix...)}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Size returns the width and height as a point.
func (g *Grid) Size() image.Point { return image.Pt(g.width, g.height) }

// Bounds returns the rectangle covered by the grid.
func (g *Grid) Bounds() image.Rectangle { return image.Rect(0, 0, g.width, g.height) }

// In returns whether (x, y) is inside of the grid.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the sample at (x, y), or [ErrOutOfRange] if (x, y)
// is outside of [0, width) x [0, height).
func (g *Grid) At(x, y int) (color.RGBA, error) {
	if !g.In(x, y) {
		return color.RGBA{}, fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, g.width, g.height)
	}
	return g.RGBAAt(x, y), nil
}

// RGBAAt returns the sample at (x, y) without checking bounds.
// It panics if (x, y) is outside of the grid.
func (g *Grid) RGBAAt(x, y int) color.RGBA {
	i := (y*g.width + x) * 4
	p := g.pix[i : i+4 : i+4]
	return color.RGBA{p[0], p[1], p[2], p[3]}
}

// SameSize returns whether g and o have the same dimensions.
func (g *Grid) SameSize(o interface{ Size() image.Point }) bool {
	return g.Size() == o.Size()
}

// Image returns a new [image.RGBA] with a copy of the samples.
func (g *Grid) Image() *image.RGBA {
	im := image.NewRGBA(g.Bounds())
	copy(im.Pix, g.pix)
	return im
}

// Map returns a new grid of the same size with f applied to every sample.
func (g *Grid) Map(f func(x, y int, c color.RGBA) color.RGBA) *Grid {
	n := &Grid{width: g.width, height: g.height, pix: make([]uint8, len(g.pix))}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := f(x, y, g.RGBAAt(x, y))
			i := (y*g.width + x) * 4
			n.pix[i+0], n.pix[i+1], n.pix[i+2], n.pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return n
}

// With returns a copy of g with the sample at (x, y) replaced by c,
// or [ErrOutOfRange] if (x, y) is outside of the grid.
func (g *Grid) With(x, y int, c color.RGBA) (*Grid, error) {
	if !g.In(x, y) {
		return nil, fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, g.width, g.height)
	}
	n := &Grid{width: g.width, height: g.height, pix: append([]uint8(nil), g.pix...)}
	i := (y*g.width + x) * 4
	n.pix[i+0], n.pix[i+1], n.pix[i+2], n.pix[i+3] = c.R, c.G, c.B, c.A
	return n, nil
}
