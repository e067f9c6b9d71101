// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"image/color"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/chewxy/math32"
)

// EdgeThreshold is the luminance or alpha step, in 0-255 channel units,
// between 4-neighbors of an expected grid above which both pixels are
// considered to lie on an edge. It is fixed rather than derived from a
// profile so that tolerance options never change where edges are found.
var EdgeThreshold float32 = 8

// Luminance returns the Rec. 601 luma of c in 0-255 channel units.
func Luminance(c color.RGBA) float32 {
	return 0.299*float32(c.R) + 0.587*float32(c.G) + 0.114*float32(c.B)
}

// Edges returns a row-major mask of the pixels of g that are adjacent
// to a luminance or alpha discontinuity larger than [EdgeThreshold].
func Edges(g *pixel.Grid) []bool {
	w, h := g.Width(), g.Height()
	mask := make([]bool, w*h)
	mark := func(x0, y0, x1, y1 int) {
		a, b := g.RGBAAt(x0, y0), g.RGBAAt(x1, y1)
		dl := math32.Abs(Luminance(a) - Luminance(b))
		da := math32.Abs(float32(a.A) - float32(b.A))
		if dl > EdgeThreshold || da > EdgeThreshold {
			mask[y0*w+x0] = true
			mask[y1*w+x1] = true
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				mark(x, y, x+1, y)
			}
			if y+1 < h {
				mark(x, y, x, y+1)
			}
		}
	}
	return mask
}

// dilate returns mask grown by r pixels in Chebyshev distance,
// using separable horizontal and vertical passes.
func dilate(mask []bool, w, h, r int) []bool {
	if r <= 0 {
		return mask
	}
	horiz := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		last := -r - 1 // last edge column seen
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				last = x
			}
			if x-last <= r {
				horiz[y*w+x] = true
			}
		}
		last = w + r + 1
		for x := w - 1; x >= 0; x-- {
			if mask[y*w+x] {
				last = x
			}
			if last-x <= r {
				horiz[y*w+x] = true
			}
		}
	}
	out := make([]bool, len(mask))
	for x := 0; x < w; x++ {
		last := -r - 1
		for y := 0; y < h; y++ {
			if horiz[y*w+x] {
				last = y
			}
			if y-last <= r {
				out[y*w+x] = true
			}
		}
		last = h + r + 1
		for y := h - 1; y >= 0; y-- {
			if horiz[y*w+x] {
				last = y
			}
			if last-y <= r {
				out[y*w+x] = true
			}
		}
	}
	return out
}

// BuildToleranceBuffer derives a per-pixel tolerance buffer for expected
// from the given profile. Every pixel gets the defaultColorTolerance
// baseline. Pixels on an edge (see [Edges]), and all pixels within
// ceil(silhouetteEdgeTolerance) pixels of one, get the larger of the
// baseline and pixelToEdgeTolerance, so that antialiasing and edge
// position jitter are tolerated only where they occur.
func BuildToleranceBuffer(expected *pixel.Grid, p *tolerance.Profile) *pixel.ToleranceBuffer {
	w, h := expected.Width(), expected.Height()
	base := float32(p.DefaultColor)
	edge := max(base, float32(p.PixelToEdge))
	r := int(min(math32.Ceil(float32(p.SilhouetteEdge)), float32(max(w, h))))
	near := dilate(Edges(expected), w, h, r)
	return pixel.NewToleranceFunc(w, h, func(x, y int) float32 {
		if near[y*w+x] {
			return edge
		}
		return base
	})
}
