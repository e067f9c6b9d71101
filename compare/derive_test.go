// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitGrid returns a w x h grid that is red left of column split and blue from it on.
func splitGrid(w, h, split int) *pixel.Grid {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(im, im.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)
	draw.Draw(im, image.Rect(split, 0, w, h), image.NewUniform(color.RGBA{0, 0, 255, 255}), image.Point{}, draw.Src)
	return pixel.NewGrid(im)
}

func TestEdges(t *testing.T) {
	assert.NotContains(t, Edges(pixel.NewUniform(5, 5, red)), true)

	g := splitGrid(6, 2, 3)
	mask := Edges(g)
	for y := 0; y < 2; y++ {
		for x := 0; x < 6; x++ {
			assert.Equal(t, x == 2 || x == 3, mask[y*6+x], "(%d, %d)", x, y)
		}
	}

	// alpha only discontinuity
	a := pixel.NewUniform(2, 1, red)
	a, _ = a.With(1, 0, color.RGBA{255, 0, 0, 128})
	assert.Equal(t, []bool{true, true}, Edges(a))
}

func TestBuildToleranceBufferFlat(t *testing.T) {
	p := tolerance.Default()
	tb := BuildToleranceBuffer(pixel.NewUniform(4, 4, red), p)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, float32(p.DefaultColor), tb.Value(x, y))
		}
	}
}

func TestBuildToleranceBufferEdges(t *testing.T) {
	for _, sil := range []float64{0, 1, 1.5, 3} {
		p := tolerance.Default()
		require.NoError(t, p.Override(tolerance.SilhouetteEdge, sil))
		g := splitGrid(16, 3, 8)
		tb := BuildToleranceBuffer(g, p)
		r := 0
		switch sil {
		case 1:
			r = 1
		case 1.5:
			r = 2
		case 3:
			r = 3
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 16; x++ {
				v := tb.Value(x, y)
				assert.GreaterOrEqual(t, v, float32(p.DefaultColor))
				near := x >= 7-r && x <= 8+r
				if near {
					assert.GreaterOrEqual(t, v, float32(p.PixelToEdge), "sil %g (%d, %d)", sil, x, y)
				} else {
					assert.Equal(t, float32(p.DefaultColor), v, "sil %g (%d, %d)", sil, x, y)
				}
			}
		}
	}
}

func TestBuildToleranceBufferBaselineAboveEdge(t *testing.T) {
	p := tolerance.Default()
	require.NoError(t, p.Override(tolerance.DefaultColor, 100))
	require.NoError(t, p.Override(tolerance.PixelToEdge, 10))
	tb := BuildToleranceBuffer(splitGrid(6, 1, 3), p)
	assert.Equal(t, float32(100), tb.Min())
}

func TestBuildToleranceBufferMonotonic(t *testing.T) {
	g := splitGrid(12, 4, 5)
	lo := tolerance.Default()
	hi := tolerance.Default()
	require.NoError(t, hi.ParseFrom(map[string]float64{
		tolerance.DefaultColor:   20,
		tolerance.PixelToEdge:    90,
		tolerance.SilhouetteEdge: 2,
	}))
	a, b := BuildToleranceBuffer(g, lo), BuildToleranceBuffer(g, hi)
	for y := 0; y < 4; y++ {
		for x := 0; x < 12; x++ {
			assert.LessOrEqual(t, a.Value(x, y), b.Value(x, y))
		}
	}

	// a huge silhouette radius covers the whole grid
	dot, err := pixel.NewUniform(8, 8, red).With(0, 0, color.RGBA{0, 0, 255, 255})
	require.NoError(t, err)
	prev := float32(0)
	for _, s := range []float64{1, 3, 1e18, 1e19, 1e30} {
		p := tolerance.Default()
		require.NoError(t, p.Override(tolerance.SilhouetteEdge, s))
		v := BuildToleranceBuffer(dot, p).Value(7, 7)
		assert.GreaterOrEqual(t, v, prev, "silhouette %g", s)
		prev = v
	}
	assert.Equal(t, float32(64), prev)
}

func TestEdgeToleranceAcceptsShiftedEdge(t *testing.T) {
	p := tolerance.Default()
	expected := splitGrid(10, 2, 5)
	actual := splitGrid(10, 2, 6)
	tb := BuildToleranceBuffer(expected, p)

	// a hard edge that moved by one pixel still exceeds the edge slack,
	// but an antialiased column within the slack passes
	r, err := Compare(actual, expected, tb, Strict)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Mismatches)

	aa := expected.Map(func(x, y int, c color.RGBA) color.RGBA {
		if x == 5 {
			return color.RGBA{50, 0, 205, 255}
		}
		return c
	})
	r, err = Compare(aa, expected, tb, Strict)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Mismatches)
}
