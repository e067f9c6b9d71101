// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{255, 0, 0, 255}

func randomGrid(rnd *rand.Rand, w, h int) *pixel.Grid {
	pix := make([]uint8, w*h*4)
	rnd.Read(pix)
	g, _ := pixel.FromPix(w, h, pix)
	return g
}

func TestSelfComparisonPasses(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		g := randomGrid(rnd, 1+rnd.Intn(12), 1+rnd.Intn(12))
		zero := pixel.NewToleranceBuffer(g.Width(), g.Height(), 0)
		r, err := Compare(g, g, zero, Strict)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Mismatches)
		assert.True(t, r.Passed())
		assert.Empty(t, r.Failures)
		assert.Equal(t, uint8(0), r.MaxDelta)
	}
}

func TestSingleChannelDelta(t *testing.T) {
	base := pixel.NewUniform(3, 3, color.RGBA{100, 100, 100, 255})
	for _, tc := range []struct {
		delta uint8
		tol   float32
		want  int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{5, 5, 0},
		{6, 5, 1},
		{100, 99.5, 1},
		{100, 100, 0},
	} {
		for ch := 0; ch < 4; ch++ {
			c := color.RGBA{100, 100, 100, 255}
			switch ch {
			case 0:
				c.R += tc.delta
			case 1:
				c.G -= tc.delta
			case 2:
				c.B += tc.delta
			case 3:
				c.A -= tc.delta
			}
			actual, err := base.With(1, 2, c)
			require.NoError(t, err)
			tb := pixel.NewToleranceBuffer(3, 3, tc.tol)
			r, err := Compare(actual, base, tb, Strict)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Mismatches, "delta %d tol %g channel %d", tc.delta, tc.tol, ch)
			if tc.want == 1 {
				assert.Equal(t, []image.Point{{1, 2}}, r.Failures)
			}
		}
	}
}

func TestMismatchCountSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		a := randomGrid(rnd, 8, 5)
		b := randomGrid(rnd, 8, 5)
		tb := pixel.NewToleranceFunc(8, 5, func(x, y int) float32 { return float32(rnd.Intn(256)) })
		ab, err := Compare(a, b, tb, Strict)
		require.NoError(t, err)
		ba, err := Compare(b, a, tb, Strict)
		require.NoError(t, err)
		assert.Equal(t, ab.Mismatches, ba.Mismatches)
		assert.Equal(t, ab.Failures, ba.Failures)
	}
}

func TestAllowedMismatchCount(t *testing.T) {
	expected := pixel.NewUniform(4, 4, red)
	actual := expected
	for i := 0; i < 3; i++ {
		actual, _ = actual.With(i, i, color.RGBA{0, 0, 255, 255})
	}
	tb := pixel.NewToleranceBuffer(4, 4, 8)

	r, err := Compare(actual, expected, tb, Strict)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Mismatches)
	assert.False(t, r.Passed())

	prev := false
	for k := 0; k <= 6; k++ {
		r, err := Compare(actual, expected, tb, k)
		require.NoError(t, err)
		assert.Equal(t, k >= 3, r.Passed(), "allowed %d", k)
		if prev {
			assert.True(t, r.Passed(), "verdict must be monotonic in allowed")
		}
		prev = r.Passed()
	}
}

func TestSolidRedScenario(t *testing.T) {
	p := tolerance.Default()
	require.NoError(t, p.Override(tolerance.DefaultColor, 8))

	expected := pixel.NewUniform(4, 4, red)
	tb := BuildToleranceBuffer(expected, p)

	r, err := Compare(pixel.NewUniform(4, 4, red), expected, tb, Strict)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Mismatches)
	assert.True(t, r.Passed())
	assert.Equal(t, "pass", r.Verdict())

	actual, err := expected.With(2, 1, color.RGBA{255, 10, 0, 255})
	require.NoError(t, err)
	r, err = Compare(actual, expected, tb, Strict)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Mismatches)
	assert.False(t, r.Passed())
	assert.Equal(t, []image.Point{{2, 1}}, r.Failures)

	r, err = Compare(actual, expected, tb, 1)
	require.NoError(t, err)
	assert.True(t, r.Passed())
	r, err = Compare(actual, expected, tb, 0)
	require.NoError(t, err)
	assert.False(t, r.Passed())
}

func TestDimensionMismatch(t *testing.T) {
	a := pixel.NewUniform(4, 4, red)
	b := pixel.NewUniform(4, 3, red)
	_, err := Compare(a, b, nil, Strict)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = Compare(a, a, pixel.NewToleranceBuffer(3, 4, 0), Strict)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = Difference(a, b)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = FailurePoints(a, b, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = Compare(nil, a, nil, Strict)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNilToleranceIsZero(t *testing.T) {
	a := pixel.NewUniform(2, 2, red)
	b, _ := a.With(0, 0, color.RGBA{254, 0, 0, 255})
	r, err := Compare(b, a, nil, Strict)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Mismatches)
}

func TestDifference(t *testing.T) {
	expected := pixel.NewUniform(2, 1, color.RGBA{100, 100, 100, 255})
	actual, _ := expected.With(0, 0, color.RGBA{110, 90, 100, 255})
	actual, _ = actual.With(1, 0, color.RGBA{100, 100, 100, 235})
	d, err := Difference(actual, expected)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{10, 10, 0, 255}, d.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{20, 20, 20, 255}, d.RGBAAt(1, 0))

	// the diff is computed on passing comparisons too
	r, err := Compare(actual, expected, pixel.NewToleranceBuffer(2, 1, 50), Strict)
	require.NoError(t, err)
	assert.True(t, r.Passed())
	assert.Equal(t, d, r.Diff)
	assert.Equal(t, uint8(20), r.MaxDelta)
}

func TestFailurePoints(t *testing.T) {
	expected := pixel.NewUniform(3, 3, red)
	actual, _ := expected.With(2, 0, color.RGBA{})
	actual, _ = actual.With(0, 2, color.RGBA{})
	actual, _ = actual.With(1, 1, color.RGBA{250, 0, 0, 255})
	pts, err := FailurePoints(actual, expected, pixel.NewToleranceBuffer(3, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, []image.Point{{2, 0}, {0, 2}}, pts)

	pts, err = FailurePoints(actual, expected, nil)
	require.NoError(t, err)
	assert.Equal(t, []image.Point{{2, 0}, {1, 1}, {0, 2}}, pts)
}

func TestStats(t *testing.T) {
	expected := pixel.NewUniform(10, 10, red)
	actual, _ := expected.With(3, 4, color.RGBA{0, 0, 0, 255})
	r, err := Compare(actual, expected, nil, Strict)
	require.NoError(t, err)
	assert.Equal(t, "fail: 1 of 100 pixels mismatched (1.00%, strict), max channel delta 255, first at (3,4)", r.Stats())
	r.Allowed = 2
	assert.Contains(t, r.Stats(), "pass: 1 of 100")
	assert.Contains(t, r.Stats(), "2 allowed")
}
