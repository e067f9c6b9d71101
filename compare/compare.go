// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare decides whether a captured [pixel.Grid] matches an
// expected one, using a per-pixel [pixel.ToleranceBuffer] so that the
// same absolute difference test can be strict on flat regions and
// lenient at antialiased silhouette edges.
package compare

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"cogentcore.org/rendercheck/pixel"
)

// ErrDimensionMismatch is returned when grids that are compared,
// or a grid and its tolerance buffer, do not have the same size.
var ErrDimensionMismatch = errors.New("compare: dimension mismatch")

// Strict is the allowed mismatch count meaning that any mismatching
// pixel fails the comparison.
const Strict = -1

// Compare compares every pixel of actual against expected. A pixel passes
// when the absolute difference of each of its channels is within the
// tolerance at that pixel in tol; a nil tol means zero tolerance everywhere.
// When allowed is non-negative the comparison passes as long as no more than
// allowed pixels fail; a negative allowed (see [Strict]) fails on any
// mismatching pixel.
//
// Size differences between the grids or the tolerance buffer are fatal
// and return [ErrDimensionMismatch] without a report. Mismatching pixels
// are never errors; they are recorded in the [Report].
func Compare(actual, expected *pixel.Grid, tol *pixel.ToleranceBuffer, allowed int) (*Report, error) {
	if err := checkSizes(actual, expected, tol); err != nil {
		return nil, err
	}
	w, h := expected.Width(), expected.Height()
	diff := image.NewRGBA(expected.Bounds())
	r := &Report{Allowed: allowed, Total: w * h, Tolerance: tol}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := delta(actual.RGBAAt(x, y), expected.RGBAAt(x, y))
			diff.SetRGBA(x, y, visualize(d))
			md := maxChannel(d)
			r.MaxDelta = max(r.MaxDelta, md)
			if !within(md, tol, x, y) {
				r.Mismatches++
				r.Failures = append(r.Failures, image.Pt(x, y))
			}
		}
	}
	r.Diff = pixel.NewGrid(diff)
	return r, nil
}

// Difference returns the per-pixel absolute color difference between
// actual and expected, for visualization. It does not depend on any
// tolerance. Alpha is always opaque in the result so that the deltas are
// visible; alpha deltas are folded into the color channels.
func Difference(actual, expected *pixel.Grid) (*pixel.Grid, error) {
	if err := checkSizes(actual, expected, nil); err != nil {
		return nil, err
	}
	return expected.Map(func(x, y int, e color.RGBA) color.RGBA {
		return visualize(delta(actual.RGBAAt(x, y), e))
	}), nil
}

// FailurePoints returns the coordinates of the pixels of actual that
// differ from expected by more than the tolerance in tol, in row-major order.
func FailurePoints(actual, expected *pixel.Grid, tol *pixel.ToleranceBuffer) ([]image.Point, error) {
	if err := checkSizes(actual, expected, tol); err != nil {
		return nil, err
	}
	var pts []image.Point
	for y := 0; y < expected.Height(); y++ {
		for x := 0; x < expected.Width(); x++ {
			md := maxChannel(delta(actual.RGBAAt(x, y), expected.RGBAAt(x, y)))
			if !within(md, tol, x, y) {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts, nil
}

func checkSizes(actual, expected *pixel.Grid, tol *pixel.ToleranceBuffer) error {
	if actual == nil || expected == nil {
		return fmt.Errorf("%w: missing grid", ErrDimensionMismatch)
	}
	if actual.Size() != expected.Size() {
		return fmt.Errorf("%w: actual is %v but expected is %v", ErrDimensionMismatch, actual.Size(), expected.Size())
	}
	if tol != nil && tol.Size() != expected.Size() {
		return fmt.Errorf("%w: tolerance buffer is %v but expected is %v", ErrDimensionMismatch, tol.Size(), expected.Size())
	}
	return nil
}

func within(md uint8, tol *pixel.ToleranceBuffer, x, y int) bool {
	if tol == nil {
		return md == 0
	}
	return float32(md) <= tol.Value(x, y)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// delta returns the per-channel absolute difference of a and b.
func delta(a, b color.RGBA) color.RGBA {
	return color.RGBA{absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A)}
}

func maxChannel(d color.RGBA) uint8 {
	return max(d.R, d.G, d.B, d.A)
}

func visualize(d color.RGBA) color.RGBA {
	return color.RGBA{max(d.R, d.A), max(d.G, d.A), max(d.B, d.A), 255}
}
