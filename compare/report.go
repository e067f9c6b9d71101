// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"image"

	"cogentcore.org/rendercheck/pixel"
)

// Report is the outcome of a [Compare].
type Report struct {

	// Mismatches is the number of pixels that differ by more than their tolerance.
	Mismatches int

	// Allowed is the number of mismatching pixels tolerated; see [Strict].
	Allowed int

	// Total is the number of pixels compared.
	Total int

	// MaxDelta is the largest channel difference found anywhere,
	// whether or not it was within tolerance.
	MaxDelta uint8

	// Diff is the per-pixel absolute difference, as returned by [Difference].
	// It is computed on passing comparisons too.
	Diff *pixel.Grid

	// Failures are the coordinates of the mismatching pixels in row-major order.
	Failures []image.Point

	// Tolerance is the tolerance buffer the comparison used, if any.
	Tolerance *pixel.ToleranceBuffer

	// DepthMismatches is the number of depth samples that differ by more
	// than the depth tolerance, when depth buffers were available.
	// It does not affect [Report.Passed].
	DepthMismatches int
}

// Passed returns whether the comparison passed as a whole.
func (r *Report) Passed() bool {
	if r.Allowed < 0 {
		return r.Mismatches == 0
	}
	return r.Mismatches <= r.Allowed
}

// Verdict returns "pass" or "fail".
func (r *Report) Verdict() string {
	if r.Passed() {
		return "pass"
	}
	return "fail"
}

// Stats returns a one line summary of the comparison.
func (r *Report) Stats() string {
	allowed := "strict"
	if r.Allowed >= 0 {
		allowed = fmt.Sprintf("%d allowed", r.Allowed)
	}
	pct := 0.0
	if r.Total > 0 {
		pct = 100 * float64(r.Mismatches) / float64(r.Total)
	}
	s := fmt.Sprintf("%s: %d of %d pixels mismatched (%.2f%%, %s), max channel delta %d",
		r.Verdict(), r.Mismatches, r.Total, pct, allowed, r.MaxDelta)
	if len(r.Failures) > 0 {
		s += fmt.Sprintf(", first at %v", r.Failures[0])
	}
	if r.DepthMismatches > 0 {
		s += fmt.Sprintf(", %d depth samples differ", r.DepthMismatches)
	}
	return s
}
