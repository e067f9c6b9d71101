// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"log/slog"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
)

// Engine compares captures against expected renderings using the
// tolerance buffer derived from a profile snapshot, merged with any
// per-pixel hints from the renderer and an optional [Override].
type Engine struct {

	// Profile is the snapshot of the tolerance profile used for a run.
	// It must not be changed while the engine is in use.
	Profile *tolerance.Profile

	// Override is an optional VScan tolerance patch; nil means none.
	Override *Override
}

// NewEngine returns an engine working on a snapshot of the given
// profile, or of the default profile if it is nil.
func NewEngine(p *tolerance.Profile) *Engine {
	if p == nil {
		p = tolerance.Default()
	}
	return &Engine{Profile: p.Clone()}
}

// Tolerance returns the tolerance buffer for expected: the buffer derived
// with [BuildToleranceBuffer], merged with the renderer hints (if not nil)
// and the engine override by taking the maximum at every pixel.
func (e *Engine) Tolerance(expected *pixel.Grid, hints *pixel.ToleranceBuffer) (*pixel.ToleranceBuffer, error) {
	tb := BuildToleranceBuffer(expected, e.Profile)
	if hints != nil {
		var err error
		tb, err = tb.Max(hints)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
		}
	}
	return e.Override.Apply(tb), nil
}

// Verify compares actual against expected with the tolerance buffer
// given by [Engine.Tolerance]. See [Compare] for allowed.
func (e *Engine) Verify(actual, expected *pixel.Grid, hints *pixel.ToleranceBuffer, allowed int) (*Report, error) {
	if err := checkSizes(actual, expected, hints); err != nil {
		return nil, err
	}
	tb, err := e.Tolerance(expected, hints)
	if err != nil {
		return nil, err
	}
	r, err := Compare(actual, expected, tb, allowed)
	if err != nil {
		return nil, err
	}
	slog.Debug("compare.Engine.Verify", "verdict", r.Verdict(), "mismatches", r.Mismatches, "maxDelta", r.MaxDelta)
	return r, nil
}

// DepthMismatches returns the number of depth samples of actual that
// differ from expected by more than the zBufferTolerance of the profile.
// It is a diagnostic and never affects a verdict.
func (e *Engine) DepthMismatches(actual, expected *pixel.DepthBuffer) (int, error) {
	if actual.Size() != expected.Size() {
		return 0, fmt.Errorf("%w: depth %v but expected %v", ErrDimensionMismatch, actual.Size(), expected.Size())
	}
	tol := float32(e.Profile.ZBuffer)
	n := 0
	for y := 0; y < expected.Height(); y++ {
		for x := 0; x < expected.Width(); x++ {
			d := actual.Value(x, y) - expected.Value(x, y)
			if d > tol || -d > tol {
				n++
			}
		}
	}
	return n, nil
}
