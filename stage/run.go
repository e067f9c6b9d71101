// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/clock"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/pixel"
)

// ErrNoCapture is returned when a run has no capture with a given name.
var ErrNoCapture = errors.New("stage: no such capture")

// Capture is a frame stored in a [Run] under a name, for later comparison.
type Capture struct {

	// Grid is the color frame.
	Grid *pixel.Grid

	// Depth is the optional depth companion of Grid, used for diagnostics.
	Depth *pixel.DepthBuffer

	// Hints is optional per-pixel tolerance supplied by a renderer for
	// Grid when it is used as the expected frame of a comparison.
	Hints *pixel.ToleranceBuffer
}

// Comparison is a comparison recorded by [Run.Compare].
type Comparison struct {

	// Name is the name given to the comparison.
	Name string

	// Actual and Expected are the names of the compared captures.
	Actual, Expected string

	// Report is the outcome.
	Report *compare.Report
}

// Run is the state of one verification run that stage actions work on.
// It is only used from the host event loop goroutine.
type Run struct {

	// Name is the name of the run.
	Name string

	// Clock is the deterministic clock of the host, or nil if the run
	// does not control time.
	Clock clock.Clock

	// Engine does the comparisons, on a profile snapshot taken
	// when the run was created.
	Engine *compare.Engine

	ctx         context.Context
	ownsClock   bool
	captures    map[string]*Capture
	comparisons []Comparison
}

func newRun(ctx context.Context, name string, c clock.Clock, e *compare.Engine) *Run {
	return &Run{Name: name, Clock: c, Engine: e, ctx: ctx, captures: map[string]*Capture{}}
}

// Context returns the context the run was started with.
func (r *Run) Context() context.Context {
	return r.ctx
}

// CaptureClock takes exclusive control of the clock for the rest of
// the run. It is released when the run is cleaned up. It does nothing
// if the run already holds the clock.
func (r *Run) CaptureClock() error {
	if r.ownsClock {
		return nil
	}
	if r.Clock == nil {
		return fmt.Errorf("stage: run %q has no clock", r.Name)
	}
	if err := r.Clock.Capture(); err != nil {
		return err
	}
	r.ownsClock = true
	return nil
}

// OwnsClock returns whether the run currently holds the clock.
func (r *Run) OwnsClock() bool {
	return r.ownsClock
}

// SetTime sets the clock to t, capturing it first if needed.
func (r *Run) SetTime(t time.Duration) error {
	if err := r.CaptureClock(); err != nil {
		return err
	}
	return r.Clock.SetCurrentTime(t)
}

// Put stores c under name, replacing any capture with that name.
func (r *Run) Put(name string, c *Capture) {
	r.captures[name] = c
	slog.Debug("stage.Run: stored capture", "run", r.Name, "capture", name)
}

// Get returns the capture stored under name.
func (r *Run) Get(name string) (*Capture, error) {
	c, ok := r.captures[name]
	if !ok || c == nil || c.Grid == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoCapture, name)
	}
	return c, nil
}

// Compare compares the capture named actual against the one named
// expected with the run engine, using the hints of the expected capture,
// and records the outcome under name. When both captures have depth
// buffers, the depth mismatches are added to the report as a diagnostic.
// Structural errors, such as differing sizes, are returned and abort the
// run; mismatching pixels never do.
func (r *Run) Compare(name, actual, expected string, allowed int) (*compare.Report, error) {
	a, err := r.Get(actual)
	if err != nil {
		return nil, err
	}
	e, err := r.Get(expected)
	if err != nil {
		return nil, err
	}
	rep, err := r.Engine.Verify(a.Grid, e.Grid, e.Hints, allowed)
	if err != nil {
		return nil, fmt.Errorf("stage: comparison %q: %w", name, err)
	}
	if a.Depth != nil && e.Depth != nil {
		if n, err := r.Engine.DepthMismatches(a.Depth, e.Depth); err == nil {
			rep.DepthMismatches = n
		} else {
			errors.Warn(err, "run", r.Name, "comparison", name)
		}
	}
	r.comparisons = append(r.comparisons, Comparison{Name: name, Actual: actual, Expected: expected, Report: rep})
	return rep, nil
}

// Comparisons returns the comparisons recorded so far, in order.
func (r *Run) Comparisons() []Comparison {
	return r.comparisons
}

func (r *Run) releaseClock() error {
	if !r.ownsClock {
		return nil
	}
	r.ownsClock = false
	return r.Clock.Release()
}
