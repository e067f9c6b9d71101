// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verify provides stage lists for common verification scenarios
// on a [system.Host], and functions to run them.
package verify

import (
	"context"
	"fmt"
	"time"

	"cogentcore.org/rendercheck/base/iox/imagex"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/render"
	"cogentcore.org/rendercheck/stage"
	"cogentcore.org/rendercheck/system"
)

// Options are the options common to all scenarios.
type Options struct {

	// Host is the host to verify.
	Host system.Host

	// Allowed is the number of mismatching pixels tolerated;
	// [compare.Strict] means none.
	Allowed int

	// Saver, if not nil, exports diagnostic images of failing
	// comparisons into OutputDir.
	Saver imagex.Saver

	// OutputDir is the directory of exported images.
	OutputDir string

	// ExportAlways exports diagnostic images of passing comparisons too.
	ExportAlways bool
}

// SnapshotOptions are the options of [Snapshot].
type SnapshotOptions struct {
	Options

	// At is the time at which to capture the host.
	At time.Duration

	// Expected is the scene whose rendering at time At the host must display.
	Expected *render.Scene
}

// Snapshot returns the stages of a run that sets the host time, renders
// the expected scene at that time, captures the host, and compares the
// capture against the expected rendering.
func Snapshot(name string, opts SnapshotOptions) []stage.Stage {
	h := opts.Host
	return []stage.Stage{
		setTime(opts.At),
		{State: stage.Rendered, Name: "render expected", Action: func(r *stage.Run) error {
			if opts.Expected == nil {
				return fmt.Errorf("verify: %s: no expected scene", name)
			}
			f, err := h.Renderer().Render(opts.Expected.At(opts.At), h.Size(), h.Background())
			if err != nil {
				return err
			}
			r.Put(Expected, &stage.Capture{Grid: f.Color, Depth: f.Depth, Hints: f.Hints})
			return nil
		}},
		capture(h, Actual),
		compareStage(name, Actual, Expected, opts.Options),
	}
}

// BeforeAfterOptions are the options of [BeforeAfter].
type BeforeAfterOptions struct {
	Options

	// Before and After are the times of the two captures.
	Before, After time.Duration

	// Change changes the host between the two captures, for example
	// by removing an overlay that must not affect the frame.
	Change func(h system.Host) error
}

// BeforeAfter returns the stages of a run that captures the host, changes
// it, captures it again, possibly at another time, and compares the second
// capture against the first.
func BeforeAfter(name string, opts BeforeAfterOptions) []stage.Stage {
	h := opts.Host
	return []stage.Stage{
		setTime(opts.Before),
		capture(h, Before),
		{State: stage.Rendered, Name: "change", Action: func(r *stage.Run) error {
			if opts.Change == nil {
				return nil
			}
			return opts.Change(h)
		}},
		setTime(opts.After),
		capture(h, After),
		compareStage(name, After, Before, opts.Options),
	}
}

// Names of the captures stored by the scenarios.
const (
	Actual   = "actual"
	Expected = "expected"
	Before   = "before"
	After    = "after"
)

func setTime(t time.Duration) stage.Stage {
	return stage.Stage{State: stage.TimeSet, Name: fmt.Sprint("set time ", t), Action: func(r *stage.Run) error {
		return r.SetTime(t)
	}}
}

func capture(h system.Host, name string) stage.Stage {
	return stage.Stage{State: stage.Captured, Name: "capture " + name, Action: func(r *stage.Run) error {
		g, err := h.Capture()
		if err != nil {
			return err
		}
		c := &stage.Capture{Grid: g}
		if f := h.Frame(); f != nil && f.Color.SameSize(g) {
			c.Depth, c.Hints = f.Depth, f.Hints
		}
		r.Put(name, c)
		return nil
	}}
}

func compareStage(name, actual, expected string, opts Options) stage.Stage {
	return stage.Stage{State: stage.Compared, Name: "compare", Action: func(r *stage.Run) error {
		rep, err := r.Compare(name, actual, expected, opts.Allowed)
		if err != nil {
			return err
		}
		if opts.Saver != nil && (opts.ExportAlways || !rep.Passed()) {
			a, _ := r.Get(actual)
			e, _ := r.Get(expected)
			Export(opts.Saver, opts.OutputDir, r.Name+"_"+name, a, e, rep)
		}
		return nil
	}}
}

// New returns an orchestrator for the named run of the stages on the host,
// ticked by the host loop and controlling the host clock.
func New(h system.Host, name string, stages []stage.Stage, engine *compare.Engine, rep stage.Reporter) (*stage.Orchestrator, error) {
	return stage.New(name, stages, stage.Options{
		Clock:    h.Clock(),
		Ticks:    h.Loop().NewTicker(),
		Engine:   engine,
		Reporter: rep,
	})
}

// RunOffscreen starts the orchestrator on the offscreen host and steps
// the host, without real time passing, until the run is cleaned up.
func RunOffscreen(ctx context.Context, h *system.Offscreen, o *stage.Orchestrator) (*stage.Result, error) {
	if err := o.Start(ctx); err != nil {
		return nil, err
	}
	for {
		h.Step(0)
		select {
		case <-o.Done():
			return o.Result(), nil
		default:
		}
		if h.Loop().Pending() == 0 {
			return nil, fmt.Errorf("verify: run %q stalled in state %v", o.Name(), o.State())
		}
	}
}

// RunHeadless runs the orchestrator on the offscreen host with real time,
// as [system.Offscreen.RunHeadless] does, until the run is cleaned up.
// If the host stops first, because the context is done or the frame limit
// is reached, the pending events are handled so that the run still ends
// in [stage.CleanedUp], with an error if the context is done.
func RunHeadless(ctx context.Context, h *system.Offscreen, o *stage.Orchestrator, cfg system.HeadlessConfig) (*stage.Result, error) {
	var startErr error
	h.Loop().Send(func() {
		if startErr = o.Start(ctx); startErr != nil {
			h.Loop().Stop()
		}
	})
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		select {
		case <-o.Done():
			h.Loop().Stop()
		case <-quit:
		}
	}()
	err := h.RunHeadless(ctx, cfg)
	if startErr != nil {
		return nil, startErr
	}
	if o.Result() == nil {
		h.Loop().RunPending()
	}
	if res := o.Result(); res != nil {
		return res, nil
	}
	if err == nil {
		err = fmt.Errorf("verify: run %q did not finish", o.Name())
	}
	return nil, err
}
