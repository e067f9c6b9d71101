// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"cogentcore.org/rendercheck/render"
)

// Offscreen is a [Host] without a window, for tests and the command line.
type Offscreen struct {
	*Base
}

// NewOffscreen returns a new [Offscreen] host.
func NewOffscreen(size image.Point, bg color.RGBA, rd *render.Renderer) *Offscreen {
	return &Offscreen{Base: NewBase(size, bg, rd)}
}

// HeadlessConfig controls [Offscreen.RunHeadless].
type HeadlessConfig struct {

	// Hz is the number of frames per second; 0 means 60.
	Hz int

	// Frames is the number of frames after which to return; 0 means no limit.
	Frames uint64
}

// RunHeadless makes the calling goroutine the loop goroutine and steps the
// host at the configured rate with real time, until the loop is stopped,
// the configured number of frames has been run, or the context is done.
func (o *Offscreen) RunHeadless(ctx context.Context, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("system: invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	last := time.Now()
	var frame uint64
	o.loop.RunPending()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.loop.Stopped():
			return nil
		case now := <-t.C:
			o.Step(now.Sub(last))
			last = now
			frame++
			if cfg.Frames > 0 && frame >= cfg.Frames {
				return nil
			}
		}
	}
}
