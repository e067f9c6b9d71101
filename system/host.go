// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package system provides the hosts that verification runs drive: a
// single-threaded event loop, an animation timeline, and a scene that is
// rendered into the frame that captures read back.
package system

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"time"

	"cogentcore.org/rendercheck/clock"
	"cogentcore.org/rendercheck/events"
	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/render"
)

// ErrNoFrame is returned when capturing a host that has not presented a frame.
var ErrNoFrame = errors.New("system: no frame has been presented")

// Host is a host that displays a scene. All of its methods other than
// [Host.Loop] must only be called on the loop goroutine.
type Host interface {

	// Loop returns the event loop of the host.
	Loop() *events.Loop

	// Timeline returns the animation timeline of the host.
	Timeline() *clock.Timeline

	// Clock returns the deterministic clock of the timeline.
	Clock() clock.Clock

	// Renderer returns the renderer of the host.
	Renderer() *render.Renderer

	// Scene returns the scene being displayed, which may be nil.
	Scene() *render.Scene

	// SetScene sets the scene to display. It is rendered by an event
	// sent to the loop, so it is presented once the host has settled.
	SetScene(s *render.Scene)

	// Size returns the size of the frame.
	Size() image.Point

	// Background returns the background color of the frame.
	Background() color.RGBA

	// Frame returns the last presented frame, or nil if there is none.
	Frame() *render.Frame

	// Capture returns the last presented frame as displayed.
	Capture() (*pixel.Grid, error)
}

// Base contains the data and logic common to all implementations of [Host].
// It renders the scene at the timeline time whenever the timeline time
// changes, and whenever the scene changes once pending events are handled.
type Base struct {
	loop     *events.Loop
	timeline *clock.Timeline
	clock    *clock.Manual
	renderer *render.Renderer
	scene    *render.Scene
	size     image.Point
	bg       color.RGBA
	frame    *render.Frame
	dirty    bool
	frames   int
}

// NewBase returns a new [Base] for frames of the given size and background
// color rendered with the given renderer, or a default one if it is nil.
func NewBase(size image.Point, bg color.RGBA, rd *render.Renderer) *Base {
	if rd == nil {
		rd = render.NewRenderer(nil)
	}
	b := &Base{
		loop:     events.NewLoop(),
		timeline: clock.NewTimeline(),
		renderer: rd,
		size:     size,
		bg:       bg,
	}
	b.clock = clock.NewManual(b.timeline)
	b.timeline.OnRender(func() { b.Redraw() })
	return b
}

func (b *Base) Loop() *events.Loop         { return b.loop }
func (b *Base) Timeline() *clock.Timeline  { return b.timeline }
func (b *Base) Clock() clock.Clock         { return b.clock }
func (b *Base) Renderer() *render.Renderer { return b.renderer }
func (b *Base) Scene() *render.Scene       { return b.scene }
func (b *Base) Size() image.Point          { return b.size }
func (b *Base) Background() color.RGBA     { return b.bg }
func (b *Base) Frame() *render.Frame       { return b.frame }

// Frames returns the number of frames presented so far.
func (b *Base) Frames() int { return b.frames }

// SetScene implements [Host].
func (b *Base) SetScene(s *render.Scene) {
	b.scene = s
	b.Invalidate()
}

// Invalidate marks the frame as needing to be rendered again,
// which happens in an event sent to the loop.
func (b *Base) Invalidate() {
	if b.dirty {
		return
	}
	b.dirty = true
	b.loop.Send(func() {
		if b.dirty {
			b.Redraw()
		}
	})
}

// Redraw renders the scene at the current timeline time and presents it.
// Errors are logged, and the previous frame stays presented.
func (b *Base) Redraw() error {
	b.dirty = false
	if b.scene == nil {
		return nil
	}
	f, err := b.renderer.Render(b.scene.At(b.timeline.Now()), b.size, b.bg)
	if err != nil {
		slog.Error("system: rendering scene", "scene", b.scene.Name, "err", err)
		return err
	}
	b.frame = f
	b.frames++
	return nil
}

// Capture implements [Host].
func (b *Base) Capture() (*pixel.Grid, error) {
	if b.frame == nil {
		return nil, ErrNoFrame
	}
	return b.frame.Color, nil
}

// Step advances the host by one frame, delta after the previous one:
// it ticks the timeline, which renders if its time changed, renders if
// the frame is otherwise out of date, and handles all pending events.
func (b *Base) Step(delta time.Duration) {
	if !b.timeline.Tick(delta) && b.dirty {
		b.Redraw()
	}
	b.loop.RunPending()
}
