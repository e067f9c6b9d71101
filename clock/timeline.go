// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock provides the animation timeline of a host and the
// [Clock] contract used to freeze it and force it to exact offsets,
// so that captures of animated content are reproducible.
package clock

import (
	"time"
)

// Animation represents the data for an animation driven by a [Timeline].
// You can call [Timeline.Animate] to create one.
type Animation struct {

	// Func is the animation function, which is run every time the
	// timeline time changes. It receives the [Animation] object so that
	// it can reference things such as [Animation.Delta] and set things
	// such as [Animation.Done].
	Func func(a *Animation)

	// Time is the current timeline time.
	Time time.Duration

	// Delta is the amount of time that has passed since the last
	// animation step. It is negative when the time was set backward.
	Delta time.Duration

	// Done can be set to true to permanently stop the animation; the
	// [Animation] object is removed from the timeline after the step.
	Done bool
}

// Driver decides how real time ticks delivered by a host move a [Timeline].
type Driver interface {

	// Advance returns the new timeline time given the current time
	// and the real time that has passed since the last tick.
	Advance(now, delta time.Duration) time.Duration
}

// RealTime is the default [Driver], which advances the timeline
// by the real time that has passed.
type RealTime struct{}

// Advance implements [Driver].
func (RealTime) Advance(now, delta time.Duration) time.Duration {
	return now + delta
}

// frozen is the [Driver] installed by [Manual.Capture]: real time
// ticks do not move the timeline at all.
type frozen struct{}

func (frozen) Advance(now, delta time.Duration) time.Duration {
	return now
}

// Timeline is the animation time of a host. The host calls [Timeline.Tick]
// on every frame; how that moves the time depends on the current [Driver].
// A Timeline is owned by the single host event loop goroutine and is not
// safe for concurrent use.
type Timeline struct {
	now        time.Duration
	driver     Driver
	animations []*Animation
	onRender   []func()
}

// NewTimeline returns a timeline at time zero driven by [RealTime].
func NewTimeline() *Timeline {
	return &Timeline{driver: RealTime{}}
}

// Now returns the current timeline time.
func (tl *Timeline) Now() time.Duration {
	return tl.now
}

// Driver returns the current driver.
func (tl *Timeline) Driver() Driver {
	return tl.driver
}

// SetDriver installs d and returns the previously installed driver.
func (tl *Timeline) SetDriver(d Driver) Driver {
	prev := tl.driver
	tl.driver = d
	return prev
}

// Animate adds a new [Animation] with the given function, which is run
// every time the timeline time changes.
func (tl *Timeline) Animate(f func(a *Animation)) *Animation {
	a := &Animation{Func: f, Time: tl.now}
	tl.animations = append(tl.animations, a)
	return a
}

// OnRender adds a function that is called after the timeline time has
// been changed by [Timeline.Tick] or [Timeline.Seek], to render the new state.
func (tl *Timeline) OnRender(f func()) {
	tl.onRender = append(tl.onRender, f)
}

// Tick advances the timeline according to the current driver, given
// the real time that has passed since the last tick. It returns whether
// the time changed, in which case animations were stepped and the
// render functions were called.
func (tl *Timeline) Tick(delta time.Duration) bool {
	d := tl.driver
	if d == nil {
		d = RealTime{}
	}
	t := d.Advance(tl.now, delta)
	if t == tl.now {
		return false
	}
	tl.Seek(t)
	return true
}

// Seek sets the timeline time to t, which may be earlier than the current
// time, steps all animations, and synchronously calls the render functions
// so that the new time is reflected before it returns.
func (tl *Timeline) Seek(t time.Duration) {
	delta := t - tl.now
	tl.now = t
	live := tl.animations[:0]
	for _, a := range tl.animations {
		a.Delta = delta
		a.Time = t
		a.Func(a)
		if !a.Done {
			live = append(live, a)
		}
	}
	clear(tl.animations[len(live):])
	tl.animations = live
	for _, f := range tl.onRender {
		f()
	}
}
