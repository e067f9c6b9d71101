// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrNotCaptured is returned when the clock is used without being captured.
	ErrNotCaptured = errors.New("clock: timeline is not captured")

	// ErrAlreadyCaptured is returned when capturing a clock that is already captured.
	ErrAlreadyCaptured = errors.New("clock: timeline is already captured")
)

// Clock is the deterministic clock used by a verification run to take
// exclusive control of a host animation timeline.
//
// Between Capture and Release, real time no longer advances the rendered
// animation state, and SetCurrentTime may be called any number of times,
// with any times, including earlier ones.
type Clock interface {

	// Capture takes exclusive control of the timeline.
	Capture() error

	// SetCurrentTime forces the timeline to exactly t and renders
	// synchronously so that the next capture reflects t.
	SetCurrentTime(t time.Duration) error

	// Release restores whatever drove the timeline before Capture.
	Release() error
}

// Manual is the [Clock] for a [Timeline] of this package.
type Manual struct {
	tl       *Timeline
	prev     Driver
	captured bool
}

// NewManual returns a new [Manual] clock for the given timeline.
func NewManual(tl *Timeline) *Manual {
	return &Manual{tl: tl}
}

// Captured returns whether the clock currently holds the timeline.
func (m *Manual) Captured() bool {
	return m.captured
}

// Capture implements [Clock].
func (m *Manual) Capture() error {
	if m.captured {
		return ErrAlreadyCaptured
	}
	m.prev = m.tl.SetDriver(frozen{})
	m.captured = true
	slog.Debug("clock.Manual: captured timeline", "time", m.tl.Now())
	return nil
}

// SetCurrentTime implements [Clock].
func (m *Manual) SetCurrentTime(t time.Duration) error {
	if !m.captured {
		return ErrNotCaptured
	}
	m.tl.Seek(t)
	slog.Debug("clock.Manual: set time", "time", t)
	return nil
}

// Release implements [Clock].
func (m *Manual) Release() error {
	if !m.captured {
		return ErrNotCaptured
	}
	m.tl.SetDriver(m.prev)
	m.prev = nil
	m.captured = false
	slog.Debug("clock.Manual: released timeline", "time", m.tl.Now())
	return nil
}
