// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events provides the single-threaded, cooperative event loop
// of a host, including the ability to run work only once the host has
// settled, that is, after all pending events have been handled.
package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Loop is a single-threaded event loop. Events can be sent from any
// goroutine, but they are all handled, one at a time, on the goroutine
// that calls [Loop.Run] or [Loop.RunPending].
type Loop struct {
	events   Queue[func()]
	idle     Queue[func()]
	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	handled  atomic.Uint64
}

// NewLoop returns a new, initialized [Loop].
func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	l.events.Init()
	l.idle.Init()
	return l
}

// Send queues fn to be handled as an event on the loop goroutine.
func (l *Loop) Send(fn func()) {
	l.events.Send(fn)
	l.signal()
}

// AfterIdle queues fn to run on the loop goroutine once the event queue
// is empty, including any events sent while handling the ones pending now.
// Functions queued with AfterIdle run one at a time in the order they were
// queued, and the event queue is drained again before each of them, so that
// a later one never observes the host before the effects of an earlier one
// have been handled. This is the only point at which a host yields between
// the steps of a multi-step operation.
func (l *Loop) AfterIdle(fn func()) {
	l.idle.Send(fn)
	l.signal()
}

// Pending returns the number of events and idle functions waiting to run.
func (l *Loop) Pending() int {
	return int(l.events.Len() + l.idle.Len())
}

// Handled returns the total number of events and idle functions run so far.
func (l *Loop) Handled() uint64 {
	return l.handled.Load()
}

// RunPending handles events, and idle functions whenever there are no
// events, until there is nothing left to do. It returns the number of
// events and idle functions that were run. It must only be called from
// the loop goroutine.
func (l *Loop) RunPending() int {
	n := 0
	for {
		for {
			fn, ok := l.events.Next()
			if !ok {
				break
			}
			fn()
			n++
		}
		fn, ok := l.idle.Next()
		if !ok {
			break
		}
		fn()
		n++
	}
	l.handled.Add(uint64(n))
	return n
}

// Run makes the calling goroutine the loop goroutine and handles events
// until [Loop.Stop] is called, in which case it returns nil, or the
// context is done, in which case it returns the context error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-l.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Stop makes [Loop.Run] return once the event it is handling is done.
// It is safe to call from any goroutine, and more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stopped returns a channel that is closed once [Loop.Stop] is called.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stop
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Ticker delivers ticks to a single multi-step operation on a [Loop]:
// each tick runs after the loop has settled, and no ticks run once the
// ticker is stopped.
type Ticker struct {
	loop    *Loop
	stopped atomic.Bool
	done    chan struct{}
}

// NewTicker returns a new [Ticker] for the loop.
func (l *Loop) NewTicker() *Ticker {
	return &Ticker{loop: l, done: make(chan struct{})}
}

// Next schedules fn as the next tick, to run with [Loop.AfterIdle].
// It does nothing if the ticker is stopped, and fn is dropped if the
// ticker is stopped before it runs.
func (t *Ticker) Next(fn func()) {
	if t.stopped.Load() {
		return
	}
	t.loop.AfterIdle(func() {
		if !t.stopped.Load() {
			fn()
		}
	})
}

// Stop stops the ticker. It is safe to call more than once.
func (t *Ticker) Stop() {
	if t.stopped.CompareAndSwap(false, true) {
		close(t.done)
	}
}

// Stopped returns whether the ticker has been stopped.
func (t *Ticker) Stopped() bool {
	return t.stopped.Load()
}

// Done returns a channel that is closed when the ticker is stopped.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
