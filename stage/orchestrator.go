// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stage provides the orchestrator that drives a verification run
// through an ordered list of stages on a single-threaded host, one stage
// per tick, letting the host settle between stages.
package stage

import (
	"context"
	"fmt"
	"log/slog"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/clock"
	"cogentcore.org/rendercheck/compare"
)

var (
	// ErrTerminal is returned for any transition attempted once
	// a run has reached [CleanedUp].
	ErrTerminal = errors.New("stage: run is cleaned up")

	// ErrStarted is returned when starting a run that is already started.
	ErrStarted = errors.New("stage: run already started")

	// ErrInvalidStages is returned by [New] for an invalid stage list.
	ErrInvalidStages = errors.New("stage: invalid stage list")

	// ErrPanic wraps a value recovered from a panicking action.
	ErrPanic = errors.New("stage: action panicked")
)

// Stage is one step of a run: the action to perform and the state
// the run is in once it has been performed.
type Stage struct {

	// State is the state entered when Action succeeds.
	// It must not be [Idle] or [CleanedUp].
	State State

	// Name describes the stage in logs and errors.
	Name string

	// Action performs the stage. Returning an error, or panicking,
	// aborts the run.
	Action func(r *Run) error
}

// Ticks is the source of ticks for an [Orchestrator]. It is implemented
// by [events.Ticker].
type Ticks interface {

	// Next schedules fn to run on the host loop once all
	// pending host events have been handled.
	Next(fn func())

	// Stop stops the tick source; no scheduled function runs afterward.
	Stop()
}

// Options are the collaborators of an [Orchestrator].
type Options struct {

	// Clock is the deterministic clock of the host.
	// It may be nil for runs that never set the time.
	Clock clock.Clock

	// Ticks is the tick source. It is required.
	Ticks Ticks

	// Engine does the comparisons; nil means [compare.NewEngine] with
	// the default profile.
	Engine *compare.Engine

	// Reporter receives the result; nil means a [LogReporter].
	Reporter Reporter

	// Cleanup is an optional function run as part of the transition
	// to [CleanedUp], on success and on failure, before the clock
	// is released.
	Cleanup func(r *Run) error
}

// Orchestrator drives one run through its stage list. On every tick it
// performs exactly one stage action and then schedules the next tick,
// which the tick source only runs once the host has settled. After the
// last stage, or as soon as an action fails, it transitions directly to
// [CleanedUp]: it runs the cleanup function, releases the clock, stops
// the tick source and reports the [Result].
//
// An Orchestrator is used from the host loop goroutine only, except for
// [Orchestrator.Done] and [Orchestrator.Result] after Done is closed.
type Orchestrator struct {
	name     string
	stages   []Stage
	opts     Options
	index    int
	state    State
	history  []State
	executed int
	started  bool
	run      *Run
	result   *Result
	done     chan struct{}
}

// New returns a new orchestrator for the named run with the given stages.
func New(name string, stages []Stage, opts Options) (*Orchestrator, error) {
	if opts.Ticks == nil {
		return nil, fmt.Errorf("%w: %s: no tick source", ErrInvalidStages, name)
	}
	for i, st := range stages {
		switch {
		case !st.State.Valid() || st.State == Idle || st.State == CleanedUp:
			return nil, fmt.Errorf("%w: %s: stage %d (%s) has state %v", ErrInvalidStages, name, i, st.Name, st.State)
		case st.Action == nil:
			return nil, fmt.Errorf("%w: %s: stage %d (%s) has no action", ErrInvalidStages, name, i, st.Name)
		}
	}
	if opts.Engine == nil {
		opts.Engine = compare.NewEngine(nil)
	}
	if opts.Reporter == nil {
		opts.Reporter = &LogReporter{}
	}
	return &Orchestrator{
		name:    name,
		stages:  stages,
		opts:    opts,
		state:   Idle,
		history: []State{Idle},
		done:    make(chan struct{}),
	}, nil
}

// Name returns the name of the run.
func (o *Orchestrator) Name() string { return o.name }

// State returns the current state.
func (o *Orchestrator) State() State { return o.state }

// Index returns the index of the next stage to perform.
func (o *Orchestrator) Index() int { return o.index }

// Done returns a channel that is closed once the run has reached [CleanedUp].
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Result returns the result of the run, or nil until [Orchestrator.Done]
// is closed.
func (o *Orchestrator) Result() *Result {
	select {
	case <-o.done:
		return o.result
	default:
		return nil
	}
}

// Start starts the run by scheduling its first tick. The context is
// checked on every tick; once it is done, the run is aborted at the
// next tick with the context error.
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.state == CleanedUp {
		return ErrTerminal
	}
	if o.started {
		return ErrStarted
	}
	o.started = true
	o.run = newRun(ctx, o.name, o.opts.Clock, o.opts.Engine)
	slog.Debug("stage.Orchestrator: start", "run", o.name, "stages", len(o.stages))
	o.opts.Ticks.Next(o.tick)
	return nil
}

func (o *Orchestrator) tick() {
	if o.Step() != nil || o.state == CleanedUp {
		return
	}
	o.opts.Ticks.Next(o.tick)
}

// Step performs one transition: the action of the next stage, or the
// transition to [CleanedUp] when there are no stages left, the action
// failed, or the context is done. It is what every tick runs, and it
// returns [ErrTerminal] once the run is cleaned up. Errors of actions
// are not returned; they end the run and are part of its [Result].
func (o *Orchestrator) Step() error {
	if o.state == CleanedUp {
		return ErrTerminal
	}
	if !o.started {
		return fmt.Errorf("stage: run %q is not started", o.name)
	}
	if o.index >= len(o.stages) {
		o.finish(nil)
		return nil
	}
	if err := o.run.ctx.Err(); err != nil {
		o.finish(fmt.Errorf("stage: %s: canceled before stage %d: %w", o.name, o.index, err))
		return nil
	}
	st := o.stages[o.index]
	o.executed++
	if err := perform(st.Action, o.run); err != nil {
		o.finish(fmt.Errorf("stage: %s: stage %d (%s): %w", o.name, o.index, st.Name, err))
		return nil
	}
	o.enter(st.State)
	o.index++
	return nil
}

func (o *Orchestrator) enter(s State) {
	slog.Debug("stage.Orchestrator: transition", "run", o.name, "from", o.state, "to", s, "index", o.index)
	o.state = s
	o.history = append(o.history, s)
}

// finish is the transition to CleanedUp, taken exactly once.
func (o *Orchestrator) finish(err error) {
	if o.opts.Cleanup != nil {
		if cerr := perform(o.opts.Cleanup, o.run); cerr != nil {
			err = errors.Join(err, fmt.Errorf("stage: %s: cleanup: %w", o.name, cerr))
		}
	}
	if rerr := o.run.releaseClock(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("stage: %s: releasing clock: %w", o.name, rerr))
	}
	o.opts.Ticks.Stop()
	o.enter(CleanedUp)
	o.result = o.tally(err)
	o.opts.Reporter.Report(o.result)
	close(o.done)
}

func (o *Orchestrator) tally(err error) *Result {
	r := &Result{
		Name:        o.name,
		Executed:    o.executed,
		History:     o.history,
		Comparisons: o.run.Comparisons(),
		Err:         err,
	}
	for _, c := range r.Comparisons {
		r.Mismatches += c.Report.Mismatches
		if c.Report.Passed() {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	switch {
	case err != nil:
		r.Verdict = Error
	case r.Failed > 0:
		r.Verdict = Fail
	default:
		r.Verdict = Pass
	}
	return r
}

// perform runs f, converting a panic into an error wrapping [ErrPanic].
func perform(f func(r *Run) error, r *Run) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return f(r)
}
