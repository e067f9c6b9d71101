// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Result is the final tally of a run, emitted exactly once when the
// run reaches [CleanedUp].
type Result struct {

	// Name is the name of the run.
	Name string

	// Verdict is the outcome of the run as a whole.
	Verdict Verdict

	// Passed and Failed are the numbers of passing and failing comparisons.
	Passed, Failed int

	// Mismatches is the total number of mismatching pixels over all comparisons.
	Mismatches int

	// Executed is the number of stage actions that ran, including
	// an action that failed.
	Executed int

	// History is every state the run was in, in order,
	// from [Idle] to [CleanedUp].
	History []State

	// Comparisons are the comparisons recorded by the run.
	Comparisons []Comparison

	// Err is the error that aborted the run, joined with any
	// error from cleaning up. It is nil unless Verdict is [Error].
	Err error
}

// Stats returns a one-line summary of the result.
func (r *Result) Stats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %d passed, %d failed, %d mismatched pixels, %d actions",
		r.Name, r.Verdict, r.Passed, r.Failed, r.Mismatches, r.Executed)
	if r.Err != nil {
		fmt.Fprintf(&b, ": %v", r.Err)
	}
	return b.String()
}

// Reporter receives the [Result] of every run.
type Reporter interface {
	Report(r *Result)
}

// ReporterFunc is a function that implements [Reporter].
type ReporterFunc func(r *Result)

// Report implements [Reporter].
func (f ReporterFunc) Report(r *Result) { f(r) }

// LogReporter is a [Reporter] that logs every result, at the info level
// when it passed and the error level otherwise, followed by the stats of
// every comparison at the debug level.
type LogReporter struct {

	// Logger is the logger to use; nil means [slog.Default].
	Logger *slog.Logger
}

// Report implements [Reporter].
func (lr *LogReporter) Report(r *Result) {
	l := lr.Logger
	if l == nil {
		l = slog.Default()
	}
	args := []any{"verdict", r.Verdict.String(), "passed", r.Passed, "failed", r.Failed, "mismatches", r.Mismatches}
	switch r.Verdict {
	case Pass:
		l.Info(r.Name, args...)
	case Error:
		l.Error(r.Name, append(args, "err", r.Err)...)
	default:
		l.Error(r.Name, args...)
	}
	for _, c := range r.Comparisons {
		l.Debug(r.Name+"/"+c.Name, "stats", c.Report.Stats())
	}
}

// Tally is a [Reporter] that accumulates results over many runs.
// It is safe for concurrent use.
type Tally struct {
	mu         sync.Mutex
	runs       int
	passed     int
	failed     int
	errors     int
	mismatches int
	results    []*Result
}

// Report implements [Reporter].
func (t *Tally) Report(r *Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	switch r.Verdict {
	case Pass:
		t.passed++
	case Fail:
		t.failed++
	default:
		t.errors++
	}
	t.mismatches += r.Mismatches
	t.results = append(t.results, r)
}

// Counts returns the numbers of passing, failing and errored runs,
// and the total number of mismatching pixels.
func (t *Tally) Counts() (passed, failed, errored, mismatches int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.passed, t.failed, t.errors, t.mismatches
}

// Results returns a copy of the results reported so far.
func (t *Tally) Results() []*Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Result(nil), t.results...)
}

// OK returns whether every run reported so far passed.
func (t *Tally) OK() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed == 0 && t.errors == 0
}

// String returns a summary of the tally.
func (t *Tally) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%d runs: %d passed, %d failed, %d errors, %d mismatched pixels",
		t.runs, t.passed, t.failed, t.errors, t.mismatches)
}

// Reporters returns a [Reporter] that reports to all of the given ones in order.
func Reporters(rs ...Reporter) Reporter {
	return ReporterFunc(func(r *Result) {
		for _, rp := range rs {
			if rp != nil {
				rp.Report(r)
			}
		}
	})
}
