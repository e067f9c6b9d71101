// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"cogentcore.org/rendercheck/clock"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/events"
	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{255, 0, 0, 255}

// start runs the stages to completion on a fresh loop and returns the result.
func start(t *testing.T, stages []Stage, opts Options) (*Orchestrator, *Result) {
	t.Helper()
	loop := events.NewLoop()
	opts.Ticks = loop.NewTicker()
	if opts.Reporter == nil {
		opts.Reporter = ReporterFunc(func(*Result) {})
	}
	o, err := New("test", stages, opts)
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	loop.RunPending()
	select {
	case <-o.Done():
	default:
		t.Fatal("run did not finish")
	}
	return o, o.Result()
}

func counting(n int, count *int, fail int, failWith func() error) []Stage {
	states := []State{TimeSet, Rendered, Captured, Captured, Compared}
	stages := make([]Stage, n)
	for i := range stages {
		i := i
		stages[i] = Stage{State: states[i%len(states)], Name: fmt.Sprint("stage ", i), Action: func(r *Run) error {
			*count++
			if i+1 == fail {
				return failWith()
			}
			return nil
		}}
	}
	return stages
}

func TestAllStagesRun(t *testing.T) {
	for n := 0; n <= 7; n++ {
		count := 0
		o, res := start(t, counting(n, &count, 0, nil), Options{})
		assert.Equal(t, n, count)
		assert.Equal(t, n, res.Executed)
		assert.Equal(t, Pass, res.Verdict)
		assert.NoError(t, res.Err)
		assert.Equal(t, CleanedUp, o.State())
		assert.Len(t, res.History, n+2)
		assert.Equal(t, Idle, res.History[0])
		assert.Equal(t, CleanedUp, res.History[n+1])
	}
}

func TestErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	for i := 1; i <= 5; i++ {
		count := 0
		_, res := start(t, counting(5, &count, i, func() error { return boom }), Options{})
		assert.Equal(t, i, count, "failing at stage %d", i)
		assert.Equal(t, i, res.Executed)
		assert.Equal(t, Error, res.Verdict)
		assert.ErrorIs(t, res.Err, boom)
		// only the successful stages are entered, then CleanedUp directly
		assert.Len(t, res.History, i+1)
		assert.Equal(t, CleanedUp, res.History[len(res.History)-1])
	}
}

func TestPanicAbortsRun(t *testing.T) {
	count := 0
	_, res := start(t, counting(4, &count, 2, func() error { panic("bad capture") }), Options{})
	assert.Equal(t, 2, count)
	assert.Equal(t, Error, res.Verdict)
	assert.ErrorIs(t, res.Err, ErrPanic)
	assert.Contains(t, res.Err.Error(), "bad capture")
}

func TestCleanupAndClockRelease(t *testing.T) {
	for _, fail := range []bool{false, true} {
		tl := clock.NewTimeline()
		clk := clock.NewManual(tl)
		cleaned := false
		stages := []Stage{
			{State: TimeSet, Name: "set time", Action: func(r *Run) error {
				assert.NoError(t, r.SetTime(time.Second))
				assert.True(t, r.OwnsClock())
				return nil
			}},
			{State: Captured, Name: "capture", Action: func(r *Run) error {
				if fail {
					return errors.New("capture failed")
				}
				return nil
			}},
		}
		_, res := start(t, stages, Options{Clock: clk, Cleanup: func(r *Run) error {
			cleaned = true
			assert.True(t, clk.Captured(), "cleanup runs before the clock is released")
			return nil
		}})
		assert.True(t, cleaned)
		assert.False(t, clk.Captured())
		assert.Equal(t, time.Second, tl.Now())
		assert.Equal(t, clock.RealTime{}, tl.Driver())
		if fail {
			assert.Equal(t, Error, res.Verdict)
		} else {
			assert.Equal(t, Pass, res.Verdict)
		}
	}
}

func TestCleanupError(t *testing.T) {
	_, res := start(t, counting(2, new(int), 0, nil), Options{Cleanup: func(r *Run) error {
		return errors.New("cannot remove overlay")
	}})
	assert.Equal(t, Error, res.Verdict)
	assert.ErrorContains(t, res.Err, "cannot remove overlay")
}

func TestStagesWaitForSettle(t *testing.T) {
	loop := events.NewLoop()
	applied := false
	stages := []Stage{
		{State: Rendered, Name: "invalidate", Action: func(r *Run) error {
			loop.Send(func() {
				loop.Send(func() { applied = true })
			})
			return nil
		}},
		{State: Captured, Name: "observe", Action: func(r *Run) error {
			if !applied {
				return errors.New("host did not settle")
			}
			return nil
		}},
	}
	var res *Result
	o, err := New("settle", stages, Options{Ticks: loop.NewTicker(), Reporter: ReporterFunc(func(r *Result) { res = r })})
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	loop.RunPending()
	require.NotNil(t, res)
	assert.Equal(t, Pass, res.Verdict)
}

func TestContextCancel(t *testing.T) {
	loop := events.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	stages := counting(4, &count, 0, nil)
	stages[1].Action = func(r *Run) error {
		count++
		cancel()
		return nil
	}
	o, err := New("cancel", stages, Options{Ticks: loop.NewTicker(), Reporter: ReporterFunc(func(*Result) {})})
	require.NoError(t, err)
	require.NoError(t, o.Start(ctx))
	loop.RunPending()
	res := o.Result()
	require.NotNil(t, res)
	assert.Equal(t, 2, count)
	assert.Equal(t, Error, res.Verdict)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestTerminal(t *testing.T) {
	o, _ := start(t, counting(1, new(int), 0, nil), Options{})
	assert.ErrorIs(t, o.Step(), ErrTerminal)
	assert.ErrorIs(t, o.Start(context.Background()), ErrTerminal)
	assert.Equal(t, CleanedUp, o.State())
}

func TestStartTwice(t *testing.T) {
	loop := events.NewLoop()
	o, err := New("twice", counting(1, new(int), 0, nil), Options{Ticks: loop.NewTicker(), Reporter: ReporterFunc(func(*Result) {})})
	require.NoError(t, err)
	assert.Nil(t, o.Result())
	require.NoError(t, o.Start(context.Background()))
	assert.ErrorIs(t, o.Start(context.Background()), ErrStarted)
}

func TestNewValidation(t *testing.T) {
	loop := events.NewLoop()
	nop := func(*Run) error { return nil }
	_, err := New("x", nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidStages)
	for _, st := range []Stage{
		{State: Idle, Action: nop},
		{State: CleanedUp, Action: nop},
		{State: StatesN, Action: nop},
		{State: Captured},
	} {
		_, err := New("x", []Stage{st}, Options{Ticks: loop.NewTicker()})
		assert.ErrorIs(t, err, ErrInvalidStages)
	}
}

func TestComparisonVerdicts(t *testing.T) {
	expected := pixel.NewUniform(4, 4, red)
	actual, err := expected.With(2, 1, color.RGBA{255, 10, 0, 255})
	require.NoError(t, err)

	p := tolerance.Default()
	require.NoError(t, p.Override(tolerance.DefaultColor, 8))
	engine := compare.NewEngine(p)

	for _, tc := range []struct {
		allowed int
		verdict Verdict
	}{{compare.Strict, Fail}, {0, Fail}, {1, Pass}, {5, Pass}} {
		stages := []Stage{
			{State: Captured, Name: "capture", Action: func(r *Run) error {
				r.Put("actual", &Capture{Grid: actual})
				r.Put("expected", &Capture{Grid: expected})
				return nil
			}},
			{State: Compared, Name: "compare", Action: func(r *Run) error {
				_, err := r.Compare("red", "actual", "expected", tc.allowed)
				return err
			}},
		}
		_, res := start(t, stages, Options{Engine: engine})
		assert.Equal(t, tc.verdict, res.Verdict, "allowed %d", tc.allowed)
		assert.Equal(t, 1, res.Mismatches)
		require.Len(t, res.Comparisons, 1)
		assert.Equal(t, "red", res.Comparisons[0].Name)
	}
}

func TestMissingCaptureIsError(t *testing.T) {
	stages := []Stage{{State: Compared, Name: "compare", Action: func(r *Run) error {
		_, err := r.Compare("c", "nope", "nada", compare.Strict)
		return err
	}}}
	_, res := start(t, stages, Options{})
	assert.Equal(t, Error, res.Verdict)
	assert.ErrorIs(t, res.Err, ErrNoCapture)
}

func TestDimensionMismatchIsError(t *testing.T) {
	stages := []Stage{{State: Compared, Name: "compare", Action: func(r *Run) error {
		r.Put("a", &Capture{Grid: pixel.NewUniform(2, 2, red)})
		r.Put("b", &Capture{Grid: pixel.NewUniform(3, 2, red)})
		_, err := r.Compare("c", "a", "b", compare.Strict)
		return err
	}}}
	_, res := start(t, stages, Options{})
	assert.Equal(t, Error, res.Verdict)
	assert.ErrorIs(t, res.Err, compare.ErrDimensionMismatch)
	assert.Empty(t, res.Comparisons)
}

func TestTallyAndLogReporter(t *testing.T) {
	var buf bytes.Buffer
	lr := &LogReporter{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	tally := &Tally{}
	rep := Reporters(tally, lr, nil)
	rep.Report(&Result{Name: "a", Verdict: Pass})
	rep.Report(&Result{Name: "b", Verdict: Fail, Failed: 1, Mismatches: 3})
	rep.Report(&Result{Name: "c", Verdict: Error, Err: errors.New("broken")})

	p, f, e, m := tally.Counts()
	assert.Equal(t, []int{1, 1, 1, 3}, []int{p, f, e, m})
	assert.False(t, tally.OK())
	assert.Len(t, tally.Results(), 3)
	assert.Equal(t, "3 runs: 1 passed, 1 failed, 1 errors, 3 mismatched pixels", tally.String())

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=a verdict=pass")
	assert.Contains(t, out, "level=ERROR msg=b verdict=fail")
	assert.Contains(t, out, "err=broken")
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "Captured", Captured.String())
	assert.Equal(t, "CleanedUp", CleanedUp.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "error", Error.String())
	r := &Result{Name: "r", Verdict: Fail, Failed: 1, Mismatches: 2, Executed: 3}
	assert.Equal(t, "r: fail: 0 passed, 1 failed, 2 mismatched pixels, 3 actions", r.Stats())
}
