// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import "strconv"

// State is the stage cursor of an [Orchestrator].
type State int32

const (
	// Idle is the state before the first action has run.
	Idle State = iota

	// TimeSet is the state after the timeline has been set to a time.
	TimeSet

	// Rendered is the state after a scene has been rendered.
	Rendered

	// Captured is the state after a frame has been captured.
	// It may be entered any number of times in one run.
	Captured

	// Compared is the state after captures have been compared.
	Compared

	// CleanedUp is the terminal state: the clock has been released
	// and the tick source stopped. No transitions are valid from it.
	CleanedUp

	// StatesN is the number of states.
	StatesN
)

var stateNames = [StatesN]string{"Idle", "TimeSet", "Rendered", "Captured", "Compared", "CleanedUp"}

// String returns the name of the state.
func (s State) String() string {
	if s < 0 || s >= StatesN {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// Valid returns whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= 0 && s < StatesN
}

// Verdict is the outcome of a whole run.
type Verdict int32

const (
	// Pass means every comparison of the run passed.
	Pass Verdict = iota

	// Fail means the run completed, but at least one comparison failed.
	Fail

	// Error means the run was aborted by an error in an action
	// or in cleanup, so the test infrastructure, not the rendering, broke.
	Error
)

var verdictNames = [...]string{"pass", "fail", "error"}

// String returns "pass", "fail" or "error".
func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return "Verdict(" + strconv.Itoa(int(v)) + ")"
	}
	return verdictNames[v]
}
