// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desktop

import "cogentcore.org/rendercheck/pixel"

// readback holds the pixels last read back from the window together
// with the number of the frame they were drawn from.
type readback struct {
	frame int
	grid  *pixel.Grid
}

// store records grid as the readback of the given frame.
func (rb *readback) store(frame int, grid *pixel.Grid) {
	rb.frame, rb.grid = frame, grid
}

// current returns the readback if it was taken from the given frame,
// and nil if the window has not displayed that frame yet.
func (rb *readback) current(frame int) *pixel.Grid {
	if rb.grid == nil || rb.frame != frame {
		return nil
	}
	return rb.grid
}
