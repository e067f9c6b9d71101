// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pixel

import (
	"fmt"
	"image"
	"math"
)

// ToleranceBuffer is a per-pixel grid of allowed color deviations,
// in 0-255 channel units, that accompanies a reference grid of the
// same size. The tolerance at a pixel applies to every channel.
type ToleranceBuffer struct {
	width, height int
	vals          []float32
}

// NewToleranceBuffer returns a width x height buffer with every value set to v.
func NewToleranceBuffer(width, height int, v float32) *ToleranceBuffer {
	tb := &ToleranceBuffer{width: max(width, 0), height: max(height, 0)}
	tb.vals = make([]float32, tb.width*tb.height)
	if v != 0 {
		for i := range tb.vals {
			tb.vals[i] = v
		}
	}
	return tb
}

// NewToleranceFunc returns a width x height buffer with values given by f.
// Negative values are clamped to 0.
func NewToleranceFunc(width, height int, f func(x, y int) float32) *ToleranceBuffer {
	tb := NewToleranceBuffer(width, height, 0)
	for y := 0; y < tb.height; y++ {
		for x := 0; x < tb.width; x++ {
			tb.vals[y*tb.width+x] = max(f(x, y), 0)
		}
	}
	return tb
}

// Width returns the number of columns.
func (tb *ToleranceBuffer) Width() int { return tb.width }

// Height returns the number of rows.
func (tb *ToleranceBuffer) Height() int { return tb.height }

// Size returns the width and height as a point.
func (tb *ToleranceBuffer) Size() image.Point { return image.Pt(tb.width, tb.height) }

// At returns the tolerance at (x, y), or [ErrOutOfRange].
func (tb *ToleranceBuffer) At(x, y int) (float32, error) {
	if x < 0 || y < 0 || x >= tb.width || y >= tb.height {
		return 0, fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, tb.width, tb.height)
	}
	return tb.vals[y*tb.width+x], nil
}

// Value returns the tolerance at (x, y) without checking bounds.
func (tb *ToleranceBuffer) Value(x, y int) float32 {
	return tb.vals[y*tb.width+x]
}

// Max returns a new buffer holding the element-wise maximum of tb and o,
// which must have the same size.
func (tb *ToleranceBuffer) Max(o *ToleranceBuffer) (*ToleranceBuffer, error) {
	if tb.Size() != o.Size() {
		return nil, fmt.Errorf("pixel.ToleranceBuffer.Max: size %v does not match %v", o.Size(), tb.Size())
	}
	n := NewToleranceBuffer(tb.width, tb.height, 0)
	for i, v := range tb.vals {
		n.vals[i] = max(v, o.vals[i])
	}
	return n, nil
}

// Min returns the smallest tolerance in the buffer, or 0 if it is empty.
func (tb *ToleranceBuffer) Min() float32 {
	if len(tb.vals) == 0 {
		return 0
	}
	m := float32(math.MaxFloat32)
	for _, v := range tb.vals {
		m = min(m, v)
	}
	return m
}

// Image returns a gray visualization of the buffer, with a tolerance
// of 255 or more shown as white.
func (tb *ToleranceBuffer) Image() *image.Gray {
	im := image.NewGray(image.Rect(0, 0, tb.width, tb.height))
	for i, v := range tb.vals {
		im.Pix[i] = uint8(min(v, 255))
	}
	return im
}

// DepthBuffer is a per-pixel grid of depth samples that accompanies a
// rendered grid. It is used for diagnostics only, never for verdicts.
type DepthBuffer struct {
	width, height int
	vals          []float32
}

// NewDepthFunc returns a width x height depth buffer with values given by f.
func NewDepthFunc(width, height int, f func(x, y int) float32) *DepthBuffer {
	db := &DepthBuffer{width: max(width, 0), height: max(height, 0)}
	db.vals = make([]float32, db.width*db.height)
	for y := 0; y < db.height; y++ {
		for x := 0; x < db.width; x++ {
			db.vals[y*db.width+x] = f(x, y)
		}
	}
	return db
}

// Width returns the number of columns.
func (db *DepthBuffer) Width() int { return db.width }

// Height returns the number of rows.
func (db *DepthBuffer) Height() int { return db.height }

// Size returns the width and height as a point.
func (db *DepthBuffer) Size() image.Point { return image.Pt(db.width, db.height) }

// At returns the depth at (x, y), or [ErrOutOfRange].
func (db *DepthBuffer) At(x, y int) (float32, error) {
	if x < 0 || y < 0 || x >= db.width || y >= db.height {
		return 0, fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, db.width, db.height)
	}
	return db.vals[y*db.width+x], nil
}

// Value returns the depth at (x, y) without checking bounds.
func (db *DepthBuffer) Value(x, y int) float32 {
	return db.vals[y*db.width+x]
}

// Image returns a gray visualization of the buffer, mapping the
// nearest (smallest) depth to white and the farthest to black.
func (db *DepthBuffer) Image() *image.Gray {
	im := image.NewGray(image.Rect(0, 0, db.width, db.height))
	if len(db.vals) == 0 {
		return im
	}
	lo, hi := db.vals[0], db.vals[0]
	for _, v := range db.vals {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	for i, v := range db.vals {
		if rng == 0 {
			im.Pix[i] = 255
			continue
		}
		im.Pix[i] = uint8(255 - 255*(v-lo)/rng)
	}
	return im
}
