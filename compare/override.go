// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"cogentcore.org/rendercheck/pixel"
	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

// ErrMalformedOverride is returned for tolerance override files that
// cannot be used. It is fatal for the run that loads the file.
var ErrMalformedOverride = errors.New("compare: malformed tolerance override")

// Override is an externally supplied, scenario specific patch to a derived
// tolerance buffer, read from a VScan tolerance file:
//
//	default: 2
//	regions:
//	  - {x: 0, y: 0, width: 16, height: 4, tolerance: 32}
//	pixels:
//	  - {x: 3, y: 3, tolerance: 255}
//
// It is merged with a buffer by taking the maximum at every pixel, so it
// can only make a comparison more lenient.
type Override struct {

	// Default is a floor applied to every pixel.
	Default float32 `yaml:"default"`

	// Regions raise the tolerance of rectangular areas.
	Regions []Region `yaml:"regions"`

	// Pixels raise the tolerance of single pixels.
	Pixels []Point `yaml:"pixels"`
}

// Region is a rectangle with a tolerance, in 0-255 channel units.
type Region struct {
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Tolerance float32 `yaml:"tolerance"`
}

// Rect returns the region as a rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Point is a single pixel with a tolerance, in 0-255 channel units.
type Point struct {
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Tolerance float32 `yaml:"tolerance"`
}

// LoadOverride reads the VScan tolerance file with the given name.
// An empty filename means that there is no override, and returns nil
// with no error; a nil *Override is a valid no-op. Files that cannot be
// parsed or that contain negative values fail with [ErrMalformedOverride].
func LoadOverride(filename string) (*Override, error) {
	if filename == "" {
		return nil, nil
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ov, err := ReadOverride(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ov, nil
}

// ReadOverride reads a VScan tolerance file from r. See [LoadOverride].
func ReadOverride(r io.Reader) (*Override, error) {
	ov := &Override{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(ov); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOverride, err)
	}
	if err := ov.validate(); err != nil {
		return nil, err
	}
	return ov, nil
}

func (ov *Override) validate() error {
	if !validTolerance(ov.Default) {
		return fmt.Errorf("%w: invalid default tolerance %g", ErrMalformedOverride, ov.Default)
	}
	for i, r := range ov.Regions {
		if r.Width < 0 || r.Height < 0 || !validTolerance(r.Tolerance) {
			return fmt.Errorf("%w: region %d has a negative size or an invalid tolerance", ErrMalformedOverride, i)
		}
	}
	for i, p := range ov.Pixels {
		if !validTolerance(p.Tolerance) {
			return fmt.Errorf("%w: pixel %d has an invalid tolerance", ErrMalformedOverride, i)
		}
	}
	return nil
}

// validTolerance reports whether v is a non-negative number.
func validTolerance(v float32) bool {
	return v >= 0 && !math32.IsNaN(v)
}

// Apply returns a new buffer with the override merged into tb by taking
// the maximum at every pixel. Regions are clipped to the buffer and
// pixels outside of it are ignored. A nil override returns tb itself.
func (ov *Override) Apply(tb *pixel.ToleranceBuffer) *pixel.ToleranceBuffer {
	if ov == nil {
		return tb
	}
	w, h := tb.Width(), tb.Height()
	patch := make([]float32, w*h)
	for i := range patch {
		patch[i] = ov.Default
	}
	bounds := image.Rect(0, 0, w, h)
	for _, r := range ov.Regions {
		rr := r.Rect().Intersect(bounds)
		for y := rr.Min.Y; y < rr.Max.Y; y++ {
			for x := rr.Min.X; x < rr.Max.X; x++ {
				patch[y*w+x] = max(patch[y*w+x], r.Tolerance)
			}
		}
	}
	for _, p := range ov.Pixels {
		if image.Pt(p.X, p.Y).In(bounds) {
			patch[p.Y*w+p.X] = max(patch[p.Y*w+p.X], p.Tolerance)
		}
	}
	return pixel.NewToleranceFunc(w, h, func(x, y int) float32 {
		return max(tb.Value(x, y), patch[y*w+x])
	})
}
