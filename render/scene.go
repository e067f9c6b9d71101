// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"cogentcore.org/rendercheck/base/errors"
	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
)

// Kinds are the kinds of [Shape].
type Kinds int32

const (
	// Rect is an axis-aligned rectangle at X, Y of size Width × Height.
	Rect Kinds = iota

	// Circle is a circle centered at X, Y with the given Radius.
	Circle

	// Spot is the footprint of a spotlight pointing straight down from
	// Distance above X, Y with a cone half-angle of Angle degrees.
	Spot
)

var kindNames = map[string]Kinds{"rect": Rect, "circle": Circle, "spot": Spot}

// Shadings are the ways a [Shape] is shaded.
type Shadings int32

const (
	// Flat is a single solid color.
	Flat Shadings = iota

	// Diffuse is lit from the center, falling off toward the outside.
	Diffuse

	// Specular is a solid color with a highlight.
	Specular

	// Textured is a checkerboard texture.
	Textured
)

var shadingNames = map[string]Shadings{"flat": Flat, "diffuse": Diffuse, "specular": Specular, "textured": Textured}

// Motion is a constant velocity, in pixels per second.
type Motion struct {
	DX float32 `toml:"dx"`
	DY float32 `toml:"dy"`
}

// Shape is one element of a [Scene].
type Shape struct {
	Kind     string  `toml:"kind"`
	X        float32 `toml:"x"`
	Y        float32 `toml:"y"`
	Width    float32 `toml:"width"`
	Height   float32 `toml:"height"`
	Radius   float32 `toml:"radius"`
	Distance float32 `toml:"distance"`
	Angle    float32 `toml:"angle"`

	// Color is a hex color: "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa".
	Color string `toml:"color"`

	// Shading is flat, diffuse, specular or textured; empty means flat.
	Shading string `toml:"shading"`

	// Z is the depth of the shape, where 0 is nearest and 1 is the
	// background. Nearer shapes are drawn over farther ones.
	Z float32 `toml:"z"`

	// Motion, if set, moves the shape with the scene time.
	Motion *Motion `toml:"motion"`
}

// Scene is a 2D scene to render.
type Scene struct {
	Name string `toml:"name"`

	// Width and Height are the default output size.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Background is the default background hex color.
	Background string `toml:"background"`

	Shapes []Shape `toml:"shapes"`

	// Time is the time the scene is at, which moves shapes with a Motion.
	Time time.Duration `toml:"-"`
}

// Size returns the default output size of the scene.
func (s *Scene) Size() image.Point {
	return image.Pt(s.Width, s.Height)
}

// BackgroundColor returns the parsed background color, opaque white if unset.
func (s *Scene) BackgroundColor() (color.RGBA, error) {
	if s.Background == "" {
		return color.RGBA{255, 255, 255, 255}, nil
	}
	return ParseColor(s.Background)
}

// At returns a deep copy of the scene at time t.
func (s *Scene) At(t time.Duration) *Scene {
	c := &Scene{}
	errors.Must(copier.CopyWithOption(c, s, copier.Option{DeepCopy: true}))
	c.Time = t
	return c
}

// Validate returns an error for the first invalid shape of the scene.
func (s *Scene) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("render: scene %q: negative size %dx%d", s.Name, s.Width, s.Height)
	}
	if _, err := s.BackgroundColor(); err != nil {
		return fmt.Errorf("render: scene %q: background: %w", s.Name, err)
	}
	for i := range s.Shapes {
		if _, _, _, err := s.Shapes[i].parse(); err != nil {
			return fmt.Errorf("render: scene %q: shape %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func (sh *Shape) parse() (Kinds, Shadings, color.RGBA, error) {
	k, ok := kindNames[strings.ToLower(sh.Kind)]
	if !ok {
		return 0, 0, color.RGBA{}, fmt.Errorf("unknown kind %q", sh.Kind)
	}
	sd := Flat
	if sh.Shading != "" {
		sd, ok = shadingNames[strings.ToLower(sh.Shading)]
		if !ok {
			return 0, 0, color.RGBA{}, fmt.Errorf("unknown shading %q", sh.Shading)
		}
	}
	c, err := ParseColor(sh.Color)
	if err != nil {
		return 0, 0, color.RGBA{}, err
	}
	switch {
	case sh.Width < 0 || sh.Height < 0 || sh.Radius < 0 || sh.Distance < 0:
		return 0, 0, color.RGBA{}, fmt.Errorf("negative dimension")
	case k == Spot && (sh.Angle <= 0 || sh.Angle >= 90):
		return 0, 0, color.RGBA{}, fmt.Errorf("spot angle %v not in (0, 90) degrees", sh.Angle)
	case sh.Z < 0 || sh.Z > 1:
		return 0, 0, color.RGBA{}, fmt.Errorf("z %v not in [0, 1]", sh.Z)
	}
	return k, sd, c, nil
}

// position returns the position of the shape at time t.
func (sh *Shape) position(t time.Duration) (x, y float32) {
	x, y = sh.X, sh.Y
	if sh.Motion != nil {
		s := float32(t.Seconds())
		x += sh.Motion.DX * s
		y += sh.Motion.DY * s
	}
	return
}

// ParseColor parses a hex color, with or without a leading "#", in any of
// the forms rgb, rgba, rrggbb and rrggbbaa. The color is not premultiplied.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q", s)
	}
	v, err := hex.DecodeString(h)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q: %w", s, err)
	}
	return color.RGBA{v[0], v[1], v[2], v[3]}, nil
}

// OpenScene reads a [Scene] from the given TOML file.
func OpenScene(filename string) (*Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadScene(f)
}

// ReadScene reads a [Scene] in TOML format and validates it.
func ReadScene(r io.Reader) (*Scene, error) {
	s := &Scene{}
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("render: reading scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteScene writes the scene in TOML format.
func WriteScene(w io.Writer, s *Scene) error {
	return toml.NewEncoder(w).Encode(s)
}
