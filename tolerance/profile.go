// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tolerance provides [Profile], the named set of tunable
// thresholds that parameterize render comparison.
package tolerance

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/base/reflectx"
)

var (
	// ErrInvalidOption is returned for option names that a [Profile] does not have.
	ErrInvalidOption = errors.New("tolerance: invalid option")

	// ErrInvalidValue is returned for negative or non-numeric option values.
	ErrInvalidValue = errors.New("tolerance: invalid value")
)

// The recognized option names.
const (
	PixelToEdge             = "pixelToEdgeTolerance"
	LightingRange           = "lightingRangeTolerance"
	SpotLightAngle          = "spotLightAngleTolerance"
	ZBuffer                 = "zBufferTolerance"
	SpecularLightDotProduct = "specularLightDotProductTolerance"
	DefaultColor            = "defaultColorTolerance"
	TextureLookUp           = "textureLookUpTolerance"
	SilhouetteEdge          = "silhouetteEdgeTolerance"
)

// Profile is a set of comparison thresholds. All values are non-negative,
// and larger values only ever make comparison more permissive.
// A Profile is configured before a verification run starts and is only
// read while comparing.
type Profile struct {

	// PixelToEdge is the per-channel slack, in 0-255 channel units,
	// given to pixels near geometry silhouette edges.
	PixelToEdge float64 `toml:"pixelToEdgeTolerance" default:"64"`

	// LightingRange is the allowed luminance deviation from the diffuse
	// lighting approximation, as a fraction of full scale.
	LightingRange float64 `toml:"lightingRangeTolerance" default:"0.02"`

	// SpotLightAngle is the allowed angular deviation, in degrees,
	// of spotlight cone edges.
	SpotLightAngle float64 `toml:"spotLightAngleTolerance" default:"0.5"`

	// ZBuffer is the allowed depth sample deviation. It is only used
	// for diagnostics.
	ZBuffer float64 `toml:"zBufferTolerance" default:"0.00001"`

	// SpecularLightDotProduct is the allowed deviation of specular
	// highlight intensity, as a fraction of full scale.
	SpecularLightDotProduct float64 `toml:"specularLightDotProductTolerance" default:"0.01"`

	// DefaultColor is the baseline per-channel deviation, in 0-255
	// channel units, applied everywhere absent a more specific rule.
	DefaultColor float64 `toml:"defaultColorTolerance" default:"4"`

	// TextureLookUp is the allowed deviation caused by texture filtering
	// and mip level differences, as a fraction of full scale.
	TextureLookUp float64 `toml:"textureLookUpTolerance" default:"0.02"`

	// SilhouetteEdge is the positional slack, in pixels, for where
	// an edge may fall.
	SilhouetteEdge float64 `toml:"silhouetteEdgeTolerance" default:"1"`
}

type option struct {
	field func(p *Profile) *float64
}

var options = map[string]option{
	PixelToEdge:             {func(p *Profile) *float64 { return &p.PixelToEdge }},
	LightingRange:           {func(p *Profile) *float64 { return &p.LightingRange }},
	SpotLightAngle:          {func(p *Profile) *float64 { return &p.SpotLightAngle }},
	ZBuffer:                 {func(p *Profile) *float64 { return &p.ZBuffer }},
	SpecularLightDotProduct: {func(p *Profile) *float64 { return &p.SpecularLightDotProduct }},
	DefaultColor:            {func(p *Profile) *float64 { return &p.DefaultColor }},
	TextureLookUp:           {func(p *Profile) *float64 { return &p.TextureLookUp }},
	SilhouetteEdge:          {func(p *Profile) *float64 { return &p.SilhouetteEdge }},
}

// Default returns a new profile with every option at its built-in baseline.
func Default() *Profile {
	p := &Profile{}
	p.ResetToDefaults()
	return p
}

// Names returns the recognized option names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(options))
}

// ResetToDefaults restores every option to its built-in baseline value.
func (p *Profile) ResetToDefaults() {
	*p = Profile{}
	errors.Must(reflectx.SetFromDefaultTags(p))
}

// Get returns the value of the named option.
func (p *Profile) Get(name string) (float64, error) {
	o, ok := options[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrInvalidOption, name)
	}
	return *o.field(p), nil
}

// Override sets the named option to value. It fails with [ErrInvalidOption]
// for names that are not recognized and with [ErrInvalidValue] for negative
// values, in which case the profile is unchanged.
func (p *Profile) Override(name string, value float64) error {
	o, err := checkOption(name, value)
	if err != nil {
		return err
	}
	*o.field(p) = value
	return nil
}

// ParseFrom applies the options present in values, leaving all other
// options at their current value. Every entry is checked first and
// nothing is applied if any of them is invalid.
func (p *Profile) ParseFrom(values map[string]float64) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, err := checkOption(name, values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for name, v := range values {
		*options[name].field(p) = v
	}
	return nil
}

// Map returns all options as a name to value map.
func (p *Profile) Map() map[string]float64 {
	m := make(map[string]float64, len(options))
	for name, o := range options {
		m[name] = *o.field(p)
	}
	return m
}

// Clone returns a copy of the profile, so that a verification run can
// work on a snapshot that later configuration changes cannot affect.
func (p *Profile) Clone() *Profile {
	n := *p
	return &n
}

// String returns the options as sorted name=value pairs.
func (p *Profile) String() string {
	var b strings.Builder
	for i, name := range Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		v, _ := p.Get(name)
		fmt.Fprintf(&b, "%s=%g", name, v)
	}
	return b.String()
}

func checkOption(name string, value float64) (option, error) {
	o, ok := options[name]
	if !ok {
		return o, fmt.Errorf("%w %q", ErrInvalidOption, name)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return o, fmt.Errorf("%w %g for %s: must be a non-negative number", ErrInvalidValue, value, name)
	}
	return o, nil
}
