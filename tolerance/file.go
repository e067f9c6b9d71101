// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tolerance

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Open applies the options in the given TOML file to the profile,
// with the same additive semantics as [Profile.ParseFrom]: options
// not named in the file keep their current value.
//
//	defaultColorTolerance = 8
//	silhouetteEdgeTolerance = 2
func (p *Profile) Open(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := p.Read(f); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

// Read applies the options in the given TOML data to the profile.
// See [Profile.Open].
func (p *Profile) Read(r io.Reader) error {
	raw := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return err
	}
	values, err := Values(raw)
	if err != nil {
		return err
	}
	return p.ParseFrom(values)
}

// Values converts loosely typed option values, as decoded from TOML
// or YAML, into the numeric form taken by [Profile.ParseFrom].
// Non-numeric values fail with [ErrInvalidValue].
func Values(raw map[string]any) (map[string]float64, error) {
	values := make(map[string]float64, len(raw))
	for name, v := range raw {
		switch n := v.(type) {
		case int64:
			values[name] = float64(n)
		case int:
			values[name] = float64(n)
		case float64:
			values[name] = n
		default:
			return nil, fmt.Errorf("%w %v for %s: must be a number", ErrInvalidValue, v, name)
		}
	}
	return values, nil
}

// Save writes all options of the profile to the given TOML file.
func (p *Profile) Save(filename string) error {
	b, err := toml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0666)
}
