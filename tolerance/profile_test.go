// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tolerance

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Default()
	assert.Equal(t, 4.0, p.DefaultColor)
	assert.Equal(t, 64.0, p.PixelToEdge)
	assert.Equal(t, 1.0, p.SilhouetteEdge)
	assert.Equal(t, 0.00001, p.ZBuffer)
	assert.Len(t, Names(), 8)
	for _, name := range Names() {
		v, err := p.Get(name)
		assert.NoError(t, err, name)
		assert.GreaterOrEqual(t, v, 0.0, name)
	}
}

func TestResetToDefaults(t *testing.T) {
	p := Default()
	require.NoError(t, p.Override(DefaultColor, 30))
	require.NoError(t, p.Override(SpotLightAngle, 3))
	p.ResetToDefaults()
	assert.Equal(t, Default(), p)
}

func TestOverride(t *testing.T) {
	p := Default()
	require.NoError(t, p.Override(DefaultColor, 8))
	assert.Equal(t, 8.0, p.DefaultColor)
	require.NoError(t, p.Override(SilhouetteEdge, 0))
	assert.Equal(t, 0.0, p.SilhouetteEdge)
}

func TestOverrideInvalidValue(t *testing.T) {
	p := Default()
	before := p.Map()
	err := p.Override("defaultColorTolerance", -1)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, before, p.Map())
}

func TestOverrideInvalidOption(t *testing.T) {
	p := Default()
	before := p.Map()
	err := p.Override("ambientOcclusionTolerance", 1)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = p.Get("ambientOcclusionTolerance")
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Equal(t, before, p.Map())
}

func TestParseFromIsAdditive(t *testing.T) {
	p := Default()
	require.NoError(t, p.Override(PixelToEdge, 100))
	require.NoError(t, p.ParseFrom(map[string]float64{
		DefaultColor:   8,
		SilhouetteEdge: 2,
	}))
	assert.Equal(t, 8.0, p.DefaultColor)
	assert.Equal(t, 2.0, p.SilhouetteEdge)
	assert.Equal(t, 100.0, p.PixelToEdge)
}

func TestParseFromAppliesNothingOnError(t *testing.T) {
	p := Default()
	before := p.Map()
	err := p.ParseFrom(map[string]float64{
		DefaultColor: 8,
		ZBuffer:      -0.5,
		"bogus":      1,
	})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Equal(t, before, p.Map())
}

func TestClone(t *testing.T) {
	p := Default()
	require.NoError(t, p.Override(DefaultColor, 12))
	c := p.Clone()
	assert.Equal(t, p, c)
	assert.NotSame(t, p, c)
	require.NoError(t, p.Override(DefaultColor, 1))
	require.NoError(t, c.Override(PixelToEdge, 90))
	assert.Equal(t, 12.0, c.DefaultColor)
	assert.Equal(t, 64.0, p.PixelToEdge)
}

func TestRead(t *testing.T) {
	p := Default()
	err := p.Read(strings.NewReader("defaultColorTolerance = 8\nsilhouetteEdgeTolerance = 2.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 8.0, p.DefaultColor)
	assert.Equal(t, 2.5, p.SilhouetteEdge)
	assert.Equal(t, 64.0, p.PixelToEdge)

	assert.ErrorIs(t, p.Read(strings.NewReader("defaultColorTolerance = \"high\"\n")), ErrInvalidValue)
	assert.ErrorIs(t, p.Read(strings.NewReader("glowTolerance = 1\n")), ErrInvalidOption)
	assert.Error(t, p.Read(strings.NewReader("= broken")))
	assert.Equal(t, 8.0, p.DefaultColor)
}

func TestSaveOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "profile.toml")
	p := Default()
	require.NoError(t, p.Override(TextureLookUp, 0.5))
	require.NoError(t, p.Save(fn))

	o := Default()
	require.NoError(t, o.Open(fn))
	assert.Equal(t, p.Map(), o.Map())
}

func TestString(t *testing.T) {
	s := Default().String()
	assert.True(t, strings.HasPrefix(s, "defaultColorTolerance=4 "), s)
	assert.Contains(t, s, "silhouetteEdgeTolerance=1")
}
