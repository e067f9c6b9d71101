// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"cogentcore.org/rendercheck/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.RGBA{255, 255, 255, 255}

func assertRed(t *testing.T, c color.RGBA, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, 255, int(c.R), 1, msgAndArgs...)
	assert.InDelta(t, 0, int(c.G), 1, msgAndArgs...)
	assert.InDelta(t, 0, int(c.B), 1, msgAndArgs...)
}

func movingScene() *render.Scene {
	return &render.Scene{Name: "moving", Shapes: []render.Shape{
		{Kind: "rect", X: 0, Y: 0, Width: 2, Height: 4, Color: "#f00", Motion: &render.Motion{DX: 4}},
	}}
}

func TestSetSceneRendersAfterSettle(t *testing.T) {
	h := NewOffscreen(image.Pt(12, 4), white, nil)
	var _ Host = h
	_, err := h.Capture()
	assert.ErrorIs(t, err, ErrNoFrame)

	h.SetScene(movingScene())
	h.SetScene(movingScene())
	assert.Nil(t, h.Frame(), "not rendered before the host settles")
	h.Loop().RunPending()
	require.NotNil(t, h.Frame())
	assert.Equal(t, 1, h.Frames(), "repeated invalidation renders once")

	g, err := h.Capture()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(12, 4), g.Size())
	assertRed(t, g.RGBAAt(1, 1))
	assert.Equal(t, white, g.RGBAAt(9, 1))
}

func TestStepAdvancesTime(t *testing.T) {
	h := NewOffscreen(image.Pt(12, 4), white, nil)
	h.SetScene(movingScene())
	h.Step(2 * time.Second)
	assert.Equal(t, 2*time.Second, h.Timeline().Now())
	g, err := h.Capture()
	require.NoError(t, err)
	assert.Equal(t, white, g.RGBAAt(1, 1))
	assertRed(t, g.RGBAAt(9, 1))
}

func TestClockControlsFrames(t *testing.T) {
	h := NewOffscreen(image.Pt(12, 4), white, nil)
	h.SetScene(movingScene())
	h.Loop().RunPending()

	clk := h.Clock()
	require.NoError(t, clk.Capture())
	n := h.Frames()
	h.Step(time.Second)
	assert.Equal(t, time.Duration(0), h.Timeline().Now(), "real time no longer advances the timeline")
	assert.Equal(t, n, h.Frames())

	require.NoError(t, clk.SetCurrentTime(2*time.Second))
	assert.Equal(t, n+1, h.Frames(), "setting the time renders synchronously")
	g, err := h.Capture()
	require.NoError(t, err)
	assertRed(t, g.RGBAAt(9, 1))

	require.NoError(t, clk.SetCurrentTime(0))
	g, err = h.Capture()
	require.NoError(t, err)
	assertRed(t, g.RGBAAt(1, 1), "time can be set backward")

	require.NoError(t, clk.Release())
	h.Step(time.Second)
	assert.Equal(t, time.Second, h.Timeline().Now())
}

func TestRunHeadless(t *testing.T) {
	h := NewOffscreen(image.Pt(4, 4), white, nil)
	ran := false
	h.Loop().Send(func() { ran = true })
	require.NoError(t, h.RunHeadless(context.Background(), HeadlessConfig{Hz: 1000, Frames: 3}))
	assert.True(t, ran)

	h.Loop().Send(func() { h.Loop().Stop() })
	assert.NoError(t, h.RunHeadless(context.Background(), HeadlessConfig{Hz: 1000}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h2 := NewOffscreen(image.Pt(4, 4), white, nil)
	assert.ErrorIs(t, h2.RunHeadless(ctx, HeadlessConfig{}), context.Canceled)
}
