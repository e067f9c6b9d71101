// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !cgo

// Package desktop provides a [system.Host] that displays its frames in a
// desktop window and captures what the window displays.
package desktop

import (
	"errors"
	"image"
	"image/color"

	"cogentcore.org/rendercheck/render"
	"cogentcore.org/rendercheck/system"
)

// Window is a [system.Host] backed by a desktop window.
type Window struct {
	*system.Base

	// Title is the title of the window.
	Title string

	// Scale is the integer scale at which frames are displayed.
	Scale int
}

// NewWindow returns a new window host. Call [Window.Run] to open it.
func NewWindow(title string, size image.Point, bg color.RGBA, rd *render.Renderer) *Window {
	return &Window{Base: system.NewBase(size, bg, rd), Title: title, Scale: 2}
}

// Run returns an error: window mode requires cgo.
func (w *Window) Run() error {
	return errors.New("desktop: window mode requires cgo (build with CGO_ENABLED=1)")
}
