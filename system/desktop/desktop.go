// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

// Package desktop provides a [system.Host] that displays its frames in a
// desktop window and captures what the window displays.
package desktop

import (
	"image"
	"image/color"
	"time"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/render"
	"cogentcore.org/rendercheck/system"
	"github.com/hajimehoshi/ebiten/v2"
)

// TPS is the number of frames per second of a window.
const TPS = 60

// Window is a [system.Host] backed by a desktop window.
type Window struct {
	*system.Base

	// Title is the title of the window.
	Title string

	// Scale is the integer scale at which frames are displayed.
	Scale int

	img      *ebiten.Image
	pix      []byte
	captured readback
}

// NewWindow returns a new window host. Call [Window.Run] to open it.
func NewWindow(title string, size image.Point, bg color.RGBA, rd *render.Renderer) *Window {
	return &Window{Base: system.NewBase(size, bg, rd), Title: title, Scale: 2}
}

// Run opens the window and runs the host loop on it until the window is
// closed or the loop is stopped. It must be called from the main goroutine.
func (w *Window) Run() error {
	sz := w.Size()
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(sz.X*max(w.Scale, 1), sz.Y*max(w.Scale, 1))
	ebiten.SetTPS(TPS)
	return ebiten.RunGame(&game{w: w})
}

// Capture returns the pixels of the current frame as read back from the
// window. Frames rendered since the last window draw, such as those forced
// by a time change, are captured from the host frame buffer instead.
func (w *Window) Capture() (*pixel.Grid, error) {
	if grid := w.captured.current(w.Frames()); grid != nil {
		return grid, nil
	}
	return w.Base.Capture()
}

type game struct {
	w *Window
}

func (g *game) Update() error {
	select {
	case <-g.w.Loop().Stopped():
		return ebiten.Termination
	default:
	}
	g.w.Step(time.Second / TPS)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	w := g.w
	f := w.Frame()
	if f == nil {
		return
	}
	sz := f.Color.Size()
	if w.img == nil || w.img.Bounds().Size() != sz {
		if w.img != nil {
			w.img.Deallocate()
		}
		w.img = ebiten.NewImage(sz.X, sz.Y)
		w.pix = make([]byte, 4*sz.X*sz.Y)
	}
	w.img.WritePixels(f.Color.Image().Pix)
	w.img.ReadPixels(w.pix)
	if grid, err := pixel.FromPix(sz.X, sz.Y, w.pix); err == nil {
		w.captured.store(w.Frames(), grid)
	}
	screen.DrawImage(w.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	sz := g.w.Size()
	return sz.X, sz.Y
}
