// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render provides a 2D software renderer of simple scenes, used
// as the render collaborator of verification runs. In addition to the
// color frame, it produces a depth buffer and per-pixel tolerance hints
// for the parts of the frame whose exact values depend on shading.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sort"

	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/chewxy/math32"
	"github.com/gogpu/gg"
)

// Frame is the output of [Renderer.Render].
type Frame struct {

	// Color is the rendered frame.
	Color *pixel.Grid

	// Depth is the depth of the nearest shape at each pixel center,
	// 1 where there is only background.
	Depth *pixel.DepthBuffer

	// Hints is the tolerance that the shading of each pixel calls for,
	// to be merged with the tolerance derived from the frame itself.
	Hints *pixel.ToleranceBuffer
}

// Renderer renders a [Scene] into a [Frame].
type Renderer struct {

	// Profile provides the shading tolerances of the hints.
	Profile *tolerance.Profile
}

// NewRenderer returns a new renderer with hints from the given profile,
// or from the default profile if it is nil.
func NewRenderer(p *tolerance.Profile) *Renderer {
	if p == nil {
		p = tolerance.Default()
	}
	return &Renderer{Profile: p}
}

// textureSize is the size of the checkerboard cells of textured shapes.
const textureSize = 4

// Render renders the scene at its current time into a frame of the
// given size over the given background color.
func (rd *Renderer) Render(scene *Scene, size image.Point, bg color.RGBA) (*Frame, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("render: invalid size %v", size)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	p := rd.Profile
	if p == nil {
		p = tolerance.Default()
	}
	w, h := size.X, size.Y
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(toGG(bg))

	depth := make([]float32, w*h)
	for i := range depth {
		depth[i] = 1
	}
	hints := make([]float32, w*h)

	order := make([]int, len(scene.Shapes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scene.Shapes[order[i]].Z > scene.Shapes[order[j]].Z
	})
	for _, i := range order {
		sh := &scene.Shapes[i]
		k, sd, c, _ := sh.parse()
		x, y := sh.position(scene.Time)
		g := geom{kind: k, x: x, y: y, w: sh.Width, h: sh.Height, r: sh.Radius}
		if k == Spot {
			g.r = spotRadius(sh.Distance, sh.Angle)
		}
		dc.SetFillBrush(brush(sd, c, g))
		g.path(dc)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("render: scene %q: shape %d: %w", scene.Name, i, err)
		}
		g.cover(w, h, func(px, py int, inside bool) {
			j := py*w + px
			if inside && sh.Z < depth[j] {
				depth[j] = sh.Z
			}
			hints[j] = max(hints[j], shadingTolerance(p, sd))
		})
		if k == Spot {
			spotBand(sh, x, y, w, h, p, hints)
		}
	}
	slog.Debug("render.Renderer: rendered", "scene", scene.Name, "size", size, "time", scene.Time, "shapes", len(scene.Shapes))
	return &Frame{
		Color: pixel.NewGrid(dc.Image()),
		Depth: pixel.NewDepthFunc(w, h, func(x, y int) float32 { return depth[y*w+x] }),
		Hints: pixel.NewToleranceFunc(w, h, func(x, y int) float32 { return hints[y*w+x] }),
	}, nil
}

// RenderScene renders the scene at its own size and background color.
func (rd *Renderer) RenderScene(scene *Scene) (*Frame, error) {
	bg, err := scene.BackgroundColor()
	if err != nil {
		return nil, err
	}
	return rd.Render(scene, scene.Size(), bg)
}

// shadingTolerance returns the hint for pixels of a shape with the
// given shading, in channel units.
func shadingTolerance(p *tolerance.Profile, sd Shadings) float32 {
	switch sd {
	case Diffuse:
		return float32(p.LightingRange * 255)
	case Specular:
		return float32(p.SpecularLightDotProduct * 255)
	case Textured:
		return float32(p.TextureLookUp * 255)
	}
	return 0
}

// spotRadius returns the radius of the footprint of a spotlight at the
// given distance with the given cone half-angle in degrees.
func spotRadius(distance, angle float32) float32 {
	a := min(angle, 89.9)
	if a <= 0 {
		return 0
	}
	return distance * math32.Tan(a*math32.Pi/180)
}

// spotBand gives the pixels where the edge of the spotlight footprint
// may fall, given the angle tolerance, the edge tolerance.
func spotBand(sh *Shape, cx, cy float32, w, h int, p *tolerance.Profile, hints []float32) {
	da := float32(p.SpotLightAngle)
	r0 := spotRadius(sh.Distance, sh.Angle-da) - 1
	r1 := spotRadius(sh.Distance, sh.Angle+da) + 1
	tol := float32(p.PixelToEdge)
	band := geom{kind: Circle, x: cx, y: cy, r: r1}
	band.cover(w, h, func(px, py int, inside bool) {
		d := dist(float32(px)+0.5, float32(py)+0.5, cx, cy)
		if d >= r0 && d <= r1 {
			j := py*w + px
			hints[j] = max(hints[j], tol)
		}
	})
}

// brush returns the fill brush for a shape.
func brush(sd Shadings, c color.RGBA, g geom) gg.Brush {
	col := toGG(c)
	cx, cy, r := g.center()
	switch sd {
	case Diffuse:
		return gg.NewRadialGradientBrush(float64(cx), float64(cy), 0, float64(r)).
			AddColorStop(0, col).
			AddColorStop(1, shade(col, 0.6))
	case Specular:
		return gg.NewRadialGradientBrush(float64(cx-r/3), float64(cy-r/3), 0, float64(r)).
			AddColorStop(0, gg.RGBA2(1, 1, 1, col.A)).
			AddColorStop(0.35, col).
			AddColorStop(1, col)
	case Textured:
		return gg.Checkerboard(col, shade(col, 0.75), textureSize)
	}
	return gg.Solid(col)
}

func toGG(c color.RGBA) gg.RGBA {
	return gg.RGBA2(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// shade darkens a color by the factor f, keeping its alpha.
func shade(c gg.RGBA, f float64) gg.RGBA {
	return gg.RGBA2(c.R*f, c.G*f, c.B*f, c.A)
}

func dist(x0, y0, x1, y1 float32) float32 {
	dx, dy := x0-x1, y0-y1
	return math32.Sqrt(dx*dx + dy*dy)
}

// geom is the geometry of a shape at a point in time.
type geom struct {
	kind       Kinds
	x, y, w, h float32
	r          float32
}

func (g geom) center() (cx, cy, r float32) {
	if g.kind == Rect {
		return g.x + g.w/2, g.y + g.h/2, max(dist(0, 0, g.w, g.h)/2, 1)
	}
	return g.x, g.y, max(g.r, 1)
}

func (g geom) path(dc *gg.Context) {
	if g.kind == Rect {
		dc.DrawRectangle(float64(g.x), float64(g.y), float64(g.w), float64(g.h))
		return
	}
	dc.DrawCircle(float64(g.x), float64(g.y), float64(g.r))
}

// cover calls f for every pixel within one pixel of the shape, with
// whether the center of the pixel is inside the shape.
func (g geom) cover(w, h int, f func(px, py int, inside bool)) {
	var x0, y0, x1, y1 float32
	if g.kind == Rect {
		x0, y0, x1, y1 = g.x, g.y, g.x+g.w, g.y+g.h
	} else {
		x0, y0, x1, y1 = g.x-g.r, g.y-g.r, g.x+g.r, g.y+g.r
	}
	minX := max(int(math32.Floor(x0))-1, 0)
	minY := max(int(math32.Floor(y0))-1, 0)
	maxX := min(int(math32.Ceil(x1))+1, w)
	maxY := min(int(math32.Ceil(y1))+1, h)
	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			cx, cy := float32(px)+0.5, float32(py)+0.5
			var inside, near bool
			if g.kind == Rect {
				inside = cx >= x0 && cx < x1 && cy >= y0 && cy < y1
				near = cx >= x0-1 && cx < x1+1 && cy >= y0-1 && cy < y1+1
			} else {
				d := dist(cx, cy, g.x, g.y)
				inside = d <= g.r
				near = d <= g.r+1
			}
			if near {
				f(px, py, inside)
			}
		}
	}
}
