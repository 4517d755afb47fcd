// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ctessum/geom"
	"github.com/fogleman/gg"

	"github.com/agrostats/agromap/scale"
)

// Canvas sizes. Summary maps share a width with their table panel so the
// two stack into one artifact; detail maps render at high resolution.
const (
	SummaryWidth  = 1280
	SummaryHeight = 720
	PanelHeight   = 560
	DetailWidth   = 7680
	DetailHeight  = 4320
)

// Annotations is the text drawn around the plot area.
type Annotations struct {
	Title       string
	Subtitle    string // bottom center
	AxisCaption string // rotated caption beside the legend
	StatsBox    string // newline-separated box over the upper right corner
	Source      string // bottom left
	Attribution string // bottom right
}

// A Map stacks one or more layers over a shared projection and renders
// them onto a single canvas. Layers[0] fixes the projection; overlays are
// drawn in order above it.
type Map struct {
	Layers []*Layer
	Width  int
	Height int
	Theme  *Theme
	Notes  Annotations
}

// projection maps lon/lat onto canvas coordinates: an equirectangular fit
// of the catalog bounds into the plot rectangle, aspect preserved,
// centered, y flipped.
type projection struct {
	sx, sy, tx, ty float64
}

func fitProjection(b *geom.Bounds, x, y, w, h float64) projection {
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	if dx <= 0 {
		dx = 1
	}
	if dy <= 0 {
		dy = 1
	}
	s := math.Min(w/dx, h/dy)
	// Center the fitted extent inside the rectangle.
	ox := x + (w-dx*s)/2
	oy := y + (h-dy*s)/2
	return projection{
		sx: s,
		sy: -s,
		tx: ox - b.Min.X*s,
		ty: oy + b.Max.Y*s,
	}
}

func (p projection) point(pt geom.Point) (float64, float64) {
	return pt.X*p.sx + p.tx, pt.Y*p.sy + p.ty
}

// Render draws the layers, legend, and annotations and returns the
// finished raster.
func (m *Map) Render() (image.Image, error) {
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("map has no layers")
	}
	th := m.Theme
	if th == nil {
		th = DefaultTheme()
	}
	w, h := float64(m.Width), float64(m.Height)

	dc := gg.NewContext(m.Width, m.Height)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetHexColor(th.Paper)
	dc.Clear()

	// Plot area inside the annotation margins.
	left, right := 0.03*w, 0.03*w
	top, bottom := 0.07*h, 0.07*h
	pw, ph := w-left-right, h-top-bottom

	dc.SetHexColor(th.Ocean)
	dc.DrawRectangle(left, top, pw, ph)
	dc.Fill()

	proj := fitProjection(m.Layers[0].Catalog.Bounds, left, top, pw, ph)

	dc.DrawRectangle(left, top, pw, ph)
	dc.Clip()
	for _, l := range m.Layers {
		drawLayer(dc, th, proj, l)
	}
	dc.ResetClip()

	// Frame.
	dc.SetHexColor(th.Line)
	dc.SetLineWidth(math.Max(2, 0.0015*w))
	dc.DrawRectangle(left, top, pw, ph)
	dc.Stroke()

	for _, l := range m.Layers {
		if l.Kind == Choropleth && l.Scale != nil {
			if err := m.drawColorbar(dc, th, l.Scale); err != nil {
				return nil, err
			}
			break
		}
	}

	if err := m.drawAnnotations(dc, th, left, top, bottom); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func drawLayer(dc *gg.Context, th *Theme, p projection, l *Layer) {
	for i, f := range l.Catalog.Features {
		tracePolygonal(dc, p, f.Geom)
		if l.Kind == Outline {
			dc.SetHexColor(th.Line)
			dc.SetLineWidth(l.LineWidth)
			dc.Stroke()
			continue
		}
		v := l.Values[i]
		switch {
		case !v.Valid:
			dc.SetHexColor(th.Land)
		case l.Kind == Presence:
			dc.SetHexColor(th.Highlight)
		default:
			dc.SetColor(th.rampAt(l.Scale.Norm(v.X)))
		}
		dc.FillPreserve()
		dc.SetHexColor(th.Line)
		dc.SetLineWidth(l.LineWidth)
		dc.Stroke()
	}
}

func tracePolygonal(dc *gg.Context, p projection, g geom.Polygonal) {
	switch g := g.(type) {
	case geom.Polygon:
		tracePolygon(dc, p, g)
	case geom.MultiPolygon:
		for _, poly := range g {
			tracePolygon(dc, p, poly)
		}
	}
}

func tracePolygon(dc *gg.Context, p projection, poly geom.Polygon) {
	for _, ring := range poly {
		if len(ring) == 0 {
			continue
		}
		x, y := p.point(ring[0])
		dc.MoveTo(x, y)
		for _, pt := range ring[1:] {
			x, y = p.point(pt)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	}
}

// drawColorbar draws the vertical legend: a ramp gradient, an outline, and
// one tick mark and label per scale tick, domain minimum at the bottom.
func (m *Map) drawColorbar(dc *gg.Context, th *Theme, sc *scale.Log) error {
	w, h := float64(m.Width), float64(m.Height)
	bw := 0.015 * w
	bh := 0.55 * h
	bx := 0.035 * w
	by := (h - bh) / 2

	steps := int(bh)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		dc.SetColor(th.rampAt(t))
		dc.DrawRectangle(bx, by+bh-float64(i+1), bw, 1)
		dc.Fill()
	}
	dc.SetHexColor(th.Line)
	dc.SetLineWidth(math.Max(1.5, 0.001*w))
	dc.DrawRectangle(bx, by, bw, bh)
	dc.Stroke()

	face, err := th.Face(0.028 * h)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	tickLen := 0.008 * w
	for i, tk := range sc.Ticks {
		y := by + bh - sc.Norm(tk)*bh
		dc.SetHexColor(th.Line)
		dc.SetLineWidth(2)
		dc.DrawLine(bx+bw, y, bx+bw+tickLen, y)
		dc.Stroke()
		dc.SetHexColor(th.Text)
		dc.DrawStringAnchored(sc.Labels[i], bx+bw+1.5*tickLen, y, 0, 0.35)
	}
	return nil
}

func (m *Map) drawAnnotations(dc *gg.Context, th *Theme, left, top, bottom float64) error {
	w, h := float64(m.Width), float64(m.Height)
	n := m.Notes
	dc.SetHexColor(th.Text)

	if n.Title != "" {
		face, err := th.Face(0.04 * h)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.DrawStringAnchored(n.Title, w/2, top/2, 0.5, 0.5)
	}

	face, err := th.Face(0.033 * h)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	base := h - bottom/2
	if n.Subtitle != "" {
		dc.DrawStringAnchored(n.Subtitle, w/2, base, 0.5, 0.5)
	}
	if n.Source != "" {
		dc.DrawStringAnchored(n.Source, 0.01*w, base, 0, 0.5)
	}
	if n.Attribution != "" {
		dc.DrawStringAnchored(n.Attribution, 0.99*w, base, 1, 0.5)
	}

	if n.AxisCaption != "" {
		face, err := th.Face(0.025 * h)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		x, y := 0.015*w, h/2
		dc.Push()
		dc.RotateAbout(-math.Pi/2, x, y)
		dc.DrawStringAnchored(n.AxisCaption, x, y, 0.5, 0.5)
		dc.Pop()
	}

	if n.StatsBox != "" {
		if err := m.drawStatsBox(dc, th, n.StatsBox); err != nil {
			return err
		}
	}
	return nil
}

// drawStatsBox draws a bordered, left-aligned text block over the upper
// right corner of the plot area.
func (m *Map) drawStatsBox(dc *gg.Context, th *Theme, text string) error {
	w, h := float64(m.Width), float64(m.Height)
	face, err := th.Face(0.028 * h)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	lines := strings.Split(text, "\n")
	lineH := 0.038 * h
	var maxW float64
	for _, line := range lines {
		tw, _ := dc.MeasureString(line)
		if tw > maxW {
			maxW = tw
		}
	}
	pad := 0.012 * h
	bw := maxW + 2*pad
	bh := float64(len(lines))*lineH + 2*pad
	bx := 0.98*w - bw
	by := 0.10 * h

	dc.SetHexColor("#000000")
	dc.DrawRectangle(bx, by, bw, bh)
	dc.Fill()
	dc.SetHexColor(th.Line)
	dc.SetLineWidth(math.Max(1.5, 0.0007*w))
	dc.DrawRectangle(bx, by, bw, bh)
	dc.Stroke()

	dc.SetHexColor(th.Text)
	for i, line := range lines {
		dc.DrawStringAnchored(line, bx+pad, by+pad+(float64(i)+0.5)*lineH, 0, 0.35)
	}
	return nil
}
