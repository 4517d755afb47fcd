// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// A TableSpec is one side panel table: a header row and pre-formatted body
// rows. The first column is left aligned, the rest are centered.
type TableSpec struct {
	Header []string
	Rows   [][]string
}

// TablePanel renders the given tables side by side on one canvas. The
// state report uses two of them to split 32 entities into 16-row halves.
func TablePanel(th *Theme, width, height int, tables []TableSpec) (image.Image, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to render")
	}
	if th == nil {
		th = DefaultTheme()
	}
	w, h := float64(width), float64(height)

	dc := gg.NewContext(width, height)
	dc.SetHexColor(th.Paper)
	dc.Clear()

	face, err := th.Face(0.032 * h)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	margin := 0.03 * w
	gap := 0.03 * w
	tw := (w - 2*margin - gap*float64(len(tables)-1)) / float64(len(tables))
	x := margin
	for _, spec := range tables {
		if err := drawTable(dc, th, x, 0.03*h, tw, h-0.06*h, spec); err != nil {
			return nil, err
		}
		x += tw + gap
	}
	return dc.Image(), nil
}

func drawTable(dc *gg.Context, th *Theme, x, y, w, h float64, spec TableSpec) error {
	ncols := len(spec.Header)
	if ncols == 0 {
		return fmt.Errorf("table has no header")
	}
	rowH := h / float64(len(spec.Rows)+1)
	colW := w / float64(ncols)

	// Header row.
	dc.SetHexColor(th.Accent)
	dc.DrawRectangle(x, y, w, rowH)
	dc.Fill()
	dc.SetHexColor(th.Text)
	for j, cell := range spec.Header {
		cx := x + (float64(j)+0.5)*colW
		dc.DrawStringAnchored(cell, cx, y+rowH/2, 0.5, 0.35)
	}

	// Body rows.
	for i, row := range spec.Rows {
		if len(row) != ncols {
			return fmt.Errorf("row %d has %d cells for %d columns", i, len(row), ncols)
		}
		ry := y + float64(i+1)*rowH
		dc.SetHexColor(th.Plot)
		dc.DrawRectangle(x, ry, w, rowH)
		dc.Fill()
		dc.SetHexColor(th.Line)
		dc.SetLineWidth(0.8)
		dc.DrawRectangle(x, ry, w, rowH)
		dc.Stroke()
		dc.SetHexColor(th.Text)
		for j, cell := range row {
			if j == 0 {
				dc.DrawStringAnchored(cell, x+0.04*colW, ry+rowH/2, 0, 0.35)
				continue
			}
			cx := x + (float64(j)+0.5)*colW
			dc.DrawStringAnchored(cell, cx, ry+rowH/2, 0.5, 0.35)
		}
	}
	return nil
}
