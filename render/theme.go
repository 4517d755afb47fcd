// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render turns joined layers into raster images.
package render

import (
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/aclements/go-gg/palette"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"gopkg.in/yaml.v3"
)

// A Theme is the styling configuration for rendered maps and panels. It is
// passed into the renderer explicitly and treated as read only, so
// concurrent report runs cannot observe cross-run mutation.
type Theme struct {
	Paper     string   `yaml:"paper"`     // canvas background
	Plot      string   `yaml:"plot"`      // panel and table cell background
	Land      string   `yaml:"land"`      // land with no data
	Ocean     string   `yaml:"ocean"`     // water inside the plot frame
	Line      string   `yaml:"line"`      // boundaries, frames, tick marks
	Accent    string   `yaml:"accent"`    // table header background
	Text      string   `yaml:"text"`      // all text
	Highlight string   `yaml:"highlight"` // presence-map fill
	Ramp      []string `yaml:"ramp"`      // ordered color stops, low to high
	FontPath  string   `yaml:"font"`      // TTF file; empty falls back to a built-in face

	gradOnce sync.Once
	grad     palette.RGBGradient

	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
}

// DefaultTheme returns the styling used by the production reports.
func DefaultTheme() *Theme {
	return &Theme{
		Paper:     "#31363F",
		Plot:      "#222831",
		Land:      "#1C0A00",
		Ocean:     "#092635",
		Line:      "#FFFFFF",
		Accent:    "#E65100",
		Text:      "#FFFFFF",
		Highlight: "#A9DC67",
		Ramp: []string{
			"#EDEF5D", "#A9DC67", "#6EC574", "#39AB7E",
			"#0D8F81", "#0F7279", "#245668",
		},
	}
}

// LoadTheme overlays the yaml document at path onto the default theme, so
// a document only needs the fields it changes.
func LoadTheme(path string) (*Theme, error) {
	t := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Face returns the theme font at the given point size. The font file is
// read and parsed once; faces at different sizes share the parse.
func (t *Theme) Face(points float64) (font.Face, error) {
	if t.FontPath == "" {
		return basicfont.Face7x13, nil
	}
	t.fontOnce.Do(func() {
		data, err := os.ReadFile(t.FontPath)
		if err != nil {
			t.fontErr = err
			return
		}
		t.font, err = truetype.Parse(data)
		if err != nil {
			t.fontErr = fmt.Errorf("%s: %w", t.FontPath, err)
		}
	})
	if t.fontErr != nil {
		return nil, t.fontErr
	}
	return truetype.NewFace(t.font, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// rampAt maps x in [0, 1] through a continuous gradient over the theme's
// color stops.
func (t *Theme) rampAt(x float64) color.Color {
	if len(t.Ramp) == 0 {
		return color.White
	}
	t.gradOnce.Do(func() {
		colors := make([]color.RGBA, len(t.Ramp))
		for i, s := range t.Ramp {
			colors[i] = hexColor(s)
		}
		t.grad = palette.RGBGradient{Colors: colors}
	})
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return t.grad.Map(x)
}

// hexColor parses "#RRGGBB". Malformed values render white rather than
// failing mid-draw.
func hexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
