// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"

	"github.com/agrostats/agromap/geo"
	"github.com/agrostats/agromap/scale"
)

func square(x, y float64) geom.Polygon {
	return geom.Polygon{{
		{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1}, {X: x, Y: y},
	}}
}

func testCatalog(ids ...string) *geo.Catalog {
	c := &geo.Catalog{Bounds: geom.NewBounds()}
	for i, id := range ids {
		g := square(float64(2*i), 0)
		c.Features = append(c.Features, geo.Feature{ID: id, Geom: g})
		c.Bounds.Extend(g.Bounds())
	}
	return c
}

func TestNewChoroplethLogTransform(t *testing.T) {
	cat := testCatalog("A", "B", "C")
	joined := &geo.JoinedLayer{
		IDs:     []string{"A", "B", "C"},
		Values:  []geo.Value{{X: 100, Valid: true}, {}, {X: 1000, Valid: true}},
		Matched: 2,
	}
	sc, err := scale.BuildLog("v", []float64{100, 1000}, 5)
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewChoropleth(cat, joined, sc)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Values[0]; !got.Valid || math.Abs(got.X-2) > 1e-9 {
		t.Errorf("value A should be log10(100) = 2; got %v", got)
	}
	// Nulls pass through unchanged.
	if l.Values[1].Valid {
		t.Errorf("value B should stay null; got %v", l.Values[1])
	}
	if got := l.Values[2]; !got.Valid || math.Abs(got.X-3) > 1e-9 {
		t.Errorf("value C should be log10(1000) = 3; got %v", got)
	}
}

func TestNewChoroplethEmptyDomain(t *testing.T) {
	cat := testCatalog("A", "B")
	joined := &geo.JoinedLayer{
		IDs:    []string{"A", "B"},
		Values: make([]geo.Value, 2),
	}
	_, err := NewChoropleth(cat, joined, &scale.Log{})
	var ede *scale.EmptyDomainError
	if !errors.As(err, &ede) {
		t.Fatalf("want EmptyDomainError; got %v", err)
	}
}

func TestNewOutline(t *testing.T) {
	cat := testCatalog("A", "B", "C")
	l := NewOutline(cat, 4)
	if len(l.Values) != 3 {
		t.Fatalf("outline should carry one value per feature; got %d", len(l.Values))
	}
	for i, v := range l.Values {
		if !v.Valid || v.X != 1 {
			t.Errorf("outline value %d should be the visibility flag; got %v", i, v)
		}
	}
}

func TestNewPresenceEmpty(t *testing.T) {
	cat := testCatalog("A")
	joined := &geo.JoinedLayer{IDs: []string{"A"}, Values: make([]geo.Value, 1)}
	var ede *scale.EmptyDomainError
	if _, err := NewPresence(cat, joined); !errors.As(err, &ede) {
		t.Fatalf("want EmptyDomainError; got %v", err)
	}
}

func TestRampEndpoints(t *testing.T) {
	th := DefaultTheme()
	if got, want := th.rampAt(0), hexColor(th.Ramp[0]); got != color.Color(want) {
		t.Errorf("ramp start should be %v; got %v", want, got)
	}
	if got, want := th.rampAt(1), hexColor(th.Ramp[len(th.Ramp)-1]); got != color.Color(want) {
		t.Errorf("ramp end should be %v; got %v", want, got)
	}
}

func TestRampBlend(t *testing.T) {
	th := &Theme{Ramp: []string{"#000000", "#808080", "#FFFFFF"}}
	// Middle of the gray-to-white segment.
	c := th.rampAt(0.75)
	r, g, b, _ := c.RGBA()
	if r != g || g != b {
		t.Fatalf("blend of grays should be gray; got %v", c)
	}
	if r8 := r >> 8; r8 <= 0x80 || r8 >= 0xFF {
		t.Errorf("blend should fall strictly between its stops; got %v", c)
	}
}

func TestLoadThemeOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("paper: \"#000000\"\n"), 0666); err != nil {
		t.Fatal(err)
	}
	th, err := LoadTheme(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Paper != "#000000" {
		t.Errorf("paper should be overridden; got %q", th.Paper)
	}
	// Unset fields keep their defaults.
	if th.Ocean != DefaultTheme().Ocean {
		t.Errorf("ocean should keep its default; got %q", th.Ocean)
	}
}

func TestMapRender(t *testing.T) {
	cat := testCatalog("A", "B", "C")
	joined := &geo.JoinedLayer{
		IDs:     []string{"A", "B", "C"},
		Values:  []geo.Value{{X: 10, Valid: true}, {}, {X: 1000, Valid: true}},
		Matched: 2,
	}
	sc, err := scale.BuildLog("v", []float64{10, 1000}, 5)
	if err != nil {
		t.Fatal(err)
	}
	fill, err := NewChoropleth(cat, joined, sc)
	if err != nil {
		t.Fatal(err)
	}
	m := &Map{
		Layers: []*Layer{fill, NewOutline(cat, 2)},
		Width:  320,
		Height: 180,
		Notes: Annotations{
			Title:       "title",
			Subtitle:    "subtitle",
			AxisCaption: "caption",
			StatsBox:    "stats\nlines",
			Source:      "source",
			Attribution: "attribution",
		},
	}
	img, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("canvas should be 320x180; got %dx%d", b.Dx(), b.Dy())
	}
	// The corner sits outside the plot frame on paper background.
	r, g, bl, _ := img.At(0, 0).RGBA()
	want := hexColor(DefaultTheme().Paper)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
		t.Errorf("corner should be paper colored %v; got %v", want, img.At(0, 0))
	}
}

func TestColorbarTickColor(t *testing.T) {
	cat := testCatalog("A", "B")
	joined := &geo.JoinedLayer{
		IDs:     []string{"A", "B"},
		Values:  []geo.Value{{X: 10, Valid: true}, {X: 1000, Valid: true}},
		Matched: 2,
	}
	sc, err := scale.BuildLog("v", []float64{10, 1000}, 5)
	if err != nil {
		t.Fatal(err)
	}
	fill, err := NewChoropleth(cat, joined, sc)
	if err != nil {
		t.Fatal(err)
	}
	th := DefaultTheme()
	th.Line = "#FF0000"
	th.Text = "#00FF00"
	m := &Map{Layers: []*Layer{fill}, Width: 320, Height: 180, Theme: th}
	img, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	// The bottom tick mark extends right of the colorbar, past its
	// outline, and must be stroked in the line color rather than the
	// text color.
	found := false
	for y := 138; y <= 141 && !found; y++ {
		for x := 17; x <= 18; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 >= 200 && g>>8 <= 60 && b>>8 <= 60 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Errorf("tick marks should use the line color")
	}
}

func TestFaceParsesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0666); err != nil {
		t.Fatal(err)
	}
	th := &Theme{FontPath: path}
	_, err1 := th.Face(12)
	if err1 == nil {
		t.Fatal("parsing garbage should fail")
	}
	// The parse happens once; later calls see the cached result even
	// after the file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	_, err2 := th.Face(14)
	if err2 == nil || err2.Error() != err1.Error() {
		t.Errorf("second call should return the cached error %v; got %v", err1, err2)
	}
}

func TestTablePanel(t *testing.T) {
	spec := TableSpec{
		Header: []string{"Entidad", "Toneladas"},
		Rows:   [][]string{{"A", "1,000"}, {"B", "500"}},
	}
	img, err := TablePanel(nil, 640, 280, []TableSpec{spec, spec})
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 640 || b.Dy() != 280 {
		t.Errorf("panel should be 640x280; got %dx%d", b.Dx(), b.Dy())
	}
}

func TestTablePanelRaggedRow(t *testing.T) {
	spec := TableSpec{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"only one cell"}},
	}
	if _, err := TablePanel(nil, 100, 100, []TableSpec{spec}); err == nil {
		t.Errorf("ragged rows should fail")
	}
}
