// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders the per-year map artifacts.
//
// Each report is a synchronous pipeline: load and filter the source table,
// aggregate by a geographic key, join onto a boundary catalog, derive the
// color scale, render the layers, and composite the output. A report
// builds all of its state from scratch, so distinct years can run
// concurrently; each writes to its own year-qualified path.
package report

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/agrostats/agromap/agg"
	"github.com/agrostats/agromap/compose"
	"github.com/agrostats/agromap/dataset"
	"github.com/agrostats/agromap/geo"
	"github.com/agrostats/agromap/render"
	"github.com/agrostats/agromap/scale"
)

// Config wires one report run. It is read only once constructed.
type Config struct {
	// Source tables.
	ProductionPath string // SIAP production CSV
	ExportsPath    string // INEGI trade CSV

	// Boundary catalogs and the feature property each is joined on.
	StateCatalog           string
	StateIDProperty        string
	MunicipalityCatalog    string
	MunicipalityIDProperty string
	WorldCatalog           string
	WorldIDProperty        string

	// Renames maps a catalog identifier to the identifier the
	// statistical source uses, applied before join lookup.
	Renames map[string]string

	OutDir string
	Theme  *render.Theme

	// Annotation text.
	SourceProduction string
	SourceTrade      string
	Attribution      string

	// Ticks is the legend tick count; zero means scale.DefaultTicks.
	Ticks int

	Log *zap.SugaredLogger
}

func (c *Config) logger() *zap.SugaredLogger {
	if c.Log == nil {
		return zap.NewNop().Sugar()
	}
	return c.Log
}

func (c *Config) theme() *render.Theme {
	if c.Theme == nil {
		return render.DefaultTheme()
	}
	return c.Theme
}

func (c *Config) ticks() int {
	if c.Ticks == 0 {
		return scale.DefaultTicks
	}
	return c.Ticks
}

// All renders every map for year.
func (c *Config) All(year int) error {
	if err := c.StateMap(year); err != nil {
		return fmt.Errorf("state map %d: %w", year, err)
	}
	if err := c.MunicipalityMap(year); err != nil {
		return fmt.Errorf("municipality map %d: %w", year, err)
	}
	if err := c.ExportMap(year); err != nil {
		return fmt.Errorf("export map %d: %w", year, err)
	}
	return nil
}

// StateMap renders the per-state production choropleth with its two table
// panels stacked below and writes entidades_<year>.png.
func (c *Config) StateMap(year int) error {
	log := c.logger().With("map", "states", "year", year)

	set, err := c.ProductionByState(year)
	if err != nil {
		return err
	}
	cat, err := geo.LoadCatalog(c.StateCatalog, c.StateIDProperty)
	if err != nil {
		return err
	}
	joined := geo.Join(cat, positiveLookup(set, dataset.ColVolume), c.Renames)
	log.Infow("joined state catalog",
		"features", len(joined.Values),
		"matched", joined.Matched,
		"coverage", joined.Coverage())

	sc, err := scale.BuildLog("volume", set.PositiveValues(dataset.ColVolume), c.ticks())
	if err != nil {
		return err
	}
	fill, err := render.NewChoropleth(cat, joined, sc)
	if err != nil {
		return err
	}

	volume := set.Total(dataset.ColVolume)
	value := set.Total(dataset.ColValue)
	m := &render.Map{
		Layers: []*render.Layer{fill},
		Width:  render.SummaryWidth,
		Height: render.SummaryHeight,
		Theme:  c.theme(),
		Notes: render.Annotations{
			Title: fmt.Sprintf(
				"Producción de aguacate en México por entidad durante el %d", year),
			Subtitle: fmt.Sprintf("Nacional: %s toneladas (%s MDP)",
				fmtInt(volume), fmtInt(value/1e6)),
			AxisCaption: "Toneladas producidas durante el año (escala logarítmica)",
			Source:      c.SourceProduction,
			Attribution: c.Attribution,
		},
	}
	mapImg, err := m.Render()
	if err != nil {
		return err
	}
	panelImg, err := render.TablePanel(c.theme(),
		render.SummaryWidth, render.PanelHeight, stateTables(set, c.displayNames()))
	if err != nil {
		return err
	}

	// The map and panel rasters are scoped to this call; only the
	// composite is written out.
	out, err := compose.Stack(compose.Vertical, mapImg, panelImg)
	if err != nil {
		return err
	}
	return c.writePNG(fmt.Sprintf("entidades_%d.png", year), out)
}

// MunicipalityMap renders the high resolution per-municipality choropleth
// with a state-border overlay and a descriptive statistics box, and writes
// municipios_<year>.png.
func (c *Config) MunicipalityMap(year int) error {
	log := c.logger().With("map", "municipalities", "year", year)

	t, err := c.production(year)
	if err != nil {
		return err
	}
	keys, err := dataset.MunicipalityKeys(t)
	if err != nil {
		return err
	}
	set, err := agg.Aggregate(t, keys,
		[]string{dataset.ColVolume, dataset.ColValue}, agg.Sum)
	if err != nil {
		return err
	}

	muniCat, err := geo.LoadCatalog(c.MunicipalityCatalog, c.MunicipalityIDProperty)
	if err != nil {
		return err
	}
	stateCat, err := geo.LoadCatalog(c.StateCatalog, c.StateIDProperty)
	if err != nil {
		return err
	}
	joined := geo.Join(muniCat, positiveLookup(set, dataset.ColVolume), nil)
	log.Infow("joined municipality catalog",
		"features", len(joined.Values),
		"matched", joined.Matched,
		"coverage", joined.Coverage())

	vals := set.PositiveValues(dataset.ColVolume)
	sc, err := scale.BuildLog("volume", vals, c.ticks())
	if err != nil {
		return err
	}
	fill, err := render.NewChoropleth(muniCat, joined, sc)
	if err != nil {
		return err
	}
	borders := render.NewOutline(stateCat, 4)

	m := &render.Map{
		Layers: []*render.Layer{fill, borders},
		Width:  render.DetailWidth,
		Height: render.DetailHeight,
		Theme:  c.theme(),
		Notes: render.Annotations{
			Title: fmt.Sprintf(
				"Toneladas producidas de aguacate en México por municipio durante el %d", year),
			Subtitle: fmt.Sprintf(
				"Nacional: %s toneladas (con un valor de %s millones de pesos)",
				fmtInt(set.Total(dataset.ColVolume)),
				fmtInt(set.Total(dataset.ColValue)/1e6)),
			AxisCaption: "Toneladas producidas durante el año (escala logarítmica)",
			StatsBox:    statsBox(vals),
			Source:      c.SourceProduction,
			Attribution: c.Attribution,
		},
	}
	img, err := m.Render()
	if err != nil {
		return err
	}
	return c.writePNG(fmt.Sprintf("municipios_%d.png", year), img)
}

// ExportMap renders the binary export-destination world map and writes
// exportaciones_<year>.png.
func (c *Config) ExportMap(year int) error {
	log := c.logger().With("map", "exports", "year", year)

	t, err := dataset.Load(c.ExportsPath)
	if err != nil {
		return err
	}
	t, err = dataset.FilterYear(t, dataset.ColTradeYear, year)
	if err != nil {
		return err
	}
	t, err = dataset.FilterEq(t, dataset.ColTradeKind, dataset.KindExports)
	if err != nil {
		return err
	}
	keys, err := dataset.Keys(t, dataset.ColCountry)
	if err != nil {
		return err
	}
	// Total rows carry no country code, so they land on the sentinel
	// key. Subcategory duplicates resolve by maximum.
	set, err := agg.Aggregate(t, keys,
		[]string{dataset.ColQuantity, dataset.ColTradeValue}, agg.ResolveDuplicatesMax)
	if err != nil {
		return err
	}

	cat, err := geo.LoadCatalog(c.WorldCatalog, c.WorldIDProperty)
	if err != nil {
		return err
	}
	// The rename table is state-catalog configuration; country codes
	// join verbatim.
	joined := geo.Join(cat, presenceLookup(set), nil)
	log.Infow("joined world catalog",
		"features", len(joined.Values),
		"matched", joined.Matched,
		"coverage", joined.Coverage())

	layer, err := render.NewPresence(cat, joined)
	if err != nil {
		return err
	}

	quantity, _ := set.Lookup(agg.SentinelKey, dataset.ColQuantity)
	value, _ := set.Lookup(agg.SentinelKey, dataset.ColTradeValue)
	m := &render.Map{
		Layers: []*render.Layer{layer},
		Width:  render.DetailWidth,
		Height: render.DetailHeight,
		Theme:  c.theme(),
		Notes: render.Annotations{
			Title: fmt.Sprintf(
				"Destino de las exportaciones de aguacate desde México durante el %d", year),
			Subtitle: fmt.Sprintf(
				"Total: %s toneladas con un valor de %s pesos",
				fmtInt(quantity/1000), fmtInt(value)),
			Source:      c.SourceTrade,
			Attribution: c.Attribution,
		},
	}
	img, err := m.Render()
	if err != nil {
		return err
	}
	return c.writePNG(fmt.Sprintf("exportaciones_%d.png", year), img)
}

// production loads the production table filtered to year.
func (c *Config) production(year int) (*table.Table, error) {
	t, err := dataset.Load(c.ProductionPath)
	if err != nil {
		return nil, err
	}
	return dataset.FilterYear(t, dataset.ColYear, year)
}

// ProductionByState aggregates the year's production by state with the
// sum policy. It also backs the driver's -table output.
func (c *Config) ProductionByState(year int) (*agg.Set, error) {
	t, err := c.production(year)
	if err != nil {
		return nil, err
	}
	keys, err := dataset.Keys(t, dataset.ColState)
	if err != nil {
		return nil, err
	}
	return agg.Aggregate(t, keys,
		[]string{dataset.ColVolume, dataset.ColValue}, agg.Sum)
}

// positiveLookup resolves keys against set and treats non-positive values
// as absent: log scales are undefined there and zero activity renders as
// absent data.
func positiveLookup(set *agg.Set, measure string) geo.Lookup {
	return func(key string) (float64, bool) {
		v, ok := set.Lookup(key, measure)
		return v, ok && v > 0
	}
}

// presenceLookup reports a visibility flag for every key that has any
// record at all.
func presenceLookup(set *agg.Set) geo.Lookup {
	return func(key string) (float64, bool) {
		_, ok := set.Record(key)
		return 1, ok
	}
}

// displayNames inverts Renames: aggregation keys stay the statistical
// source's, but rendered text shows the full catalog name ("México"
// displays as "Estado de México").
func (c *Config) displayNames() map[string]string {
	if len(c.Renames) == 0 {
		return nil
	}
	names := make(map[string]string, len(c.Renames))
	for catalog, source := range c.Renames {
		names[source] = catalog
	}
	return names
}

// stateTables splits the states, largest producer first, into two 16 row
// panels with the monetary value rescaled to millions. names maps a
// source key to the name shown in the table.
func stateTables(set *agg.Set, names map[string]string) []render.TableSpec {
	recs := set.SortedBy(dataset.ColVolume)
	header := []string{"Entidad", "Valor en MDP", "Toneladas ↓"}
	rows := make([][]string, len(recs))
	for i, r := range recs {
		name := r.Key
		if n, ok := names[r.Key]; ok {
			name = n
		}
		value, volume := "-", "-"
		if v, ok := r.Values[dataset.ColValue]; ok {
			value = fmtFloat(v/1e6, 2)
		}
		if v, ok := r.Values[dataset.ColVolume]; ok {
			volume = fmtFloat(v, 1)
		}
		rows[i] = []string{name, value, volume}
	}
	split := (len(rows) + 1) / 2
	if split > 16 {
		split = 16
	}
	return []render.TableSpec{
		{Header: header, Rows: rows[:split]},
		{Header: header, Rows: rows[split:]},
	}
}

// statsBox formats the descriptive statistics annotation for the
// municipality map.
func statsBox(xs []float64) string {
	if len(xs) == 0 {
		return ""
	}
	s := stats.Sample{Xs: xs}
	_, max := s.Bounds()
	lines := []string{
		"Estadísticas descriptivas",
		"Media: " + fmtFloat(s.Mean(), 1),
		"Mediana: " + fmtFloat(s.Quantile(0.5), 1),
		"DE: " + fmtFloat(s.StdDev(), 1),
		"25%: " + fmtFloat(s.Quantile(0.25), 1),
		"75%: " + fmtFloat(s.Quantile(0.75), 1),
		"95%: " + fmtFloat(s.Quantile(0.95), 1),
		"Máximo: " + fmtFloat(max, 1),
	}
	return strings.Join(lines, "\n")
}

func fmtInt(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func fmtFloat(v float64, digits int) string {
	return humanize.CommafWithDigits(v, digits)
}

func (c *Config) writePNG(name string, img image.Image) error {
	if c.OutDir != "" {
		if err := os.MkdirAll(c.OutDir, 0777); err != nil {
			return err
		}
	}
	return gg.SavePNG(filepath.Join(c.OutDir, name), img)
}
