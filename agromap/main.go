// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command agromap renders choropleth maps of avocado production and trade
// from SIAP and INEGI statistical tables.
//
// For each year given on the command line it renders up to three
// artifacts: a per-state summary map with table panels
// (entidades_<year>.png), a high resolution per-municipality map
// (municipios_<year>.png), and a binary export-destination world map
// (exportaciones_<year>.png). Years are independent and render
// concurrently, one worker per year.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrostats/agromap/dataset"
	"github.com/agrostats/agromap/render"
	"github.com/agrostats/agromap/report"
	"github.com/agrostats/agromap/scale"
)

func main() {
	var (
		flagData   = flag.String("data", "data", "read statistical tables from `dir`")
		flagAssets = flag.String("assets", "assets", "read boundary catalogs from `dir`")
		flagOut    = flag.String("o", ".", "write rendered maps to `dir`")
		flagTheme  = flag.String("theme", "", "load theme overrides from yaml `file`")
		flagMaps   = flag.String("maps", "all", "comma separated `list` of maps to render (all, states, municipalities, exports)")
		flagTicks  = flag.Int("ticks", scale.DefaultTicks, "number of legend tick marks")
		flagTable  = flag.Bool("table", false, "print the aggregated state table instead of rendering")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] year...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()
	log := zl.Sugar()

	years, err := parseYears(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	theme := render.DefaultTheme()
	if *flagTheme != "" {
		theme, err = render.LoadTheme(*flagTheme)
		if err != nil {
			log.Fatalf("loading theme: %v", err)
		}
	}

	cfg := report.Config{
		ProductionPath:         filepath.Join(*flagData, "siap_produccion.csv"),
		ExportsPath:            filepath.Join(*flagData, "inegi_exportaciones.csv"),
		StateCatalog:           filepath.Join(*flagAssets, "mexico.json"),
		StateIDProperty:        "NOMGEO",
		MunicipalityCatalog:    filepath.Join(*flagAssets, "mexico2023.json"),
		MunicipalityIDProperty: "CVEGEO",
		WorldCatalog:           filepath.Join(*flagAssets, "world.json"),
		WorldIDProperty:        "ISO_A3",
		Renames:                map[string]string{"Estado de México": "México"},
		OutDir:                 *flagOut,
		Theme:                  theme,
		SourceProduction:       "Fuente: SIAP (2024)",
		SourceTrade:            "Fuente: INEGI (2024)",
		Attribution:            "@agrostats",
		Ticks:                  *flagTicks,
	}

	if *flagTable {
		for _, year := range years {
			set, err := cfg.ProductionByState(year)
			if err != nil {
				log.Fatalf("aggregating %d: %v", year, err)
			}
			table.Fprint(os.Stdout, set.Table(dataset.ColState))
		}
		return
	}

	maps := strings.Split(*flagMaps, ",")
	var g errgroup.Group
	for _, year := range years {
		year := year
		c := cfg
		c.Log = log.With("year", year)
		g.Go(func() error {
			return run(&c, year, maps)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

func run(c *report.Config, year int, maps []string) error {
	for _, m := range maps {
		var err error
		switch strings.TrimSpace(m) {
		case "all":
			err = c.All(year)
		case "states":
			err = c.StateMap(year)
		case "municipalities":
			err = c.MunicipalityMap(year)
		case "exports":
			err = c.ExportMap(year)
		case "":
		default:
			err = fmt.Errorf("unknown map %q", m)
		}
		if err != nil {
			return fmt.Errorf("%s %d: %w", m, year, err)
		}
	}
	return nil
}

func parseYears(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one year is required")
	}
	years := make([]int, len(args))
	for i, a := range args {
		y, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad year %q", a)
		}
		years[i] = y
	}
	return years, nil
}
