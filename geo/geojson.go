// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geo loads boundary catalogs and joins aggregated statistics onto
// their features.
package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ctessum/geom"
)

// featureCollection mirrors the GeoJSON wire structure. Only the property
// used as the join identifier and the geometry are retained.
type featureCollection struct {
	Type     string        `json:"type"`
	Features []wireFeature `json:"features"`
}

type wireFeature struct {
	Properties map[string]interface{} `json:"properties"`
	Geometry   wireGeometry           `json:"geometry"`
}

type wireGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// A Feature pairs a join identifier with its boundary geometry. The
// geometry is loaded once per run and never mutated.
type Feature struct {
	ID   string
	Geom geom.Polygonal
}

// A Catalog is the ordered feature list of one boundary file. Feature
// order is load order and is significant: rendered value lists must stay
// positionally aligned with it.
type Catalog struct {
	Features []Feature
	Bounds   *geom.Bounds
}

// LoadCatalog reads a GeoJSON feature collection and keys each feature by
// the string property named idProperty. Every feature must carry the
// property; a catalog whose features cannot be identified cannot be
// joined.
func LoadCatalog(path, idProperty string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c := &Catalog{
		Features: make([]Feature, 0, len(fc.Features)),
		Bounds:   geom.NewBounds(),
	}
	for i, f := range fc.Features {
		id, ok := f.Properties[idProperty].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%s: feature %d has no string property %q", path, i, idProperty)
		}
		g, err := decodePolygonal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %q: %w", path, id, err)
		}
		c.Features = append(c.Features, Feature{ID: id, Geom: g})
		c.Bounds.Extend(g.Bounds())
	}
	return c, nil
}

func decodePolygonal(g wireGeometry) (geom.Polygonal, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, err
		}
		return polygon(rings), nil
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, err
		}
		mp := make(geom.MultiPolygon, len(polys))
		for i, rings := range polys {
			mp[i] = polygon(rings)
		}
		return mp, nil
	}
	return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
}

func polygon(rings [][][]float64) geom.Polygon {
	p := make(geom.Polygon, len(rings))
	for i, ring := range rings {
		p[i] = make([]geom.Point, len(ring))
		for j, pt := range ring {
			if len(pt) >= 2 {
				p[i][j] = geom.Point{X: pt[0], Y: pt[1]}
			}
		}
	}
	return p
}
