// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"math"

	"github.com/agrostats/agromap/geo"
	"github.com/agrostats/agromap/scale"
)

// Kind tells the rasterizer how a layer encodes its values.
type Kind int

const (
	// Choropleth fills each feature with the scale color of its value.
	Choropleth Kind = iota

	// Presence fills matched features with a single highlight color.
	Presence

	// Outline strokes feature boundaries and encodes no data. It is
	// drawn above a fill layer to show a coarser political division.
	Outline
)

// A Layer is the renderable descriptor for one overlay: a geometry
// reference, one value per feature in catalog order, and, for scaled
// fills, the domain bounds and tick labels of its legend.
type Layer struct {
	Kind      Kind
	Catalog   *geo.Catalog
	Values    []geo.Value
	Scale     *scale.Log // nil unless Kind is Choropleth
	LineWidth float64
}

// NewChoropleth builds the filled layer for a joined measure. Values are
// carried in log10 space to match the scale's domain; nulls pass through
// unchanged. If every joined value is null there is nothing to color and
// the layer fails with an EmptyDomainError.
func NewChoropleth(c *geo.Catalog, joined *geo.JoinedLayer, sc *scale.Log) (*Layer, error) {
	if len(joined.Values) != len(c.Features) {
		return nil, fmt.Errorf("joined layer has %d values for %d features",
			len(joined.Values), len(c.Features))
	}
	vals := make([]geo.Value, len(joined.Values))
	matched := 0
	for i, v := range joined.Values {
		if !v.Valid {
			continue
		}
		vals[i] = geo.Value{X: math.Log10(v.X), Valid: true}
		matched++
	}
	if matched == 0 {
		return nil, &scale.EmptyDomainError{}
	}
	return &Layer{
		Kind:      Choropleth,
		Catalog:   c,
		Values:    vals,
		Scale:     sc,
		LineWidth: 1,
	}, nil
}

// NewPresence builds a binary layer: matched features are highlighted,
// nulls stay background colored. Values pass through untransformed.
func NewPresence(c *geo.Catalog, joined *geo.JoinedLayer) (*Layer, error) {
	if len(joined.Values) != len(c.Features) {
		return nil, fmt.Errorf("joined layer has %d values for %d features",
			len(joined.Values), len(c.Features))
	}
	if joined.Matched == 0 {
		return nil, &scale.EmptyDomainError{}
	}
	vals := append([]geo.Value(nil), joined.Values...)
	return &Layer{
		Kind:      Presence,
		Catalog:   c,
		Values:    vals,
		LineWidth: 2,
	}, nil
}

// NewOutline builds a boundary overlay over its own catalog. Every value
// is the same visibility flag: the layer exists only to draw contours, so
// there is no join and no missing-value handling.
func NewOutline(c *geo.Catalog, lineWidth float64) *Layer {
	vals := make([]geo.Value, len(c.Features))
	for i := range vals {
		vals[i] = geo.Value{X: 1, Valid: true}
	}
	return &Layer{
		Kind:      Outline,
		Catalog:   c,
		Values:    vals,
		LineWidth: lineWidth,
	}
}
