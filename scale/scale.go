// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scale derives logarithmic color scales for choropleth legends.
package scale

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/vec"
)

// DefaultTicks is the number of tick marks on a map legend.
const DefaultTicks = 11

// An EmptyDomainError reports that a scale could not be derived because a
// layer carried no usable values. It is fatal for that layer but does not
// abort unrelated layers.
type EmptyDomainError struct {
	Measure string
}

func (e *EmptyDomainError) Error() string {
	if e.Measure == "" {
		return "every joined value is null; no scale can be derived"
	}
	return fmt.Sprintf("no positive %s values; no scale can be derived", e.Measure)
}

// A Log is a base 10 logarithmic color scale. Min and Max bound the domain
// in log space, Ticks holds the tick positions in log space in
// non-decreasing order, and Labels holds one linear-unit label per tick.
//
// When every input value is identical the ticks collapse onto a single
// repeated position. The scale is still valid, just visually degenerate.
type Log struct {
	Min, Max float64
	Ticks    []float64
	Labels   []string
}

// BuildLog derives a scale with nticks evenly spaced ticks from strictly
// positive values. Zero and negative values are undefined on a log scale
// and must be filtered out by the caller; an empty values slice is an
// EmptyDomainError.
func BuildLog(measure string, values []float64, nticks int) (*Log, error) {
	if len(values) == 0 {
		return nil, &EmptyDomainError{Measure: measure}
	}
	if nticks < 1 {
		return nil, fmt.Errorf("scale needs at least one tick; got %d", nticks)
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min <= 0 {
		return nil, fmt.Errorf("%s values must be strictly positive; got %v", measure, min)
	}

	l := &Log{Min: math.Log10(min), Max: math.Log10(max)}
	l.Ticks = vec.Linspace(l.Min, l.Max, nticks)
	l.Labels = make([]string, len(l.Ticks))
	for i, tk := range l.Ticks {
		l.Labels[i] = Label(math.Pow(10, tk))
	}
	return l, nil
}

// Norm maps a log-space value onto [0, 1]. A degenerate domain maps
// everything to the midpoint.
func (l *Log) Norm(x float64) float64 {
	if l.Max == l.Min {
		return 0.5
	}
	t := (x - l.Min) / (l.Max - l.Min)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Label renders a linear-unit value with the abbreviation rule legends
// use: values of a million and up render as tenths of millions ("2.5M"),
// values of a thousand and up as whole thousands ("2k"), and anything
// smaller as a whole number.
func Label(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
