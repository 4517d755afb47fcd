// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package agg reduces raw statistical rows to one record per grouping key.
package agg

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-gg/table"

	"github.com/agrostats/agromap/dataset"
)

// SentinelKey is the grouping key assigned to rows whose own key is
// missing. The trade dataset reports national totals on rows with no
// country code; parking them under a synthetic key keeps them joinable.
const SentinelKey = "TOTAL"

// Mode selects how rows sharing a key are reduced.
type Mode int

const (
	// Sum adds each measure across the rows of a key.
	Sum Mode = iota

	// ResolveDuplicatesMax keeps the per-measure maximum. The trade
	// dataset reports a parent category and its subcategories as
	// separate rows, and the real figure sits unpredictably on one of
	// them; taking the maximum is a deliberate tie break for that
	// reporting quirk, not a general-purpose aggregation.
	ResolveDuplicatesMax
)

// A Record is the reduced row for one grouping key. Measures a key never
// reported are absent from Values.
type Record struct {
	Key    string
	Values map[string]float64
}

// A Set holds one Record per distinct grouping key. It is built once per
// invocation and read only afterwards.
type Set struct {
	measures []string
	recs     map[string]*Record
	order    []string // first-seen key order
}

// Aggregate reduces t to one record per distinct key. keys carries one
// grouping key per row of t; empty keys map to SentinelKey. measures names
// the numeric columns to reduce; a missing measure column is a
// SchemaError. NaN cells count as absent and never contribute.
func Aggregate(t *table.Table, keys []string, measures []string, mode Mode) (*Set, error) {
	if len(keys) != t.Len() {
		return nil, fmt.Errorf("have %d keys for %d rows", len(keys), t.Len())
	}
	if err := dataset.Require(t, measures...); err != nil {
		return nil, err
	}
	cols := make([][]float64, len(measures))
	for i, m := range measures {
		col, ok := t.MustColumn(m).([]float64)
		if !ok {
			return nil, &dataset.SchemaError{Column: m}
		}
		cols[i] = col
	}

	s := &Set{measures: measures, recs: make(map[string]*Record)}
	for i := 0; i < t.Len(); i++ {
		key := keys[i]
		if key == "" {
			key = SentinelKey
		}
		rec := s.recs[key]
		if rec == nil {
			rec = &Record{Key: key, Values: make(map[string]float64, len(measures))}
			s.recs[key] = rec
			s.order = append(s.order, key)
		}
		for mi, m := range measures {
			v := cols[mi][i]
			if math.IsNaN(v) {
				continue
			}
			old, seen := rec.Values[m]
			switch {
			case !seen:
				rec.Values[m] = v
			case mode == Sum:
				rec.Values[m] = old + v
			case mode == ResolveDuplicatesMax:
				rec.Values[m] = math.Max(old, v)
			}
		}
	}
	return s, nil
}

// Len returns the number of distinct keys, the sentinel included.
func (s *Set) Len() int { return len(s.order) }

// Keys returns the distinct keys in first-seen order.
func (s *Set) Keys() []string { return append([]string(nil), s.order...) }

// Record returns the record for key.
func (s *Set) Record(key string) (*Record, bool) {
	rec, ok := s.recs[key]
	return rec, ok
}

// Lookup returns the value of measure for key. ok reports whether the key
// exists and reported that measure.
func (s *Set) Lookup(key, measure string) (float64, bool) {
	rec, ok := s.recs[key]
	if !ok {
		return 0, false
	}
	v, ok := rec.Values[measure]
	return v, ok
}

// Total sums measure across every record except the sentinel.
func (s *Set) Total(measure string) float64 {
	var sum float64
	for _, key := range s.order {
		if key == SentinelKey {
			continue
		}
		if v, ok := s.recs[key].Values[measure]; ok {
			sum += v
		}
	}
	return sum
}

// PositiveValues returns the strictly positive values of measure across
// every record except the sentinel, in key order. These are the values a
// logarithmic scale can be derived from; zero-activity records are
// rendered as absent data instead.
func (s *Set) PositiveValues(measure string) []float64 {
	var vals []float64
	for _, key := range s.order {
		if key == SentinelKey {
			continue
		}
		if v, ok := s.recs[key].Values[measure]; ok && v > 0 {
			vals = append(vals, v)
		}
	}
	return vals
}

// SortedBy returns the records ordered by measure, largest first, the
// sentinel excluded. Records missing the measure sort last; ties order by
// key so the output is deterministic.
func (s *Set) SortedBy(measure string) []*Record {
	var recs []*Record
	for _, key := range s.order {
		if key == SentinelKey {
			continue
		}
		recs = append(recs, s.recs[key])
	}
	val := func(r *Record) float64 {
		if v, ok := r.Values[measure]; ok {
			return v
		}
		return math.Inf(-1)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		vi, vj := val(recs[i]), val(recs[j])
		if vi != vj {
			return vi > vj
		}
		return recs[i].Key < recs[j].Key
	})
	return recs
}

// Table converts the set back into a table with keyCol as the key column
// and one column per measure, rows in first-seen key order. Absent
// measures become NaN cells.
func (s *Set) Table(keyCol string) *table.Table {
	b := new(table.Builder)
	b.Add(keyCol, s.Keys())
	for _, m := range s.measures {
		col := make([]float64, len(s.order))
		for i, key := range s.order {
			v, ok := s.recs[key].Values[m]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		b.Add(m, col)
	}
	return b.Done()
}
