// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

// A Value is a joined measure value or an explicit null. A null marks a
// feature with no recorded activity; it is expected data, not an error.
type Value struct {
	X     float64
	Valid bool
}

// A Lookup resolves a join key to a measure value. A false ok is the
// null case: the key has no usable value.
type Lookup func(key string) (x float64, ok bool)

// A JoinedLayer carries one value per catalog feature, in catalog order.
// Its length always equals the catalog's feature count; the join never
// reorders, filters, or deduplicates features, because the renderer needs
// positional correspondence between geometry and values.
type JoinedLayer struct {
	IDs     []string
	Values  []Value
	Matched int
}

// Join looks up every catalog feature by identifier. The match is an exact
// string comparison, except that renames maps a catalog identifier to the
// identifier the statistical source uses and is applied before lookup
// (the state catalog says "Estado de México" where the production tables
// say "México"). Unmatched features join as nulls.
func Join(c *Catalog, lookup Lookup, renames map[string]string) *JoinedLayer {
	l := &JoinedLayer{
		IDs:    make([]string, len(c.Features)),
		Values: make([]Value, len(c.Features)),
	}
	for i, f := range c.Features {
		l.IDs[i] = f.ID
		key := f.ID
		if r, ok := renames[key]; ok {
			key = r
		}
		if x, ok := lookup(key); ok {
			l.Values[i] = Value{X: x, Valid: true}
			l.Matched++
		}
	}
	return l
}

// Coverage returns the fraction of features that matched. A drop in
// coverage is how a stale rename table or a catalog schema change shows
// up, so callers should surface it rather than guess.
func (l *JoinedLayer) Coverage() float64 {
	if len(l.Values) == 0 {
		return 0
	}
	return float64(l.Matched) / float64(len(l.Values))
}
