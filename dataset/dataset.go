// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset loads statistical tables into go-gg tables.
//
// The loader is schema free: every CSV column whose non-empty cells all
// parse as numbers becomes a []float64 column (empty cells become NaN, the
// same convention benchmark tables use for absent results); everything else
// stays a []string column. Consumers ask for the columns they need and get
// a SchemaError when one is missing.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/aclements/go-gg/table"
)

// Columns of the SIAP production dataset.
const (
	ColYear           = "Anio"
	ColState          = "Nomestado"
	ColStateID        = "Idestado"
	ColMunicipalityID = "Idmunicipio"
	ColVolume         = "Volumenproduccion"
	ColValue          = "Valorproduccion"
)

// Columns of the INEGI trade dataset.
const (
	ColTradeYear  = "ANIO"
	ColTradeKind  = "TIPO"
	ColCountry    = "PAIS_O_D"
	ColQuantity   = "CANTIDAD"
	ColTradeValue = "VAL_MNX"
)

// KindExports selects export rows in the trade dataset.
const KindExports = "Exportaciones"

// A SchemaError reports that a column the pipeline requires is absent from
// the input table. It aborts the invocation that hit it; there is no
// partial output.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// Load reads the CSV file at path into a table. The first record is the
// header row.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: empty dataset", path)
	}
	header, rows := recs[0], recs[1:]

	b := new(table.Builder)
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		if nums, ok := numericColumn(cells); ok {
			b.Add(name, nums)
		} else {
			b.Add(name, cells)
		}
	}
	return b.Done(), nil
}

// numericColumn parses cells as a float64 column. It succeeds only if every
// non-empty cell parses and at least one cell is non-empty; empty cells
// become NaN.
func numericColumn(cells []string) ([]float64, bool) {
	nums := make([]float64, len(cells))
	any := false
	for i, c := range cells {
		if c == "" {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = v
		any = true
	}
	return nums, any
}

// Require returns a SchemaError naming the first column in cols absent
// from t.
func Require(t *table.Table, cols ...string) error {
	for _, col := range cols {
		if t.Column(col) == nil {
			return &SchemaError{Column: col}
		}
	}
	return nil
}

// FilterYear keeps the rows whose year column equals year. Year columns
// are numeric in both source datasets.
func FilterYear(t *table.Table, col string, year int) (*table.Table, error) {
	if t.Column(col) == nil {
		return nil, &SchemaError{Column: col}
	}
	return table.Flatten(table.FilterEq(t, col, float64(year))), nil
}

// FilterEq keeps the rows whose col equals val.
func FilterEq(t *table.Table, col string, val interface{}) (*table.Table, error) {
	if t.Column(col) == nil {
		return nil, &SchemaError{Column: col}
	}
	return table.Flatten(table.FilterEq(t, col, val)), nil
}

// Keys returns the column col as one grouping key per row. Numeric key
// columns are formatted without a fractional part; missing cells become
// empty keys, which the aggregator maps to its sentinel.
func Keys(t *table.Table, col string) ([]string, error) {
	switch c := t.Column(col).(type) {
	case []string:
		return append([]string(nil), c...), nil
	case []float64:
		keys := make([]string, len(c))
		for i, v := range c {
			if math.IsNaN(v) {
				continue
			}
			keys[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		return keys, nil
	case nil:
		return nil, &SchemaError{Column: col}
	}
	return nil, fmt.Errorf("column %q cannot be used as a grouping key", col)
}

// MunicipalityKeys builds the five digit municipality key for every row of
// t: the two digit state id followed by the three digit municipality id,
// both zero padded. This is the identifier the municipality boundary
// catalog keys its features by.
func MunicipalityKeys(t *table.Table) ([]string, error) {
	if err := Require(t, ColStateID, ColMunicipalityID); err != nil {
		return nil, err
	}
	states, ok := t.MustColumn(ColStateID).([]float64)
	if !ok {
		return nil, fmt.Errorf("column %q is not numeric", ColStateID)
	}
	munis, ok := t.MustColumn(ColMunicipalityID).([]float64)
	if !ok {
		return nil, fmt.Errorf("column %q is not numeric", ColMunicipalityID)
	}
	keys := make([]string, len(states))
	for i := range keys {
		if math.IsNaN(states[i]) || math.IsNaN(munis[i]) {
			continue
		}
		keys[i] = fmt.Sprintf("%02d%03d", int(states[i]), int(munis[i]))
	}
	return keys, nil
}
