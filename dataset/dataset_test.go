// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

const productionCSV = `Anio,Nomestado,Idestado,Idmunicipio,Volumenproduccion,Valorproduccion
2022,Michoacán,16,53,100,2000
2023,Michoacán,16,53,1700000,30000000
2023,Jalisco,14,8,270000,5000000
2023,México,15,51,,90000
`

func TestLoadTypesColumns(t *testing.T) {
	tab, err := Load(writeCSV(t, productionCSV))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 4 {
		t.Errorf("table should have 4 rows; got %d", tab.Len())
	}
	if _, ok := tab.Column(ColState).([]string); !ok {
		t.Errorf("%s should be a string column; got %T", ColState, tab.Column(ColState))
	}
	vols, ok := tab.Column(ColVolume).([]float64)
	if !ok {
		t.Fatalf("%s should be a numeric column; got %T", ColVolume, tab.Column(ColVolume))
	}
	if !math.IsNaN(vols[3]) {
		t.Errorf("empty cell should load as NaN; got %v", vols[3])
	}
}

func TestFilterYear(t *testing.T) {
	tab, err := Load(writeCSV(t, productionCSV))
	if err != nil {
		t.Fatal(err)
	}
	tab, err = FilterYear(tab, ColYear, 2023)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 3 {
		t.Errorf("2023 should have 3 rows; got %d", tab.Len())
	}

	if _, err := FilterYear(tab, "NoSuchColumn", 2023); err == nil {
		t.Errorf("filtering on a missing column should fail")
	}
}

func TestKeys(t *testing.T) {
	tab, err := Load(writeCSV(t, productionCSV))
	if err != nil {
		t.Fatal(err)
	}
	keys, err := Keys(tab, ColState)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Michoacán", "Michoacán", "Jalisco", "México"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys should be %v; got %v", want, keys)
	}

	// Numeric key columns format without a fractional part.
	keys, err = Keys(tab, ColStateID)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"16", "16", "14", "15"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("numeric keys should be %v; got %v", want, keys)
	}
}

func TestMunicipalityKeys(t *testing.T) {
	tab, err := Load(writeCSV(t, productionCSV))
	if err != nil {
		t.Fatal(err)
	}
	keys, err := MunicipalityKeys(tab)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"16053", "16053", "14008", "15051"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("municipality keys should be %v; got %v", want, keys)
	}
}

func TestRequireSchemaError(t *testing.T) {
	tab, err := Load(writeCSV(t, productionCSV))
	if err != nil {
		t.Fatal(err)
	}
	err = Require(tab, ColVolume, "Rendimiento")
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("want SchemaError; got %v", err)
	}
	if se.Column != "Rendimiento" {
		t.Errorf("error should name column %q; got %q", "Rendimiento", se.Column)
	}
}
