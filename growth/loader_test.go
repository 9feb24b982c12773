// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package growth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

const lmsTable = `{
  "type": "weight",
  "version": "clinic-lms-1",
  "source": "test",
  "points": [
    {"ageMonths": 0, "male": {"L": 0.3487, "M": 3.3464, "S": 0.14602}, "female": {"L": 0.3809, "M": 3.2322, "S": 0.14171}},
    {"ageMonths": 1, "male": {"L": 0.2297, "M": 4.4709, "S": 0.13395}, "female": {"L": 0.1714, "M": 4.1873, "S": 0.13724}}
  ]
}`

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "weight.json"), []byte(lmsTable), 0o600); err != nil {
		t.Fatalf("failed to write table: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("failed to write readme: %v", err)
	}

	datasets, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	if len(datasets) != 1 || datasets[0].Type != Weight || datasets[0].Version != "clinic-lms-1" {
		t.Fatalf("unexpected datasets: %+v", datasets)
	}

	engine, err := NewEngine(datasets)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	result, err := engine.Assess(Measurement{
		Type:       Weight,
		Value:      3.3464,
		Sex:        SexMale,
		ObservedAt: date(t, "2023-01-10"),
	}, date(t, "2023-01-01"))
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	assertFloatClose(t, result.ZScore, 0)

	if _, err := engine.Assess(Measurement{Type: Length, Value: 50, Sex: SexMale, ObservedAt: date(t, "2023-01-10")}, date(t, "2023-01-01")); !errors.Is(err, ErrMalformedReferenceData) {
		t.Fatalf("expected ErrMalformedReferenceData for a type with no table, got %v", err)
	}
}

func TestLoadFSErrors(t *testing.T) {
	t.Parallel()

	empty := fstest.MapFS{"tables/notes.txt": {Data: []byte("x")}}
	if _, err := LoadFS(empty, "tables"); !errors.Is(err, ErrMalformedReferenceData) {
		t.Fatalf("expected ErrMalformedReferenceData for a directory with no tables, got %v", err)
	}

	if _, err := LoadFS(fstest.MapFS{}, "missing"); err == nil {
		t.Fatalf("expected error for a missing directory")
	}

	broken := fstest.MapFS{
		"tables/a.json": {Data: []byte(lmsTable)},
		"tables/b.json": {Data: []byte(`{"type": "length", "version": "x", "points": []}`)},
	}
	if _, err := LoadFS(broken, "tables"); !errors.Is(err, ErrMalformedReferenceData) {
		t.Fatalf("expected ErrMalformedReferenceData for an empty table, got %v", err)
	}
}
