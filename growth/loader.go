/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

//go:embed data/*.json
var embeddedData embed.FS

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// datasetFile is the on-disk shape of a reference table
type datasetFile struct {
	Type    MeasurementType      `json:"type"`
	Version string               `json:"version"`
	Source  string               `json:"source"`
	Points  []ReferenceDataPoint `json:"points"`
}

// DecodeDataset reads and validates one JSON reference table
func DecodeDataset(r io.Reader) (*Dataset, error) {
	var file datasetFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode reference dataset: %w", err)
	}

	return NewDataset(file.Type, file.Version, file.Source, file.Points)
}

// LoadEmbedded returns the packaged reference datasets
func LoadEmbedded() ([]*Dataset, error) {
	return LoadFS(embeddedData, "data")
}

// LoadDir loads every *.json reference table in dir
func LoadDir(dir string) ([]*Dataset, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads every *.json reference table in dir of fsys, sorted by file name
func LoadFS(fsys fs.FS, dir string) ([]*Dataset, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no reference tables in %s", ErrMalformedReferenceData, dir)
	}

	datasets := make([]*Dataset, 0, len(names))
	for _, name := range names {
		ds, err := loadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		datasets = append(datasets, ds)
	}

	return datasets, nil
}

func loadFile(fsys fs.FS, name string) (*Dataset, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table: %w", err)
	}
	defer f.Close()

	return DecodeDataset(f)
}
