/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/sprout/growth"
)

// engineFlags configure reference data and scoring. They are shared by the
// commands that build a growth engine.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "reference-dir",
			Sources: cli.EnvVars("SPROUT_REFERENCE_DIR"),
			Usage:   "directory of reference dataset JSON files (defaults to the packaged tables)",
		},
		&cli.StringFlag{
			Name:    "percentile-mode",
			Sources: cli.EnvVars("SPROUT_PERCENTILE_MODE"),
			Value:   string(growth.PercentileStep),
			Usage:   "percentile mapping: step or continuous",
		},
		&cli.StringFlag{
			Name:    "lookup-mode",
			Sources: cli.EnvVars("SPROUT_LOOKUP_MODE"),
			Value:   string(growth.LookupNearest),
			Usage:   "reference age lookup: nearest or linear",
		},
	}
}

// loadDatasets reads reference tables from dir, or the packaged tables
// when dir is empty.
func loadDatasets(dir string) ([]*growth.Dataset, error) {
	if dir == "" {
		return growth.LoadEmbedded()
	}

	return growth.LoadDir(dir)
}

// buildEngine loads reference data and constructs an engine from the
// engine flags of cmd.
func buildEngine(cmd *cli.Command) (*growth.Engine, []*growth.Dataset, error) {
	percentileMode, err := growth.ParsePercentileMode(cmd.String("percentile-mode"))
	if err != nil {
		return nil, nil, err
	}

	lookupMode, err := growth.ParseLookupMode(cmd.String("lookup-mode"))
	if err != nil {
		return nil, nil, err
	}

	dir := cmd.String("reference-dir")

	datasets, err := loadDatasets(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	engine, err := growth.NewEngine(datasets,
		growth.WithPercentileMode(percentileMode),
		growth.WithLookupMode(lookupMode),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build growth engine: %w", err)
	}

	for _, ds := range datasets {
		growthLogger.Info("Loaded reference dataset",
			"type", ds.Type,
			"version", ds.Version,
			"min_age", ds.MinAge(),
			"max_age", ds.MaxAge(),
		)
	}

	growthLogger.Info("Growth engine ready",
		"percentile_mode", percentileMode,
		"lookup_mode", lookupMode,
		"reference_dir", dir,
	)

	return engine, datasets, nil
}
