/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/humaidq/sprout/growth"
)

// SyncGrowthReferences replaces the stored rows of every type in datasets so
// the stored references mirror what the engine was built from. Ages dropped
// from a table since the last sync are removed. Types absent from datasets
// are left untouched.
func SyncGrowthReferences(ctx context.Context, datasets []*growth.Dataset) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if len(datasets) == 0 {
		return ErrNoReferenceDatasets
	}

	query := `
		INSERT INTO growth_references (type, age_months, sex, version, mean, sd, l, m, s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (type, age_months, sex)
		DO UPDATE SET
			version = EXCLUDED.version,
			mean = EXCLUDED.mean,
			sd = EXCLUDED.sd,
			l = EXCLUDED.l,
			m = EXCLUDED.m,
			s = EXCLUDED.s,
			updated_at = now()
	`

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	rows := 0

	for _, ds := range datasets {
		if ds == nil {
			continue
		}

		batch.Queue(`DELETE FROM growth_references WHERE type = $1`, ds.Type)

		for _, point := range ds.Points() {
			for _, sex := range []growth.Sex{growth.SexMale, growth.SexFemale} {
				p, err := point.ForSex(sex)
				if err != nil {
					return err
				}

				batch.Queue(query, ds.Type, point.AgeMonths, sex, ds.Version, p.Mean, p.SD, p.L, p.M, p.S)
				rows++
			}
		}
	}

	logger.Infof("Syncing %d growth reference rows to database...", rows)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to sync growth references: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit growth references: %w", err)
	}

	logger.Infof("Successfully synced %d growth reference rows", rows)

	return nil
}

// GetGrowthReference returns the stored row for an exact type, age and sex
func GetGrowthReference(ctx context.Context, t growth.MeasurementType, ageMonths int, sex growth.Sex) (*GrowthReference, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var ref GrowthReference

	query := `
		SELECT type, age_months, sex, version, mean, sd, l, m, s, updated_at
		FROM growth_references
		WHERE type = $1 AND age_months = $2 AND sex = $3
	`

	err := pool.QueryRow(ctx, query, t, ageMonths, sex).Scan(
		&ref.Type, &ref.AgeMonths, &ref.Sex, &ref.Version,
		&ref.Mean, &ref.SD, &ref.L, &ref.M, &ref.S,
		&ref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // Ages outside the table are expected.
		}

		return nil, fmt.Errorf("failed to get growth reference: %w", err)
	}

	return &ref, nil
}

// CountGrowthReferences returns the number of stored rows per measurement type
func CountGrowthReferences(ctx context.Context) (map[growth.MeasurementType]int, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `SELECT type, COUNT(*) FROM growth_references GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count growth references: %w", err)
	}
	defer rows.Close()

	counts := make(map[growth.MeasurementType]int)

	for rows.Next() {
		var (
			t     growth.MeasurementType
			count int
		)

		if err := rows.Scan(&t, &count); err != nil {
			return nil, fmt.Errorf("failed to scan growth reference count: %w", err)
		}

		counts[t] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating growth reference counts: %w", err)
	}

	return counts, nil
}
