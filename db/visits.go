/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/humaidq/sprout/growth"
)

// ========== Visit Operations ==========

// CreateVisitInput represents input for creating a visit. Types left out of
// Measurements were not measured.
type CreateVisitInput struct {
	ChildID      string
	VisitDate    time.Time
	Clinician    string
	Notes        *string
	Measurements map[growth.MeasurementType]float64
}

// ListVisits returns all visits for a child, newest first
func ListVisits(ctx context.Context, childID string) ([]VisitSummary, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT id, child_id, visit_date, clinician, notes,
		       created_at, updated_at, measurement_count
		FROM visits_summary
		WHERE child_id = $1
		ORDER BY visit_date DESC
	`

	rows, err := pool.Query(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []VisitSummary

	for rows.Next() {
		var visit VisitSummary

		err := rows.Scan(
			&visit.ID, &visit.ChildID, &visit.VisitDate,
			&visit.Clinician, &visit.Notes, &visit.CreatedAt,
			&visit.UpdatedAt, &visit.MeasurementCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		visits = append(visits, visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return visits, nil
}

// GetVisit returns a single visit by ID
func GetVisit(ctx context.Context, id string) (*Visit, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var visit Visit

	query := `
		SELECT id, child_id, visit_date, clinician, notes, created_at, updated_at
		FROM visits
		WHERE id = $1
	`

	err := pool.QueryRow(ctx, query, id).Scan(
		&visit.ID, &visit.ChildID, &visit.VisitDate,
		&visit.Clinician, &visit.Notes, &visit.CreatedAt,
		&visit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}

		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	return &visit, nil
}

// CreateVisit records a visit and its measurements in one transaction
func CreateVisit(ctx context.Context, input CreateVisitInput) (string, error) {
	for t, v := range input.Measurements {
		if err := validateMeasurement(t, v); err != nil {
			return "", err
		}
	}

	if pool == nil {
		return "", ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string

	err = tx.QueryRow(ctx, `
		INSERT INTO visits (child_id, visit_date, clinician, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, input.ChildID, input.VisitDate, input.Clinician, input.Notes).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create visit: %w", err)
	}

	for _, t := range growth.MeasurementTypes {
		value, ok := input.Measurements[t]
		if !ok {
			continue
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO measurements (visit_id, type, value) VALUES ($1, $2, $3)`,
			id, t, value,
		)
		if err != nil {
			return "", fmt.Errorf("failed to record %s: %w", t, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit visit: %w", err)
	}

	return id, nil
}

// DeleteVisit deletes a visit (cascades to measurements)
func DeleteVisit(ctx context.Context, id string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if _, err := pool.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}

	return nil
}

// ========== Measurement Operations ==========

// ListMeasurementsByVisit returns the measurements taken at a visit
func ListMeasurementsByVisit(ctx context.Context, visitID string) ([]Measurement, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT id, visit_id, type, value, created_at
		FROM measurements
		WHERE visit_id = $1
		ORDER BY type ASC
	`, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var measurements []Measurement

	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.VisitID, &m.Type, &m.Value, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}

		measurements = append(measurements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return measurements, nil
}

// CreateMeasurement adds or replaces one measurement on an existing visit
func CreateMeasurement(ctx context.Context, visitID string, t growth.MeasurementType, value float64) (string, error) {
	if err := validateMeasurement(t, value); err != nil {
		return "", err
	}

	if pool == nil {
		return "", ErrDatabaseConnectionNotInitialized
	}

	var id string

	query := `
		INSERT INTO measurements (visit_id, type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (visit_id, type)
		DO UPDATE SET value = EXCLUDED.value
		RETURNING id
	`

	if err := pool.QueryRow(ctx, query, visitID, t, value).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create measurement: %w", err)
	}

	return id, nil
}

// validateMeasurement accepts known types with a finite positive value
func validateMeasurement(t growth.MeasurementType, value float64) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", growth.ErrUnknownMeasurementType, t)
	}

	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be a finite positive number, got %g", growth.ErrInvalidMeasurement, t, value)
	}

	return nil
}

// DeleteMeasurement deletes a measurement
func DeleteMeasurement(ctx context.Context, id string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if _, err := pool.Exec(ctx, `DELETE FROM measurements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}

	return nil
}

// ListMeasurementHistory returns every measurement for a child with its visit
// date, oldest first
func ListMeasurementHistory(ctx context.Context, childID string) ([]MeasurementWithDate, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT m.id, m.visit_id, m.type, m.value, m.created_at,
		       v.visit_date
		FROM measurements m
		INNER JOIN visits v ON m.visit_id = v.id
		WHERE v.child_id = $1
		ORDER BY v.visit_date ASC, m.type ASC
	`

	rows, err := pool.Query(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement history: %w", err)
	}
	defer rows.Close()

	var history []MeasurementWithDate

	for rows.Next() {
		var m MeasurementWithDate

		err := rows.Scan(
			&m.ID, &m.VisitID, &m.Type, &m.Value, &m.CreatedAt,
			&m.VisitDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}

		history = append(history, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return history, nil
}
