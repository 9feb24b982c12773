/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/humaidq/sprout/growth"
)

// ChildInput holds the editable fields of a child record
type ChildInput struct {
	Name         string
	DateOfBirth  time.Time
	Sex          growth.Sex
	GuardianName *string
	Notes        *string
}

// ListChildren returns all children with visit counts
func ListChildren(ctx context.Context) ([]ChildSummary, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT id, name, date_of_birth, sex, guardian_name, notes, created_at, updated_at,
		       visit_count, last_visit_date
		FROM children_summary
		ORDER BY name ASC
	`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var children []ChildSummary

	for rows.Next() {
		var child ChildSummary

		err := rows.Scan(
			&child.ID, &child.Name, &child.DateOfBirth, &child.Sex, &child.GuardianName, &child.Notes,
			&child.CreatedAt, &child.UpdatedAt,
			&child.VisitCount, &child.LastVisitDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}

		children = append(children, child)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating children: %w", err)
	}

	return children, nil
}

// GetChild returns a single child by ID
func GetChild(ctx context.Context, id string) (*Child, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var child Child

	query := `
		SELECT id, name, date_of_birth, sex, guardian_name, notes, created_at, updated_at
		FROM children
		WHERE id = $1
	`

	err := pool.QueryRow(ctx, query, id).Scan(
		&child.ID, &child.Name, &child.DateOfBirth, &child.Sex, &child.GuardianName, &child.Notes,
		&child.CreatedAt, &child.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChildNotFound
		}

		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	return &child, nil
}

func validateChildInput(input ChildInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", growth.ErrInvalidMeasurement)
	}

	if _, err := growth.ParseSex(string(input.Sex)); err != nil {
		return err
	}

	if input.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date of birth is required", growth.ErrInvalidMeasurement)
	}

	return nil
}

// CreateChild inserts a child and returns its ID
func CreateChild(ctx context.Context, input ChildInput) (string, error) {
	if pool == nil {
		return "", ErrDatabaseConnectionNotInitialized
	}

	if err := validateChildInput(input); err != nil {
		return "", err
	}

	var id string

	query := `
		INSERT INTO children (name, date_of_birth, sex, guardian_name, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := pool.QueryRow(ctx, query,
		input.Name, input.DateOfBirth, input.Sex, input.GuardianName, input.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create child: %w", err)
	}

	logger.Info("Created child", "child_id", id)

	return id, nil
}

// UpdateChild updates a child's details
func UpdateChild(ctx context.Context, id string, input ChildInput) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if err := validateChildInput(input); err != nil {
		return err
	}

	query := `
		UPDATE children
		SET name = $1, date_of_birth = $2, sex = $3, guardian_name = $4, notes = $5
		WHERE id = $6
	`

	tag, err := pool.Exec(ctx, query,
		input.Name, input.DateOfBirth, input.Sex, input.GuardianName, input.Notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrChildNotFound
	}

	return nil
}

// DeleteChild deletes a child (cascades to visits and measurements)
func DeleteChild(ctx context.Context, id string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if _, err := pool.Exec(ctx, `DELETE FROM children WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}

	logger.Info("Deleted child", "child_id", id)

	return nil
}
