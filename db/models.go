/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/sprout/growth"
)

// Child is a patient whose growth is being tracked
type Child struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	DateOfBirth  time.Time  `db:"date_of_birth"`
	Sex          growth.Sex `db:"sex"`
	GuardianName *string    `db:"guardian_name"`
	Notes        *string    `db:"notes"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// AgeMonths returns the completed months of age at a given date
func (c *Child) AgeMonths(at time.Time) int {
	return growth.CompletedMonths(c.DateOfBirth, at)
}

// GrowthSex returns the sex used for reference lookups
func (c *Child) GrowthSex() (growth.Sex, error) {
	return growth.ParseSex(string(c.Sex))
}

// ChildSummary is a child with visit statistics
type ChildSummary struct {
	Child
	VisitCount    int        `db:"visit_count"`
	LastVisitDate *time.Time `db:"last_visit_date"`
}

// Visit is a clinic encounter where measurements were taken
type Visit struct {
	ID        uuid.UUID `db:"id"`
	ChildID   uuid.UUID `db:"child_id"`
	VisitDate time.Time `db:"visit_date"`
	Clinician string    `db:"clinician"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// VisitSummary is a visit with its measurement count
type VisitSummary struct {
	Visit
	MeasurementCount int `db:"measurement_count"`
}

// Measurement is a single anthropometric value recorded at a visit
type Measurement struct {
	ID        uuid.UUID              `db:"id"`
	VisitID   uuid.UUID              `db:"visit_id"`
	Type      growth.MeasurementType `db:"type"`
	Value     float64                `db:"value"`
	CreatedAt time.Time              `db:"created_at"`
}

// MeasurementWithDate is a measurement joined with its visit date
type MeasurementWithDate struct {
	Measurement
	VisitDate time.Time
}

// GrowthMeasurement converts the row into an engine input for sex
func (m MeasurementWithDate) GrowthMeasurement(sex growth.Sex) growth.Measurement {
	return growth.Measurement{
		Type:       m.Type,
		Value:      m.Value,
		Sex:        sex,
		ObservedAt: m.VisitDate,
	}
}

// GrowthReference is one stored row of a reference dataset
type GrowthReference struct {
	Type      growth.MeasurementType `db:"type"`
	AgeMonths int                    `db:"age_months"`
	Sex       growth.Sex             `db:"sex"`
	Version   string                 `db:"version"`
	Mean      float64                `db:"mean"`
	SD        float64                `db:"sd"`
	L         float64                `db:"l"`
	M         float64                `db:"m"`
	S         float64                `db:"s"`
	UpdatedAt time.Time              `db:"updated_at"`
}

// Params returns the engine parameter set for the row
func (g *GrowthReference) Params() growth.Params {
	return growth.Params{Mean: g.Mean, SD: g.SD, L: g.L, M: g.M, S: g.S}
}
