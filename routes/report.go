/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

// AssessmentFailure describes a stored measurement that could not be scored
type AssessmentFailure struct {
	MeasurementID string                 `json:"measurementId"`
	Type          growth.MeasurementType `json:"type"`
	Value         float64                `json:"value"`
	ObservedAt    time.Time              `json:"observedAt"`
	Error         string                 `json:"error"`
}

// GrowthReport is everything the child page and the growth API show
type GrowthReport struct {
	ChildID     string                    `json:"childId"`
	Sex         growth.Sex                `json:"sex"`
	DateOfBirth time.Time                 `json:"dateOfBirth"`
	Assessments []growth.AssessmentResult `json:"assessments"`
	Failures    []AssessmentFailure       `json:"failures"`
	Latest      []growth.AssessmentResult `json:"latest"`
	Alerts      []growth.GrowthAlert      `json:"alerts"`
	Velocity    []growth.VelocityPoint    `json:"velocity"`
}

// buildGrowthReport scores a child's measurement history. One bad
// measurement is reported in Failures and does not hide the others.
func buildGrowthReport(e *growth.Engine, cfg growth.AlertConfig, child *db.Child, history []db.MeasurementWithDate) (*GrowthReport, error) {
	if e == nil {
		return nil, errEngineMissing
	}

	sex, err := child.GrowthSex()
	if err != nil {
		return nil, err
	}

	measurements := make([]growth.Measurement, 0, len(history))
	for _, m := range history {
		measurements = append(measurements, m.GrowthMeasurement(sex))
	}

	batch := e.AssessAll(child.DateOfBirth, measurements)

	report := &GrowthReport{
		ChildID:     child.ID.String(),
		Sex:         sex,
		DateOfBirth: child.DateOfBirth,
		Assessments: growth.Results(batch),
		Failures:    []AssessmentFailure{},
	}

	for i, b := range batch {
		if b.Err == nil {
			continue
		}

		growthLogger.Log(assessmentFailureLevel(b.Err), "Measurement could not be assessed",
			"child_id", report.ChildID,
			"measurement_id", history[i].ID.String(),
			"type", b.Measurement.Type,
			"error", b.Err,
		)

		report.Failures = append(report.Failures, AssessmentFailure{
			MeasurementID: history[i].ID.String(),
			Type:          b.Measurement.Type,
			Value:         b.Measurement.Value,
			ObservedAt:    b.Measurement.ObservedAt,
			Error:         b.Err.Error(),
		})
	}

	report.Latest = latestByType(report.Assessments)
	report.Alerts = growth.EvaluateAlerts(report.Assessments, cfg)
	report.Velocity = growth.Velocity(report.Assessments)

	if report.Alerts == nil {
		report.Alerts = []growth.GrowthAlert{}
	}

	if report.Velocity == nil {
		report.Velocity = []growth.VelocityPoint{}
	}

	return report, nil
}

// assessmentFailureLevel logs broken reference data as an error and bad
// measurements as a warning.
func assessmentFailureLevel(err error) log.Level {
	if errors.Is(err, growth.ErrMalformedReferenceData) {
		return log.ErrorLevel
	}

	return log.WarnLevel
}

// latestByType returns the most recent assessment of each type, in the
// order of growth.MeasurementTypes.
func latestByType(results []growth.AssessmentResult) []growth.AssessmentResult {
	latest := make(map[growth.MeasurementType]growth.AssessmentResult)

	for _, r := range results {
		current, ok := latest[r.Type]
		if !ok || !r.ObservedAt.Before(current.ObservedAt) {
			latest[r.Type] = r
		}
	}

	out := make([]growth.AssessmentResult, 0, len(latest))

	for _, t := range growth.MeasurementTypes {
		if r, ok := latest[t]; ok {
			out = append(out, r)
		}
	}

	return out
}

// resultsOfType filters results to a single measurement type
func resultsOfType(results []growth.AssessmentResult, t growth.MeasurementType) []growth.AssessmentResult {
	var out []growth.AssessmentResult

	for _, r := range results {
		if r.Type == t {
			out = append(out, r)
		}
	}

	return out
}
