/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// AlertKind identifies what triggered a GrowthAlert
type AlertKind string

// AlertKind values.
const (
	AlertZScore              AlertKind = "zscore"
	AlertImplausibleDecrease AlertKind = "implausible_decrease"
	AlertStagnation          AlertKind = "stagnation"
	AlertDateOrder           AlertKind = "date_order"
	AlertReferenceLimited    AlertKind = "reference_limited"
)

// AlertConfig holds the thresholds used by EvaluateAlerts
type AlertConfig struct {
	// CriticalZ and WarningZ are compared against |z|.
	CriticalZ float64
	WarningZ  float64

	// DecreaseTolerance is the largest drop between consecutive values,
	// in the type's unit, that is not flagged.
	DecreaseTolerance map[MeasurementType]float64

	// StagnationMonths is the shortest interval over which zero growth is flagged.
	StagnationMonths int
}

// DefaultAlertConfig returns the standard alert thresholds
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		CriticalZ: 3,
		WarningZ:  2,
		DecreaseTolerance: map[MeasurementType]float64{
			Weight:            0.5,
			Length:            1.0,
			HeadCircumference: 0.5,
		},
		StagnationMonths: 3,
	}
}

// GrowthAlert is a clinically or procedurally notable finding
type GrowthAlert struct {
	Kind       AlertKind       `json:"kind"`
	Severity   Severity        `json:"severity"`
	Type       MeasurementType `json:"type"`
	ObservedAt time.Time       `json:"observedAt"`
	Message    string          `json:"message"`

	ZScore         float64        `json:"zScore,omitempty"`
	Classification Classification `json:"classification,omitempty"`

	// Set for trend alerts.
	PreviousObservedAt *time.Time `json:"previousObservedAt,omitempty"`
	Delta              float64    `json:"delta,omitempty"`
	IntervalMonths     int        `json:"intervalMonths,omitempty"`
}

// EvaluateAlerts inspects a measurement history and returns alerts for
// out-of-range scores, implausible changes and stagnant growth. Single-point
// alerts follow the input order; trend alerts follow, grouped by type.
func EvaluateAlerts(history []AssessmentResult, cfg AlertConfig) []GrowthAlert {
	var alerts []GrowthAlert

	for _, r := range history {
		alerts = append(alerts, pointAlerts(r, cfg)...)
	}

	for _, t := range orderedTypes(history) {
		series := seriesOf(history, t)
		for i := 1; i < len(series); i++ {
			if a, ok := trendAlert(series[i-1], series[i], cfg); ok {
				alerts = append(alerts, a)
			}
		}
	}

	return alerts
}

func pointAlerts(r AssessmentResult, cfg AlertConfig) []GrowthAlert {
	var alerts []GrowthAlert

	absZ := math.Abs(r.ZScore)

	severity := SeverityNone
	switch {
	case absZ >= cfg.CriticalZ:
		severity = SeverityCritical
	case absZ >= cfg.WarningZ:
		severity = SeverityWarning
	}

	if severity != SeverityNone {
		alerts = append(alerts, GrowthAlert{
			Kind:           AlertZScore,
			Severity:       severity,
			Type:           r.Type,
			ObservedAt:     r.ObservedAt,
			ZScore:         r.ZScore,
			Classification: r.Classification,
			Message:        fmt.Sprintf("%s z-score %.2f (%s)", r.Type.Label(), r.ZScore, r.Classification),
		})
	}

	if r.DateOrderViolation {
		alerts = append(alerts, GrowthAlert{
			Kind:       AlertDateOrder,
			Severity:   SeverityInfo,
			Type:       r.Type,
			ObservedAt: r.ObservedAt,
			Message:    "Measurement date is before the date of birth; age was treated as 0 months",
		})
	}

	if r.AgeClamped {
		alerts = append(alerts, GrowthAlert{
			Kind:       AlertReferenceLimited,
			Severity:   SeverityInfo,
			Type:       r.Type,
			ObservedAt: r.ObservedAt,
			Message: fmt.Sprintf("Age %d months is outside the reference data; scored at %d months",
				r.ActualAgeMonths, r.ReferenceAgeMonths),
		})
	}

	return alerts
}

func trendAlert(prev, cur AssessmentResult, cfg AlertConfig) (GrowthAlert, bool) {
	delta := cur.Value - prev.Value
	interval := cur.ActualAgeMonths - prev.ActualAgeMonths
	prevAt := prev.ObservedAt

	alert := GrowthAlert{
		Severity:           SeverityWarning,
		Type:               cur.Type,
		ObservedAt:         cur.ObservedAt,
		PreviousObservedAt: &prevAt,
		Delta:              delta,
		IntervalMonths:     interval,
	}

	if tolerance, ok := cfg.DecreaseTolerance[cur.Type]; ok && delta < -tolerance {
		alert.Kind = AlertImplausibleDecrease
		alert.Message = fmt.Sprintf("%s dropped by %.2f %s since %s; check for a data-entry error",
			cur.Type.Label(), -delta, cur.Type.Unit(), prev.ObservedAt.Format("2006-01-02"))
		return alert, true
	}

	if cfg.StagnationMonths > 0 && interval >= cfg.StagnationMonths && delta <= 0 {
		alert.Kind = AlertStagnation
		alert.Message = fmt.Sprintf("No %s gain over %d months", cur.Type.Label(), interval)
		return alert, true
	}

	return GrowthAlert{}, false
}

// VelocityPoint is the rate of change between two consecutive measurements
type VelocityPoint struct {
	Type           MeasurementType `json:"type"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	FromAgeMonths  int             `json:"fromAgeMonths"`
	ToAgeMonths    int             `json:"toAgeMonths"`
	Delta          float64         `json:"delta"`
	PerMonth       float64         `json:"perMonth"`
	Defined        bool            `json:"defined"`
	IntervalMonths int             `json:"intervalMonths"`
}

// Velocity returns Δvalue/Δcompleted-months for each consecutive pair of the
// same measurement type. Pairs within the same completed month have no
// defined rate.
func Velocity(history []AssessmentResult) []VelocityPoint {
	var out []VelocityPoint

	for _, t := range orderedTypes(history) {
		series := seriesOf(history, t)
		for i := 1; i < len(series); i++ {
			prev, cur := series[i-1], series[i]

			vp := VelocityPoint{
				Type:           t,
				From:           prev.ObservedAt,
				To:             cur.ObservedAt,
				FromAgeMonths:  prev.ActualAgeMonths,
				ToAgeMonths:    cur.ActualAgeMonths,
				Delta:          cur.Value - prev.Value,
				IntervalMonths: cur.ActualAgeMonths - prev.ActualAgeMonths,
			}

			if vp.IntervalMonths > 0 {
				vp.PerMonth = vp.Delta / float64(vp.IntervalMonths)
				vp.Defined = true
			}

			out = append(out, vp)
		}
	}

	return out
}

// orderedTypes returns the measurement types present in history, in the
// package's display order followed by any others in first-seen order.
func orderedTypes(history []AssessmentResult) []MeasurementType {
	seen := make(map[MeasurementType]bool)
	for _, r := range history {
		seen[r.Type] = true
	}

	var out []MeasurementType
	for _, t := range MeasurementTypes {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}

	for _, r := range history {
		if seen[r.Type] {
			out = append(out, r.Type)
			delete(seen, r.Type)
		}
	}

	return out
}

func seriesOf(history []AssessmentResult, t MeasurementType) []AssessmentResult {
	var series []AssessmentResult
	for _, r := range history {
		if r.Type == t {
			series = append(series, r)
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].ObservedAt.Before(series[j].ObservedAt)
	})

	return series
}
