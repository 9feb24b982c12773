/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"fmt"
	"math"
	"time"
)

// Engine computes growth assessments against loaded reference datasets.
// It holds no mutable state once built and may be shared between goroutines.
type Engine struct {
	datasets       map[MeasurementType]*Dataset
	thresholds     ThresholdTable
	percentileMode PercentileMode
	lookupMode     LookupMode
}

// Option configures an Engine
type Option func(*Engine)

// WithThresholds replaces the default classification table
func WithThresholds(tt ThresholdTable) Option {
	return func(e *Engine) {
		e.thresholds = tt
	}
}

// WithPercentileMode sets the z-score to percentile mapping
func WithPercentileMode(m PercentileMode) Option {
	return func(e *Engine) {
		e.percentileMode = m
	}
}

// WithLookupMode sets how ages between sampled rows are resolved
func WithLookupMode(m LookupMode) Option {
	return func(e *Engine) {
		e.lookupMode = m
	}
}

// NewEngine builds an engine over datasets, at most one per measurement type.
// The threshold table must hold bands for every loaded type.
func NewEngine(datasets []*Dataset, opts ...Option) (*Engine, error) {
	e := &Engine{
		datasets:       make(map[MeasurementType]*Dataset, len(datasets)),
		thresholds:     DefaultThresholds(),
		percentileMode: PercentileStep,
		lookupMode:     LookupNearest,
	}

	for _, opt := range opts {
		opt(e)
	}

	for _, ds := range datasets {
		if ds == nil {
			return nil, fmt.Errorf("%w: nil dataset", ErrMalformedReferenceData)
		}

		if _, exists := e.datasets[ds.Type]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDataset, ds.Type)
		}

		e.datasets[ds.Type] = ds
	}

	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}

	for t := range e.datasets {
		if _, ok := e.thresholds[t]; !ok {
			return nil, fmt.Errorf("%w: no bands for %s", ErrInvalidThresholds, t)
		}
	}

	return e, nil
}

// Dataset returns the reference dataset loaded for t, or nil
func (e *Engine) Dataset(t MeasurementType) *Dataset {
	return e.datasets[t]
}

// Thresholds returns the classification table in use
func (e *Engine) Thresholds() ThresholdTable {
	return e.thresholds
}

// Lookup resolves reference parameters using the engine's lookup mode
func (e *Engine) Lookup(t MeasurementType, ageMonths int, sex Sex) (LookupResult, error) {
	if !t.Valid() {
		return LookupResult{}, fmt.Errorf("%w: %q", ErrUnknownMeasurementType, t)
	}

	ds, ok := e.datasets[t]
	if !ok {
		return LookupResult{}, fmt.Errorf("%w: no dataset loaded for %s", ErrMalformedReferenceData, t)
	}

	return ds.lookup(ageMonths, sex, e.lookupMode)
}

// Assess scores a single measurement for a child born on dob
func (e *Engine) Assess(m Measurement, dob time.Time) (AssessmentResult, error) {
	if m.Value <= 0 || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return AssessmentResult{}, fmt.Errorf("%w: %v", ErrInvalidMeasurement, m.Value)
	}

	if m.Sex != SexMale && m.Sex != SexFemale {
		return AssessmentResult{}, fmt.Errorf("%w: %q", ErrUnknownSex, m.Sex)
	}

	actual := CompletedMonths(dob, m.ObservedAt)

	ref, err := e.Lookup(m.Type, actual, m.Sex)
	if err != nil {
		return AssessmentResult{}, err
	}

	z, err := ref.ZScore(m.Value)
	if err != nil {
		return AssessmentResult{}, fmt.Errorf("%s at %d months: %w", m.Type, ref.ReferenceAgeMonths, err)
	}

	class, err := e.thresholds.Classify(m.Type, z)
	if err != nil {
		return AssessmentResult{}, err
	}

	return AssessmentResult{
		Type:       m.Type,
		Sex:        m.Sex,
		Value:      m.Value,
		Unit:       m.Type.Unit(),
		ObservedAt: m.ObservedAt,

		ZScore:         z,
		Percentile:     e.percentileMode.percentile(z),
		Classification: class,
		SDCategory:     SDBand(z),

		ReferenceAgeMonths:    ref.ReferenceAgeMonths,
		ActualAgeMonths:       actual,
		MaxReferenceAgeMonths: ref.MaxAgeMonths,
		AgeClamped:            ref.Clamped,
		DateOrderViolation:    DatesOutOfOrder(dob, m.ObservedAt),
		ReferenceVersion:      e.datasets[m.Type].Version,
	}, nil
}

// BatchResult pairs a measurement with its assessment or failure
type BatchResult struct {
	Measurement Measurement
	Result      *AssessmentResult
	Err         error
}

// AssessAll scores a measurement history. A failing measurement is reported
// in its BatchResult and does not stop the rest of the series.
func (e *Engine) AssessAll(dob time.Time, measurements []Measurement) []BatchResult {
	out := make([]BatchResult, 0, len(measurements))

	for _, m := range measurements {
		res, err := e.Assess(m, dob)
		if err != nil {
			out = append(out, BatchResult{Measurement: m, Err: err})
			continue
		}

		out = append(out, BatchResult{Measurement: m, Result: &res})
	}

	return out
}

// Results returns the successful assessments of a batch, in order
func Results(batch []BatchResult) []AssessmentResult {
	out := make([]AssessmentResult, 0, len(batch))

	for _, b := range batch {
		if b.Result != nil {
			out = append(out, *b.Result)
		}
	}

	return out
}
