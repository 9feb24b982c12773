/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Classification is a categorical interpretation of a z-score
type Classification string

// Classification labels per indicator.
const (
	ClassNormal Classification = "Normal"

	ClassSeverelyUnderweight Classification = "Severely Underweight"
	ClassUnderweight         Classification = "Underweight"
	ClassOverweight          Classification = "Overweight"
	ClassObese               Classification = "Obese"

	ClassSeverelyStunted Classification = "Severely Stunted"
	ClassStunted         Classification = "Stunted"
	ClassTall            Classification = "Tall"
	ClassVeryTall        Classification = "Very Tall"

	ClassSevereMicrocephaly Classification = "Severe Microcephaly"
	ClassMicrocephaly       Classification = "Microcephaly"
	ClassMacrocephaly       Classification = "Macrocephaly"
	ClassSevereMacrocephaly Classification = "Severe Macrocephaly"
)

// Severity grades how far a result or alert is from normal
type Severity string

// Severity values, in increasing order of urgency.
const (
	SeverityNone     Severity = "none"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Severity returns the clinical severity implied by a classification
func (c Classification) Severity() Severity {
	switch c {
	case ClassSeverelyUnderweight, ClassObese,
		ClassSeverelyStunted,
		ClassSevereMicrocephaly, ClassSevereMacrocephaly:
		return SeverityCritical
	case ClassUnderweight, ClassOverweight,
		ClassStunted, ClassTall, ClassVeryTall,
		ClassMicrocephaly, ClassMacrocephaly:
		return SeverityWarning
	}

	return SeverityNone
}

// Band maps z-scores up to Upper onto a classification. The last band of a
// table must have Upper = +Inf.
type Band struct {
	Upper     float64
	Inclusive bool
	Class     Classification
}

func (b Band) contains(z float64) bool {
	if b.Inclusive {
		return z <= b.Upper
	}
	return z < b.Upper
}

// ThresholdTable holds classification bands keyed by measurement type
type ThresholdTable map[MeasurementType][]Band

// DefaultThresholds returns the WHO-style banding for each packaged indicator.
// The severe-low boundary is inclusive: a z-score of exactly -3 is severe.
func DefaultThresholds() ThresholdTable {
	bands := func(severeLow, low, high, severeHigh Classification) []Band {
		return []Band{
			{Upper: -3, Inclusive: true, Class: severeLow},
			{Upper: -2, Class: low},
			{Upper: 2, Class: ClassNormal},
			{Upper: 3, Class: high},
			{Upper: math.Inf(1), Inclusive: true, Class: severeHigh},
		}
	}

	return ThresholdTable{
		Weight:            bands(ClassSeverelyUnderweight, ClassUnderweight, ClassOverweight, ClassObese),
		Length:            bands(ClassSeverelyStunted, ClassStunted, ClassTall, ClassVeryTall),
		HeadCircumference: bands(ClassSevereMicrocephaly, ClassMicrocephaly, ClassMacrocephaly, ClassSevereMacrocephaly),
	}
}

// Validate checks that every band list is ascending and open-ended
func (tt ThresholdTable) Validate() error {
	for t, bands := range tt {
		if len(bands) == 0 {
			return fmt.Errorf("%w: no bands for %s", ErrInvalidThresholds, t)
		}

		for i := 1; i < len(bands); i++ {
			if bands[i].Upper < bands[i-1].Upper {
				return fmt.Errorf("%w: %s bands are not ascending at %d", ErrInvalidThresholds, t, i)
			}
		}

		if !math.IsInf(bands[len(bands)-1].Upper, 1) {
			return fmt.Errorf("%w: last %s band must be unbounded", ErrInvalidThresholds, t)
		}
	}

	return nil
}

// Classify returns the classification of z for measurement type t
func (tt ThresholdTable) Classify(t MeasurementType, z float64) (Classification, error) {
	bands, ok := tt[t]
	if !ok {
		return "", fmt.Errorf("%w: no thresholds for %q", ErrUnknownMeasurementType, t)
	}

	for _, b := range bands {
		if b.contains(z) {
			return b.Class, nil
		}
	}

	return "", fmt.Errorf("%w: z-score %v matched no band for %s", ErrInvalidThresholds, z, t)
}

// SDCategory labels the standard-deviation band a z-score falls in
type SDCategory string

// SDCategory values from lowest to highest.
const (
	SDMinus3 SDCategory = "SD-3"
	SDMinus2 SDCategory = "SD-2"
	SDMinus1 SDCategory = "SD-1"
	SDMedian SDCategory = "Median"
	SDPlus1  SDCategory = "SD+1"
	SDPlus2  SDCategory = "SD+2"
	SDPlus3  SDCategory = "SD+3"
)

// SDBand returns the standard-deviation band for z
func SDBand(z float64) SDCategory {
	switch {
	case z < -3:
		return SDMinus3
	case z < -2:
		return SDMinus2
	case z < -1:
		return SDMinus1
	case z < 1:
		return SDMedian
	case z < 2:
		return SDPlus1
	case z < 3:
		return SDPlus2
	default:
		return SDPlus3
	}
}

// PercentileMode selects how a z-score is mapped to a percentile
type PercentileMode string

const (
	// PercentileStep uses canonical per-band percentile values.
	PercentileStep PercentileMode = "step"
	// PercentileContinuous uses the standard normal CDF. Output differs from
	// PercentileStep for every score.
	PercentileContinuous PercentileMode = "continuous"
)

// ParsePercentileMode converts a config value to a PercentileMode
func ParsePercentileMode(s string) (PercentileMode, error) {
	switch PercentileMode(s) {
	case "", PercentileStep:
		return PercentileStep, nil
	case PercentileContinuous:
		return PercentileContinuous, nil
	}

	return "", fmt.Errorf("unknown percentile mode %q", s)
}

// PercentileFromZ maps z onto the canonical display percentiles
func PercentileFromZ(z float64) float64 {
	switch {
	case z <= -3:
		return 0.1
	case z <= -2:
		return 2.3
	case z <= -1:
		return 15.9
	case z <= 0:
		return 50.0
	case z <= 1:
		return 84.1
	case z <= 2:
		return 97.7
	default:
		return 99.9
	}
}

// PercentileFromZContinuous returns the normal CDF of z as a percentage,
// rounded to one decimal place.
func PercentileFromZContinuous(z float64) float64 {
	p := distuv.UnitNormal.CDF(z) * 100
	return math.Round(p*10) / 10
}

func (m PercentileMode) percentile(z float64) float64 {
	if m == PercentileContinuous {
		return PercentileFromZContinuous(z)
	}
	return PercentileFromZ(z)
}
