/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import (
	"fmt"
	"math"
)

// Params holds the reference statistics for one age and sex. Mean and SD
// are always used unless an LMS triplet is present (M > 0 and S > 0).
type Params struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	L    float64 `json:"L,omitempty"`
	M    float64 `json:"M,omitempty"`
	S    float64 `json:"S,omitempty"`
}

// HasLMS reports whether the parameters carry a usable LMS triplet
func (p Params) HasLMS() bool {
	return p.M > 0 && p.S > 0
}

// ZScore standardizes value against the parameters
func (p Params) ZScore(value float64) (float64, error) {
	var z float64

	switch {
	case p.HasLMS():
		if p.L == 0 {
			z = math.Log(value/p.M) / p.S
		} else {
			z = (math.Pow(value/p.M, p.L) - 1) / (p.L * p.S)
		}
	case p.SD > 0:
		z = (value - p.Mean) / p.SD
	default:
		return 0, fmt.Errorf("%w: standard deviation %v", ErrMalformedReferenceData, p.SD)
	}

	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: non-finite z-score", ErrMalformedReferenceData)
	}

	return z, nil
}

// ValueAt returns the measurement value lying z standard deviations from the
// median. It returns NaN when z lies outside the range an LMS row can map,
// that is when 1+L*S*z is not positive.
func (p Params) ValueAt(z float64) float64 {
	if p.HasLMS() {
		if p.L == 0 {
			return p.M * math.Exp(p.S*z)
		}

		base := 1 + p.L*p.S*z
		if base <= 0 {
			return math.NaN()
		}

		return p.M * math.Pow(base, 1/p.L)
	}

	return p.Mean + z*p.SD
}

func (p Params) validate() error {
	for _, v := range []float64{p.Mean, p.SD, p.L, p.M, p.S} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite parameter %v", v)
		}
	}

	if p.M != 0 || p.S != 0 {
		if p.M <= 0 || p.S <= 0 {
			return fmt.Errorf("LMS requires M > 0 and S > 0, got M=%v S=%v", p.M, p.S)
		}
		return nil
	}

	if p.SD <= 0 {
		return fmt.Errorf("sd must be positive, got %v", p.SD)
	}

	return nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func interpolateParams(lo, hi Params, t float64) Params {
	return Params{
		Mean: lerp(lo.Mean, hi.Mean, t),
		SD:   lerp(lo.SD, hi.SD, t),
		L:    lerp(lo.L, hi.L, t),
		M:    lerp(lo.M, hi.M, t),
		S:    lerp(lo.S, hi.S, t),
	}
}

// ReferenceDataPoint is one row of a standards table
type ReferenceDataPoint struct {
	AgeMonths int    `json:"ageMonths"`
	Male      Params `json:"male"`
	Female    Params `json:"female"`
}

// ForSex returns the parameter column for sex
func (r ReferenceDataPoint) ForSex(sex Sex) (Params, error) {
	switch sex {
	case SexMale:
		return r.Male, nil
	case SexFemale:
		return r.Female, nil
	}

	return Params{}, fmt.Errorf("%w: %q", ErrUnknownSex, sex)
}

// LookupMode selects how off-grid ages are resolved
type LookupMode string

const (
	// LookupNearest picks the closest sampled row, ties to the lower age.
	LookupNearest LookupMode = "nearest"
	// LookupLinear interpolates between the two bracketing rows. This changes
	// scores at off-grid ages compared to LookupNearest.
	LookupLinear LookupMode = "linear"
)

// ParseLookupMode converts a config value to a LookupMode
func ParseLookupMode(s string) (LookupMode, error) {
	switch LookupMode(s) {
	case "", LookupNearest:
		return LookupNearest, nil
	case LookupLinear:
		return LookupLinear, nil
	}

	return "", fmt.Errorf("unknown lookup mode %q", s)
}

// LookupResult is the parameter set selected for an age, with clamping detail
type LookupResult struct {
	Params
	RequestedAgeMonths int
	ReferenceAgeMonths int
	MaxAgeMonths       int
	Clamped            bool
}

// Dataset is an immutable reference table for one measurement type
type Dataset struct {
	Type    MeasurementType
	Version string
	Source  string

	points []ReferenceDataPoint
}

// NewDataset validates points and returns a dataset. Ages must be unique and
// strictly increasing, every SD (or LMS S) must be positive, and each sex
// column must use one parameterisation throughout, so that linear lookup
// never blends mean/SD rows with LMS rows.
func NewDataset(t MeasurementType, version, source string, points []ReferenceDataPoint) (*Dataset, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMeasurementType, t)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s dataset has no rows", ErrMalformedReferenceData, t)
	}

	for i, p := range points {
		if p.AgeMonths < 0 {
			return nil, fmt.Errorf("%w: %s row %d has negative age %d", ErrMalformedReferenceData, t, i, p.AgeMonths)
		}

		if i > 0 && p.AgeMonths <= points[i-1].AgeMonths {
			return nil, fmt.Errorf("%w: %s row %d age %d is not after %d",
				ErrMalformedReferenceData, t, i, p.AgeMonths, points[i-1].AgeMonths)
		}

		if err := p.Male.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s age %d male: %v", ErrMalformedReferenceData, t, p.AgeMonths, err)
		}

		if err := p.Female.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s age %d female: %v", ErrMalformedReferenceData, t, p.AgeMonths, err)
		}

		if i > 0 {
			prev := points[i-1]
			if p.Male.HasLMS() != prev.Male.HasLMS() {
				return nil, fmt.Errorf("%w: %s age %d male mixes LMS and mean/SD rows", ErrMalformedReferenceData, t, p.AgeMonths)
			}

			if p.Female.HasLMS() != prev.Female.HasLMS() {
				return nil, fmt.Errorf("%w: %s age %d female mixes LMS and mean/SD rows", ErrMalformedReferenceData, t, p.AgeMonths)
			}
		}
	}

	owned := make([]ReferenceDataPoint, len(points))
	copy(owned, points)

	return &Dataset{
		Type:    t,
		Version: version,
		Source:  source,
		points:  owned,
	}, nil
}

// Points returns a copy of the dataset rows
func (d *Dataset) Points() []ReferenceDataPoint {
	out := make([]ReferenceDataPoint, len(d.points))
	copy(out, d.points)
	return out
}

// MinAge returns the smallest sampled age in months
func (d *Dataset) MinAge() int {
	if len(d.points) == 0 {
		return 0
	}
	return d.points[0].AgeMonths
}

// MaxAge returns the largest sampled age in months
func (d *Dataset) MaxAge() int {
	if len(d.points) == 0 {
		return 0
	}
	return d.points[len(d.points)-1].AgeMonths
}

// Lookup returns the nearest reference parameters for ageMonths and sex
func (d *Dataset) Lookup(ageMonths int, sex Sex) (LookupResult, error) {
	return d.lookup(ageMonths, sex, LookupNearest)
}

func (d *Dataset) lookup(ageMonths int, sex Sex, mode LookupMode) (LookupResult, error) {
	if d == nil || len(d.points) == 0 {
		return LookupResult{}, fmt.Errorf("%w: dataset is empty", ErrMalformedReferenceData)
	}

	clamped := max(0, min(d.MaxAge(), ageMonths))

	res := LookupResult{
		RequestedAgeMonths: ageMonths,
		MaxAgeMonths:       d.MaxAge(),
		Clamped:            clamped != ageMonths,
	}

	idx := d.nearest(clamped)
	row := d.points[idx]

	params, err := row.ForSex(sex)
	if err != nil {
		return LookupResult{}, err
	}

	res.Params = params
	res.ReferenceAgeMonths = row.AgeMonths

	if mode != LookupLinear || row.AgeMonths == clamped {
		return res, nil
	}

	lo, hi := d.bracket(clamped)
	if lo < 0 || hi < 0 {
		return res, nil
	}

	loParams, err := d.points[lo].ForSex(sex)
	if err != nil {
		return LookupResult{}, err
	}

	hiParams, err := d.points[hi].ForSex(sex)
	if err != nil {
		return LookupResult{}, err
	}

	span := float64(d.points[hi].AgeMonths - d.points[lo].AgeMonths)
	t := float64(clamped-d.points[lo].AgeMonths) / span

	res.Params = interpolateParams(loParams, hiParams, t)
	res.ReferenceAgeMonths = clamped

	return res, nil
}

// nearest returns the index of the row closest to age, preferring the lower
// age on ties.
func (d *Dataset) nearest(age int) int {
	best := 0
	bestDist := -1

	for i, p := range d.points {
		dist := p.AgeMonths - age
		if dist < 0 {
			dist = -dist
		}

		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	return best
}

// bracket returns the indices of the rows immediately below and above age,
// or -1 when age lies outside the sampled range.
func (d *Dataset) bracket(age int) (int, int) {
	for i := 1; i < len(d.points); i++ {
		if d.points[i-1].AgeMonths < age && age < d.points[i].AgeMonths {
			return i - 1, i
		}
	}

	return -1, -1
}
