/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "time"

// Sex selects which reference column applies to a measurement
type Sex string

// Sex values supported by the reference data. There is no third column, so
// any other value is rejected with ErrUnknownSex.
const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex converts user input to a Sex
func ParseSex(s string) (Sex, error) {
	switch Sex(s) {
	case SexMale, SexFemale:
		return Sex(s), nil
	case "Male", "M", "m":
		return SexMale, nil
	case "Female", "F", "f":
		return SexFemale, nil
	}

	return "", ErrUnknownSex
}

// MeasurementType identifies an anthropometric indicator
type MeasurementType string

// MeasurementType values for the packaged indicators.
const (
	Weight            MeasurementType = "weight"
	Length            MeasurementType = "length"
	HeadCircumference MeasurementType = "head_circumference"
)

// MeasurementTypes lists the supported types in display order.
var MeasurementTypes = []MeasurementType{Weight, Length, HeadCircumference}

var measurementUnits = map[MeasurementType]string{
	Weight:            "kg",
	Length:            "cm",
	HeadCircumference: "cm",
}

var measurementLabels = map[MeasurementType]string{
	Weight:            "Weight-for-age",
	Length:            "Length/height-for-age",
	HeadCircumference: "Head circumference-for-age",
}

// Valid reports whether t is a known measurement type
func (t MeasurementType) Valid() bool {
	_, ok := measurementUnits[t]
	return ok
}

// Unit returns the fixed unit for the measurement type
func (t MeasurementType) Unit() string {
	return measurementUnits[t]
}

// Label returns a display name for the indicator
func (t MeasurementType) Label() string {
	if label, ok := measurementLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseMeasurementType converts user input to a MeasurementType
func ParseMeasurementType(s string) (MeasurementType, error) {
	t := MeasurementType(s)
	switch s {
	case "height":
		t = Length
	case "head", "hc":
		t = HeadCircumference
	}

	if !t.Valid() {
		return "", ErrUnknownMeasurementType
	}

	return t, nil
}

// Measurement is one observed anthropometric value
type Measurement struct {
	Type       MeasurementType `json:"type"`
	Value      float64         `json:"value"`
	Sex        Sex             `json:"sex"`
	ObservedAt time.Time       `json:"observedAt"`
}

// AssessmentResult is the computed output for a single measurement
type AssessmentResult struct {
	Type       MeasurementType `json:"type"`
	Sex        Sex             `json:"sex"`
	Value      float64         `json:"value"`
	Unit       string          `json:"unit"`
	ObservedAt time.Time       `json:"observedAt"`

	ZScore         float64        `json:"zScore"`
	Percentile     float64        `json:"percentile"`
	Classification Classification `json:"classification"`
	SDCategory     SDCategory     `json:"sdCategory"`

	ReferenceAgeMonths    int    `json:"referenceAgeMonths"`
	ActualAgeMonths       int    `json:"actualAgeMonths"`
	MaxReferenceAgeMonths int    `json:"maxReferenceAgeMonths"`
	AgeClamped            bool   `json:"ageClamped"`
	DateOrderViolation    bool   `json:"dateOrderViolation"`
	ReferenceVersion      string `json:"referenceVersion"`
}
