/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "errors"

var (
	// ErrInvalidMeasurement is returned for non-positive, non-finite or missing values.
	ErrInvalidMeasurement = errors.New("invalid measurement value")
	// ErrMalformedReferenceData is returned when the reference table cannot produce a score.
	ErrMalformedReferenceData = errors.New("malformed reference data")
	ErrUnknownSex             = errors.New("sex must be male or female")
	ErrUnknownMeasurementType = errors.New("unknown measurement type")
	ErrDuplicateDataset       = errors.New("duplicate dataset for measurement type")
	ErrInvalidThresholds      = errors.New("invalid threshold table")
)
