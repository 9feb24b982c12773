/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errNameRequired   = errors.New("name is required")
	errMissingDate    = errors.New("missing date")
	errInvalidDate    = errors.New("invalid date")
	errDateInFuture   = errors.New("date is in the future")
	errInvalidValue   = errors.New("invalid measurement value")
	errNoMeasurements = errors.New("at least one measurement is required")
	errEngineMissing  = errors.New("growth engine not configured")
)
