/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "errors"

var (
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	ErrDatabaseURLNotSet                = errors.New("database URL is not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in connection string")
	ErrChildNotFound                    = errors.New("child not found")
	ErrVisitNotFound                    = errors.New("visit not found")
	ErrNoReferenceDatasets              = errors.New("no growth reference datasets to sync")
)
