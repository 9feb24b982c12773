// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"

	"github.com/humaidq/sprout/growth"
)

func testContext() context.Context {
	return context.Background()
}

func stringPtr(value string) *string {
	return &value
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", value, err)
	}
	return parsed
}

func mustCreateChild(t *testing.T, name string, dob string, sex growth.Sex) string {
	t.Helper()
	childID, err := CreateChild(testContext(), ChildInput{
		Name:        name,
		DateOfBirth: mustDate(t, dob),
		Sex:         sex,
	})
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	return childID
}

func mustCreateVisit(t *testing.T, childID string, date string, measurements map[growth.MeasurementType]float64) string {
	t.Helper()
	visitID, err := CreateVisit(testContext(), CreateVisitInput{
		ChildID:      childID,
		VisitDate:    mustDate(t, date),
		Clinician:    "Dr. Salem",
		Measurements: measurements,
	})
	if err != nil {
		t.Fatalf("failed to create visit: %v", err)
	}
	return visitID
}
