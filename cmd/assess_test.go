// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/sprout/growth"
)

// runAssessFlags parses args with the assess flags and returns the
// measurement they describe.
func runAssessFlags(t *testing.T, args ...string) (growth.Measurement, time.Time, error) {
	t.Helper()

	var (
		m      growth.Measurement
		dob    time.Time
		runErr error
	)

	today := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	command := &cli.Command{
		Name:  "assess",
		Flags: assessFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			m, dob, runErr = measurementFromFlags(cmd, today)
			return nil
		},
	}

	if err := command.Run(context.Background(), append([]string{"assess"}, args...)); err != nil {
		t.Fatalf("failed to run command: %v", err)
	}

	return m, dob, runErr
}

func TestMeasurementFromFlags(t *testing.T) {
	m, dob, err := runAssessFlags(t,
		"--dob", "2023-01-01", "--sex", "female", "--type", "hc", "--value", "42.1",
	)
	if err != nil {
		t.Fatalf("measurementFromFlags failed: %v", err)
	}

	if m.Type != growth.HeadCircumference || m.Sex != growth.SexFemale || m.Value != 42.1 {
		t.Fatalf("unexpected measurement: %+v", m)
	}

	if !dob.Equal(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected dob: %v", dob)
	}

	if m.ObservedAt.Month() != time.March {
		t.Fatalf("expected observed date to default to today, got %v", m.ObservedAt)
	}
}

func TestMeasurementFromFlagsErrors(t *testing.T) {
	if _, _, err := runAssessFlags(t, "--dob", "2023-01-01"); !errors.Is(err, errAssessFlagsRequired) {
		t.Fatalf("expected errAssessFlagsRequired, got %v", err)
	}

	_, _, err := runAssessFlags(t, "--dob", "2023-01-01", "--sex", "x", "--type", "weight", "--value", "7")
	if !errors.Is(err, growth.ErrUnknownSex) {
		t.Fatalf("expected ErrUnknownSex, got %v", err)
	}

	_, _, err = runAssessFlags(t, "--dob", "01/01/2023", "--sex", "male", "--type", "weight", "--value", "7")
	if err == nil {
		t.Fatal("expected an invalid dob to fail")
	}
}

func TestWriteAssessment(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)
	dob := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := growth.Measurement{
		Type:       growth.Weight,
		Value:      4.9,
		Sex:        growth.SexMale,
		ObservedAt: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := writeAssessment(&buf, engine, m, dob); err != nil {
		t.Fatalf("writeAssessment failed: %v", err)
	}

	var out assessOutput
	if err := jsoniter.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}

	if out.Result.ActualAgeMonths != 6 || out.Result.Classification != growth.ClassSeverelyUnderweight {
		t.Fatalf("unexpected result: %+v", out.Result)
	}

	critical := false
	for _, a := range out.Alerts {
		if a.Kind == growth.AlertZScore && a.Severity == growth.SeverityCritical {
			critical = true
		}
	}

	if !critical {
		t.Fatalf("expected a critical z-score alert, got %+v", out.Alerts)
	}

	m.Value = -1
	if err := writeAssessment(&buf, engine, m, dob); !errors.Is(err, growth.ErrInvalidMeasurement) {
		t.Fatalf("expected ErrInvalidMeasurement, got %v", err)
	}
}
