/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/sprout/growth"
)

var CmdAssess = &cli.Command{
	Name:   "assess",
	Usage:  "Score a single measurement and print the result as JSON",
	Flags:  assessFlags(),
	Action: assess,
}

func assessFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "dob", Usage: "date of birth (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "sex", Usage: "male or female"},
		&cli.StringFlag{Name: "type", Usage: "weight, length or head_circumference"},
		&cli.FloatFlag{Name: "value", Usage: "measured value in kg or cm"},
		&cli.StringFlag{Name: "observed", Usage: "measurement date (YYYY-MM-DD), defaults to today"},
	}, engineFlags()...)
}

// assessOutput is what the assess command prints
type assessOutput struct {
	Result growth.AssessmentResult `json:"result"`
	Alerts []growth.GrowthAlert    `json:"alerts"`
}

func assess(_ context.Context, cmd *cli.Command) error {
	m, dob, err := measurementFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(cmd)
	if err != nil {
		return err
	}

	return writeAssessment(os.Stdout, engine, m, dob)
}

func measurementFromFlags(cmd *cli.Command, today time.Time) (growth.Measurement, time.Time, error) {
	if cmd.String("dob") == "" || cmd.String("sex") == "" || cmd.String("type") == "" || !cmd.IsSet("value") {
		return growth.Measurement{}, time.Time{}, errAssessFlagsRequired
	}

	dob, err := time.Parse(time.DateOnly, cmd.String("dob"))
	if err != nil {
		return growth.Measurement{}, time.Time{}, fmt.Errorf("invalid --dob: %w", err)
	}

	observed := today
	if value := cmd.String("observed"); value != "" {
		observed, err = time.Parse(time.DateOnly, value)
		if err != nil {
			return growth.Measurement{}, time.Time{}, fmt.Errorf("invalid --observed: %w", err)
		}
	}

	sex, err := growth.ParseSex(cmd.String("sex"))
	if err != nil {
		return growth.Measurement{}, time.Time{}, err
	}

	t, err := growth.ParseMeasurementType(cmd.String("type"))
	if err != nil {
		return growth.Measurement{}, time.Time{}, err
	}

	return growth.Measurement{
		Type:       t,
		Value:      cmd.Float("value"),
		Sex:        sex,
		ObservedAt: observed,
	}, dob, nil
}

func writeAssessment(w io.Writer, engine *growth.Engine, m growth.Measurement, dob time.Time) error {
	result, err := engine.Assess(m, dob)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	out := assessOutput{
		Result: result,
		Alerts: growth.EvaluateAlerts([]growth.AssessmentResult{result}, growth.DefaultAlertConfig()),
	}

	if out.Alerts == nil {
		out.Alerts = []growth.GrowthAlert{}
	}

	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}
