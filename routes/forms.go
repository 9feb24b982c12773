/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

const dateLayout = "2006-01-02"

// BreadcrumbItem represents a single breadcrumb navigation item
type BreadcrumbItem struct {
	Name      string
	URL       string
	IsCurrent bool
}

func childrenBreadcrumb(isCurrent bool) BreadcrumbItem {
	return BreadcrumbItem{Name: "Children", URL: "/", IsCurrent: isCurrent}
}

func childBreadcrumb(childID, name string, isCurrent bool) BreadcrumbItem {
	return BreadcrumbItem{Name: name, URL: "/child/" + childID, IsCurrent: isCurrent}
}

// parseDate parses a YYYY-MM-DD form value. Dates after now are rejected.
func parseDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errMissingDate
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, value)
	}

	if parsed.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s", errDateInFuture, value)
	}

	return parsed, nil
}

// parseMeasurementValue parses an optional positive number. An empty value
// returns ok=false with no error.
func parseMeasurementValue(value string) (float64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, false, fmt.Errorf("%w: %q", errInvalidValue, value)
	}

	return parsed, true, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	return &value
}

// parseChildForm reads the child create/edit form
func parseChildForm(form url.Values, now time.Time) (db.ChildInput, error) {
	input := db.ChildInput{
		Name:         strings.TrimSpace(form.Get("name")),
		GuardianName: optionalString(form.Get("guardian_name")),
		Notes:        optionalString(form.Get("notes")),
	}

	if input.Name == "" {
		return input, errNameRequired
	}

	dob, err := parseDate(form.Get("date_of_birth"), now)
	if err != nil {
		return input, fmt.Errorf("date of birth: %w", err)
	}

	input.DateOfBirth = dob

	sex, err := growth.ParseSex(form.Get("sex"))
	if err != nil {
		return input, err
	}

	input.Sex = sex

	return input, nil
}

// parseVisitForm reads the visit form. Each measurement field is named
// after its measurement type and may be left blank.
func parseVisitForm(childID string, form url.Values, now time.Time) (db.CreateVisitInput, error) {
	input := db.CreateVisitInput{
		ChildID:      childID,
		Clinician:    strings.TrimSpace(form.Get("clinician")),
		Notes:        optionalString(form.Get("notes")),
		Measurements: make(map[growth.MeasurementType]float64),
	}

	visitDate, err := parseDate(form.Get("visit_date"), now)
	if err != nil {
		return input, fmt.Errorf("visit date: %w", err)
	}

	input.VisitDate = visitDate

	for _, t := range growth.MeasurementTypes {
		value, ok, err := parseMeasurementValue(form.Get(string(t)))
		if err != nil {
			return input, fmt.Errorf("%s: %w", t.Label(), err)
		}

		if ok {
			input.Measurements[t] = value
		}
	}

	if len(input.Measurements) == 0 {
		return input, errNoMeasurements
	}

	return input, nil
}

// parseMeasurementForm reads the single-measurement form on the visit page
func parseMeasurementForm(form url.Values) (growth.MeasurementType, float64, error) {
	t, err := growth.ParseMeasurementType(form.Get("type"))
	if err != nil {
		return "", 0, err
	}

	value, ok, err := parseMeasurementValue(form.Get("value"))
	if err != nil {
		return "", 0, err
	}

	if !ok {
		return "", 0, fmt.Errorf("%w: %s is required", errInvalidValue, t.Label())
	}

	return t, value, nil
}
