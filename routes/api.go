/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"
	jsoniter "github.com/json-iterator/go"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// assessRequest is the body of POST /api/assess. Dates are YYYY-MM-DD.
type assessRequest struct {
	DateOfBirth string  `json:"dob"`
	Sex         string  `json:"sex"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	ObservedAt  string  `json:"observedAt"`
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(c flamego.Context, status int, v interface{}) {
	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// assessmentStatus maps engine errors to HTTP status codes. Bad input is the
// caller's fault; malformed reference data is ours.
func assessmentStatus(err error) int {
	switch {
	case errors.Is(err, growth.ErrInvalidMeasurement),
		errors.Is(err, growth.ErrUnknownSex),
		errors.Is(err, growth.ErrUnknownMeasurementType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (r assessRequest) measurement() (growth.Measurement, time.Time, error) {
	dob, err := time.Parse(dateLayout, strings.TrimSpace(r.DateOfBirth))
	if err != nil {
		return growth.Measurement{}, time.Time{}, errors.Join(growth.ErrInvalidMeasurement, errInvalidDate)
	}

	observed, err := time.Parse(dateLayout, strings.TrimSpace(r.ObservedAt))
	if err != nil {
		return growth.Measurement{}, time.Time{}, errors.Join(growth.ErrInvalidMeasurement, errInvalidDate)
	}

	sex, err := growth.ParseSex(r.Sex)
	if err != nil {
		return growth.Measurement{}, time.Time{}, err
	}

	t, err := growth.ParseMeasurementType(r.Type)
	if err != nil {
		return growth.Measurement{}, time.Time{}, err
	}

	return growth.Measurement{Type: t, Value: r.Value, Sex: sex, ObservedAt: observed}, dob, nil
}

// AssessAPI scores a single measurement without storing it
func AssessAPI(c flamego.Context, e *growth.Engine) {
	var req assessRequest

	if err := json.NewDecoder(c.Request().Body().ReadCloser()).Decode(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	m, dob, err := req.measurement()
	if err != nil {
		writeJSON(c, assessmentStatus(err), apiError{Error: err.Error()})
		return
	}

	result, err := e.Assess(m, dob)
	if err != nil {
		status := assessmentStatus(err)
		if status == http.StatusInternalServerError {
			growthLogger.Error("Assessment failed", "type", m.Type, "error", err)
		}

		writeJSON(c, status, apiError{Error: err.Error()})

		return
	}

	writeJSON(c, http.StatusOK, result)
}

// ChildGrowthAPI returns the scored measurement history of a child
func ChildGrowthAPI(c flamego.Context, e *growth.Engine, cfg growth.AlertConfig) {
	ctx := c.Request().Context()
	childID := c.Param("id")

	child, err := db.GetChild(ctx, childID)
	if err != nil {
		if errors.Is(err, db.ErrChildNotFound) {
			writeJSON(c, http.StatusNotFound, apiError{Error: "child not found"})
			return
		}

		logger.Error("Error fetching child", "child_id", childID, "error", err)
		writeJSON(c, http.StatusInternalServerError, apiError{Error: "failed to load child"})

		return
	}

	history, err := db.ListMeasurementHistory(ctx, childID)
	if err != nil {
		logger.Error("Error fetching measurement history", "child_id", childID, "error", err)
		writeJSON(c, http.StatusInternalServerError, apiError{Error: "failed to load measurements"})

		return
	}

	report, err := buildGrowthReport(e, cfg, child, history)
	if err != nil {
		logger.Error("Error building growth report", "child_id", childID, "error", err)
		writeJSON(c, http.StatusInternalServerError, apiError{Error: "failed to assess growth"})

		return
	}

	writeJSON(c, http.StatusOK, report)
}

// referenceCurvePoint is a reference value at a whole SD offset
type referenceCurvePoint struct {
	Z     float64 `json:"z"`
	Value float64 `json:"value"`
}

type referenceResponse struct {
	Type               growth.MeasurementType `json:"type"`
	Sex                growth.Sex             `json:"sex"`
	Source             string                 `json:"source"`
	Version            string                 `json:"version"`
	RequestedAgeMonths int                    `json:"requestedAgeMonths"`
	ReferenceAgeMonths int                    `json:"referenceAgeMonths"`
	Clamped            bool                   `json:"clamped"`
	Params             growth.Params          `json:"params"`
	Curves             []referenceCurvePoint  `json:"curves"`
}

func newReferenceResponse(t growth.MeasurementType, sex growth.Sex, requested int, params growth.Params) referenceResponse {
	resp := referenceResponse{
		Type:               t,
		Sex:                sex,
		RequestedAgeMonths: requested,
		ReferenceAgeMonths: requested,
		Params:             params,
	}

	resp.Curves = []referenceCurvePoint{}

	for z := -3; z <= 3; z++ {
		v := params.ValueAt(float64(z))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		resp.Curves = append(resp.Curves, referenceCurvePoint{Z: float64(z), Value: v})
	}

	return resp
}

// ReferenceAPI returns the reference parameters for a type, sex and age in
// completed months. By default the engine's lookup answers; source=stored
// reads the exact row synced to the database instead.
func ReferenceAPI(c flamego.Context, e *growth.Engine) {
	t, err := growth.ParseMeasurementType(c.Param("type"))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	sex, err := growth.ParseSex(c.Query("sex"))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	age, err := strconv.Atoi(strings.TrimSpace(c.Query("age")))
	if err != nil || age < 0 {
		writeJSON(c, http.StatusBadRequest, apiError{Error: "age must be a non-negative number of months"})
		return
	}

	if c.Query("source") == "stored" {
		ref, err := db.GetGrowthReference(c.Request().Context(), t, age, sex)
		if err != nil {
			logger.Error("Error fetching stored reference", "type", t, "age", age, "error", err)
			writeJSON(c, http.StatusInternalServerError, apiError{Error: "failed to load stored reference"})

			return
		}

		if ref == nil {
			writeJSON(c, http.StatusNotFound, apiError{Error: "no stored reference row for that age"})
			return
		}

		resp := newReferenceResponse(t, sex, age, ref.Params())
		resp.Source = "stored"
		resp.Version = ref.Version
		writeJSON(c, http.StatusOK, resp)

		return
	}

	lookup, err := e.Lookup(t, age, sex)
	if err != nil {
		status := assessmentStatus(err)
		if status == http.StatusInternalServerError {
			growthLogger.Error("Reference lookup failed", "type", t, "age", age, "error", err)
		}

		writeJSON(c, status, apiError{Error: err.Error()})

		return
	}

	resp := newReferenceResponse(t, sex, age, lookup.Params)
	resp.Source = "engine"
	resp.ReferenceAgeMonths = lookup.ReferenceAgeMonths
	resp.Clamped = lookup.Clamped

	if ds := e.Dataset(t); ds != nil {
		resp.Version = ds.Version
	}

	writeJSON(c, http.StatusOK, resp)
}
