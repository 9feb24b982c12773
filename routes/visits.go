/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

// NewVisitForm renders the visit form with one field per measurement type
func NewVisitForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	child, ok := loadChild(c, s)
	if !ok {
		return
	}

	childID := child.ID.String()

	data["Child"] = child
	data["MeasurementTypes"] = growth.MeasurementTypes
	data["Today"] = now().Format(dateLayout)
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(false),
		childBreadcrumb(childID, child.Name, false),
		{Name: "New Visit", IsCurrent: true},
	}
	t.HTML(http.StatusOK, "visit_new")
}

// CreateVisit records a visit, then scores the new measurements so the
// clinician sees any alert straight away.
func CreateVisit(c flamego.Context, s session.Session, e *growth.Engine, cfg growth.AlertConfig) {
	ctx := c.Request().Context()
	childID := c.Param("id")
	formURL := "/child/" + childID + "/visit"

	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Error parsing form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect(formURL, http.StatusSeeOther)

		return
	}

	input, err := parseVisitForm(childID, c.Request().Form, now())
	if err != nil {
		SetErrorFlash(s, "Invalid visit: "+err.Error())
		c.Redirect(formURL, http.StatusSeeOther)

		return
	}

	child, err := db.GetChild(ctx, childID)
	if err != nil {
		if errors.Is(err, db.ErrChildNotFound) {
			SetErrorFlash(s, "Child not found")
		} else {
			logger.Error("Error fetching child", "child_id", childID, "error", err)
			SetErrorFlash(s, "Failed to load child")
		}

		c.Redirect("/", http.StatusSeeOther)

		return
	}

	if _, err := db.CreateVisit(ctx, input); err != nil {
		logger.Error("Error creating visit", "child_id", childID, "error", err)
		SetErrorFlash(s, "Failed to record visit")
		c.Redirect(formURL, http.StatusSeeOther)

		return
	}

	if msg := visitAlertSummary(e, cfg, child, input); msg != "" {
		SetWarningFlash(s, msg)
	} else {
		SetSuccessFlash(s, "Visit recorded")
	}

	c.Redirect("/child/"+childID, http.StatusSeeOther)
}

// visitAlertSummary scores the measurements of a new visit on their own and
// returns a short message for warning or critical z-score alerts.
func visitAlertSummary(e *growth.Engine, cfg growth.AlertConfig, child *db.Child, input db.CreateVisitInput) string {
	if e == nil {
		return ""
	}

	sex, err := child.GrowthSex()
	if err != nil {
		return ""
	}

	var measurements []growth.Measurement

	for _, t := range growth.MeasurementTypes {
		if v, ok := input.Measurements[t]; ok {
			measurements = append(measurements, growth.Measurement{Type: t, Value: v, Sex: sex, ObservedAt: input.VisitDate})
		}
	}

	batch := e.AssessAll(child.DateOfBirth, measurements)
	logVisitFailures(growthLogger, child.ID.String(), batch)

	results := growth.Results(batch)

	flagged := 0

	for _, a := range growth.EvaluateAlerts(results, cfg) {
		if a.Kind == growth.AlertZScore {
			flagged++
		}
	}

	if flagged == 0 {
		return ""
	}

	return fmt.Sprintf("Visit recorded with %d measurement(s) outside the expected range", flagged)
}

// logVisitFailures logs every measurement of a new visit that could not be
// scored and returns how many there were.
func logVisitFailures(l *log.Logger, childID string, batch []growth.BatchResult) int {
	failed := 0

	for _, b := range batch {
		if b.Err == nil {
			continue
		}

		failed++

		l.Error("Visit measurement could not be assessed",
			"child_id", childID,
			"type", b.Measurement.Type,
			"value", b.Measurement.Value,
			"error", b.Err,
		)
	}

	return failed
}

// DeleteVisit removes a visit and its measurements
func DeleteVisit(c flamego.Context, s session.Session) {
	childID := c.Param("id")
	visitID := c.Param("visit_id")

	if err := db.DeleteVisit(c.Request().Context(), visitID); err != nil {
		logger.Error("Error deleting visit", "visit_id", visitID, "error", err)
		SetErrorFlash(s, "Failed to delete visit")
	} else {
		SetSuccessFlash(s, "Visit deleted")
	}

	c.Redirect("/child/"+childID, http.StatusSeeOther)
}

// DeleteMeasurement removes a single measurement
func DeleteMeasurement(c flamego.Context, s session.Session) {
	childID := c.Param("id")
	measurementID := c.Param("measurement_id")

	if err := db.DeleteMeasurement(c.Request().Context(), measurementID); err != nil {
		logger.Error("Error deleting measurement", "measurement_id", measurementID, "error", err)
		SetErrorFlash(s, "Failed to delete measurement")
	} else {
		SetSuccessFlash(s, "Measurement deleted")
	}

	c.Redirect("/child/"+childID, http.StatusSeeOther)
}

// loadVisit fetches the {visit_id} visit and checks it belongs to child
func loadVisit(c flamego.Context, s session.Session, child *db.Child) (*db.Visit, bool) {
	childURL := "/child/" + child.ID.String()
	visitID := c.Param("visit_id")

	visit, err := db.GetVisit(c.Request().Context(), visitID)
	if err != nil || visit.ChildID != child.ID {
		switch {
		case err == nil, errors.Is(err, db.ErrVisitNotFound):
			SetErrorFlash(s, "Visit not found")
		default:
			logger.Error("Error fetching visit", "visit_id", visitID, "error", err)
			SetErrorFlash(s, "Failed to load visit")
		}

		c.Redirect(childURL, http.StatusSeeOther)

		return nil, false
	}

	return visit, true
}

// visitMeasurement is one stored measurement with its assessment, when the
// engine could score it
type visitMeasurement struct {
	db.Measurement
	Result *growth.AssessmentResult
	Error  string
}

// ViewVisit renders one visit with each measurement scored on its own
func ViewVisit(c flamego.Context, s session.Session, t template.Template, data template.Data, e *growth.Engine) {
	child, ok := loadChild(c, s)
	if !ok {
		return
	}

	visit, ok := loadVisit(c, s, child)
	if !ok {
		return
	}

	childID := child.ID.String()

	data["Child"] = child
	data["Visit"] = visit
	data["MeasurementTypes"] = growth.MeasurementTypes
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(false),
		childBreadcrumb(childID, child.Name, false),
		{Name: visit.VisitDate.Format(dateLayout), IsCurrent: true},
	}

	measurements, err := db.ListMeasurementsByVisit(c.Request().Context(), visit.ID.String())
	if err != nil {
		logger.Error("Error fetching measurements", "visit_id", visit.ID, "error", err)
		data["Error"] = "Failed to load measurements"
		t.HTML(http.StatusOK, "visit_view")

		return
	}

	data["Measurements"] = scoreVisitMeasurements(e, child, visit, measurements)
	t.HTML(http.StatusOK, "visit_view")
}

func scoreVisitMeasurements(e *growth.Engine, child *db.Child, visit *db.Visit, measurements []db.Measurement) []visitMeasurement {
	out := make([]visitMeasurement, 0, len(measurements))

	sex, sexErr := child.GrowthSex()

	for _, m := range measurements {
		vm := visitMeasurement{Measurement: m}

		switch {
		case e == nil:
			vm.Error = errEngineMissing.Error()
		case sexErr != nil:
			vm.Error = sexErr.Error()
		default:
			result, err := e.Assess(growth.Measurement{
				Type:       m.Type,
				Value:      m.Value,
				Sex:        sex,
				ObservedAt: visit.VisitDate,
			}, child.DateOfBirth)
			if err != nil {
				vm.Error = err.Error()
			} else {
				vm.Result = &result
			}
		}

		out = append(out, vm)
	}

	return out
}

// AddMeasurement records or replaces one measurement on an existing visit
func AddMeasurement(c flamego.Context, s session.Session) {
	child, ok := loadChild(c, s)
	if !ok {
		return
	}

	visit, ok := loadVisit(c, s, child)
	if !ok {
		return
	}

	ctx := c.Request().Context()
	visitURL := "/child/" + child.ID.String() + "/visit/" + visit.ID.String()

	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Error parsing form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect(visitURL, http.StatusSeeOther)

		return
	}

	mt, value, err := parseMeasurementForm(c.Request().Form)
	if err != nil {
		SetErrorFlash(s, "Invalid measurement: "+err.Error())
		c.Redirect(visitURL, http.StatusSeeOther)

		return
	}

	existing, err := db.ListMeasurementsByVisit(ctx, visit.ID.String())
	if err != nil {
		logger.Error("Error fetching measurements", "visit_id", visit.ID, "error", err)
		SetErrorFlash(s, "Failed to load measurements")
		c.Redirect(visitURL, http.StatusSeeOther)

		return
	}

	if _, err := db.CreateMeasurement(ctx, visit.ID.String(), mt, value); err != nil {
		logger.Error("Error saving measurement", "visit_id", visit.ID, "type", mt, "error", err)
		SetErrorFlash(s, "Failed to save measurement")
		c.Redirect(visitURL, http.StatusSeeOther)

		return
	}

	replaced := false

	for _, m := range existing {
		if m.Type == mt {
			replaced = true
			break
		}
	}

	if replaced {
		SetInfoFlash(s, mt.Label()+" replaced")
	} else {
		SetSuccessFlash(s, mt.Label()+" recorded")
	}

	c.Redirect(visitURL, http.StatusSeeOther)
}
