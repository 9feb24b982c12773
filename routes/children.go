/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	htmltemplate "html/template"
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

// now is replaced in tests.
var now = time.Now

// ListChildren renders the children list
func ListChildren(c flamego.Context, t template.Template, data template.Data) {
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(true),
	}

	children, err := db.ListChildren(c.Request().Context())
	if err != nil {
		logger.Error("Error fetching children", "error", err)
		data["Error"] = "Failed to load children"
	} else {
		data["Children"] = children
	}

	data["Today"] = now()
	t.HTML(http.StatusOK, "children")
}

// NewChildForm renders the add child form
func NewChildForm(c flamego.Context, t template.Template, data template.Data) {
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(false),
		{Name: "New Child", IsCurrent: true},
	}
	data["Sexes"] = []growth.Sex{growth.SexFemale, growth.SexMale}
	t.HTML(http.StatusOK, "child_new")
}

// CreateChild handles child creation
func CreateChild(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Error parsing form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/child/new", http.StatusSeeOther)

		return
	}

	input, err := parseChildForm(c.Request().Form, now())
	if err != nil {
		SetErrorFlash(s, "Invalid child details: "+err.Error())
		c.Redirect("/child/new", http.StatusSeeOther)

		return
	}

	childID, err := db.CreateChild(c.Request().Context(), input)
	if err != nil {
		logger.Error("Error creating child", "error", err)
		SetErrorFlash(s, "Failed to create child")
		c.Redirect("/child/new", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "Child added")
	c.Redirect("/child/"+childID, http.StatusSeeOther)
}

// loadChild fetches the child named by the {id} route parameter, flashing
// and redirecting to the list when it cannot be loaded.
func loadChild(c flamego.Context, s session.Session) (*db.Child, bool) {
	childID := c.Param("id")

	child, err := db.GetChild(c.Request().Context(), childID)
	if err != nil {
		if errors.Is(err, db.ErrChildNotFound) {
			SetErrorFlash(s, "Child not found")
		} else {
			logger.Error("Error fetching child", "child_id", childID, "error", err)
			SetErrorFlash(s, "Failed to load child")
		}

		c.Redirect("/", http.StatusSeeOther)

		return nil, false
	}

	return child, true
}

// growthChart is one rendered chart for the child page
type growthChart struct {
	Type  growth.MeasurementType
	Label string
	HTML  htmltemplate.HTML
}

// ViewChild renders a child's profile, latest assessments, alerts and charts
func ViewChild(c flamego.Context, s session.Session, t template.Template, data template.Data, e *growth.Engine, cfg growth.AlertConfig) {
	child, ok := loadChild(c, s)
	if !ok {
		return
	}

	ctx := c.Request().Context()
	childID := child.ID.String()

	data["Child"] = child
	data["AgeMonths"] = child.AgeMonths(now())
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(false),
		childBreadcrumb(childID, child.Name, true),
	}

	visits, err := db.ListVisits(ctx, childID)
	if err != nil {
		logger.Error("Error fetching visits", "child_id", childID, "error", err)
		data["Error"] = "Failed to load visits"
	} else {
		data["Visits"] = visits
	}

	history, err := db.ListMeasurementHistory(ctx, childID)
	if err != nil {
		logger.Error("Error fetching measurement history", "child_id", childID, "error", err)
		data["Error"] = "Failed to load measurements"
		t.HTML(http.StatusOK, "child_view")

		return
	}

	data["History"] = history

	report, err := buildGrowthReport(e, cfg, child, history)
	if err != nil {
		logger.Error("Error building growth report", "child_id", childID, "error", err)
		data["Error"] = "Failed to assess growth"
		t.HTML(http.StatusOK, "child_view")

		return
	}

	data["Report"] = report

	var charts []growthChart

	for _, mt := range growth.MeasurementTypes {
		chart, err := generateGrowthChart(e, report.Sex, mt, resultsOfType(report.Assessments, mt))
		if err != nil {
			logger.Error("Error generating chart", "child_id", childID, "type", mt, "error", err)
			continue
		}

		if chart != "" {
			charts = append(charts, growthChart{Type: mt, Label: mt.Label(), HTML: htmltemplate.HTML(chart)}) //nolint:gosec // rendered by go-echarts
		}
	}

	data["Charts"] = charts
	t.HTML(http.StatusOK, "child_view")
}

// EditChildForm renders the edit child form
func EditChildForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	child, ok := loadChild(c, s)
	if !ok {
		return
	}

	childID := child.ID.String()

	data["Child"] = child
	data["Sexes"] = []growth.Sex{growth.SexFemale, growth.SexMale}
	data["Breadcrumbs"] = []BreadcrumbItem{
		childrenBreadcrumb(false),
		childBreadcrumb(childID, child.Name, false),
		{Name: "Edit", IsCurrent: true},
	}
	t.HTML(http.StatusOK, "child_edit")
}

// UpdateChild handles child updates
func UpdateChild(c flamego.Context, s session.Session) {
	childID := c.Param("id")
	editURL := "/child/" + childID + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Error parsing form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect(editURL, http.StatusSeeOther)

		return
	}

	input, err := parseChildForm(c.Request().Form, now())
	if err != nil {
		SetErrorFlash(s, "Invalid child details: "+err.Error())
		c.Redirect(editURL, http.StatusSeeOther)

		return
	}

	if err := db.UpdateChild(c.Request().Context(), childID, input); err != nil {
		if errors.Is(err, db.ErrChildNotFound) {
			SetErrorFlash(s, "Child not found")
			c.Redirect("/", http.StatusSeeOther)

			return
		}

		logger.Error("Error updating child", "child_id", childID, "error", err)
		SetErrorFlash(s, "Failed to update child")
		c.Redirect(editURL, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "Child updated")
	c.Redirect("/child/"+childID, http.StatusSeeOther)
}

// DeleteChild removes a child and all of their visits
func DeleteChild(c flamego.Context, s session.Session) {
	childID := c.Param("id")

	if err := db.DeleteChild(c.Request().Context(), childID); err != nil {
		logger.Error("Error deleting child", "child_id", childID, "error", err)
		SetErrorFlash(s, "Failed to delete child")
		c.Redirect("/child/"+childID, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "Child deleted")
	c.Redirect("/", http.StatusSeeOther)
}
