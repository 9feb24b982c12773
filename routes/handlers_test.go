// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

// newHandlersTestApp wires the mutating handlers with a fake session. The
// database pool is not initialized, so every storage call fails.
func newHandlersTestApp(t *testing.T, s session.Session) *flamego.Flame {
	t.Helper()

	f := flamego.New()
	f.Map(mustEngine(t))
	f.Map(growth.DefaultAlertConfig())
	f.Use(func(c flamego.Context) {
		c.MapTo(s, (*session.Session)(nil))
		c.Next()
	})

	f.Post("/child/new", CreateChild)
	f.Post("/child/{id}/edit", UpdateChild)
	f.Post("/child/{id}/delete", DeleteChild)
	f.Post("/child/{id}/visit", CreateVisit)
	f.Post("/child/{id}/visit/{visit_id}/measurement", AddMeasurement)
	f.Post("/child/{id}/visit/{visit_id}/delete", DeleteVisit)
	f.Post("/child/{id}/measurement/{measurement_id}/delete", DeleteMeasurement)

	return f
}

func performFormPOST(t *testing.T, f *flamego.Flame, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	if got := rec.Header().Get("Location"); got != wantLocation {
		t.Fatalf("expected redirect %q, got %q", wantLocation, got)
	}
}

func assertFlash(t *testing.T, s *testSession, wantType FlashType, wantMessage string) {
	t.Helper()

	msg, ok := s.flash.(FlashMessage)
	if !ok {
		t.Fatalf("expected flash message, got %T", s.flash)
	}

	if msg.Type != wantType || msg.Message != wantMessage {
		t.Fatalf("unexpected flash message: %#v", msg)
	}
}

func TestCreateChildValidation(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/new", url.Values{
		"date_of_birth": {"2023-01-01"},
		"sex":           {"male"},
	})

	assertRedirect(t, rec, "/child/new")
	assertFlash(t, s, FlashError, "Invalid child details: name is required")
}

func TestCreateChildStorageFailure(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/new", url.Values{
		"name":          {"Sara"},
		"date_of_birth": {"2023-01-01"},
		"sex":           {"female"},
	})

	assertRedirect(t, rec, "/child/new")
	assertFlash(t, s, FlashError, "Failed to create child")
}

func TestUpdateChildValidation(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/abc/edit", url.Values{
		"name":          {"Sara"},
		"date_of_birth": {"2999-01-01"},
		"sex":           {"female"},
	})

	assertRedirect(t, rec, "/child/abc/edit")

	msg, ok := s.flash.(FlashMessage)
	if !ok || msg.Type != FlashError || !strings.Contains(msg.Message, "future") {
		t.Fatalf("expected a future-date error flash, got %#v", s.flash)
	}
}

func TestCreateVisitValidation(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/abc/visit", url.Values{
		"visit_date": {"2023-05-01"},
	})

	assertRedirect(t, rec, "/child/abc/visit")
	assertFlash(t, s, FlashError, "Invalid visit: at least one measurement is required")
}

func TestCreateVisitStorageFailure(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/abc/visit", url.Values{
		"visit_date": {"2023-05-01"},
		"weight":     {"6.1"},
	})

	assertRedirect(t, rec, "/")
	assertFlash(t, s, FlashError, "Failed to load child")
}

func TestAddMeasurementStorageFailure(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newHandlersTestApp(t, s)

	rec := performFormPOST(t, f, "/child/abc/visit/v1/measurement", url.Values{
		"type":  {"weight"},
		"value": {"6.4"},
	})

	assertRedirect(t, rec, "/")
	assertFlash(t, s, FlashError, "Failed to load child")
}

func TestDeleteHandlersStorageFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		location string
		message  string
	}{
		{path: "/child/abc/delete", location: "/child/abc", message: "Failed to delete child"},
		{path: "/child/abc/visit/v1/delete", location: "/child/abc", message: "Failed to delete visit"},
		{path: "/child/abc/measurement/m1/delete", location: "/child/abc", message: "Failed to delete measurement"},
	}

	for _, tt := range tests {
		s := newTestSession()
		f := newHandlersTestApp(t, s)

		rec := performFormPOST(t, f, tt.path, url.Values{})

		assertRedirect(t, rec, tt.location)
		assertFlash(t, s, FlashError, tt.message)
	}
}

func TestVisitAlertSummary(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)
	child := testChild(t, growth.SexMale)

	normal := visitAlertSummaryFor(t, engine, child, map[growth.MeasurementType]float64{growth.Weight: 7.9})
	if normal != "" {
		t.Fatalf("expected no summary for a normal weight, got %q", normal)
	}

	flagged := visitAlertSummaryFor(t, engine, child, map[growth.MeasurementType]float64{
		growth.Weight: 4.9,
		growth.Length: 67.6,
	})
	if !strings.Contains(flagged, "1 measurement(s)") {
		t.Fatalf("expected one flagged measurement, got %q", flagged)
	}

	if got := visitAlertSummary(nil, growth.DefaultAlertConfig(), child, db.CreateVisitInput{}); got != "" {
		t.Fatalf("expected no summary without an engine, got %q", got)
	}
}

func TestVisitAlertSummaryWithFailedMeasurement(t *testing.T) {
	t.Parallel()

	datasets, err := growth.LoadEmbedded()
	if err != nil {
		t.Fatalf("failed to load datasets: %v", err)
	}

	var weightOnly []*growth.Dataset
	for _, ds := range datasets {
		if ds.Type == growth.Weight {
			weightOnly = append(weightOnly, ds)
		}
	}

	engine, err := growth.NewEngine(weightOnly)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	child := testChild(t, growth.SexFemale)

	flagged := visitAlertSummaryFor(t, engine, child, map[growth.MeasurementType]float64{
		growth.Weight: 4.9,
		growth.Length: 67.6,
	})
	if !strings.Contains(flagged, "1 measurement(s)") {
		t.Fatalf("expected the weight alert despite the length failure, got %q", flagged)
	}
}

func TestLogVisitFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := log.NewWithOptions(&buf, log.Options{Formatter: log.LogfmtFormatter})

	batch := []growth.BatchResult{
		{Measurement: growth.Measurement{Type: growth.Weight, Value: 7.9}, Result: &growth.AssessmentResult{}},
		{Measurement: growth.Measurement{Type: growth.Length, Value: 67.6}, Err: growth.ErrMalformedReferenceData},
	}

	if got := logVisitFailures(l, "child-1", batch); got != 1 {
		t.Fatalf("expected 1 failure, got %d", got)
	}

	out := buf.String()
	for _, want := range []string{"level=error", "child_id=child-1", "type=length"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got %s", want, out)
		}
	}

	if strings.Contains(out, "type=weight") {
		t.Fatalf("expected the scored weight to be skipped, got %s", out)
	}
}

func visitAlertSummaryFor(t *testing.T, engine *growth.Engine, child *db.Child, measurements map[growth.MeasurementType]float64) string {
	t.Helper()

	return visitAlertSummary(engine, growth.DefaultAlertConfig(), child, db.CreateVisitInput{
		VisitDate:    day(t, "2023-07-01"),
		Measurements: measurements,
	})
}

func TestScoreVisitMeasurements(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)
	child := testChild(t, growth.SexFemale)
	visit := &db.Visit{ID: uuid.New(), ChildID: child.ID, VisitDate: day(t, "2023-07-01")}

	measurements := []db.Measurement{
		{ID: uuid.New(), VisitID: visit.ID, Type: growth.Length, Value: 65.7},
		{ID: uuid.New(), VisitID: visit.ID, Type: growth.Weight, Value: 0},
	}

	got := scoreVisitMeasurements(engine, child, visit, measurements)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	if got[0].Result == nil || got[0].Result.Classification != growth.ClassNormal || got[0].Error != "" {
		t.Fatalf("expected the length to be scored as normal, got %+v", got[0])
	}

	if got[1].Result != nil || got[1].Error == "" {
		t.Fatalf("expected the zero weight to carry an error, got %+v", got[1])
	}

	missing := scoreVisitMeasurements(nil, child, visit, measurements[:1])
	if missing[0].Error != errEngineMissing.Error() {
		t.Fatalf("expected the missing engine error, got %+v", missing[0])
	}
}
