// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flamego/flamego"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/humaidq/sprout/growth"
)

func newAPITestApp(t *testing.T, engine *growth.Engine) *flamego.Flame {
	t.Helper()

	f := flamego.New()
	f.Map(engine)
	f.Map(growth.DefaultAlertConfig())
	f.Post("/api/assess", AssessAPI)
	f.Get("/api/child/{id}/growth", ChildGrowthAPI)
	f.Get("/api/reference/{type}", ReferenceAPI)

	return f
}

func postAssess(t *testing.T, f *flamego.Flame, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func TestAssessAPI(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)
	f := newAPITestApp(t, engine)

	rec := postAssess(t, f, `{"dob":"2023-01-01","sex":"male","type":"weight","value":7.9,"observedAt":"2023-07-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected Content-Type %q", got)
	}

	var got growth.AssessmentResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want, err := engine.Assess(growth.Measurement{
		Type:       growth.Weight,
		Value:      7.9,
		Sex:        growth.SexMale,
		ObservedAt: day(t, "2023-07-01"),
	}, day(t, "2023-01-01"))
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestAssessAPIAcceptsAliases(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	rec := postAssess(t, f, `{"dob":"2023-01-01","sex":"female","type":"height","value":65.7,"observedAt":"2023-07-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if !strings.Contains(rec.Body.String(), `"type":"length"`) {
		t.Fatalf("expected height to resolve to length, got %s", rec.Body.String())
	}
}

func TestAssessAPIRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"dob":`},
		{name: "bad dob", body: `{"dob":"1/1/2023","sex":"male","type":"weight","value":7,"observedAt":"2023-07-01"}`},
		{name: "unknown sex", body: `{"dob":"2023-01-01","sex":"x","type":"weight","value":7,"observedAt":"2023-07-01"}`},
		{name: "unknown type", body: `{"dob":"2023-01-01","sex":"male","type":"bmi","value":7,"observedAt":"2023-07-01"}`},
		{name: "zero value", body: `{"dob":"2023-01-01","sex":"male","type":"weight","value":0,"observedAt":"2023-07-01"}`},
		{name: "negative value", body: `{"dob":"2023-01-01","sex":"male","type":"weight","value":-4,"observedAt":"2023-07-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postAssess(t, f, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
			}

			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected an error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestAssessAPIFlagsDataQuality(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	rec := postAssess(t, f, `{"dob":"2023-06-01","sex":"male","type":"weight","value":3.3,"observedAt":"2023-01-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if !strings.Contains(rec.Body.String(), `"dateOrderViolation":true`) {
		t.Fatalf("expected the date order flag, got %s", rec.Body.String())
	}
}

func TestChildGrowthAPIWithoutDatabase(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	req := httptest.NewRequest(http.MethodGet, "/api/child/0b6f1f6e-2f7c-4b64-9f0f-1d1f6d1e2a3b/growth", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestAssessmentStatus(t *testing.T) {
	t.Parallel()

	if got := assessmentStatus(growth.ErrMalformedReferenceData); got != http.StatusInternalServerError {
		t.Fatalf("expected malformed reference data to be a server error, got %d", got)
	}

	if got := assessmentStatus(growth.ErrUnknownMeasurementType); got != http.StatusBadRequest {
		t.Fatalf("expected unknown type to be a client error, got %d", got)
	}
}

func getReference(t *testing.T, f *flamego.Flame, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestReferenceAPI(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	rec := getReference(t, f, "/api/reference/weight?sex=male&age=6")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got referenceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if got.Source != "engine" || got.ReferenceAgeMonths != 6 || got.Clamped || got.Version == "" {
		t.Fatalf("unexpected reference response: %+v", got)
	}

	if len(got.Curves) != 7 {
		t.Fatalf("expected 7 curve points, got %d", len(got.Curves))
	}

	opt := cmpopts.EquateApprox(0, 1e-9)
	if !cmp.Equal(got.Curves[3].Value, 7.9, opt) || !cmp.Equal(got.Curves[5].Value, 7.9+2*0.9, opt) {
		t.Fatalf("unexpected curve values: %+v", got.Curves)
	}
}

func TestReferenceResponseSkipsUndefinedCurvePoints(t *testing.T) {
	t.Parallel()

	resp := newReferenceResponse(growth.Weight, growth.SexMale, 6, growth.Params{L: -1, M: 10, S: 0.4})

	// z = 3 maps outside the LMS domain for this row.
	if len(resp.Curves) != 6 {
		t.Fatalf("expected 6 curve points, got %+v", resp.Curves)
	}

	for _, p := range resp.Curves {
		if p.Z == 3 {
			t.Fatalf("expected z=3 to be skipped, got %+v", resp.Curves)
		}
	}

	if _, err := json.Marshal(resp); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestReferenceAPIClampsAge(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	rec := getReference(t, f, "/api/reference/length?sex=female&age=72")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got referenceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !got.Clamped || got.RequestedAgeMonths != 72 || got.ReferenceAgeMonths != 60 {
		t.Fatalf("expected a clamped lookup, got %+v", got)
	}
}

func TestReferenceAPIErrors(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(t, mustEngine(t))

	tests := []struct {
		path string
		want int
	}{
		{path: "/api/reference/bmi?sex=male&age=6", want: http.StatusBadRequest},
		{path: "/api/reference/weight?sex=other&age=6", want: http.StatusBadRequest},
		{path: "/api/reference/weight?sex=male&age=-1", want: http.StatusBadRequest},
		{path: "/api/reference/weight?sex=male", want: http.StatusBadRequest},
		{path: "/api/reference/weight?sex=male&age=6&source=stored", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if rec := getReference(t, f, tt.path); rec.Code != tt.want {
			t.Fatalf("%s: expected status %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}
