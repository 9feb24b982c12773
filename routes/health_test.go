// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flamego/flamego"
)

func TestHealthzWithoutDatabase(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Map(mustEngine(t))
	f.Get("/healthz", Healthz)

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if got.Status != "degraded" {
		t.Fatalf("expected degraded status, got %q", got.Status)
	}

	if len(got.Datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %+v", got.Datasets)
	}

	for _, ds := range got.Datasets {
		if ds.MinAge != 0 || ds.MaxAge != 60 || ds.Version == "" {
			t.Fatalf("unexpected dataset summary: %+v", ds)
		}
	}
}
