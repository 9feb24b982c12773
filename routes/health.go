/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/sprout/db"
	"github.com/humaidq/sprout/growth"
)

const healthPingTimeout = 2 * time.Second

type datasetHealth struct {
	Type    growth.MeasurementType `json:"type"`
	Version string                 `json:"version"`
	MinAge  int                    `json:"minAgeMonths"`
	MaxAge  int                    `json:"maxAgeMonths"`
}

type healthResponse struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Datasets []datasetHealth `json:"datasets"`
}

// Healthz reports database reachability and the loaded reference tables.
// It answers 503 when the database is unreachable.
func Healthz(c flamego.Context, e *growth.Engine) {
	resp := healthResponse{Status: "ok", Database: "ok", Datasets: []datasetHealth{}}

	for _, t := range growth.MeasurementTypes {
		ds := e.Dataset(t)
		if ds == nil {
			continue
		}

		resp.Datasets = append(resp.Datasets, datasetHealth{
			Type:    t,
			Version: ds.Version,
			MinAge:  ds.MinAge(),
			MaxAge:  ds.MaxAge(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	status := http.StatusOK

	if err := db.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)

		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(c, status, resp)
}
