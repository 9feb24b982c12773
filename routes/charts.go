/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/sprout/growth"
)

// minChartMonths keeps charts for newborns readable.
const minChartMonths = 12

// referenceCurve is one SD line drawn behind the child's values
type referenceCurve struct {
	Name  string
	Z     float64
	Color string
}

var referenceCurves = []referenceCurve{
	{Name: "-3 SD", Z: -3, Color: "rgba(200, 40, 40, 0.7)"},
	{Name: "-2 SD", Z: -2, Color: "rgba(230, 140, 20, 0.7)"},
	{Name: "Median", Z: 0, Color: "rgba(40, 140, 60, 0.8)"},
	{Name: "+2 SD", Z: 2, Color: "rgba(230, 140, 20, 0.7)"},
	{Name: "+3 SD", Z: 3, Color: "rgba(200, 40, 40, 0.7)"},
}

// chartAgeRange returns the months shown on the x axis: from 0 to six
// months past the oldest plotted point, bounded by the reference table.
func chartAgeRange(maxRefAge int, results []growth.AssessmentResult) int {
	upper := minChartMonths

	for _, r := range results {
		if r.ReferenceAgeMonths+6 > upper {
			upper = r.ReferenceAgeMonths + 6
		}
	}

	if upper > maxRefAge {
		upper = maxRefAge
	}

	return upper
}

// generateGrowthChart renders a line chart of a child's values for one
// measurement type against the reference SD curves. It returns an empty
// string when there is nothing to plot.
func generateGrowthChart(e *growth.Engine, sex growth.Sex, t growth.MeasurementType, results []growth.AssessmentResult) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	ds := e.Dataset(t)
	if ds == nil {
		return "", nil
	}

	upper := chartAgeRange(ds.MaxAge(), results)

	xAxis := make([]string, 0, upper+1)
	curves := make([][]opts.LineData, len(referenceCurves))

	for age := 0; age <= upper; age++ {
		xAxis = append(xAxis, strconv.Itoa(age))

		ref, err := e.Lookup(t, age, sex)
		if err != nil {
			return "", err
		}

		for i, curve := range referenceCurves {
			curves[i] = append(curves[i], curvePoint(ref.ValueAt(curve.Z)))
		}
	}

	// One value per month; a later measurement in the same month wins.
	childValues := make([]opts.LineData, upper+1)
	for i := range childValues {
		childValues[i] = opts.LineData{Value: "-"}
	}

	for _, r := range results {
		if r.ReferenceAgeMonths > upper {
			continue
		}

		childValues[r.ReferenceAgeMonths] = opts.LineData{
			Value: r.Value,
			Name:  r.ObservedAt.Format("Jan 2, 2006") + " (z " + strconv.FormatFloat(r.ZScore, 'f', 2, 64) + ")",
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    t.Label(),
			Subtitle: ds.Version,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Age (months)",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  t.Unit(),
			Scale: opts.Bool(true),
		}),
	)

	line.SetXAxis(xAxis)

	for i, curve := range referenceCurves {
		line.AddSeries(curve.Name, curves[i],
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(false),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: curve.Color,
				Type:  "dashed",
				Width: 1.5,
			}),
		)
	}

	line.AddSeries("Child", childValues,
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol:   opts.Bool(true),
			ConnectNulls: opts.Bool(true),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: "rgba(30, 90, 200, 1)",
			Width: 2.5,
		}),
	)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// curvePoint leaves a gap in the curve where the reference has no value.
func curvePoint(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: "-"}
	}

	return opts.LineData{Value: roundTo(v, 2)}
}
