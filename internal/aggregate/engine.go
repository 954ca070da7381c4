// Package aggregate turns the final gated selection into render-ready
// series: grouped averages or counts for 1-D charts, density grids with
// normalized intensity for heatmaps. Buckets are keyed, then sorted by
// label, so output never depends on row order.
package aggregate

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/field"
)

// Engine produces render series from a dataset and selection
type Engine struct{}

// NewEngine creates an aggregation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Aggregate dispatches on chart type: heatmaps get a 2-D grid, every
// other type a 1-D bucket series grouped by the chart's axis field.
func (e *Engine) Aggregate(ds analysis.Dataset, chartType chart.Type, sel chart.Selection) chart.RenderSeries {
	if chartType == chart.TypeHeatmap {
		return e.aggregateGrid(ds, sel)
	}
	return e.aggregateBuckets(ds, chartType, sel)
}

// aggregateBuckets groups rows by the axis label. The count
// pseudo-metric sums to row count; any other metric averages per group,
// rounded to two decimal places.
func (e *Engine) aggregateBuckets(ds analysis.Dataset, chartType chart.Type, sel chart.Selection) chart.RenderSeries {
	axis := sel.Axis(chartType)
	axisKey := field.NormalizeName(axis)
	metricKey := field.NormalizeName(sel.Metric)

	groups := make(map[string][]float64)
	counts := make(map[string]int)
	for _, row := range ds {
		label, ok := row.Value(axisKey).AsLabel()
		if !ok {
			continue
		}
		counts[label]++
		if sel.Metric != "" && sel.Metric != chart.CountMetric {
			if num, numOK := row.Value(metricKey).AsMetric(); numOK {
				groups[label] = append(groups[label], num)
			}
		}
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	buckets := make([]chart.Bucket, 0, len(labels))
	for _, label := range labels {
		bucket := chart.Bucket{Label: label, Count: counts[label]}
		if sel.Metric == "" || sel.Metric == chart.CountMetric {
			bucket.Value = float64(counts[label])
		} else if values := groups[label]; len(values) > 0 {
			mean, err := stats.Mean(values)
			if err == nil {
				bucket.Value, _ = stats.Round(mean, 2)
			}
		}
		buckets = append(buckets, bucket)
	}

	return chart.RenderSeries{
		ChartType: chartType,
		AxisField: axis,
		Metric:    sel.Metric,
		Buckets:   buckets,
	}
}

// aggregateGrid groups rows by (dimension, dimension2) pair. The count
// pseudo-metric accumulates occurrences; other metrics sum. Each cell
// carries a [0,1] intensity for color mapping, with 0.5 as the midpoint
// when every cell holds the same value.
func (e *Engine) aggregateGrid(ds analysis.Dataset, sel chart.Selection) chart.RenderSeries {
	keyA := field.NormalizeName(sel.Dimension)
	keyB := field.NormalizeName(sel.Dimension2)
	metricKey := field.NormalizeName(sel.Metric)
	counting := sel.Metric == "" || sel.Metric == chart.CountMetric

	type pairKey struct{ a, b string }
	cells := make(map[pairKey]float64)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for _, row := range ds {
		a, okA := row.Value(keyA).AsLabel()
		b, okB := row.Value(keyB).AsLabel()
		if !okA || !okB {
			continue
		}
		rowSet[a] = struct{}{}
		colSet[b] = struct{}{}
		if counting {
			cells[pairKey{a, b}]++
			continue
		}
		if num, ok := row.Value(metricKey).AsMetric(); ok {
			cells[pairKey{a, b}] += num
		}
	}

	rows := sortedKeys(rowSet)
	cols := sortedKeys(colSet)

	series := chart.RenderSeries{
		ChartType: chart.TypeHeatmap,
		RowField:  sel.Dimension,
		ColField:  sel.Dimension2,
		Metric:    sel.Metric,
		Rows:      rows,
		Cols:      cols,
	}
	if len(cells) == 0 {
		return series
	}

	values := make([]float64, 0, len(cells))
	for _, v := range cells {
		values = append(values, v)
	}
	min := floats.Min(values)
	max := floats.Max(values)
	series.MinValue = min
	series.MaxValue = max
	span := max - min

	for _, r := range rows {
		for _, c := range cols {
			value, observed := cells[pairKey{r, c}]
			if !observed {
				continue
			}
			intensity := 0.5
			if span > 0 {
				intensity = (value - min) / span
			}
			series.Cells = append(series.Cells, chart.Cell{
				Row:       r,
				Col:       c,
				Value:     value,
				Intensity: intensity,
			})
		}
	}
	return series
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
