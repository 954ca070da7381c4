// Package fieldstats computes per-field statistics over a materialized
// dataset: the missing rate, cardinality and top-share numbers the
// quality gates and the field selector check against.
package fieldstats

import (
	"math"

	"github.com/montanaflynn/stats"

	"notelens/domain/analysis"
	"notelens/domain/field"
)

// Engine computes field statistics. Stateless; every call reads the
// dataset it is given.
type Engine struct{}

// NewEngine creates a field stats engine
func NewEngine() *Engine {
	return &Engine{}
}

// Stats profiles one field against the dataset. A zero-row dataset
// reports missingRate = 1: a field with no rows behind it is treated as
// fully missing so gates degrade instead of trusting absent data.
func (e *Engine) Stats(ds analysis.Dataset, fieldName string) analysis.FieldStats {
	if len(ds) == 0 {
		return analysis.FieldStats{MissingRate: 1.0}
	}

	key := field.NormalizeName(fieldName)
	counts := make(map[string]int)
	missing := 0
	for _, row := range ds {
		value := row.Value(key)
		if value.IsMissing() {
			missing++
			continue
		}
		label, ok := value.AsLabel()
		if !ok {
			missing++
			continue
		}
		counts[label]++
	}

	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}

	total := float64(len(ds))
	return analysis.FieldStats{
		MissingRate: float64(missing) / total,
		Cardinality: len(counts),
		TopShare:    float64(top) / total,
	}
}

// StatsAll profiles every catalog field, keyed by normalized name
func (e *Engine) StatsAll(ds analysis.Dataset, catalog *field.Catalog) map[string]analysis.FieldStats {
	out := make(map[string]analysis.FieldStats, catalog.Len())
	for _, def := range catalog.Fields() {
		key := field.NormalizeName(def.Name)
		out[key] = e.Stats(ds, key)
	}
	return out
}

// NumericProfile summarizes a metric field's distribution. Rows where
// the field is missing are skipped; an all-missing field returns a zero
// profile.
func (e *Engine) NumericProfile(ds analysis.Dataset, fieldName string) analysis.NumericProfile {
	key := field.NormalizeName(fieldName)
	var values []float64
	for _, row := range ds {
		if num, ok := row.Value(key).AsMetric(); ok {
			values = append(values, num)
		}
	}
	if len(values) == 0 {
		return analysis.NumericProfile{}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return analysis.NumericProfile{Count: len(values)}
	}
	stdDev, _ := stats.StandardDeviation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	if math.IsNaN(stdDev) {
		stdDev = 0
	}
	return analysis.NumericProfile{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(values),
	}
}
