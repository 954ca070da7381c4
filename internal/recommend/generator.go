// Package recommend enumerates chart candidates from a field catalog
// and the shape of the current dataset. Generation is deterministic and
// capped; validation against data quality happens later in the gates.
package recommend

import (
	"fmt"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/field"
)

const (
	// MaxCandidates bounds the generated set
	MaxCandidates = 6
	// maxMetricsPerRule limits how many metrics the trend and
	// comparison rules pair against each dimension
	maxMetricsPerRule = 3
	// pieMinDistinct / pieMaxDistinct bound the dimension cardinality
	// a pie proposal requires, checked against raw data at generation
	// time
	pieMinDistinct = 2
	pieMaxDistinct = 8
)

// Generator proposes chart candidates
type Generator struct{}

// NewGenerator creates a candidate generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate proposes up to MaxCandidates chart candidates. A chart is
// never proposed without both a dimension to group by and a metric to
// plot; conversely, any dimension+metric pair guarantees at least one
// candidate via the fallback rule. Identical inputs yield an identical
// list.
func (g *Generator) Generate(catalog *field.Catalog, ds analysis.Dataset) []chart.Candidate {
	metrics := catalog.Metrics()
	dimensions := catalog.Dimensions()
	if len(metrics) == 0 || len(dimensions) == 0 {
		return nil
	}

	var dateDims, categoryDims []field.Definition
	for _, dim := range dimensions {
		if dim.IsDate() {
			dateDims = append(dateDims, dim)
		} else {
			categoryDims = append(categoryDims, dim)
		}
	}

	topMetrics := metrics
	if len(topMetrics) > maxMetricsPerRule {
		topMetrics = topMetrics[:maxMetricsPerRule]
	}

	set := newCandidateSet()

	// Trend rule: every date dimension against the top metrics.
	for _, dim := range dateDims {
		for _, metric := range topMetrics {
			set.add(chart.NewCandidate(chart.TypeLine,
				[]string{dim.Name}, []string{metric.Name},
				fmt.Sprintf("trend of %s over %s", metric.Name, dim.Name)))
		}
	}

	// Comparison rule: every category dimension against the top metrics.
	for _, dim := range categoryDims {
		for _, metric := range topMetrics {
			set.add(chart.NewCandidate(chart.TypeBar,
				[]string{dim.Name}, []string{metric.Name},
				fmt.Sprintf("compare %s across %s", metric.Name, dim.Name)))
		}
	}

	// Distribution rule: a pie only when the first category dimension
	// has a handful of distinct values in the raw data.
	if len(categoryDims) > 0 {
		dim := categoryDims[0]
		if distinct := ds.DistinctCount(field.NormalizeName(dim.Name)); distinct >= pieMinDistinct && distinct <= pieMaxDistinct {
			set.add(chart.NewCandidate(chart.TypePie,
				[]string{dim.Name}, []string{metrics[0].Name},
				fmt.Sprintf("distribution of %s by %s", metrics[0].Name, dim.Name)))
		}
	}

	// Cross-tab rule: two category dimensions make a heatmap.
	if len(categoryDims) >= 2 {
		set.add(chart.NewCandidate(chart.TypeHeatmap,
			[]string{categoryDims[0].Name, categoryDims[1].Name}, []string{metrics[0].Name},
			fmt.Sprintf("cross-tab of %s by %s and %s", metrics[0].Name, categoryDims[0].Name, categoryDims[1].Name)))
	}

	// Fallback: never return empty while a dimension+metric pair exists.
	if set.len() == 0 {
		set.add(chart.NewCandidate(chart.TypeBar,
			[]string{dimensions[0].Name}, []string{metrics[0].Name},
			fmt.Sprintf("default comparison of %s across %s", metrics[0].Name, dimensions[0].Name)))
	}

	return set.take(MaxCandidates)
}

// candidateSet keeps insertion order and drops repeated slugs silently
type candidateSet struct {
	seen  map[string]struct{}
	items []chart.Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[string]struct{})}
}

func (s *candidateSet) add(c chart.Candidate) {
	if _, dup := s.seen[c.ID]; dup {
		return
	}
	s.seen[c.ID] = struct{}{}
	s.items = append(s.items, c)
}

func (s *candidateSet) len() int {
	return len(s.items)
}

func (s *candidateSet) take(n int) []chart.Candidate {
	if len(s.items) > n {
		return s.items[:n]
	}
	return s.items
}
