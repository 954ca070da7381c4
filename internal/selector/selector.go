// Package selector resolves the recommend collaborator's per-axis
// candidate pools down to one field per axis. Sparse fields are
// filtered out before any ranking; when ambiguity stays high after
// filtering, a best-effort rerank call breaks the tie.
package selector

import (
	"context"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/field"
	"notelens/internal"
	"notelens/ports"
)

// ambiguityTotal is the combined surviving candidate count across axes
// at which we bring in the reranker
const ambiguityTotal = 4

// Selector picks one field per axis from collaborator candidate pools
type Selector struct {
	reranker ports.Reranker
	logger   *internal.Logger
}

// NewSelector creates a field plan selector. The reranker may be nil;
// selection then always resolves deterministically.
func NewSelector(reranker ports.Reranker, logger *internal.Logger) *Selector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Selector{reranker: reranker, logger: logger}
}

// Result carries the resolved selection plus the filtered pools the
// chart instance keeps for manual switching.
type Result struct {
	Selection chart.Selection
	Pools     ports.CandidateFields
	// Reranked is true when the rerank collaborator supplied the pick
	Reranked bool
}

// Filter drops candidates unknown to the catalog or failing the
// missing-rate gate from every axis pool. Order within each pool is
// preserved from the recommendation.
func (s *Selector) Filter(plan ports.FieldPlan, catalog *field.Catalog, fieldStats map[string]analysis.FieldStats, gates chart.GateConfig) ports.CandidateFields {
	return ports.CandidateFields{
		Time:      s.filterAxis(plan.TimeFieldCandidates, catalog, fieldStats, gates),
		Dimension: s.filterAxis(plan.DimensionCandidates, catalog, fieldStats, gates),
		Metric:    s.filterAxis(plan.MetricCandidates, catalog, fieldStats, gates),
	}
}

// Ambiguous reports whether the surviving pools still need a ranking
// decision: four or more candidates in total, or any single axis with
// more than one.
func Ambiguous(pools ports.CandidateFields) bool {
	total := len(pools.Time) + len(pools.Dimension) + len(pools.Metric)
	if total >= ambiguityTotal {
		return true
	}
	return len(pools.Time) > 1 || len(pools.Dimension) > 1 || len(pools.Metric) > 1
}

// Select resolves filtered pools to one field per axis. Low ambiguity
// takes the first surviving candidate per axis; high ambiguity
// delegates to the reranker. Rerank failures fall back to the same
// deterministic first-survivor pick; the filtered list is the last
// state this engine can vouch for.
func (s *Selector) Select(ctx context.Context, chartType chart.Type, plan ports.FieldPlan, pools ports.CandidateFields, fieldStats map[string]analysis.FieldStats) Result {
	result := Result{
		Selection: chart.Selection{
			Time:            first(pools.Time),
			Dimension:       first(pools.Dimension),
			Metric:          first(pools.Metric),
			Aggregation:     plan.Aggregation,
			TimeGranularity: plan.TimeGranularity,
		},
		Pools: pools,
	}
	if result.Selection.Metric == "" {
		result.Selection.Metric = chart.CountMetric
	}

	if !Ambiguous(pools) || s.reranker == nil {
		return result
	}

	resp, err := s.reranker.Rerank(ctx, ports.RerankRequest{
		ChartType:       string(chartType),
		CandidateFields: pools,
		FieldStats:      fieldStats,
	})
	if err != nil {
		s.logger.Warn("rerank unavailable, keeping deterministic selection: %v", err)
		return result
	}

	// Accept the rerank pick only where it names a surviving candidate.
	picked := resp.SelectedFields
	if contains(pools.Time, picked.Time) {
		result.Selection.Time = picked.Time
	}
	if contains(pools.Dimension, picked.Dimension) {
		result.Selection.Dimension = picked.Dimension
	}
	if contains(pools.Dimension, picked.Dimension2) && picked.Dimension2 != result.Selection.Dimension {
		result.Selection.Dimension2 = picked.Dimension2
	}
	if contains(pools.Metric, picked.Metric) || picked.Metric == chart.CountMetric {
		result.Selection.Metric = picked.Metric
	}
	if picked.Aggregation != "" {
		result.Selection.Aggregation = picked.Aggregation
	}
	if picked.TimeGranularity != "" {
		result.Selection.TimeGranularity = picked.TimeGranularity
	}
	result.Reranked = true
	return result
}

// filterAxis keeps candidates that resolve in the catalog and pass the
// missing-rate gate.
func (s *Selector) filterAxis(candidates []string, catalog *field.Catalog, fieldStats map[string]analysis.FieldStats, gates chart.GateConfig) []string {
	var out []string
	for _, name := range candidates {
		def, known := catalog.Lookup(name)
		if !known {
			s.logger.Debug("dropping unknown field candidate %q", name)
			continue
		}
		key := field.NormalizeName(def.Name)
		if stats, ok := fieldStats[key]; ok && stats.MissingRate > gates.FieldMaxMissingRate {
			continue
		}
		out = append(out, def.Name)
	}
	return out
}

func first(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

func contains(items []string, target string) bool {
	if target == "" {
		return false
	}
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
