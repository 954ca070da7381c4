package chart

import (
	"sort"
	"strings"
)

// Type identifies a chart rendering family
type Type string

const (
	TypeLine    Type = "line"
	TypeBar     Type = "bar"
	TypePie     Type = "pie"
	TypeArea    Type = "area"
	TypeHeatmap Type = "heatmap"
)

// ParseType normalizes a collaborator-supplied chart type. Unknown
// values default to bar rather than failing the run.
func ParseType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeLine:
		return TypeLine
	case TypeBar:
		return TypeBar
	case TypePie:
		return TypePie
	case TypeArea:
		return TypeArea
	case TypeHeatmap:
		return TypeHeatmap
	default:
		return TypeBar
	}
}

// CountMetric is the pseudo-metric that aggregates row counts instead
// of averaging a field.
const CountMetric = "count"

// Candidate is a proposed chart binding: a type plus the fields it
// needs. Immutable once generated; ID is a deterministic slug of
// type+fields so duplicates can be dropped by key.
type Candidate struct {
	ID                 string   `json:"id"`
	ChartType          Type     `json:"chart_type"`
	RequiredDimensions []string `json:"required_dimensions"`
	RequiredMetrics    []string `json:"required_metrics"`
	Reason             string   `json:"reason"`
}

// Slug builds the deduplication key for a candidate: chart type plus
// sorted dimensions plus metrics.
func Slug(chartType Type, dimensions, metrics []string) string {
	dims := make([]string, len(dimensions))
	copy(dims, dimensions)
	sort.Strings(dims)

	parts := make([]string, 0, 1+len(dims)+len(metrics))
	parts = append(parts, string(chartType))
	parts = append(parts, dims...)
	parts = append(parts, metrics...)
	return strings.Join(parts, ":")
}

// NewCandidate builds a candidate with its slug ID populated
func NewCandidate(chartType Type, dimensions, metrics []string, reason string) Candidate {
	return Candidate{
		ID:                 Slug(chartType, dimensions, metrics),
		ChartType:          chartType,
		RequiredDimensions: dimensions,
		RequiredMetrics:    metrics,
		Reason:             reason,
	}
}

// GateConfig holds the policy thresholds the quality gates check
// against. Supplied by configuration, never derived from data.
type GateConfig struct {
	PieTopN             int     `json:"pie_top_n"`
	LineMinPoints       int     `json:"line_min_points"`
	HeatmapMinDensity   float64 `json:"heatmap_min_density"`
	FieldMaxMissingRate float64 `json:"field_max_missing_rate"`
	BarMaxCategories    int     `json:"bar_max_categories"`
}

// DefaultGateConfig returns the shipped thresholds
func DefaultGateConfig() GateConfig {
	return GateConfig{
		PieTopN:             8,
		LineMinPoints:       3,
		HeatmapMinDensity:   0.1,
		FieldMaxMissingRate: 0.4,
		BarMaxCategories:    20,
	}
}

// Selection binds concrete fields to chart axes. Metric may be
// CountMetric. Dimension2 is only set for heatmaps.
type Selection struct {
	Time            string `json:"time,omitempty"`
	Dimension       string `json:"dimension,omitempty"`
	Dimension2      string `json:"dimension2,omitempty"`
	Metric          string `json:"metric,omitempty"`
	Aggregation     string `json:"aggregation,omitempty"`
	TimeGranularity string `json:"time_granularity,omitempty"`
}

// Axis returns the grouping field: the time axis for line/area charts,
// otherwise the dimension.
func (s Selection) Axis(chartType Type) string {
	if (chartType == TypeLine || chartType == TypeArea) && s.Time != "" {
		return s.Time
	}
	return s.Dimension
}

// Verdict is the gate evaluator's output: the chart type to render and
// a human-readable reason when it differs from what was asked.
type Verdict struct {
	ChartType Type   `json:"chart_type"`
	Reason    string `json:"reason"`
	// TopNOther flags that rendering must bucket overflow categories
	// into an "other" slice instead of plotting them all.
	TopNOther bool `json:"top_n_other,omitempty"`
	// CountFallback flags that the metric was reinterpreted as row
	// count because the selected metric field was too sparse.
	CountFallback bool `json:"count_fallback,omitempty"`
}
