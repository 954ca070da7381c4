// Package gate validates a selected chart type against statistical
// thresholds and downgrades it to a safer type when the data cannot
// support it. Evaluation is a total function: it always returns a
// renderable verdict and never errors, so any upstream data-quality
// problem becomes a deterministic downgrade instead of a failure.
//
// Downgrade reasons are user-facing strings surfaced verbatim in the
// product UI, which ships in Chinese.
package gate

import (
	"fmt"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/field"
	"notelens/internal/fieldstats"
)

// near-equal slice guard for pies: many slices of similar size are
// unreadable even under the top-N threshold
const (
	pieScatterCardinality = 12
	pieScatterTopShare    = 0.15
)

// Evaluator applies the quality gate rules
type Evaluator struct {
	stats *fieldstats.Engine
}

// NewEvaluator creates a gate evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{stats: fieldstats.NewEngine()}
}

// Evaluate checks chartType against the dataset and selection. Rules
// run in a fixed order and the first match wins; when no rule fires the
// chart type passes through with an empty reason.
func (e *Evaluator) Evaluate(chartType chart.Type, ds analysis.Dataset, sel chart.Selection, gates chart.GateConfig) chart.Verdict {
	// Rule 1: any bound field too sparse forces a count-based bar.
	if name, rate, sparse := e.sparseField(ds, sel, gates); sparse {
		return chart.Verdict{
			ChartType:     chart.TypeBar,
			CountFallback: true,
			Reason: fmt.Sprintf("字段「%s」缺失率 %.0f%% 超过上限 %.0f%%，已降级为按记录数统计的条形图",
				name, rate*100, gates.FieldMaxMissingRate*100),
		}
	}

	dimStats := e.stats.Stats(ds, sel.Dimension)

	// Rule 2: pies with too many or too evenly spread slices.
	if chartType == chart.TypePie {
		if dimStats.Cardinality > gates.PieTopN {
			return chart.Verdict{
				ChartType: chart.TypeBar,
				Reason: fmt.Sprintf("维度「%s」有 %d 个类别，超过饼图上限 %d，已改用条形图",
					sel.Dimension, dimStats.Cardinality, gates.PieTopN),
			}
		}
		if dimStats.Cardinality > pieScatterCardinality && dimStats.TopShare < pieScatterTopShare {
			return chart.Verdict{
				ChartType: chart.TypeBar,
				Reason: fmt.Sprintf("维度「%s」类别过于分散（%d 个近似等份），饼图不可读，已改用条形图",
					sel.Dimension, dimStats.Cardinality),
			}
		}
	}

	// Rule 3: oversized bars keep their type but must render Top-N+其他.
	if chartType == chart.TypeBar && dimStats.Cardinality > gates.BarMaxCategories {
		return chart.Verdict{
			ChartType: chart.TypeBar,
			TopNOther: true,
			Reason: fmt.Sprintf("维度「%s」有 %d 个类别，渲染时仅展示前 %d 项并合并其余为「其他」",
				sel.Dimension, dimStats.Cardinality, gates.BarMaxCategories),
		}
	}

	// Rule 4: lines need enough distinct time points.
	if chartType == chart.TypeLine {
		timeAxis := sel.Time
		if timeAxis == "" {
			timeAxis = sel.Dimension
		}
		points := ds.DistinctCount(field.NormalizeName(timeAxis))
		if points < gates.LineMinPoints {
			return chart.Verdict{
				ChartType: chart.TypeBar,
				Reason: fmt.Sprintf("时间轴「%s」仅有 %d 个时间点（至少需要 %d 个），已改用条形图",
					timeAxis, points, gates.LineMinPoints),
			}
		}
	}

	// Rule 5: heatmaps need a second dimension and enough observed
	// combinations relative to the full cross-product.
	if chartType == chart.TypeHeatmap {
		if sel.Dimension2 == "" {
			return chart.Verdict{
				ChartType: chart.TypeBar,
				Reason:    "热力图需要两个维度，当前仅选择了一个，已改用条形图",
			}
		}
		density := pairDensity(ds, sel.Dimension, sel.Dimension2)
		if density < gates.HeatmapMinDensity {
			return chart.Verdict{
				ChartType: chart.TypeBar,
				Reason: fmt.Sprintf("「%s」×「%s」组合覆盖率仅 %.0f%%（低于 %.0f%%），热力图过于稀疏，已改用条形图",
					sel.Dimension, sel.Dimension2, density*100, gates.HeatmapMinDensity*100),
			}
		}
	}

	return chart.Verdict{ChartType: chartType}
}

// sparseField returns the first selection field whose missing rate
// exceeds the gate threshold. The count pseudo-metric is always
// present and never checked.
func (e *Evaluator) sparseField(ds analysis.Dataset, sel chart.Selection, gates chart.GateConfig) (string, float64, bool) {
	for _, name := range []string{sel.Dimension, sel.Time, sel.Metric} {
		if name == "" || name == chart.CountMetric {
			continue
		}
		if stats := e.stats.Stats(ds, name); stats.MissingRate > gates.FieldMaxMissingRate {
			return name, stats.MissingRate, true
		}
	}
	return "", 0, false
}

// pairDensity is |distinct observed (a,b) pairs| / (|distinct a| *
// |distinct b|), counting only rows where both fields are present.
func pairDensity(ds analysis.Dataset, dimA, dimB string) float64 {
	keyA := field.NormalizeName(dimA)
	keyB := field.NormalizeName(dimB)

	aSet := make(map[string]struct{})
	bSet := make(map[string]struct{})
	pairs := make(map[string]struct{})
	for _, row := range ds {
		a, okA := row.Value(keyA).AsLabel()
		b, okB := row.Value(keyB).AsLabel()
		if !okA || !okB {
			continue
		}
		aSet[a] = struct{}{}
		bSet[b] = struct{}{}
		pairs[a+"\x00"+b] = struct{}{}
	}

	cross := len(aSet) * len(bSet)
	if cross == 0 {
		return 0
	}
	return float64(len(pairs)) / float64(cross)
}
