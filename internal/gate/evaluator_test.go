package gate

import (
	"strings"
	"testing"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/domain/note"
)

func text(s string) note.Value { return note.Value{Kind: note.KindText, Str: s} }
func num(f float64) note.Value { return note.Value{Kind: note.KindNumber, Num: f} }

func row(id string, values map[string]note.Value) analysis.Datum {
	return analysis.Datum{ID: core.NoteID(id), Values: values}
}

// labeledDataset builds n rows with labels cycling through the given
// set under fieldName.
func labeledDataset(fieldName string, labels []string, n int) analysis.Dataset {
	ds := make(analysis.Dataset, 0, n)
	for i := 0; i < n; i++ {
		ds = append(ds, row(string(rune('a'+i)), map[string]note.Value{
			fieldName: text(labels[i%len(labels)]),
		}))
	}
	return ds
}

func TestEvaluatePassThrough(t *testing.T) {
	e := NewEvaluator()
	ds := labeledDataset("category", []string{"work", "health", "play"}, 9)
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypeBar, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar || v.Reason != "" {
		t.Errorf("healthy selection should pass untouched, got %+v", v)
	}
}

func TestEvaluateSparseMetricForcesCountBar(t *testing.T) {
	e := NewEvaluator()
	// mood present in 1 of 10 rows: 90% missing, over the 40% gate
	ds := labeledDataset("category", []string{"work", "health"}, 10)
	ds[0].Values["mood"] = num(4)
	sel := chart.Selection{Dimension: "category", Metric: "mood"}

	v := e.Evaluate(chart.TypeLine, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar {
		t.Errorf("sparse metric should downgrade to bar, got %v", v.ChartType)
	}
	if !v.CountFallback {
		t.Error("sparse metric must flag the count fallback")
	}
	if !strings.Contains(v.Reason, "缺失率") {
		t.Errorf("reason should state the missing rate, got %q", v.Reason)
	}
}

func TestEvaluatePieCardinality(t *testing.T) {
	e := NewEvaluator()
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	ds := labeledDataset("category", labels, 10)
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypePie, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar {
		t.Errorf("10 slices exceeds the pie limit of 8, got %v", v.ChartType)
	}
	if v.CountFallback || v.TopNOther {
		t.Errorf("pie downgrade should not set fallback flags: %+v", v)
	}
}

func TestEvaluatePieWithinLimitPasses(t *testing.T) {
	e := NewEvaluator()
	ds := labeledDataset("category", []string{"a", "b", "c"}, 9)
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypePie, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypePie {
		t.Errorf("3 slices should keep the pie, got %v", v.ChartType)
	}
}

func TestEvaluateBarTopNOther(t *testing.T) {
	e := NewEvaluator()
	labels := make([]string, 25)
	for i := range labels {
		labels[i] = "cat-" + string(rune('a'+i))
	}
	ds := labeledDataset("category", labels, 25)
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypeBar, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar {
		t.Errorf("oversized bar keeps its type, got %v", v.ChartType)
	}
	if !v.TopNOther {
		t.Error("oversized bar must render top-N plus other")
	}
}

func TestEvaluateLineNeedsTimePoints(t *testing.T) {
	e := NewEvaluator()
	ds := labeledDataset("date", []string{"2025-04-01", "2025-04-02"}, 6)
	sel := chart.Selection{Time: "date", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypeLine, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar {
		t.Errorf("2 time points is under the minimum of 3, got %v", v.ChartType)
	}

	ds = labeledDataset("date", []string{"2025-04-01", "2025-04-02", "2025-04-03"}, 6)
	v = e.Evaluate(chart.TypeLine, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeLine {
		t.Errorf("3 time points should keep the line, got %v", v.ChartType)
	}
}

func TestEvaluateLineFallsBackToDimensionAxis(t *testing.T) {
	e := NewEvaluator()
	ds := labeledDataset("week", []string{"w1", "w2", "w3", "w4"}, 8)
	sel := chart.Selection{Dimension: "week", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypeLine, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeLine {
		t.Errorf("missing time axis should check the dimension instead, got %v", v.ChartType)
	}
}

func TestEvaluateHeatmapNeedsSecondDimension(t *testing.T) {
	e := NewEvaluator()
	ds := labeledDataset("category", []string{"a", "b"}, 4)
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	v := e.Evaluate(chart.TypeHeatmap, ds, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar {
		t.Errorf("heatmap without dimension2 must downgrade, got %v", v.ChartType)
	}
}

func TestEvaluateHeatmapDensity(t *testing.T) {
	e := NewEvaluator()
	gates := chart.DefaultGateConfig()
	gates.HeatmapMinDensity = 0.5
	sel := chart.Selection{Dimension: "a", Dimension2: "b", Metric: chart.CountMetric}

	// 2 distinct a x 2 distinct b, all 4 pairs observed: density 1.0
	dense := analysis.Dataset{
		row("1", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("2", map[string]note.Value{"a": text("x"), "b": text("q")}),
		row("3", map[string]note.Value{"a": text("y"), "b": text("p")}),
		row("4", map[string]note.Value{"a": text("y"), "b": text("q")}),
	}
	if v := e.Evaluate(chart.TypeHeatmap, dense, sel, gates); v.ChartType != chart.TypeHeatmap {
		t.Errorf("fully dense grid should pass, got %v", v.ChartType)
	}

	// 3x3 grid with only 3 observed pairs: density 1/3 < 0.5
	sparse := analysis.Dataset{
		row("1", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("2", map[string]note.Value{"a": text("y"), "b": text("q")}),
		row("3", map[string]note.Value{"a": text("z"), "b": text("r")}),
	}
	if v := e.Evaluate(chart.TypeHeatmap, sparse, sel, gates); v.ChartType != chart.TypeBar {
		t.Errorf("sparse grid should downgrade, got %v", v.ChartType)
	}
}

func TestEvaluateEmptyDatasetDegrades(t *testing.T) {
	e := NewEvaluator()
	sel := chart.Selection{Dimension: "category", Metric: "mood"}

	v := e.Evaluate(chart.TypeLine, nil, sel, chart.DefaultGateConfig())
	if v.ChartType != chart.TypeBar || !v.CountFallback {
		t.Errorf("empty dataset treats every field as fully missing, got %+v", v)
	}
}

func TestPairDensityIgnoresPartialRows(t *testing.T) {
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("2", map[string]note.Value{"a": text("y")}), // b missing
	}
	if got := pairDensity(ds, "a", "b"); got != 1.0 {
		t.Errorf("density = %v; rows missing either field must not count", got)
	}
}
