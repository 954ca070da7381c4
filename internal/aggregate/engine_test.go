package aggregate

import (
	"reflect"
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

func TestAggregateCountMetric(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"category": text("work")}),
		row("2", map[string]note.Value{"category": text("work")}),
		row("3", map[string]note.Value{"category": text("health")}),
	}
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	series := e.Aggregate(ds, chart.TypeBar, sel)
	if len(series.Buckets) != 2 {
		t.Fatalf("buckets = %d", len(series.Buckets))
	}
	// labels sort ascending: health, work
	if series.Buckets[0].Label != "health" || series.Buckets[0].Value != 1 {
		t.Errorf("bucket 0 = %+v", series.Buckets[0])
	}
	if series.Buckets[1].Label != "work" || series.Buckets[1].Value != 2 {
		t.Errorf("bucket 1 = %+v", series.Buckets[1])
	}
}

func TestAggregateAveragesRoundedToTwoDecimals(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"category": text("work"), "amount": num(1)}),
		row("2", map[string]note.Value{"category": text("work"), "amount": num(2)}),
		row("3", map[string]note.Value{"category": text("work"), "amount": num(2)}),
	}
	sel := chart.Selection{Dimension: "category", Metric: "amount"}

	series := e.Aggregate(ds, chart.TypeBar, sel)
	if series.Buckets[0].Value != 1.67 {
		t.Errorf("mean = %v, want 1.67", series.Buckets[0].Value)
	}
	if series.Buckets[0].Count != 3 {
		t.Errorf("count = %d", series.Buckets[0].Count)
	}
}

func TestAggregateStableUnderRowOrder(t *testing.T) {
	e := NewEngine()
	rows := analysis.Dataset{
		row("1", map[string]note.Value{"category": text("b"), "amount": num(1)}),
		row("2", map[string]note.Value{"category": text("a"), "amount": num(2)}),
		row("3", map[string]note.Value{"category": text("c"), "amount": num(3)}),
	}
	reversed := analysis.Dataset{rows[2], rows[1], rows[0]}
	sel := chart.Selection{Dimension: "category", Metric: "amount"}

	a := e.Aggregate(rows, chart.TypeBar, sel)
	b := e.Aggregate(reversed, chart.TypeBar, sel)
	if !reflect.DeepEqual(a, b) {
		t.Error("bucket output must not depend on row order")
	}
}

func TestAggregateLineUsesTimeAxis(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"date": text("2025-04-01"), "amount": num(5)}),
		row("2", map[string]note.Value{"date": text("2025-04-02"), "amount": num(7)}),
	}
	sel := chart.Selection{Time: "date", Dimension: "category", Metric: "amount"}

	series := e.Aggregate(ds, chart.TypeLine, sel)
	if series.AxisField != "date" {
		t.Errorf("line axis = %q, want the time field", series.AxisField)
	}
	if len(series.Buckets) != 2 {
		t.Errorf("buckets = %d", len(series.Buckets))
	}
}

func TestAggregateHeatmapGrid(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("2", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("3", map[string]note.Value{"a": text("y"), "b": text("q")}),
		row("4", map[string]note.Value{"a": text("y")}), // b missing, skipped
	}
	sel := chart.Selection{Dimension: "a", Dimension2: "b", Metric: chart.CountMetric}

	series := e.Aggregate(ds, chart.TypeHeatmap, sel)
	if len(series.Rows) != 2 || len(series.Cols) != 2 {
		t.Fatalf("grid = %v x %v", series.Rows, series.Cols)
	}
	if len(series.Cells) != 2 {
		t.Fatalf("cells = %d, unobserved pairs must be absent", len(series.Cells))
	}
	if series.MinValue != 1 || series.MaxValue != 2 {
		t.Errorf("range = [%v, %v]", series.MinValue, series.MaxValue)
	}
	for _, cell := range series.Cells {
		switch {
		case cell.Row == "x" && cell.Col == "p":
			if cell.Value != 2 || cell.Intensity != 1.0 {
				t.Errorf("max cell = %+v", cell)
			}
		case cell.Row == "y" && cell.Col == "q":
			if cell.Value != 1 || cell.Intensity != 0.0 {
				t.Errorf("min cell = %+v", cell)
			}
		}
	}
}

func TestAggregateHeatmapUniformIntensityMidpoint(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"a": text("x"), "b": text("p")}),
		row("2", map[string]note.Value{"a": text("y"), "b": text("q")}),
	}
	sel := chart.Selection{Dimension: "a", Dimension2: "b", Metric: chart.CountMetric}

	series := e.Aggregate(ds, chart.TypeHeatmap, sel)
	for _, cell := range series.Cells {
		if cell.Intensity != 0.5 {
			t.Errorf("uniform grid intensity = %v, want 0.5", cell.Intensity)
		}
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	e := NewEngine()
	sel := chart.Selection{Dimension: "category", Metric: chart.CountMetric}

	series := e.Aggregate(nil, chart.TypeBar, sel)
	if len(series.Buckets) != 0 {
		t.Errorf("empty dataset should yield no buckets, got %d", len(series.Buckets))
	}

	grid := e.Aggregate(nil, chart.TypeHeatmap, chart.Selection{Dimension: "a", Dimension2: "b"})
	if len(grid.Cells) != 0 {
		t.Errorf("empty dataset should yield no cells, got %d", len(grid.Cells))
	}
}
