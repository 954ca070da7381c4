package fieldstats

import (
	"math"
	"testing"

	"notelens/domain/analysis"
	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

func row(id string, values map[string]note.Value) analysis.Datum {
	return analysis.Datum{ID: core.NoteID(id), Values: values}
}

func text(s string) note.Value { return note.Value{Kind: note.KindText, Str: s} }
func num(f float64) note.Value { return note.Value{Kind: note.KindNumber, Num: f} }

func TestStatsEmptyDatasetIsFullyMissing(t *testing.T) {
	e := NewEngine()
	got := e.Stats(nil, "anything")
	if got.MissingRate != 1.0 {
		t.Errorf("empty dataset missing rate = %v, want 1", got.MissingRate)
	}
	if got.Cardinality != 0 || got.TopShare != 0 {
		t.Errorf("empty dataset stats = %+v", got)
	}
}

func TestStatsCountsMissingAndCardinality(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"category": text("work")}),
		row("2", map[string]note.Value{"category": text("work")}),
		row("3", map[string]note.Value{"category": text("health")}),
		row("4", nil),
	}

	got := e.Stats(ds, "category")
	if got.MissingRate != 0.25 {
		t.Errorf("missing rate = %v, want 0.25", got.MissingRate)
	}
	if got.Cardinality != 2 {
		t.Errorf("cardinality = %d, want 2", got.Cardinality)
	}
	if got.TopShare != 0.5 {
		t.Errorf("top share = %v, want 0.5", got.TopShare)
	}
}

func TestStatsNormalizesFieldName(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"mood_score": num(4)}),
	}
	got := e.Stats(ds, "Mood Score")
	if got.MissingRate != 0 {
		t.Errorf("display-name lookup failed, missing rate = %v", got.MissingRate)
	}
}

func TestStatsAllKeysByNormalizedName(t *testing.T) {
	e := NewEngine()
	catalog := field.NewCatalog([]field.Definition{
		{Name: "Mood Score", Role: field.RoleMetric, DataType: field.TypeNumber},
	})
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"mood_score": num(4)}),
	}

	all := e.StatsAll(ds, catalog)
	if _, ok := all["mood_score"]; !ok {
		t.Error("stats map should key by normalized name")
	}
	if _, ok := all[field.DateFieldName]; !ok {
		t.Error("system date field should be profiled too")
	}
}

func TestNumericProfile(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{
		row("1", map[string]note.Value{"amount": num(10)}),
		row("2", map[string]note.Value{"amount": num(20)}),
		row("3", map[string]note.Value{"amount": num(30)}),
		row("4", nil),
	}

	p := e.NumericProfile(ds, "amount")
	if p.Count != 3 {
		t.Errorf("count = %d, want 3 (missing rows skipped)", p.Count)
	}
	if p.Mean != 20 || p.Min != 10 || p.Max != 30 {
		t.Errorf("profile = %+v", p)
	}
	if math.IsNaN(p.StdDev) || p.StdDev <= 0 {
		t.Errorf("std dev = %v", p.StdDev)
	}
}

func TestNumericProfileAllMissing(t *testing.T) {
	e := NewEngine()
	ds := analysis.Dataset{row("1", nil)}
	if p := e.NumericProfile(ds, "amount"); p != (analysis.NumericProfile{}) {
		t.Errorf("all-missing field should return a zero profile, got %+v", p)
	}
}
