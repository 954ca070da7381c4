package recommend

import (
	"reflect"
	"testing"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

func catalogWith(defs ...field.Definition) *field.Catalog {
	return field.NewCatalog(defs)
}

func metric(name string) field.Definition {
	return field.Definition{Name: name, Role: field.RoleMetric, DataType: field.TypeNumber}
}

func categoryDim(name string) field.Definition {
	return field.Definition{Name: name, Role: field.RoleDimension, DataType: field.TypeCategory}
}

// dsWithCategories builds rows carrying the given labels under one field
func dsWithCategories(fieldName string, labels ...string) analysis.Dataset {
	key := field.NormalizeName(fieldName)
	ds := make(analysis.Dataset, 0, len(labels))
	for i, label := range labels {
		ds = append(ds, analysis.Datum{
			ID:     core.NoteID(string(rune('a' + i))),
			Values: map[string]note.Value{key: {Kind: note.KindText, Str: label}},
		})
	}
	return ds
}

func TestGenerateNeedsMetricAndDimension(t *testing.T) {
	g := NewGenerator()

	// catalog always carries the system date dimension, so no metric
	// means nothing to plot
	if got := g.Generate(catalogWith(categoryDim("category")), nil); got != nil {
		t.Errorf("no metric should yield nil, got %d candidates", len(got))
	}
}

func TestGenerateAtLeastOneWithPair(t *testing.T) {
	g := NewGenerator()
	got := g.Generate(catalogWith(metric("amount")), nil)
	if len(got) == 0 {
		t.Fatal("a dimension+metric pair must yield at least one candidate")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator()
	catalog := catalogWith(categoryDim("category"), metric("amount"), metric("duration"))
	ds := dsWithCategories("category", "work", "health", "play")

	a := g.Generate(catalog, ds)
	b := g.Generate(catalog, ds)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must yield identical candidates")
	}
}

func TestGenerateTrendRule(t *testing.T) {
	g := NewGenerator()
	got := g.Generate(catalogWith(metric("amount")), nil)

	found := false
	for _, c := range got {
		if c.ChartType == chart.TypeLine && c.RequiredDimensions[0] == field.DateFieldName {
			found = true
		}
	}
	if !found {
		t.Error("date dimension + metric should propose a line trend")
	}
}

func TestGeneratePieWindow(t *testing.T) {
	g := NewGenerator()
	catalog := catalogWith(categoryDim("category"), metric("amount"))

	hasPie := func(cs []chart.Candidate) bool {
		for _, c := range cs {
			if c.ChartType == chart.TypePie {
				return true
			}
		}
		return false
	}

	if hasPie(g.Generate(catalog, dsWithCategories("category", "only"))) {
		t.Error("one distinct value is below the pie window")
	}
	if !hasPie(g.Generate(catalog, dsWithCategories("category", "a", "b", "c"))) {
		t.Error("three distinct values should propose a pie")
	}
	many := dsWithCategories("category", "a", "b", "c", "d", "e", "f", "g", "h", "i")
	if hasPie(g.Generate(catalog, many)) {
		t.Error("nine distinct values is above the pie window")
	}
}

func TestGenerateCrossTabRule(t *testing.T) {
	g := NewGenerator()
	catalog := catalogWith(categoryDim("category"), categoryDim("tags"), metric("amount"))

	got := g.Generate(catalog, nil)
	found := false
	for _, c := range got {
		if c.ChartType == chart.TypeHeatmap && len(c.RequiredDimensions) == 2 {
			found = true
		}
	}
	if !found {
		t.Error("two category dimensions should propose a heatmap")
	}
}

func TestGenerateCapAndUniqueness(t *testing.T) {
	g := NewGenerator()
	catalog := catalogWith(
		categoryDim("category"), categoryDim("tags"), categoryDim("place"),
		metric("amount"), metric("duration"), metric("mood"), metric("energy"),
	)
	got := g.Generate(catalog, dsWithCategories("category", "a", "b", "c"))

	if len(got) > MaxCandidates {
		t.Errorf("candidate count %d exceeds cap %d", len(got), MaxCandidates)
	}
	seen := make(map[string]struct{})
	for _, c := range got {
		if _, dup := seen[c.ID]; dup {
			t.Errorf("duplicate candidate %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
}
