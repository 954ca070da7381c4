package field

import (
	"testing"

	"notelens/domain/core"
)

func TestNewCatalogPrependsSystemDate(t *testing.T) {
	c := NewCatalog([]Definition{
		{Name: "Mood Score", Role: RoleMetric, DataType: TypeNumber, Source: SourceNotebook},
	})

	fields := c.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != DateFieldName || fields[0].Source != SourceSystem {
		t.Errorf("first field should be the system date, got %+v", fields[0])
	}
}

func TestCatalogDeduplicatesByNormalizedName(t *testing.T) {
	c := NewCatalog([]Definition{
		{Name: "Mood Score", Role: RoleMetric, DataType: TypeNumber},
		{Name: "mood_score", Role: RoleDimension, DataType: TypeText},
	})

	def, ok := c.Lookup("MOOD  SCORE")
	if !ok {
		t.Fatal("normalized lookup should resolve")
	}
	if !def.IsMetric() {
		t.Error("first definition must win on duplicate names")
	}
	if c.Len() != 2 {
		t.Errorf("duplicate should be dropped, len = %d", c.Len())
	}
}

func TestCatalogAssignsFieldIDs(t *testing.T) {
	c := NewCatalog([]Definition{
		{Name: "Mood Score", Role: RoleMetric, DataType: TypeNumber},
		{ID: "f-7", Name: "amount", Role: RoleMetric, DataType: TypeNumber},
	})

	def, _ := c.Lookup("mood score")
	if def.ID != core.FieldID("mood_score") {
		t.Errorf("default ID should be the normalized name, got %q", def.ID)
	}
	def, _ = c.Lookup("amount")
	if def.ID != core.FieldID("f-7") {
		t.Errorf("explicit ID must be kept, got %q", def.ID)
	}
}

func TestCatalogAdopt(t *testing.T) {
	c := NewCatalog(nil)
	if !c.Adopt("sentiment", RoleDimension, TypeCategory) {
		t.Fatal("adopting a new field should succeed")
	}
	if c.Adopt("Sentiment", RoleMetric, TypeNumber) {
		t.Error("adopting an existing name must fail")
	}

	def, _ := c.Lookup("sentiment")
	if def.Source != SourceAIDerived {
		t.Errorf("adopted field source = %v", def.Source)
	}
}

func TestCatalogRemove(t *testing.T) {
	c := NewCatalog([]Definition{
		{Name: "tags", Role: RoleDimension, DataType: TypeCategory},
		{Name: "amount", Role: RoleMetric, DataType: TypeNumber},
	})

	if c.Remove(DateFieldName) {
		t.Error("system fields must not be removable")
	}
	if !c.Remove("tags") {
		t.Fatal("removing a template field should succeed")
	}
	if _, ok := c.Lookup("tags"); ok {
		t.Error("removed field still resolves")
	}
	// remaining lookups stay consistent after index compaction
	if def, ok := c.Lookup("amount"); !ok || def.Name != "amount" {
		t.Errorf("lookup after remove broken: %+v %v", def, ok)
	}
}

func TestCatalogRoleViews(t *testing.T) {
	c := NewCatalog([]Definition{
		{Name: "category", Role: RoleDimension, DataType: TypeCategory},
		{Name: "amount", Role: RoleMetric, DataType: TypeNumber},
		{Name: "duration", Role: RoleMetric, DataType: TypeNumber},
	})

	if got := len(c.Metrics()); got != 2 {
		t.Errorf("metrics = %d, want 2", got)
	}
	// date + category
	if got := len(c.Dimensions()); got != 2 {
		t.Errorf("dimensions = %d, want 2", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Mood Score", "mood_score"},
		{"  mood   score  ", "mood_score"},
		{"mood_score", "mood_score"},
		{"AMOUNT", "amount"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
