package dataset

import (
	"testing"
	"time"

	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

func testCatalog() *field.Catalog {
	return field.NewCatalog([]field.Definition{
		{Name: "Mood Score", Role: field.RoleMetric, DataType: field.TypeNumber},
		{Name: "category", Role: field.RoleDimension, DataType: field.TypeCategory},
	})
}

func testNote(id string, created time.Time, fields map[string]interface{}) *note.Note {
	return &note.Note{
		ID:        core.NoteID(id),
		Title:     "note " + id,
		Fields:    fields,
		CreatedAt: created,
	}
}

func TestBuildSortsByDateAscending(t *testing.T) {
	b := NewBuilder()
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }

	ds := b.Build([]*note.Note{
		testNote("n-3", day(3), nil),
		testNote("n-1", day(1), nil),
		testNote("n-2", day(2), nil),
	}, testCatalog())

	if ds.Len() != 3 {
		t.Fatalf("rows = %d", ds.Len())
	}
	for i, want := range []string{"n-1", "n-2", "n-3"} {
		if string(ds[i].ID) != want {
			t.Errorf("row %d = %s, want %s", i, ds[i].ID, want)
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b := NewBuilder()
	notes := []*note.Note{
		testNote("n-1", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), map[string]interface{}{"mood_score": 4.0}),
		testNote("n-2", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), map[string]interface{}{"category": "work"}),
	}
	catalog := testCatalog()

	first := b.Build(notes, catalog)
	second := b.Build(notes, catalog)
	if first.Len() != second.Len() {
		t.Fatal("rebuild changed row count")
	}
	for i := range first {
		if first[i].ID != second[i].ID || len(first[i].Values) != len(second[i].Values) {
			t.Errorf("row %d differs between builds", i)
		}
	}
}

func TestBuildWritesSystemDateField(t *testing.T) {
	b := NewBuilder()
	created := time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC)
	ds := b.Build([]*note.Note{testNote("n-1", created, nil)}, testCatalog())

	label, ok := ds[0].Value(field.DateFieldName).AsLabel()
	if !ok || label != "2025-04-15" {
		t.Errorf("system date = %q %v, want 2025-04-15", label, ok)
	}
}

func TestBuildDateFallback(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	b := NewBuilderWithClock(func() time.Time { return fixed })

	updated := &note.Note{ID: "n-1", UpdatedAt: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)}
	bare := &note.Note{ID: "n-2"}
	ds := b.Build([]*note.Note{updated, bare}, testCatalog())

	for _, row := range ds {
		switch row.ID {
		case "n-1":
			if !row.Date.Equal(updated.UpdatedAt) {
				t.Errorf("missing created_at should fall back to updated_at, got %v", row.Date)
			}
		case "n-2":
			if !row.Date.Equal(fixed) {
				t.Errorf("missing timestamps should fall back to the clock, got %v", row.Date)
			}
		}
	}
}

func TestBuildProbesNameVariants(t *testing.T) {
	b := NewBuilder()
	catalog := testCatalog()

	variants := []map[string]interface{}{
		{"Mood Score": 3.0},
		{"MoodScore": 3.0},
		{"mood_score": 3.0},
	}
	for _, fields := range variants {
		ds := b.Build([]*note.Note{testNote("n-1", time.Now(), fields)}, catalog)
		if _, ok := ds[0].Value("mood_score").AsMetric(); !ok {
			t.Errorf("variant %v did not resolve", fields)
		}
	}
}

func TestBuildOmitsUnparseableMetrics(t *testing.T) {
	b := NewBuilder()
	ds := b.Build([]*note.Note{
		testNote("n-1", time.Now(), map[string]interface{}{"mood_score": "great"}),
	}, testCatalog())

	if !ds[0].Value("mood_score").IsMissing() {
		t.Error("a metric that fails to parse must be omitted, not zeroed")
	}
}

func TestBuildUnwrapsObjectValues(t *testing.T) {
	b := NewBuilder()
	ds := b.Build([]*note.Note{
		testNote("n-1", time.Now(), map[string]interface{}{
			"category": map[string]interface{}{"value": "health"},
		}),
	}, testCatalog())

	label, ok := ds[0].Value("category").AsLabel()
	if !ok || label != "health" {
		t.Errorf("object value did not unwrap, got %q %v", label, ok)
	}
}

func TestBackfillNeverOverwrites(t *testing.T) {
	b := NewBuilder()
	catalog := testCatalog()
	ds := b.Build([]*note.Note{
		testNote("n-1", time.Now(), map[string]interface{}{"mood_score": 4.0}),
		testNote("n-2", time.Now(), nil),
	}, catalog)

	ds = Backfill(ds, catalog, map[string]map[core.NoteID]interface{}{
		"mood_score": {"n-1": 9.0, "n-2": 2.0},
	})

	for _, row := range ds {
		num, _ := row.Value("mood_score").AsMetric()
		switch row.ID {
		case "n-1":
			if num != 4.0 {
				t.Errorf("existing value was overwritten: %v", num)
			}
		case "n-2":
			if num != 2.0 {
				t.Errorf("missing value was not backfilled: %v", num)
			}
		}
	}
}

func TestBackfillSkipsUnknownFields(t *testing.T) {
	b := NewBuilder()
	catalog := testCatalog()
	ds := b.Build([]*note.Note{testNote("n-1", time.Now(), nil)}, catalog)

	ds = Backfill(ds, catalog, map[string]map[core.NoteID]interface{}{
		"nonexistent": {"n-1": "x"},
	})
	if !ds[0].Value("nonexistent").IsMissing() {
		t.Error("fields outside the catalog must not be backfilled")
	}
}
