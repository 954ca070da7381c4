// Package dataset materializes analysis rows from raw notes. Each note
// becomes one Datum with every catalog field resolved to a canonical
// value; missing metrics are omitted from the row rather than zeroed.
package dataset

import (
	"sort"
	"time"

	"notelens/domain/analysis"
	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

// Builder turns notes plus a field catalog into an analysis dataset.
// Building is deterministic: identical inputs produce identical rows in
// identical order.
type Builder struct {
	// clock supplies the fallback date for notes missing both
	// timestamps; injectable so builds stay reproducible in tests.
	clock func() time.Time
}

// NewBuilder creates a dataset builder
func NewBuilder() *Builder {
	return &Builder{clock: time.Now}
}

// NewBuilderWithClock creates a builder with a fixed clock for tests
func NewBuilderWithClock(clock func() time.Time) *Builder {
	return &Builder{clock: clock}
}

// Build materializes one row per note, ordered ascending by the derived
// date. Ties keep the incoming note order so rebuilds are idempotent.
func (b *Builder) Build(notes []*note.Note, catalog *field.Catalog) analysis.Dataset {
	rows := make(analysis.Dataset, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, b.buildRow(n, catalog))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

func (b *Builder) buildRow(n *note.Note, catalog *field.Catalog) analysis.Datum {
	row := analysis.Datum{
		ID:     n.ID,
		Date:   b.deriveDate(n),
		Values: make(map[string]note.Value),
	}

	for _, def := range catalog.Fields() {
		key := field.NormalizeName(def.Name)
		if def.Name == field.DateFieldName && def.Source == field.SourceSystem {
			row.Values[key] = note.Value{Kind: note.KindText, Str: row.Date.Format("2006-01-02")}
			continue
		}

		raw, ok := probeRaw(n.Fields, def)
		if !ok {
			continue
		}
		value := note.Decode(raw)

		if def.IsMetric() {
			// Metrics only enter the row when they normalize to a
			// number; a failed parse omits the field, not zero.
			num, numOK := value.AsMetric()
			if !numOK {
				continue
			}
			row.Values[key] = note.Value{Kind: note.KindNumber, Num: num}
			continue
		}
		if !value.IsMissing() {
			row.Values[key] = value
		}
	}
	return row
}

// probeRaw locates a field's raw value in the note payload. Probe
// order: stable field id, display name, then name variants with
// whitespace stripped or underscored. First non-nil hit wins.
func probeRaw(fields map[string]interface{}, def field.Definition) (interface{}, bool) {
	if fields == nil {
		return nil, false
	}
	for _, key := range probeKeys(def) {
		if raw, ok := fields[key]; ok && raw != nil {
			return raw, true
		}
	}
	return nil, false
}

func probeKeys(def field.Definition) []string {
	keys := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	push := func(k string) {
		if k == "" {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	push(def.ID.String())
	push(def.Name)
	push(stripSpaces(def.Name))
	push(field.NormalizeName(def.Name))
	return keys
}

func stripSpaces(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != ' ' && r != '\t' {
			out = append(out, r)
		}
	}
	return string(out)
}

// deriveDate picks the row date: created_at, then updated_at, then the
// build clock.
func (b *Builder) deriveDate(n *note.Note) time.Time {
	if !n.CreatedAt.IsZero() {
		return n.CreatedAt
	}
	if !n.UpdatedAt.IsZero() {
		return n.UpdatedAt
	}
	return b.clock()
}

// Backfill merges AI-derived field values into an already-built
// dataset, keyed by note ID. Only rows present in the dataset are
// touched; existing values are never overwritten.
func Backfill(rows analysis.Dataset, catalog *field.Catalog, fieldValues map[string]map[core.NoteID]interface{}) analysis.Dataset {
	for fieldName, perNote := range fieldValues {
		def, ok := catalog.Lookup(fieldName)
		if !ok {
			continue
		}
		key := field.NormalizeName(def.Name)
		for i := range rows {
			if _, exists := rows[i].Values[key]; exists {
				continue
			}
			raw, ok := perNote[rows[i].ID]
			if !ok || raw == nil {
				continue
			}
			value := note.Decode(raw)
			if def.IsMetric() {
				num, numOK := value.AsMetric()
				if !numOK {
					continue
				}
				value = note.Value{Kind: note.KindNumber, Num: num}
			}
			if !value.IsMissing() {
				rows[i].Values[key] = value
			}
		}
	}
	return rows
}
