package analysis

import (
	"time"

	"notelens/domain/core"
	"notelens/domain/note"
)

// Datum is one dataset row: a single note flattened into canonical
// field values. Values is keyed by normalized field name.
type Datum struct {
	ID     core.NoteID           `json:"id"`
	Date   time.Time             `json:"date"`
	Values map[string]note.Value `json:"-"`
}

// Value returns the canonical value for a field, Missing when absent
func (d Datum) Value(fieldName string) note.Value {
	v, ok := d.Values[fieldName]
	if !ok {
		return note.Missing
	}
	return v
}

// Dataset is the materialized rows for one analysis run, ordered
// ascending by derived date.
type Dataset []Datum

// Len returns the row count
func (ds Dataset) Len() int {
	return len(ds)
}

// DistinctCount counts distinct non-missing labels for a field
func (ds Dataset) DistinctCount(fieldName string) int {
	seen := make(map[string]struct{})
	for _, row := range ds {
		if label, ok := row.Value(fieldName).AsLabel(); ok {
			seen[label] = struct{}{}
		}
	}
	return len(seen)
}

// FieldStats summarizes one field against the current dataset. Not
// persisted; recomputed whenever the dataset or field selection
// changes.
type FieldStats struct {
	MissingRate float64 `json:"missing_rate"` // [0,1]
	Cardinality int     `json:"cardinality"`  // distinct non-missing values
	TopShare    float64 `json:"top_share"`    // [0,1] share of the most common value
}

// NumericProfile carries descriptive statistics for metric fields;
// informational only, gates never read it.
type NumericProfile struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}
