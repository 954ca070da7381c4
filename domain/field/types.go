package field

import (
	"notelens/domain/core"
)

// Role classifies how a field participates in a chart
type Role string

const (
	RoleDimension Role = "dimension"
	RoleMetric    Role = "metric"
)

// DataType describes the value domain of a field
type DataType string

const (
	TypeDate     DataType = "date"
	TypeNumber   DataType = "number"
	TypeText     DataType = "text"
	TypeCategory DataType = "category"
)

// Source records where a field definition came from
type Source string

const (
	SourceNotebook  Source = "notebook"   // authored in the notebook template
	SourceSystem    Source = "system"     // derived by this engine (e.g. the date axis)
	SourceAIDerived Source = "ai-derived" // backfilled by the derive-fields collaborator
	SourceCustom    Source = "custom"     // added ad hoc by the user
)

// Definition describes a single analyzable field. Name is the join key
// used everywhere downstream; two definitions must never share a name.
type Definition struct {
	ID       core.FieldID `json:"id"`
	Name     string       `json:"name"`
	Role     Role         `json:"role"`
	DataType DataType     `json:"data_type"`
	Source   Source       `json:"source"`
}

// IsMetric reports whether the field plots as a value
func (d Definition) IsMetric() bool {
	return d.Role == RoleMetric
}

// IsDimension reports whether the field groups rows along an axis
func (d Definition) IsDimension() bool {
	return d.Role == RoleDimension
}

// IsDate reports whether the field carries a time axis
func (d Definition) IsDate() bool {
	return d.DataType == TypeDate
}
