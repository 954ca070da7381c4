package chart

import (
	"time"

	"notelens/domain/core"
)

// MaxAxisCandidates caps the per-axis candidate pool a chart instance
// keeps for the user to switch between.
const MaxAxisCandidates = 5

// AxisBinding pairs a candidate pool with the field currently selected
// from it. Pool order is the recommendation order.
type AxisBinding struct {
	Candidates []string `json:"candidates,omitempty"`
	Selected   string   `json:"selected,omitempty"`
}

// NewAxisBinding builds a binding with the pool clamped to
// MaxAxisCandidates and the selection defaulting to the given field.
func NewAxisBinding(candidates []string, selected string) AxisBinding {
	if len(candidates) > MaxAxisCandidates {
		candidates = candidates[:MaxAxisCandidates]
	}
	return AxisBinding{Candidates: candidates, Selected: selected}
}

// Select switches the binding to a field already in the pool. Fields
// outside the pool are rejected.
func (b *AxisBinding) Select(fieldName string) bool {
	for _, candidate := range b.Candidates {
		if candidate == fieldName {
			b.Selected = fieldName
			return true
		}
	}
	return false
}

// Instance is a materialized, user-editable chart binding persisted
// per notebook: the gated chart type plus one axis binding per slot.
type Instance struct {
	ID         core.ChartID    `json:"id"`
	NotebookID core.NotebookID `json:"notebook_id"`
	ChartType  Type            `json:"chart_type"`
	Reason     string          `json:"reason,omitempty"`
	Time       AxisBinding     `json:"time"`
	Dimension  AxisBinding     `json:"dimension"`
	Dimension2 AxisBinding     `json:"dimension2"`
	Metric     AxisBinding     `json:"metric"`
	RunKey     core.RunKey     `json:"run_key,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewInstance creates an instance for a notebook
func NewInstance(notebookID core.NotebookID, chartType Type) *Instance {
	return &Instance{
		ID:         core.ChartID(core.NewID()),
		NotebookID: notebookID,
		ChartType:  chartType,
		UpdatedAt:  time.Now(),
	}
}

// Selection flattens the current axis selections
func (i *Instance) Selection() Selection {
	return Selection{
		Time:       i.Time.Selected,
		Dimension:  i.Dimension.Selected,
		Dimension2: i.Dimension2.Selected,
		Metric:     i.Metric.Selected,
	}
}
