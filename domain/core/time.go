package core

import (
	"time"
)

// DateRange bounds a note selection. Zero values mean unbounded.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the range (inclusive bounds).
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// IsZero checks if both bounds are unset
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// String renders the range for run-key fingerprinting
func (r DateRange) String() string {
	from, to := "", ""
	if !r.From.IsZero() {
		from = r.From.Format(time.RFC3339)
	}
	if !r.To.IsZero() {
		to = r.To.Format(time.RFC3339)
	}
	return from + ".." + to
}
