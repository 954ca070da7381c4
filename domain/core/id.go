package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	NotebookID ID
	NoteID     ID
	FieldID    ID
	ChartID    ID
)

// String conversions for domain IDs
func (id NotebookID) String() string { return ID(id).String() }
func (id NoteID) String() string     { return ID(id).String() }
func (id FieldID) String() string    { return ID(id).String() }
func (id ChartID) String() string    { return ID(id).String() }

// ParseNotebookID parses a string into NotebookID
func ParseNotebookID(s string) (NotebookID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("notebook ID cannot be empty")
	}
	return NotebookID(s), nil
}

// ParseNoteID parses a string into NoteID
func ParseNoteID(s string) (NoteID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("note ID cannot be empty")
	}
	return NoteID(s), nil
}

// ParseChartID parses a string into ChartID
func ParseChartID(s string) (ChartID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("chart ID cannot be empty")
	}
	return ChartID(s), nil
}
