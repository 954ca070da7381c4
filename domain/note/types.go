package note

import (
	"time"

	"notelens/domain/core"
	"notelens/domain/field"
)

// Note is one user note: markdown body plus a free-form field payload.
// Fields is raw decoded JSON keyed by field id or display name; the
// dataset builder resolves the indirection.
type Note struct {
	ID         core.NoteID            `json:"id"`
	NotebookID core.NotebookID        `json:"notebook_id"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NewNote creates a note with fresh timestamps
func NewNote(notebookID core.NotebookID, title string) *Note {
	now := time.Now()
	return &Note{
		ID:         core.NoteID(core.NewID()),
		NotebookID: notebookID,
		Title:      title,
		Fields:     make(map[string]interface{}),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Notebook groups notes and carries the field template that seeds the
// analysis field catalog.
type Notebook struct {
	ID               core.NotebookID    `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Color            string             `json:"color"` // hex color for bubble navigation
	TemplateFields   []field.Definition `json:"template_fields,omitempty"`
	PromptTemplateID string             `json:"prompt_template_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewNotebook creates a notebook with default values
func NewNotebook(name string) *Notebook {
	now := time.Now()
	return &Notebook{
		ID:        core.NotebookID(core.NewID()),
		Name:      name,
		Color:     "#3B82F6",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Catalog builds the field catalog for this notebook's analysis runs
func (n *Notebook) Catalog() *field.Catalog {
	return field.NewCatalog(n.TemplateFields)
}
