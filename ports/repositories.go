package ports

import (
	"context"

	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/domain/note"
)

// NotebookRepository persists notebooks and their field templates
type NotebookRepository interface {
	Create(ctx context.Context, nb *note.Notebook) error
	GetByID(ctx context.Context, id core.NotebookID) (*note.Notebook, error)
	List(ctx context.Context, limit, offset int) ([]*note.Notebook, error)
	Update(ctx context.Context, nb *note.Notebook) error
	Delete(ctx context.Context, id core.NotebookID) error
}

// NoteRepository persists notes
type NoteRepository interface {
	Create(ctx context.Context, n *note.Note) error
	GetByID(ctx context.Context, id core.NoteID) (*note.Note, error)
	// ListByNotebook returns notes filtered by notebook and optional
	// date range, ordered ascending by creation time.
	ListByNotebook(ctx context.Context, notebookID core.NotebookID, dateRange core.DateRange, limit, offset int) ([]*note.Note, error)
	GetByIDs(ctx context.Context, ids []core.NoteID) ([]*note.Note, error)
	Update(ctx context.Context, n *note.Note) error
	Delete(ctx context.Context, id core.NoteID) error
}

// ChartRepository persists the per-notebook chart instance state
type ChartRepository interface {
	Save(ctx context.Context, instance *chart.Instance) error
	GetByNotebook(ctx context.Context, notebookID core.NotebookID) (*chart.Instance, error)
	Delete(ctx context.Context, id core.ChartID) error
}
