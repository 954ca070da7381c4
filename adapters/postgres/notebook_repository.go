// Package postgres implements the repository ports on PostgreSQL via
// sqlx. Field templates and note field payloads are stored as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
	"notelens/internal/errors"
	"notelens/ports"
)

// NotebookRepositoryImpl implements NotebookRepository for PostgreSQL
type NotebookRepositoryImpl struct {
	db *sqlx.DB
}

// NewNotebookRepository creates a new PostgreSQL notebook repository
func NewNotebookRepository(db *sqlx.DB) ports.NotebookRepository {
	return &NotebookRepositoryImpl{db: db}
}

type notebookRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	Color            string    `db:"color"`
	TemplateFields   []byte    `db:"template_fields"`
	PromptTemplateID string    `db:"prompt_template_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r notebookRow) toDomain() (*note.Notebook, error) {
	nb := &note.Notebook{
		ID:               core.NotebookID(r.ID),
		Name:             r.Name,
		Description:      r.Description,
		Color:            r.Color,
		PromptTemplateID: r.PromptTemplateID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if len(r.TemplateFields) > 0 {
		if err := json.Unmarshal(r.TemplateFields, &nb.TemplateFields); err != nil {
			return nil, errors.Wrap(err, "failed to decode notebook template fields")
		}
	}
	return nb, nil
}

func encodeTemplate(fields []field.Definition) ([]byte, error) {
	if fields == nil {
		fields = []field.Definition{}
	}
	return json.Marshal(fields)
}

// Create inserts a notebook
func (r *NotebookRepositoryImpl) Create(ctx context.Context, nb *note.Notebook) error {
	template, err := encodeTemplate(nb.TemplateFields)
	if err != nil {
		return errors.Wrap(err, "failed to encode template fields")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notebooks (id, name, description, color, template_fields, prompt_template_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		nb.ID.String(), nb.Name, nb.Description, nb.Color, template, nb.PromptTemplateID, nb.CreatedAt, nb.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to create notebook")
	}
	return nil
}

// GetByID fetches one notebook
func (r *NotebookRepositoryImpl) GetByID(ctx context.Context, id core.NotebookID) (*note.Notebook, error) {
	var row notebookRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, description, color, template_fields, prompt_template_id, created_at, updated_at
		FROM notebooks WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("notebook")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notebook")
	}
	return row.toDomain()
}

// List returns notebooks ordered by creation time descending
func (r *NotebookRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*note.Notebook, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []notebookRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, color, template_fields, prompt_template_id, created_at, updated_at
		FROM notebooks ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notebooks")
	}
	out := make([]*note.Notebook, 0, len(rows))
	for _, row := range rows {
		nb, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, nil
}

// Update persists notebook changes
func (r *NotebookRepositoryImpl) Update(ctx context.Context, nb *note.Notebook) error {
	template, err := encodeTemplate(nb.TemplateFields)
	if err != nil {
		return errors.Wrap(err, "failed to encode template fields")
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE notebooks
		SET name = $2, description = $3, color = $4, template_fields = $5, prompt_template_id = $6, updated_at = NOW()
		WHERE id = $1`,
		nb.ID.String(), nb.Name, nb.Description, nb.Color, template, nb.PromptTemplateID)
	if err != nil {
		return errors.Wrap(err, "failed to update notebook")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NotFound("notebook")
	}
	return nil
}

// Delete removes a notebook and cascades to its notes
func (r *NotebookRepositoryImpl) Delete(ctx context.Context, id core.NotebookID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notebooks WHERE id = $1`, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete notebook")
	}
	return nil
}
