package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"notelens/domain/core"
	"notelens/domain/note"
	"notelens/internal/errors"
	"notelens/ports"
)

// NoteRepositoryImpl implements NoteRepository for PostgreSQL
type NoteRepositoryImpl struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new PostgreSQL note repository
func NewNoteRepository(db *sqlx.DB) ports.NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

type noteRow struct {
	ID         string    `db:"id"`
	NotebookID string    `db:"notebook_id"`
	Title      string    `db:"title"`
	Body       string    `db:"body"`
	Fields     []byte    `db:"fields"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r noteRow) toDomain() (*note.Note, error) {
	n := &note.Note{
		ID:         core.NoteID(r.ID),
		NotebookID: core.NotebookID(r.NotebookID),
		Title:      r.Title,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &n.Fields); err != nil {
			return nil, errors.Wrap(err, "failed to decode note fields")
		}
	}
	return n, nil
}

func encodeFields(fields map[string]interface{}) ([]byte, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return json.Marshal(fields)
}

// Create inserts a note
func (r *NoteRepositoryImpl) Create(ctx context.Context, n *note.Note) error {
	fields, err := encodeFields(n.Fields)
	if err != nil {
		return errors.Wrap(err, "failed to encode note fields")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notes (id, notebook_id, title, body, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID.String(), n.NotebookID.String(), n.Title, n.Body, fields, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to create note")
	}
	return nil
}

// GetByID fetches one note
func (r *NoteRepositoryImpl) GetByID(ctx context.Context, id core.NoteID) (*note.Note, error) {
	var row noteRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, notebook_id, title, body, fields, created_at, updated_at
		FROM notes WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("note")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get note")
	}
	return row.toDomain()
}

// ListByNotebook returns a notebook's notes inside the date range,
// ordered ascending by creation time. limit <= 0 means no limit.
func (r *NoteRepositoryImpl) ListByNotebook(ctx context.Context, notebookID core.NotebookID, dateRange core.DateRange, limit, offset int) ([]*note.Note, error) {
	query := `
		SELECT id, notebook_id, title, body, fields, created_at, updated_at
		FROM notes
		WHERE notebook_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at ASC`
	args := []interface{}{notebookID.String(), nullableTime(dateRange.From), nullableTime(dateRange.To)}
	if limit > 0 {
		query += ` LIMIT $4 OFFSET $5`
		args = append(args, limit, offset)
	}

	var rows []noteRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list notes")
	}
	return rowsToDomain(rows)
}

// GetByIDs fetches a note selection, ordered ascending by creation time
func (r *NoteRepositoryImpl) GetByIDs(ctx context.Context, ids []core.NoteID) ([]*note.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	var rows []noteRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, notebook_id, title, body, fields, created_at, updated_at
		FROM notes WHERE id = ANY($1) ORDER BY created_at ASC`, pq.Array(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notes by ids")
	}
	return rowsToDomain(rows)
}

// Update persists note changes
func (r *NoteRepositoryImpl) Update(ctx context.Context, n *note.Note) error {
	fields, err := encodeFields(n.Fields)
	if err != nil {
		return errors.Wrap(err, "failed to encode note fields")
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE notes SET title = $2, body = $3, fields = $4, updated_at = NOW()
		WHERE id = $1`,
		n.ID.String(), n.Title, n.Body, fields)
	if err != nil {
		return errors.Wrap(err, "failed to update note")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NotFound("note")
	}
	return nil
}

// Delete removes a note
func (r *NoteRepositoryImpl) Delete(ctx context.Context, id core.NoteID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete note")
	}
	return nil
}

func rowsToDomain(rows []noteRow) ([]*note.Note, error) {
	out := make([]*note.Note, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
