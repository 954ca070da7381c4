package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/internal/errors"
	"notelens/ports"
)

// ChartRepositoryImpl implements ChartRepository for PostgreSQL. One
// chart instance per notebook; saves upsert on the notebook key.
type ChartRepositoryImpl struct {
	db *sqlx.DB
}

// NewChartRepository creates a new PostgreSQL chart repository
func NewChartRepository(db *sqlx.DB) ports.ChartRepository {
	return &ChartRepositoryImpl{db: db}
}

// axisBindings is the persisted JSONB shape of the four axis slots
type axisBindings struct {
	Time       chart.AxisBinding `json:"time"`
	Dimension  chart.AxisBinding `json:"dimension"`
	Dimension2 chart.AxisBinding `json:"dimension2"`
	Metric     chart.AxisBinding `json:"metric"`
}

type chartRow struct {
	ID         string    `db:"id"`
	NotebookID string    `db:"notebook_id"`
	ChartType  string    `db:"chart_type"`
	Reason     string    `db:"reason"`
	Bindings   []byte    `db:"bindings"`
	RunKey     string    `db:"run_key"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Save upserts the notebook's chart instance
func (r *ChartRepositoryImpl) Save(ctx context.Context, instance *chart.Instance) error {
	bindings, err := json.Marshal(axisBindings{
		Time:       instance.Time,
		Dimension:  instance.Dimension,
		Dimension2: instance.Dimension2,
		Metric:     instance.Metric,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode chart bindings")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chart_instances (id, notebook_id, chart_type, reason, bindings, run_key, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (notebook_id) DO UPDATE SET
			chart_type = EXCLUDED.chart_type,
			reason = EXCLUDED.reason,
			bindings = EXCLUDED.bindings,
			run_key = EXCLUDED.run_key,
			updated_at = NOW()`,
		instance.ID.String(), instance.NotebookID.String(), string(instance.ChartType),
		instance.Reason, bindings, instance.RunKey.String())
	if err != nil {
		return errors.Wrap(err, "failed to save chart instance")
	}
	return nil
}

// GetByNotebook fetches the notebook's chart instance
func (r *ChartRepositoryImpl) GetByNotebook(ctx context.Context, notebookID core.NotebookID) (*chart.Instance, error) {
	var row chartRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, notebook_id, chart_type, reason, bindings, run_key, updated_at
		FROM chart_instances WHERE notebook_id = $1`, notebookID.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("chart instance")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chart instance")
	}

	instance := &chart.Instance{
		ID:         core.ChartID(row.ID),
		NotebookID: core.NotebookID(row.NotebookID),
		ChartType:  chart.ParseType(row.ChartType),
		Reason:     row.Reason,
		RunKey:     core.RunKey(row.RunKey),
		UpdatedAt:  row.UpdatedAt,
	}
	if len(row.Bindings) > 0 {
		var bindings axisBindings
		if err := json.Unmarshal(row.Bindings, &bindings); err != nil {
			return nil, errors.Wrap(err, "failed to decode chart bindings")
		}
		instance.Time = bindings.Time
		instance.Dimension = bindings.Dimension
		instance.Dimension2 = bindings.Dimension2
		instance.Metric = bindings.Metric
	}
	return instance, nil
}

// Delete removes a chart instance
func (r *ChartRepositoryImpl) Delete(ctx context.Context, id core.ChartID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chart_instances WHERE id = $1`, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete chart instance")
	}
	return nil
}
