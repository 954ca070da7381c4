package pipeline

import (
	"context"

	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/internal/errors"
)

// RebindRequest switches the selected field of one or more axes inside
// the persisted candidate pools. Empty fields leave an axis untouched.
type RebindRequest struct {
	NotebookID core.NotebookID `json:"notebook_id"`
	Time       string          `json:"time,omitempty"`
	Dimension  string          `json:"dimension,omitempty"`
	Metric     string          `json:"metric,omitempty"`
	DateRange  core.DateRange  `json:"date_range,omitempty"`
}

// Rebind re-gates and re-aggregates the notebook's chart after a
// manual axis switch. No collaborator is called: the pools were
// already vetted, only the pick inside them changes.
func (s *Service) Rebind(ctx context.Context, req RebindRequest) (*Result, error) {
	if s.charts == nil {
		return nil, errors.New(errors.CodeInternalError, "chart persistence not configured")
	}
	instance, err := s.charts.GetByNotebook(ctx, req.NotebookID)
	if err != nil {
		return nil, err
	}

	if req.Time != "" && !instance.Time.Select(req.Time) {
		return nil, errors.InvalidInput("time field is not in the candidate pool")
	}
	if req.Dimension != "" && !instance.Dimension.Select(req.Dimension) {
		return nil, errors.InvalidInput("dimension field is not in the candidate pool")
	}
	if req.Metric != "" && req.Metric != chart.CountMetric && !instance.Metric.Select(req.Metric) {
		return nil, errors.InvalidInput("metric field is not in the candidate pool")
	}
	if req.Metric == chart.CountMetric {
		instance.Metric.Selected = chart.CountMetric
	}

	nb, err := s.notebooks.GetByID(ctx, req.NotebookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load notebook")
	}
	notes, err := s.notes.ListByNotebook(ctx, req.NotebookID, req.DateRange, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load notes for rebind")
	}

	catalog := nb.Catalog()
	ds := s.builder.Build(notes, catalog)
	sel := instance.Selection()

	verdict := s.gate.Evaluate(instance.ChartType, ds, sel, s.gates)
	if verdict.CountFallback {
		sel.Metric = chart.CountMetric
	}
	series := s.aggregator.Aggregate(ds, verdict.ChartType, sel)

	instance.ChartType = verdict.ChartType
	instance.Reason = verdict.Reason
	if err := s.charts.Save(ctx, instance); err != nil {
		s.logger.Warn("failed to persist rebound chart instance: %v", err)
	}

	return &Result{
		ChartType:  verdict.ChartType,
		Reason:     verdict.Reason,
		Selection:  sel,
		Series:     series,
		RowCount:   ds.Len(),
		Verdict:    verdict,
		FieldStats: s.stats.StatsAll(ds, catalog),
	}, nil
}
