// Package pipeline orchestrates one full analysis pass: load notes,
// build the dataset, call the recommend/derive/rerank collaborators,
// gate the selection and aggregate the render series. Runs are
// fingerprinted by a run key; the single most recent completed run is
// memoized and stale collaborator responses are discarded by key.
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"notelens/domain/analysis"
	"notelens/domain/chart"
	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
	"notelens/internal"
	"notelens/internal/dataset"
	"notelens/internal/errors"
	"notelens/internal/fieldstats"
	"notelens/internal/gate"
	"notelens/internal/recommend"
	"notelens/internal/selector"
	"notelens/ports"
)

// RunRequest identifies the inputs of one analysis pass. Empty NoteIDs
// selects every note in the notebook within the date range.
type RunRequest struct {
	NotebookID core.NotebookID `json:"notebook_id"`
	NoteIDs    []core.NoteID   `json:"note_ids,omitempty"`
	DateRange  core.DateRange  `json:"date_range,omitempty"`
}

// Result is the completed output of a run: the gated chart, the field
// selection with its candidate pools, and the render-ready series.
type Result struct {
	RunKey       core.RunKey                    `json:"run_key"`
	ChartType    chart.Type                     `json:"chart_type"`
	Reason       string                         `json:"reason,omitempty"`
	CoreQuestion string                         `json:"core_question,omitempty"`
	Selection    chart.Selection                `json:"selection"`
	Pools        ports.CandidateFields          `json:"pools"`
	Candidates   []chart.Candidate              `json:"candidates,omitempty"`
	FieldStats   map[string]analysis.FieldStats `json:"field_stats,omitempty"`
	Series       chart.RenderSeries             `json:"series"`
	RowCount     int                            `json:"row_count"`
	Verdict      chart.Verdict                  `json:"verdict"`
}

// Status is the observable state of the pipeline
type Status struct {
	RunKey core.RunKey `json:"run_key,omitempty"`
	Stage  Stage       `json:"stage"`
	Error  string      `json:"error,omitempty"`
	Result *Result     `json:"result,omitempty"`
}

// runState tracks the in-flight run. Only the goroutine that created
// the state advances its stage; readers go through the service mutex.
type runState struct {
	key   core.RunKey
	stage Stage
	err   string
}

// runMemo is the single-slot cache of the last completed run. There is
// no eviction policy because only the most recent key is retained.
type runMemo struct {
	key    core.RunKey
	result *Result
}

// Service owns the pipeline. One service instance serves all notebooks;
// concurrent runs are capped and the latest run always wins.
type Service struct {
	notebooks ports.NotebookRepository
	notes     ports.NoteRepository
	charts    ports.ChartRepository

	recommender ports.Recommender
	deriver     ports.FieldDeriver

	builder    *dataset.Builder
	stats      *fieldstats.Engine
	generator  *recommend.Generator
	selector   *selector.Selector
	gate       *gate.Evaluator
	aggregator interface {
		Aggregate(ds analysis.Dataset, chartType chart.Type, sel chart.Selection) chart.RenderSeries
	}

	gates      chart.GateConfig
	logger     *internal.Logger
	observer   StageObserver
	sampleSize int

	// runSem caps concurrent analysis passes so a burst of UI-triggered
	// selections cannot pile up collaborator calls
	runSem *semaphore.Weighted

	mu      sync.Mutex
	current *runState
	memo    runMemo
}

// Deps bundles the service's collaborators and engines
type Deps struct {
	Notebooks   ports.NotebookRepository
	Notes       ports.NoteRepository
	Charts      ports.ChartRepository
	Recommender ports.Recommender
	Deriver     ports.FieldDeriver
	Selector    *selector.Selector
	Aggregator  interface {
		Aggregate(ds analysis.Dataset, chartType chart.Type, sel chart.Selection) chart.RenderSeries
	}
	Gates         chart.GateConfig
	Logger        *internal.Logger
	Observer      StageObserver
	MaxConcurrent int64

	// NotesSampleSize bounds how many notes ride along on the recommend
	// call; zero means the default.
	NotesSampleSize int
}

// NewService wires a pipeline service
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	if deps.MaxConcurrent <= 0 {
		deps.MaxConcurrent = 2
	}
	if deps.NotesSampleSize <= 0 {
		deps.NotesSampleSize = defaultNotesSample
	}
	return &Service{
		notebooks:   deps.Notebooks,
		notes:       deps.Notes,
		charts:      deps.Charts,
		recommender: deps.Recommender,
		deriver:     deps.Deriver,
		builder:     dataset.NewBuilder(),
		stats:       fieldstats.NewEngine(),
		generator:   recommend.NewGenerator(),
		selector:    deps.Selector,
		gate:        gate.NewEvaluator(),
		aggregator:  deps.Aggregator,
		gates:       deps.Gates,
		logger:      deps.Logger,
		observer:    deps.Observer,
		sampleSize:  deps.NotesSampleSize,
		runSem:      semaphore.NewWeighted(deps.MaxConcurrent),
	}
}

// Status reports the current stage and the last completed result
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{Stage: StageIdle}
	if s.current != nil {
		status.RunKey = s.current.key
		status.Stage = s.current.stage
		status.Error = s.current.err
	}
	if s.memo.result != nil {
		status.Result = s.memo.result
	}
	return status
}

// LastResult returns the memoized result of the most recent completed
// run, or nil when none has completed.
func (s *Service) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memo.result
}

// Run executes one analysis pass. A request whose run key matches the
// last completed run short-circuits to the memoized result without
// touching the collaborators. A recommend failure is fatal: the stage
// goes to error, the memoized result stays untouched and the error is
// returned verbatim. Derive and rerank failures degrade gracefully.
func (s *Service) Run(ctx context.Context, req RunRequest) (*Result, error) {
	nb, err := s.notebooks.GetByID(ctx, req.NotebookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load notebook")
	}

	key := core.ComputeRunKey(nb.ID, req.NoteIDs, req.DateRange, nb.PromptTemplateID)

	s.mu.Lock()
	if s.memo.key == key && s.memo.result != nil {
		result := s.memo.result
		s.mu.Unlock()
		s.logger.Debug("run %s unchanged, returning memoized result", key)
		return result, nil
	}
	// A new run supersedes whatever is in flight; in-flight collaborator
	// calls are not cancelled, their responses are discarded by key.
	run := &runState{key: key, stage: StageIdle}
	s.current = run
	s.mu.Unlock()

	if err := s.runSem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "analysis run cancelled while queued")
	}
	defer s.runSem.Release(1)

	result, err := s.execute(ctx, run, nb, req)
	if err != nil {
		s.fail(run, err)
		return nil, err
	}

	// The currency re-check and the memo write share the lock: a newer
	// run may have completed between the last resume point and here,
	// and its result must not be overwritten by this one.
	s.mu.Lock()
	if result == nil || s.current != run {
		s.mu.Unlock()
		return nil, errors.New(errors.CodeSuperseded, "analysis run superseded by a newer selection")
	}
	s.memo = runMemo{key: key, result: result}
	s.mu.Unlock()

	s.persistInstance(ctx, nb.ID, result)
	return result, nil
}

// execute walks the stages in order. It returns (nil, nil) when a
// newer run superseded this one at a resume point; the stale result is
// dropped without touching shared state.
func (s *Service) execute(ctx context.Context, run *runState, nb *note.Notebook, req RunRequest) (*Result, error) {
	if err := s.advanceTo(run, StageLoading); err != nil {
		return nil, err
	}

	notes, err := s.loadNotes(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load notes for analysis")
	}

	catalog := nb.Catalog()
	ds := s.builder.Build(notes, catalog)
	fieldStats := s.stats.StatsAll(ds, catalog)
	candidates := s.generator.Generate(catalog, ds)

	if err := s.advanceTo(run, StageRecommending); err != nil {
		return nil, err
	}
	resp, err := s.recommender.Recommend(ctx, ports.RecommendRequest{
		Fields:          catalog.Fields(),
		NotesSample:     sample(notes, s.sampleSize),
		PolicyOverrides: s.policyOverrides(),
	})
	if err != nil {
		// fatal: the run cannot proceed without an initial plan
		return nil, errors.ExternalServiceError("recommend", err)
	}
	if !s.isCurrent(run) {
		return nil, nil
	}

	chartType := chart.ParseType(resp.ChartType)
	plan := resp.FieldPlan
	adoptSelected(&plan)

	if len(plan.MissingFields) > 0 && s.deriver != nil {
		if err := s.advanceTo(run, StageDerivingFields); err != nil {
			return nil, err
		}
		derived, derr := s.deriver.DeriveFields(ctx, ports.DeriveRequest{
			MissingFields:   plan.MissingFields,
			Notes:           notes,
			PolicyOverrides: s.policyOverrides(),
		})
		if !s.isCurrent(run) {
			return nil, nil
		}
		if derr != nil {
			// degrade: proceed with the fields we already have
			s.logger.Warn("derive-fields failed, continuing without backfill: %v", derr)
		} else {
			s.adoptDerived(catalog, derived)
			ds = dataset.Backfill(ds, catalog, derived.FieldValues)
			fieldStats = s.stats.StatsAll(ds, catalog)
		}
	}

	pools := s.selector.Filter(plan, catalog, fieldStats, s.gates)
	if selector.Ambiguous(pools) {
		if err := s.advanceTo(run, StageReranking); err != nil {
			return nil, err
		}
	}
	selected := s.selector.Select(ctx, chartType, plan, pools, fieldStats)
	if !s.isCurrent(run) {
		return nil, nil
	}

	// A heatmap needs a second dimension; borrow the next surviving
	// dimension candidate when the collaborators never named one.
	if chartType == chart.TypeHeatmap && selected.Selection.Dimension2 == "" && len(pools.Dimension) > 1 {
		selected.Selection.Dimension2 = pools.Dimension[1]
	}

	verdict := s.gate.Evaluate(chartType, ds, selected.Selection, s.gates)
	finalSel := selected.Selection
	if verdict.CountFallback {
		finalSel.Metric = chart.CountMetric
	}
	series := s.aggregator.Aggregate(ds, verdict.ChartType, finalSel)

	if err := s.advanceTo(run, StageReady); err != nil {
		return nil, err
	}

	return &Result{
		RunKey:       run.key,
		ChartType:    verdict.ChartType,
		Reason:       verdict.Reason,
		CoreQuestion: resp.CoreQuestion,
		Selection:    finalSel,
		Pools:        pools,
		Candidates:   candidates,
		FieldStats:   fieldStats,
		Series:       series,
		RowCount:     ds.Len(),
		Verdict:      verdict,
	}, nil
}

// defaultNotesSample is the recommend-call note bound when the
// deployment does not configure one
const defaultNotesSample = 20

func sample(notes []*note.Note, n int) []*note.Note {
	if len(notes) <= n {
		return notes
	}
	return notes[:n]
}

func (s *Service) loadNotes(ctx context.Context, req RunRequest) ([]*note.Note, error) {
	if len(req.NoteIDs) > 0 {
		return s.notes.GetByIDs(ctx, req.NoteIDs)
	}
	return s.notes.ListByNotebook(ctx, req.NotebookID, req.DateRange, 0, 0)
}

func (s *Service) policyOverrides() ports.PolicyOverrides {
	return ports.PolicyOverrides{
		PieTopN:             s.gates.PieTopN,
		LineMinPoints:       s.gates.LineMinPoints,
		HeatmapMinDensity:   s.gates.HeatmapMinDensity,
		FieldMaxMissingRate: s.gates.FieldMaxMissingRate,
		BarMaxCategories:    s.gates.BarMaxCategories,
	}
}

// adoptSelected folds the collaborator's own pick into the candidate
// pools so the selector can vouch for it. Appended, never prepended:
// pool order is the recommendation's ranking.
func adoptSelected(plan *ports.FieldPlan) {
	if sel := plan.Selected.Time; sel != "" && !containsString(plan.TimeFieldCandidates, sel) {
		plan.TimeFieldCandidates = append(plan.TimeFieldCandidates, sel)
	}
	if sel := plan.Selected.Dimension; sel != "" && !containsString(plan.DimensionCandidates, sel) {
		plan.DimensionCandidates = append(plan.DimensionCandidates, sel)
	}
	if sel := plan.Selected.Metric; sel != "" && sel != chart.CountMetric && !containsString(plan.MetricCandidates, sel) {
		plan.MetricCandidates = append(plan.MetricCandidates, sel)
	}
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// adoptDerived registers derived fields in the catalog. A field whose
// every derived value decodes as a number becomes a metric; anything
// else becomes a category dimension.
func (s *Service) adoptDerived(catalog *field.Catalog, derived *ports.DeriveResponse) {
	for name, perNote := range derived.FieldValues {
		if _, exists := catalog.Lookup(name); exists {
			continue
		}
		numeric := len(perNote) > 0
		for _, raw := range perNote {
			if _, ok := note.Decode(raw).AsMetric(); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			catalog.Adopt(name, field.RoleMetric, field.TypeNumber)
		} else {
			catalog.Adopt(name, field.RoleDimension, field.TypeCategory)
		}
	}
}

// persistInstance saves the chart binding for the notebook. Best
// effort; a storage failure never fails a completed run.
func (s *Service) persistInstance(ctx context.Context, notebookID core.NotebookID, result *Result) {
	if s.charts == nil {
		return
	}
	instance := chart.NewInstance(notebookID, result.ChartType)
	instance.Reason = result.Reason
	instance.RunKey = result.RunKey
	instance.Time = chart.NewAxisBinding(result.Pools.Time, result.Selection.Time)
	instance.Dimension = chart.NewAxisBinding(result.Pools.Dimension, result.Selection.Dimension)
	instance.Dimension2 = chart.NewAxisBinding(nil, result.Selection.Dimension2)
	instance.Metric = chart.NewAxisBinding(result.Pools.Metric, result.Selection.Metric)
	if err := s.charts.Save(ctx, instance); err != nil {
		s.logger.Warn("failed to persist chart instance: %v", err)
	}
}

// advanceTo moves the run's stage under the service lock, skipping the
// move when the run has been superseded.
func (s *Service) advanceTo(run *runState, to Stage) error {
	s.mu.Lock()
	if s.current != run {
		s.mu.Unlock()
		return nil
	}
	err := run.advance(to)
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "pipeline stage machine")
	}
	s.notify(run, "")
	return nil
}

// isCurrent reports whether run is still the latest. Checked after
// every collaborator call so a stale response never advances state.
func (s *Service) isCurrent(run *runState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == run
}

// fail moves the run to the error stage and surfaces the message
// verbatim. The memoized last-good result is left untouched.
func (s *Service) fail(run *runState, err error) {
	s.mu.Lock()
	if s.current == run {
		run.stage = StageError
		run.err = err.Error()
	}
	s.mu.Unlock()
	s.notify(run, err.Error())
}

func (s *Service) notify(run *runState, errMessage string) {
	if s.observer == nil {
		return
	}
	s.observer(run.key.String(), run.stage, errMessage)
}
