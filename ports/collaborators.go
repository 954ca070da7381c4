package ports

import (
	"context"

	"notelens/domain/analysis"
	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

// PolicyOverrides carries the gate thresholds and named field
// preference hints through to the collaborators. Passed through
// unchanged; this engine enforces the thresholds itself.
type PolicyOverrides struct {
	PieTopN             int               `json:"pie_top_n,omitempty"`
	LineMinPoints       int               `json:"line_min_points,omitempty"`
	HeatmapMinDensity   float64           `json:"heatmap_min_density,omitempty"`
	FieldMaxMissingRate float64           `json:"field_max_missing_rate,omitempty"`
	BarMaxCategories    int               `json:"bar_max_categories,omitempty"`
	FieldPreferences    map[string]string `json:"field_preferences,omitempty"`
}

// FixedVocabularies constrains the categorical values a collaborator
// may emit, keyed by field name (e.g. a closed label set for "mood
// source"). Structural pass-through only.
type FixedVocabularies map[string][]string

// SelectedFields is a collaborator's one-field-per-axis pick
type SelectedFields struct {
	Time            string `json:"time,omitempty"`
	Dimension       string `json:"dimension,omitempty"`
	Dimension2      string `json:"dimension2,omitempty"`
	Metric          string `json:"metric,omitempty"`
	Aggregation     string `json:"aggregation,omitempty"`
	TimeGranularity string `json:"time_granularity,omitempty"`
}

// FieldPlan is the recommend collaborator's proposed field layout:
// ranked candidate pools per axis plus its own initial selection.
type FieldPlan struct {
	TimeFieldCandidates []string       `json:"time_field_candidates,omitempty"`
	DimensionCandidates []string       `json:"dimension_candidates,omitempty"`
	MetricCandidates    []string       `json:"metric_candidates,omitempty"`
	Selected            SelectedFields `json:"selected"`
	MissingFields       []string       `json:"missing_fields,omitempty"`
	Aggregation         string         `json:"aggregation,omitempty"`
	TimeGranularity     string         `json:"time_granularity,omitempty"`
}

// RecommendRequest is the initial recommendation call input
type RecommendRequest struct {
	Fields            []field.Definition `json:"fields"`
	NotesSample       []*note.Note       `json:"notes_sample,omitempty"`
	SemanticProfile   string             `json:"semantic_profile,omitempty"`
	PolicyOverrides   PolicyOverrides    `json:"policy_overrides"`
	FixedVocabularies FixedVocabularies  `json:"fixed_vocabularies,omitempty"`
}

// RecommendResponse is the collaborator's chart proposal. ChartType is
// free-form here; callers normalize via chart.ParseType.
type RecommendResponse struct {
	ChartType    string    `json:"chart_type"`
	CoreQuestion string    `json:"core_question,omitempty"`
	FieldPlan    FieldPlan `json:"field_plan"`
}

// DeriveRequest asks the collaborator to backfill missing field values
// from note bodies.
type DeriveRequest struct {
	MissingFields     []string          `json:"missing_fields"`
	Notes             []*note.Note      `json:"notes"`
	PolicyOverrides   PolicyOverrides   `json:"policy_overrides"`
	FixedVocabularies FixedVocabularies `json:"fixed_vocabularies,omitempty"`
}

// DeriveResponse maps fieldName -> noteID -> derived value
type DeriveResponse struct {
	FieldValues map[string]map[core.NoteID]interface{} `json:"field_values"`
}

// CandidateFields is the per-axis pool handed to the reranker
type CandidateFields struct {
	Time      []string `json:"time,omitempty"`
	Dimension []string `json:"dimension,omitempty"`
	Metric    []string `json:"metric,omitempty"`
}

// RerankRequest asks the collaborator to break a selection tie
type RerankRequest struct {
	ChartType         string                         `json:"chart_type"`
	CandidateFields   CandidateFields                `json:"candidate_fields"`
	FieldStats        map[string]analysis.FieldStats `json:"field_stats"`
	SemanticProfile   string                         `json:"semantic_profile,omitempty"`
	PolicyOverrides   PolicyOverrides                `json:"policy_overrides"`
	FixedVocabularies FixedVocabularies              `json:"fixed_vocabularies,omitempty"`
}

// RerankResponse is the reranker's single pick per axis
type RerankResponse struct {
	SelectedFields SelectedFields `json:"selected_fields"`
}

// Recommender proposes an initial chart and field plan. A failure here
// is fatal to the analysis run.
type Recommender interface {
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error)
}

// FieldDeriver backfills field values the notes don't carry. Failures
// degrade: the run proceeds without the derived values.
type FieldDeriver interface {
	DeriveFields(ctx context.Context, req DeriveRequest) (*DeriveResponse, error)
}

// Reranker resolves high-ambiguity field selections. Best effort: on
// failure the selector falls back to its deterministic pick.
type Reranker interface {
	Rerank(ctx context.Context, req RerankRequest) (*RerankResponse, error)
}
