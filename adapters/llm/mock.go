package llm

import (
	"context"

	"notelens/ports"
)

// MockCollaborator is a canned collaborator for tests and offline
// development. Zero values return a minimal bar-chart plan.
type MockCollaborator struct {
	RecommendResponse *ports.RecommendResponse
	RecommendErr      error
	DeriveResponse    *ports.DeriveResponse
	DeriveErr         error
	RerankResponse    *ports.RerankResponse
	RerankErr         error

	// Calls counts invocations per operation
	Calls map[string]int
}

// NewMockCollaborator creates a mock with call counting enabled
func NewMockCollaborator() *MockCollaborator {
	return &MockCollaborator{Calls: make(map[string]int)}
}

func (m *MockCollaborator) record(op string) {
	if m.Calls != nil {
		m.Calls[op]++
	}
}

func (m *MockCollaborator) Recommend(ctx context.Context, req ports.RecommendRequest) (*ports.RecommendResponse, error) {
	m.record("recommend")
	if m.RecommendErr != nil {
		return nil, m.RecommendErr
	}
	if m.RecommendResponse != nil {
		return m.RecommendResponse, nil
	}
	resp := &ports.RecommendResponse{ChartType: "bar"}
	for _, def := range req.Fields {
		if def.IsMetric() {
			resp.FieldPlan.MetricCandidates = append(resp.FieldPlan.MetricCandidates, def.Name)
		} else if !def.IsDate() {
			resp.FieldPlan.DimensionCandidates = append(resp.FieldPlan.DimensionCandidates, def.Name)
		} else {
			resp.FieldPlan.TimeFieldCandidates = append(resp.FieldPlan.TimeFieldCandidates, def.Name)
		}
	}
	return resp, nil
}

func (m *MockCollaborator) DeriveFields(ctx context.Context, req ports.DeriveRequest) (*ports.DeriveResponse, error) {
	m.record("derive_fields")
	if m.DeriveErr != nil {
		return nil, m.DeriveErr
	}
	if m.DeriveResponse != nil {
		return m.DeriveResponse, nil
	}
	return &ports.DeriveResponse{}, nil
}

func (m *MockCollaborator) Rerank(ctx context.Context, req ports.RerankRequest) (*ports.RerankResponse, error) {
	m.record("rerank")
	if m.RerankErr != nil {
		return nil, m.RerankErr
	}
	if m.RerankResponse != nil {
		return m.RerankResponse, nil
	}
	resp := &ports.RerankResponse{}
	if len(req.CandidateFields.Time) > 0 {
		resp.SelectedFields.Time = req.CandidateFields.Time[0]
	}
	if len(req.CandidateFields.Dimension) > 0 {
		resp.SelectedFields.Dimension = req.CandidateFields.Dimension[0]
	}
	if len(req.CandidateFields.Metric) > 0 {
		resp.SelectedFields.Metric = req.CandidateFields.Metric[0]
	}
	return resp, nil
}
