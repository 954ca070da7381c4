package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notelens/internal/errors"
	"notelens/ports"
)

const (
	recommendSystem = "You are a chart recommendation assistant for a note analytics product. " +
		"Given field definitions and sample notes, propose one chart and a field plan. " +
		"Respond with a single JSON object matching the requested schema."
	deriveSystem = "You extract structured field values from free-text notes. " +
		"Only emit values from the fixed vocabularies when one is given for a field. " +
		"Respond with a single JSON object mapping field names to per-note values."
	rerankSystem = "You rank candidate fields for chart axes using the supplied statistics. " +
		"Pick exactly one field per axis. Respond with a single JSON object."
)

// Collaborator implements the recommend, derive-fields and rerank
// contracts over a ChatClient. Each call serializes its request as the
// prompt payload and parses the typed JSON reply.
type Collaborator struct {
	client ChatClient
}

// NewCollaborator creates the collaborator adapter
func NewCollaborator(client ChatClient) *Collaborator {
	return &Collaborator{client: client}
}

// Recommend proposes the initial chart and field plan
func (c *Collaborator) Recommend(ctx context.Context, req ports.RecommendRequest) (*ports.RecommendResponse, error) {
	var resp ports.RecommendResponse
	if err := c.call(ctx, recommendSystem, "recommend", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeriveFields backfills missing field values from note bodies
func (c *Collaborator) DeriveFields(ctx context.Context, req ports.DeriveRequest) (*ports.DeriveResponse, error) {
	var resp ports.DeriveResponse
	if err := c.call(ctx, deriveSystem, "derive_fields", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Rerank resolves a high-ambiguity field selection
func (c *Collaborator) Rerank(ctx context.Context, req ports.RerankRequest) (*ports.RerankResponse, error) {
	var resp ports.RerankResponse
	if err := c.call(ctx, rerankSystem, "rerank", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Collaborator) call(ctx context.Context, system, operation string, req, out interface{}) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "marshal %s request", operation)
	}

	prompt := fmt.Sprintf("Operation: %s\nInput:\n%s", operation, string(payload))
	content, err := c.client.ChatCompletion(ctx, system, prompt)
	if err != nil {
		return errors.ExternalServiceError(operation, err)
	}

	body := extractJSON(content)
	if body == "" {
		return errors.ExternalServiceError(operation, fmt.Errorf("no JSON object in response"))
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return errors.ExternalServiceError(operation, fmt.Errorf("malformed JSON response: %w", err))
	}
	return nil
}

// extractJSON pulls the outermost JSON object out of a completion that
// may wrap it in prose or a code fence.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
