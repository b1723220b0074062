// Package gemini provides a StrategyAdvisor backed by the Google Gemini
// API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/hupe1980/freightmesh/advisor"
	"github.com/hupe1980/freightmesh/core"
	"google.golang.org/api/option"
)

// Options configures the Gemini advisor.
type Options struct {
	Model  string
	APIKey string
}

// Advisor wraps a Gemini generative model behind core.StrategyAdvisor.
type Advisor struct {
	model *genai.GenerativeModel
}

var _ core.StrategyAdvisor = (*Advisor)(nil)

// NewAdvisor creates a new Gemini advisor. The model is pinned to JSON
// responses so drafts parse without fence stripping.
func NewAdvisor(ctx context.Context, optFns ...func(o *Options)) (*Advisor, error) {
	opts := Options{Model: "gemini-2.0-flash-001"}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.ClientOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(advisor.SystemPrompt)}}

	return &Advisor{model: model}, nil
}

// Draft implements core.StrategyAdvisor.
func (a *Advisor) Draft(ctx context.Context, dc core.DraftContext) (*core.Draft, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(advisor.BuildPrompt(dc)))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini api error: %v", core.ErrAdvisorUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from gemini", core.ErrAdvisorUnavailable)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response part type", core.ErrAdvisorUnavailable)
	}

	draft, err := advisor.ParseDraft(string(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAdvisorUnavailable, err)
	}
	return draft, nil
}
