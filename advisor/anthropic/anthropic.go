// Package anthropic provides a StrategyAdvisor backed by the Anthropic
// Claude API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/freightmesh/advisor"
	"github.com/hupe1980/freightmesh/core"
)

// Options configures the Anthropic advisor (model id, temperature, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Advisor wraps the Anthropic Messages API behind core.StrategyAdvisor.
type Advisor struct {
	client *anthropic.Client
	opts   Options
}

var _ core.StrategyAdvisor = (*Advisor)(nil)

// NewAdvisor creates a new Anthropic advisor using the official client.
func NewAdvisor(optFns ...func(o *Options)) *Advisor {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Advisor{client: &client, opts: opts}
}

// Draft implements core.StrategyAdvisor.
func (a *Advisor) Draft(ctx context.Context, dc core.DraftContext) (*core.Draft, error) {
	params := anthropic.MessageNewParams{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: advisor.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(advisor.BuildPrompt(dc))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic api error: %v", core.ErrAdvisorUnavailable, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty completion", core.ErrAdvisorUnavailable)
	}

	draft, err := advisor.ParseDraft(text.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAdvisorUnavailable, err)
	}
	return draft, nil
}
