// Package openai provides a StrategyAdvisor backed by the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/freightmesh/advisor"
	"github.com/hupe1980/freightmesh/core"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI advisor. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Advisor wraps the OpenAI Chat Completions API behind core.StrategyAdvisor.
type Advisor struct {
	client *openai.Client
	opts   Options
}

var _ core.StrategyAdvisor = (*Advisor)(nil)

// NewAdvisor creates a new OpenAI advisor using the official client.
func NewAdvisor(optFns ...func(o *Options)) *Advisor {
	client := openai.NewClient()
	return NewAdvisorFromClient(&client, optFns...)
}

// NewAdvisorFromClient creates a new OpenAI advisor from an existing client.
func NewAdvisorFromClient(client *openai.Client, optFns ...func(o *Options)) *Advisor {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Advisor{client: client, opts: opts}
}

// Draft implements core.StrategyAdvisor.
func (a *Advisor) Draft(ctx context.Context, dc core.DraftContext) (*core.Draft, error) {
	params := openai.ChatCompletionNewParams{
		Model:               a.opts.Model,
		Temperature:         openai.Float(a.opts.Temperature),
		MaxCompletionTokens: openai.Int(a.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(advisor.SystemPrompt),
			openai.UserMessage(advisor.BuildPrompt(dc)),
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai api error: %v", core.ErrAdvisorUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", core.ErrAdvisorUnavailable)
	}

	draft, err := advisor.ParseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAdvisorUnavailable, err)
	}
	return draft, nil
}
