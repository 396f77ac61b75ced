// Package assistant answers natural-language questions about the lead
// store by sending a formatted data summary to an LLM provider.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/llm"
	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Defaults for the completion request.
const (
	DefaultModel       = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.1
)

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

const systemPrompt = `You are an AI assistant helping a winery general manager analyze their wedding venue CRM data.

You have access to comprehensive CRM data including lead stages, statuses, dates, and conversion metrics.

When answering questions:
1. Be specific and data-driven
2. Calculate percentages and rates when relevant
3. Provide context about what the numbers mean for the business
4. Suggest actionable insights when appropriate
5. If you need to make assumptions, state them clearly

Focus on practical business insights that would help a winery general manager make decisions.`

// Assistant sends questions with the current data summary to a provider.
type Assistant struct {
	provider    llm.Provider
	schema      *model.Schema
	model       string
	maxTokens   int
	temperature float64
	budget      Budget
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithModel overrides the model name.
func WithModel(name string) Option {
	return func(a *Assistant) {
		if name != "" {
			a.model = name
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int) Option {
	return func(a *Assistant) { a.maxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Assistant) { a.temperature = t }
}

// WithBudget overrides the context budget.
func WithBudget(b Budget) Option {
	return func(a *Assistant) { a.budget = b }
}

// New creates an Assistant backed by provider.
func New(provider llm.Provider, schema *model.Schema, opts ...Option) *Assistant {
	a := &Assistant{
		provider:    provider,
		schema:      schema,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		budget:      Budget{MaxRows: DefaultMaxRows},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the model name requests are sent to.
func (a *Assistant) Model() string {
	return a.model
}

// Ask answers question against snap.
func (a *Assistant) Ask(ctx context.Context, question string, snap *client.Snapshot) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	temperature := a.temperature
	resp, err := a.provider.Complete(ctx, llm.Request{
		Model:       a.model,
		System:      systemPrompt,
		Messages:    []llm.Message{llm.UserMessage(a.Prompt(question, snap))},
		MaxTokens:   a.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to analyze data: %w", err)
	}
	return resp.Text(), nil
}

// Prompt returns the user message sent for question.
func (a *Assistant) Prompt(question string, snap *client.Snapshot) string {
	return FormatContext(snap, a.schema, a.budget) + "\n\nUser Question: " + question
}
