// Package llm asks an OpenAI-compatible model for study advice on a report.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/whatif/internal/llm/prompts"
	"github.com/pavelanni/whatif/internal/model"
)

// ErrNothingToAdvise is returned for reports with no scored subject.
var ErrNothingToAdvise = errors.New("no scored subjects to advise on")

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
	style prompts.Style
}

// New creates a new LLM client. An unknown style falls back to brief.
func New(baseURL, apiKey, modelName, style string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	s := prompts.StyleBrief
	if prompts.IsValidStyle(style) {
		s = prompts.Style(style)
	} else if style != "" {
		slog.Warn("unknown advice style, using brief", "style", style)
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		style: s,
	}
}

// Advise returns a short study plan for the report. Narrative paragraphs are
// passed as background notes when present.
func (c *Client) Advise(ctx context.Context, report model.CandidateReport, narrative []string) (string, error) {
	data := prompts.NewAdviceData(report, narrative)
	if len(data.Subjects) == 0 {
		return "", ErrNothingToAdvise
	}

	prompt, err := prompts.Build(c.style, data)
	if err != nil {
		return "", fmt.Errorf("build advice prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: "Write the study plan."},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	advice := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM advice", "candidate", report.Candidate, "chars", len(advice))
	return advice, nil
}
