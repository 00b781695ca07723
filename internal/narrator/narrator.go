// Package narrator turns category scores into a short coaching note using
// an OpenAI-compatible chat completion endpoint.
package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
)

// ErrNoAPIKey is returned when the narrator is used without credentials.
var ErrNoAPIKey = errors.New("narrator API key is not configured")

// Config holds configuration for the narrator.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Narrator writes encouraging summaries of category scores.
type Narrator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New creates a narrator. Empty fields fall back to the defaults.
func New(cfg Config) (*Narrator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultNarratorBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = constants.DefaultNarratorModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.NarratorTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = baseURL

	return &Narrator{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}, nil
}

// Narrate asks the model for a short paragraph about scores. Scores are
// sent as JSON in the same shape the CLI prints with --json.
func (n *Narrator) Narrate(ctx context.Context, scores []models.CategoryScore) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	payload, err := json.Marshal(scores)
	if err != nil {
		return "", fmt.Errorf("encode scores: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       n.model,
		MaxTokens:   constants.NarratorMaxTokens,
		Temperature: constants.NarratorTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Category scores:\n" + string(payload),
			},
		},
	}

	start := time.Now()
	resp, err := n.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		logger.Error("narration failed", "model", n.model, "error", err, "latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("narrator request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from narrator")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("narrator returned no text")
	}

	logger.Debug("narration complete",
		"model", n.model,
		"latency_ms", latency.Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens)

	return text, nil
}

const systemPrompt = `You are a warm, practical habit coach. You receive a JSON array of life-area
scores. Each entry has a category, a completion_rate from 0 to 100, and whether the area has any
habits at all.

Write one short paragraph (at most four sentences) for the user:
- Start with the area that needs the most attention. If an area has no habits, suggest starting one small habit there.
- Name one area that is going well, if any.
- End with a single concrete next step for this week.
Do not list every number back. Do not use headings or bullet points.`
