// Package ai provides the summarization service client: a Groq-hosted,
// OpenAI-compatible chat completions API that turns accumulated transcript
// text into summaries, action items, and structured insights.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meetsync/backend/internal/model"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.1-8b-instant"
)

// ErrNotConfigured is returned when no API key is set. Callers treat it like
// any other analysis failure and degrade.
var ErrNotConfigured = errors.New("summarization service not configured")

// Config holds configuration for the summarization client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the chat completions API. It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates a summarization client. Zero-valued fields of cfg fall
// back to defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateSummary produces a structured prose summary of the transcript.
func (c *Client) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(`Please provide a comprehensive summary of this meeting transcript:

Transcript:
%s

Please structure your summary to include:
1. Main topics discussed
2. Key decisions made
3. Important outcomes or next steps

Summary:`, transcript)

	return c.complete(ctx, prompt, 2048)
}

// ExtractActionItems extracts follow-up tasks from the transcript. Malformed
// model output is reported as an error, never returned as garbage.
func (c *Client) ExtractActionItems(ctx context.Context, transcript string) ([]model.ActionItem, error) {
	if len(strings.TrimSpace(transcript)) < 10 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Extract action items from this meeting transcript. Return ONLY valid JSON array, no markdown, no extra text.

Transcript:
%s

JSON format:
[
  {"title": "Task title", "description": "Details", "assignee": "Person", "due_date": "Date", "priority": "high/medium/low"}
]`, transcript)

	content, err := c.complete(ctx, prompt, 1024)
	if err != nil {
		return nil, err
	}

	content = stripFences(content)
	if content == "" || content == "[]" {
		return nil, nil
	}

	var items []model.ActionItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("malformed action item response: %w", err)
	}
	return items, nil
}

// GenerateInsights produces the structured end-of-meeting analysis.
func (c *Client) GenerateInsights(ctx context.Context, transcript string) (model.Insights, error) {
	prompt := fmt.Sprintf(`Provide comprehensive insights for this meeting transcript:

Transcript:
%s

Return a JSON object with:
- key_decisions: array of key decisions made
- risks_identified: array of risks or concerns raised
- unanswered_questions: array of open questions
- recommendations: array of recommendations or suggestions
- follow_up_needed: boolean indicating if follow-up meeting is needed`, transcript)

	content, err := c.complete(ctx, prompt, 2048)
	if err != nil {
		return model.Insights{}, err
	}

	var insights model.Insights
	if err := json.Unmarshal([]byte(stripFences(content)), &insights); err != nil {
		return model.Insights{}, fmt.Errorf("malformed insights response: %w", err)
	}
	return insights, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one user prompt and returns the first choice's content.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion request returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// stripFences removes markdown code fences some models wrap JSON output in.
func stripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
