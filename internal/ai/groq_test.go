package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletions serves a chat completions endpoint returning the given
// content and records the last request body.
func fakeCompletions(t *testing.T, content string) (*Client, *chatRequest) {
	t.Helper()
	var lastRequest chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastRequest))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})
	return client, &lastRequest
}

func TestGenerateSummary(t *testing.T) {
	client, lastRequest := fakeCompletions(t, "  a fine summary  ")

	summary, err := client.GenerateSummary(context.Background(), "Alice: hello\nBob: world")
	require.NoError(t, err)
	assert.Equal(t, "a fine summary", summary)

	assert.Equal(t, "test-model", lastRequest.Model)
	assert.Equal(t, 0.1, lastRequest.Temperature)
	require.Len(t, lastRequest.Messages, 1)
	assert.Contains(t, lastRequest.Messages[0].Content, "Alice: hello")
}

func TestExtractActionItemsStripsFences(t *testing.T) {
	client, _ := fakeCompletions(t, "```json\n[{\"title\": \"Ship it\", \"assignee\": \"Ada\", \"priority\": \"high\"}]\n```")

	items, err := client.ExtractActionItems(context.Background(), "a transcript long enough to analyze")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ship it", items[0].Title)
	assert.Equal(t, "Ada", items[0].Assignee)
	assert.Equal(t, "high", items[0].Priority)
}

func TestExtractActionItemsEmptyList(t *testing.T) {
	client, _ := fakeCompletions(t, "[]")

	items, err := client.ExtractActionItems(context.Background(), "a transcript long enough to analyze")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestExtractActionItemsShortTranscriptSkipsCall(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})

	items, err := client.ExtractActionItems(context.Background(), "hi")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestExtractActionItemsMalformedResponse(t *testing.T) {
	client, _ := fakeCompletions(t, "sorry, I cannot produce JSON today")

	_, err := client.ExtractActionItems(context.Background(), "a transcript long enough to analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed action item response")
}

func TestGenerateInsights(t *testing.T) {
	client, _ := fakeCompletions(t, `{"key_decisions": ["ship friday"], "risks_identified": [], "unanswered_questions": ["who reviews"], "recommendations": [], "follow_up_needed": true}`)

	insights, err := client.GenerateInsights(context.Background(), "a transcript")
	require.NoError(t, err)
	assert.Equal(t, []string{"ship friday"}, insights.KeyDecisions)
	assert.Equal(t, []string{"who reviews"}, insights.UnansweredQuestions)
	assert.True(t, insights.FollowUpNeeded)
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.GenerateSummary(context.Background(), "a transcript")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNon200Response(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.GenerateSummary(context.Background(), "a transcript")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.GenerateSummary(context.Background(), "a transcript")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
