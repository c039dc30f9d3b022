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

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
)

// ErrNoAPIKey is returned when the assistant is called without credentials.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// Assistant summarizes boards and answers questions through the Claude
// Messages API. It implements board.Summarizer.
type Assistant struct {
	apiKey    string
	model     string
	maxTokens int
	apiURL    string
	client    *http.Client
	log       logrus.FieldLogger
}

// New creates an assistant from the AI section of the configuration.
func New(apiKey string, cfg model.AIConfig, log logrus.FieldLogger) *Assistant {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Assistant{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		apiURL:    apiURL,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Summarize implements board.Summarizer.
func (a *Assistant) Summarize(ctx context.Context, snap board.Snapshot) (string, error) {
	return a.complete(ctx, summaryPrompt(snap))
}

// Answer implements board.Summarizer.
func (a *Assistant) Answer(ctx context.Context, snap board.Snapshot, question string) (string, error) {
	return a.complete(ctx, questionPrompt(snap, question))
}

// complete sends a single-turn prompt and returns the concatenated text
// blocks of the reply.
func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", ErrNoAPIKey
	}

	start := time.Now()
	resp, err := a.callAPI(ctx, []apiMessage{{
		Role:    "user",
		Content: []apiContentBlock{{Type: "text", Text: prompt}},
	}})
	if err != nil {
		return "", err
	}

	var textParts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(textParts, ""))
	if text == "" {
		return "", fmt.Errorf("empty response (stop_reason=%s)", resp.StopReason)
	}

	a.log.WithFields(logrus.Fields{
		"model":       resp.Model,
		"stop_reason": resp.StopReason,
		"elapsed":     time.Since(start).String(),
	}).Debug("assistant response")
	return text, nil
}

// callAPI makes a single request to the Claude Messages API.
func (a *Assistant) callAPI(ctx context.Context, messages []apiMessage) (*apiResponse, error) {
	reqBody := apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
