package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
)

// LLM is the model transport: text in, text out. It may fail or time out;
// callers route any failure through the response parser as an empty response,
// so the pipeline has exactly one malformed-input recovery path.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const defaultModel = "gemini-2.5-flash"

// GeminiClient calls the Google Generative Language REST API.
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		APIKey:     apiKey,
		Model:      defaultModel,
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
		RetryDelay: 4 * time.Second,
		httpClient: &http.Client{},
	}
}

// Request/response shapes for models/{model}:generateContent.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends one prompt and returns the model's text. Quota errors (429)
// are retried a few times with the identical payload; the request content is
// never varied between attempts.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Info("API quota limit reached, retrying (%d/%d)", attempt, c.MaxRetries-1)
			select {
			case <-time.After(c.RetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, status, err := c.post(ctx, url, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Only quota exhaustion is worth resending; everything else is
		// surfaced immediately.
		if status != http.StatusTooManyRequests {
			return "", err
		}
	}

	return "", lastErr
}

func (c *GeminiClient) post(ctx context.Context, url string, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("parse response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", resp.StatusCode, fmt.Errorf("no response candidates returned")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// MockLLM returns canned responses for tests.
type MockLLM struct {
	Response string
	Err      error
	Prompts  []string // every prompt received, in order
}

func (m *MockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
