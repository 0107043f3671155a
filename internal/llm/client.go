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
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Completer sends one chat request to a named endpoint and returns the first choice's text.
type Completer interface {
	Complete(ctx context.Context, endpoint string, req ChatRequest) (string, error)
}

// HTTPClient talks to an OpenAI-compatible serving host where each endpoint name maps to
// a path, e.g. /serving-endpoints/<name>/invocations.
type HTTPClient struct {
	BaseURL      string
	APIKey       string
	PathTemplate string
	HTTP         *http.Client

	// MaxResponseBytes caps the body read from an endpoint; 0 means DefaultMaxResponseBytes.
	MaxResponseBytes int64
}

const DefaultMaxResponseBytes = 10 << 20

func NewHTTPClient(baseURL, apiKey, pathTemplate string) *HTTPClient {
	if pathTemplate == "" {
		pathTemplate = "/serving-endpoints/%s/invocations"
	}
	return &HTTPClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		PathTemplate: pathTemplate,
		// per-call deadlines come from the context; this only guards stuck connections
		HTTP: &http.Client{Timeout: 10 * time.Minute},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *HTTPClient) Complete(ctx context.Context, endpoint string, req ChatRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	url := c.BaseURL + fmt.Sprintf(c.PathTemplate, endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("endpoint %s: %w", endpoint, ErrTimeout)
		}
		return "", fmt.Errorf("endpoint %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	limit := c.MaxResponseBytes
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("endpoint %s: read body: %w", endpoint, err)
	}
	if int64(len(body)) > limit {
		return "", fmt.Errorf("endpoint %s: response exceeds %d bytes", endpoint, limit)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        statusClass(resp.StatusCode, string(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("endpoint %s: decode response: %w", endpoint, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("endpoint %s: no choices: %w", endpoint, ErrEmptyResponse)
	}
	content := contentText(parsed.Choices[0].Message.Content)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("endpoint %s: blank content: %w", endpoint, ErrEmptyResponse)
	}
	return content, nil
}

// contentText accepts a plain string or a list of {"type":"text","text":...} parts.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if p.Type == "" || p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
