package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// MockGateway answers deterministically without any network call (USE_MOCK_LLM=true).
type MockGateway struct{}

const mockEndpoint = "mock"

func (MockGateway) Query(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	var text string
	switch {
	case strings.HasPrefix(prompt, OptionsMarker):
		text = mockPick(prompt)
	case strings.Contains(prompt, `"customer_name"`):
		text = `{"customer_name": "ACME Corp", "meeting_date": "2025-01-15"}`
	default:
		text = `{"values": ["product catalog search"], "evidence": ["for their product catalog"], "confidence": 0.8}`
	}
	return Completion{Text: text, Endpoint: mockEndpoint}, nil
}

// OptionsMarker opens every predefined-category prompt.
const OptionsMarker = "Options: "

// mockPick selects "Vector Search" when offered, otherwise the first listed option.
func mockPick(prompt string) string {
	line := strings.TrimPrefix(prompt, OptionsMarker)
	if nl := strings.IndexByte(line, '\n'); nl != -1 {
		line = line[:nl]
	}
	options := strings.Split(line, ", ")
	pick := strings.TrimSpace(options[0])
	for _, o := range options {
		if strings.TrimSpace(o) == "Vector Search" {
			pick = "Vector Search"
			break
		}
	}
	out, _ := json.Marshal(map[string]any{
		"values":     []string{pick},
		"evidence":   []string{"needs " + pick},
		"confidence": 0.9,
	})
	return string(out)
}
