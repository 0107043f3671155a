package llm

import (
	"github.com/sirupsen/logrus"

	"meeting-insights-go/internal/config"
)

// FromConfig returns the mock responder when USE_MOCK_LLM is set, otherwise an
// EndpointGateway over the HTTP serving client.
func FromConfig(cfg config.Config, log logrus.FieldLogger) Gateway {
	if cfg.UseMockLLM {
		log.Info("mock LLM mode ON - returning deterministic responses")
		return MockGateway{}
	}
	client := NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMPathTemplate)
	return NewGateway(client, Options{
		Endpoints:   cfg.LLMEndpoints,
		Timeout:     cfg.LLMTimeout,
		Temperature: cfg.LLMTemperature,
		Retry: RetryPolicy{
			MaxAttempts: cfg.LLMMaxAttempts,
			Step:        cfg.LLMRateLimitDelay,
		},
		CacheSize:              cfg.LLMCacheSize,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		RPM:                    cfg.LLMRPM,
		Logger:                 log,
	})
}
