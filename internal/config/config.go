package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoints is the foundation-model endpoint order used when LLM_ENDPOINTS is unset.
var DefaultEndpoints = []string{
	"databricks-gemini-2-5-flash",
	"databricks-gemini-2-5-pro",
	"databricks-claude-3-7-sonnet",
	"databricks-meta-llama-3-1-8b-instruct",
	"databricks-meta-llama-3-3-70b-instruct",
}

type Config struct {
	Port string

	LLMBaseURL             string
	LLMAPIKey              string
	LLMPathTemplate        string
	LLMEndpoints           []string
	LLMTimeout             time.Duration
	LLMTemperature         float64
	LLMMaxAttempts         int
	LLMRateLimitDelay      time.Duration
	LLMCacheSize           int
	MaxConsecutiveFailures int
	LLMRPM                 int
	UseMockLLM             bool

	CategoryConcurrency       int
	BatchConcurrency          int
	ExtractionRetryDelay      time.Duration
	CustomerHeuristicFallback bool

	SchemaPath string
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() Config {
	return Config{
		Port: envOr("PORT", "8080"),

		LLMBaseURL:             strings.TrimRight(os.Getenv("LLM_BASE_URL"), "/"),
		LLMAPIKey:              os.Getenv("LLM_API_KEY"),
		LLMPathTemplate:        envOr("LLM_PATH_TEMPLATE", "/serving-endpoints/%s/invocations"),
		LLMEndpoints:           envList("LLM_ENDPOINTS", DefaultEndpoints),
		LLMTimeout:             time.Duration(envInt("LLM_TIMEOUT_SEC", 120)) * time.Second,
		LLMTemperature:         envFloat("LLM_TEMPERATURE", 0.1),
		LLMMaxAttempts:         envInt("LLM_MAX_ATTEMPTS", 3),
		LLMRateLimitDelay:      time.Duration(envInt("LLM_RATE_LIMIT_DELAY_SEC", 10)) * time.Second,
		LLMCacheSize:           envInt("LLM_CACHE_SIZE", 50),
		MaxConsecutiveFailures: envInt("LLM_MAX_CONSECUTIVE_FAILURES", 5),
		LLMRPM:                 envInt("LLM_RPM", 0),
		UseMockLLM:             envBool("USE_MOCK_LLM", false),

		CategoryConcurrency:       envInt("CATEGORY_CONCURRENCY", 3),
		BatchConcurrency:          envInt("BATCH_CONCURRENCY", 2),
		ExtractionRetryDelay:      time.Duration(envInt("EXTRACTION_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		CustomerHeuristicFallback: envBool("CUSTOMER_HEURISTIC_FALLBACK", true),

		SchemaPath: os.Getenv("SCHEMA_PATH"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt falls back to def on missing, malformed or negative values.
func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envList(k string, def []string) []string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
