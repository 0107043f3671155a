package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned by Query when every endpoint failed.
	ErrUnavailable = errors.New("llm: all endpoints failed")

	ErrRateLimited   = errors.New("llm: rate limited")
	ErrNotFound      = errors.New("llm: endpoint not found")
	ErrUpstream      = errors.New("llm: upstream error")
	ErrTimeout       = errors.New("llm: request timed out")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// StatusError is a non-2xx answer from a serving endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("endpoint %s: status %d: %s", e.Endpoint, e.StatusCode, body)
}

func (e *StatusError) Unwrap() error { return e.Err }

// statusClass maps an HTTP status and body to one of the sentinels, or nil for "other".
func statusClass(code int, body string) error {
	switch {
	case code == 429:
		return ErrRateLimited
	case code == 404:
		return ErrNotFound
	}
	if c := messageClass(body); c != nil {
		return c
	}
	if code >= 500 {
		return ErrUpstream
	}
	return nil
}

func messageClass(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "REQUEST_LIMIT_EXCEEDED") || strings.Contains(lower, "rate limit"):
		return ErrRateLimited
	case strings.Contains(lower, "not found"):
		return ErrNotFound
	case strings.Contains(lower, "upstream"):
		return ErrUpstream
	}
	return nil
}

// failureKind decides what the gateway does after a failed attempt.
type failureKind int

const (
	failOther     failureKind = iota // counted, next endpoint
	failRateLimit                    // back off, same endpoint
	failTimeout                      // counted, next endpoint
	failSkip                         // not counted, next endpoint
)

func classify(err error) failureKind {
	switch {
	case errors.Is(err, ErrRateLimited):
		return failRateLimit
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return failTimeout
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUpstream), errors.Is(err, ErrEmptyResponse):
		return failSkip
	}
	// completers that do not wrap the sentinels still get message-based routing
	switch messageClass(err.Error()) {
	case ErrRateLimited:
		return failRateLimit
	case ErrNotFound, ErrUpstream:
		return failSkip
	}
	return failOther
}
