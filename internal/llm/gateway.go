package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Gateway is the query contract the extractors depend on. A total failure is reported
// as ErrUnavailable; the only other error is the caller's own context error.
type Gateway interface {
	Query(ctx context.Context, prompt string, maxTokens int) (Completion, error)
}

type Completion struct {
	Text     string
	Endpoint string
	Cached   bool
}

type Options struct {
	Endpoints              []string
	Timeout                time.Duration // per call
	Temperature            float64
	Retry                  RetryPolicy
	CacheSize              int
	MaxConsecutiveFailures int
	RPM                    int // 0 disables pacing
	Logger                 logrus.FieldLogger

	// NewTimer overrides the backoff timer; tests use it to skip real sleeps.
	NewTimer func() backoff.Timer
}

// EndpointGateway queries endpoints in priority order with rate-limit retries and failover.
type EndpointGateway struct {
	client      Completer
	state       *State
	cache       *responseCache
	limiter     *rate.Limiter
	timeout     time.Duration
	temperature float64
	retry       RetryPolicy
	newTimer    func() backoff.Timer
	log         logrus.FieldLogger
}

func NewGateway(client Completer, opts Options) *EndpointGateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 3
	}
	if opts.Retry.Step <= 0 {
		opts.Retry.Step = 10 * time.Second
	}
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = 5
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPM > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RPM)), 1)
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EndpointGateway{
		client:      client,
		state:       NewState(opts.Endpoints, opts.MaxConsecutiveFailures),
		cache:       newResponseCache(opts.CacheSize),
		limiter:     limiter,
		timeout:     opts.Timeout,
		temperature: opts.Temperature,
		retry:       opts.Retry,
		newTimer:    opts.NewTimer,
		log:         log.WithField("component", "llm-gateway"),
	}
}

// State exposes the shared reliability state for diagnostics.
func (g *EndpointGateway) State() *State { return g.state }

func (g *EndpointGateway) Query(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	key := cacheKey(prompt, maxTokens)
	if hit, ok := g.cache.get(key); ok {
		g.log.WithField("endpoint", hit.endpoint).Debug("cache hit")
		return Completion{Text: hit.text, Endpoint: hit.endpoint, Cached: true}, nil
	}

	req := ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: g.temperature,
	}
	order := g.state.Order()
	for i, endpoint := range order {
		log := g.log.WithFields(logrus.Fields{
			"endpoint":      endpoint,
			"endpoint_rank": fmt.Sprintf("%d/%d", i+1, len(order)),
		})
		text, err := g.tryEndpoint(ctx, endpoint, req, log)
		if err == nil {
			g.state.Succeeded(endpoint)
			g.cache.add(key, cachedResponse{text: text, endpoint: endpoint})
			log.WithField("response_len", len(text)).Info("endpoint succeeded")
			return Completion{Text: text, Endpoint: endpoint}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Completion{}, ctxErr
		}
		log.WithError(err).Warn("endpoint failed")
	}

	if available := g.state.Exhausted(); !available {
		g.log.Warn("llm marked unavailable after repeated failures")
	}
	g.log.WithField("endpoints", len(order)).Error("all llm endpoints failed")
	return Completion{}, ErrUnavailable
}

// tryEndpoint makes up to Retry.MaxAttempts calls, retrying only rate-limit failures.
func (g *EndpointGateway) tryEndpoint(ctx context.Context, endpoint string, req ChatRequest, log logrus.FieldLogger) (string, error) {
	var text string
	attempt := 0
	op := func() error {
		attempt++
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		log.WithField("attempt", attempt).Debug("endpoint attempt")

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		out, err := g.client.Complete(callCtx, endpoint, req)
		if err == nil {
			text = out
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		switch classify(err) {
		case failRateLimit:
			return err
		case failTimeout, failOther:
			g.state.Failed()
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		log.WithFields(logrus.Fields{"attempt": attempt, "wait": wait.String()}).Warn("rate limited, backing off")
	}

	b := backoff.WithContext(g.retry.BackOff(), ctx)
	var timer backoff.Timer
	if g.newTimer != nil {
		timer = g.newTimer()
	}
	if err := backoff.RetryNotifyWithTimer(op, b, notify, timer); err != nil {
		return "", err
	}
	return text, nil
}
