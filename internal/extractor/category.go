package extractor

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/parser"
	"meeting-insights-go/internal/types"
)

const (
	CategoryMaxTokens = 1000
	CustomerMaxTokens = 500

	// ModelNone marks a result no model produced.
	ModelNone = "none"

	FailureMessage = "LLM extraction failed - no response or parsing error"

	defaultConfidence = 0.5
)

// CategoryExtractor turns one category definition into a CategoryResult.
type CategoryExtractor struct {
	gw         llm.Gateway
	retryDelay time.Duration
	log        logrus.FieldLogger
}

func NewCategoryExtractor(gw llm.Gateway, retryDelay time.Duration, log logrus.FieldLogger) *CategoryExtractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CategoryExtractor{gw: gw, retryDelay: retryDelay, log: log.WithField("component", "category-extractor")}
}

// Extract prompts once and, when no values come back, once more after the retry delay.
// It never returns an error; failure is reported through CategoryResult.Error.
func (e *CategoryExtractor) Extract(ctx context.Context, text string, cat types.CategoryDefinition) types.CategoryResult {
	log := e.log.WithFields(logrus.Fields{"category": cat.Name, "value_type": string(cat.ValueType)})
	prompt := CategoryPrompt(text, cat)

	for attempt := 1; attempt <= 2; attempt++ {
		if attempt > 1 {
			log.WithField("delay", e.retryDelay.String()).Info("extraction retry")
			if !sleep(ctx, e.retryDelay) {
				break
			}
		}
		if res, ok := e.attempt(ctx, prompt, cat, log); ok {
			return res
		}
		if ctx.Err() != nil {
			break
		}
	}

	log.Warn("extraction failed")
	return Failed(cat.Name)
}

// Failed is the result recorded when a category could not be extracted.
func Failed(name string) types.CategoryResult {
	return types.CategoryResult{
		CategoryName: name,
		Values:       []string{},
		Confidence:   0,
		EvidenceText: []string{},
		ModelUsed:    ModelNone,
		Error:        FailureMessage,
	}
}

func (e *CategoryExtractor) attempt(ctx context.Context, prompt string, cat types.CategoryDefinition, log logrus.FieldLogger) (types.CategoryResult, bool) {
	comp, err := e.gw.Query(ctx, prompt, CategoryMaxTokens)
	if err != nil {
		log.WithError(err).Warn("no model response")
		return types.CategoryResult{}, false
	}
	obj, err := parser.ExtractJSON(comp.Text)
	if err != nil {
		log.WithError(err).WithField("response_len", len(comp.Text)).Warn("parse outcome")
		return types.CategoryResult{}, false
	}

	values, evidence := align(parser.Strings(obj, "values"), parser.Strings(obj, "evidence"))
	if cat.IsPredefined() {
		values, evidence = restrict(values, evidence, cat.PossibleValues)
	}
	log.WithFields(logrus.Fields{"values": len(values), "endpoint": comp.Endpoint, "cached": comp.Cached}).Debug("parse outcome")
	if len(values) == 0 {
		return types.CategoryResult{}, false
	}

	return types.CategoryResult{
		CategoryName: cat.Name,
		Values:       values,
		Confidence:   clamp(parser.Float(obj, "confidence", defaultConfidence)),
		EvidenceText: evidence,
		ModelUsed:    comp.Endpoint,
	}, true
}

// align drops blank values together with the evidence at the same index, then drops
// blank evidence.
func align(values, evidence []string) ([]string, []string) {
	outV := make([]string, 0, len(values))
	keep := make([]bool, len(evidence))
	for i := range keep {
		keep[i] = true
	}
	for i, v := range values {
		if v == "" {
			if i < len(keep) {
				keep[i] = false
			}
			continue
		}
		outV = append(outV, v)
	}
	outE := make([]string, 0, len(evidence))
	for i, ev := range evidence {
		if keep[i] && ev != "" {
			outE = append(outE, ev)
		}
	}
	return outV, outE
}

// restrict keeps values that match an allowed option, rewritten to the option's spelling
// and deduplicated. An exact spelling wins; otherwise the first option equal under case
// folding is used. Evidence for dropped values is dropped when the two lists line up one
// to one.
func restrict(values, evidence, allowed []string) ([]string, []string) {
	exact := make(map[string]string, len(allowed))
	folded := make(map[string]string, len(allowed))
	for _, a := range allowed {
		key := strings.TrimSpace(a)
		exact[key] = a
		if _, ok := folded[strings.ToLower(key)]; !ok {
			folded[strings.ToLower(key)] = a
		}
	}
	canonical := func(v string) (string, bool) {
		v = strings.TrimSpace(v)
		if c, ok := exact[v]; ok {
			return c, true
		}
		c, ok := folded[strings.ToLower(v)]
		return c, ok
	}
	paired := len(values) == len(evidence)
	seen := make(map[string]bool, len(values))
	outV := make([]string, 0, len(values))
	outE := make([]string, 0, len(evidence))
	for i, v := range values {
		c, ok := canonical(v)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		outV = append(outV, c)
		if paired {
			outE = append(outE, evidence[i])
		}
	}
	if !paired {
		outE = evidence
	}
	return outV, outE
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return defaultConfidence
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// sleep waits d or until ctx is done, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
