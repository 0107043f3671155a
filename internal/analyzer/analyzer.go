// Package analyzer runs the customer and category extractors over one document and
// assembles the AnalysisResult.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"meeting-insights-go/internal/config"
	"meeting-insights-go/internal/extractor"
	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/types"
)

type Settings struct {
	CategoryConcurrency int
	RetryDelay          time.Duration
	HeuristicFallback   bool
}

// SettingsFrom picks the analyzer knobs out of the process config.
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		CategoryConcurrency: cfg.CategoryConcurrency,
		RetryDelay:          cfg.ExtractionRetryDelay,
		HeuristicFallback:   cfg.CustomerHeuristicFallback,
	}
}

// Options are per call. The zero value extracts customer info.
type Options struct {
	SkipCustomerInfo bool
}

type Analyzer struct {
	categories  *extractor.CategoryExtractor
	customer    *extractor.CustomerExtractor
	concurrency int
	log         logrus.FieldLogger
}

func New(gw llm.Gateway, s Settings, log logrus.FieldLogger) *Analyzer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if s.CategoryConcurrency < 1 {
		s.CategoryConcurrency = 1
	}
	return &Analyzer{
		categories:  extractor.NewCategoryExtractor(gw, s.RetryDelay, log),
		customer:    extractor.NewCustomerExtractor(gw, s.HeuristicFallback, log),
		concurrency: s.CategoryConcurrency,
		log:         log.WithField("component", "analyzer"),
	}
}

// Analyze always returns one category result per schema entry, in schema order.
// Upstream failures end up in the per-category Error field.
func (a *Analyzer) Analyze(ctx context.Context, text string, tmpl types.SchemaTemplate, opts Options) types.AnalysisResult {
	start := time.Now()
	res := types.AnalysisResult{WordCount: len(strings.Fields(text))}

	if !opts.SkipCustomerInfo {
		info := a.customer.Extract(ctx, text)
		res.CustomerName = info.CustomerName
		res.MeetingDate = info.MeetingDate
	}

	results := make(types.CategoryResults, len(tmpl.Categories))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, cat := range tmpl.Categories {
		g.Go(func() error {
			results[i] = a.categories.Extract(ctx, text, cat)
			return nil
		})
	}
	_ = g.Wait()
	res.Categories = results
	res.ProcessingTimeMs = time.Since(start).Milliseconds()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	a.log.WithFields(logrus.Fields{
		"template":           tmpl.TemplateID,
		"categories":         len(results),
		"failed":             failed,
		"word_count":         res.WordCount,
		"processing_time_ms": res.ProcessingTimeMs,
	}).Info("analysis complete")
	return res
}
