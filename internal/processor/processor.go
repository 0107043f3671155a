// Package processor runs a batch of documents through the analyzer with bounded
// document-level concurrency.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"meeting-insights-go/internal/analyzer"
	"meeting-insights-go/internal/types"
)

// Analyzer is satisfied by *analyzer.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, text string, tmpl types.SchemaTemplate, opts analyzer.Options) types.AnalysisResult
}

type Options struct {
	SkipCustomerInfo bool
	// ExportFormat picks the spreadsheet extension: "xlsx" (default) or "csv".
	ExportFormat string
}

type Processor struct {
	analyzer    Analyzer
	fetcher     Fetcher
	concurrency int
	log         logrus.FieldLogger
	now         func() time.Time
}

var errEmptyDocument = errors.New("document is empty")

func New(a Analyzer, f Fetcher, concurrency int, log logrus.FieldLogger) *Processor {
	if concurrency < 1 {
		concurrency = 2
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Processor{
		analyzer:    a,
		fetcher:     f,
		concurrency: concurrency,
		log:         log.WithField("component", "batch-processor"),
		now:         time.Now,
	}
}

// ProcessBatch analyzes every input; results keep input order and an item's failure
// never affects the others.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []types.BatchInput, tmpl types.SchemaTemplate, opts Options) types.BatchResult {
	start := p.now()
	batchID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"batch_id": batchID, "items": len(inputs), "template": tmpl.TemplateID})
	log.Info("batch started")

	results := make([]types.BatchItemResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = p.processItem(ctx, i, in, tmpl, opts)
			return nil
		})
	}
	_ = g.Wait()

	res := types.BatchResult{
		BatchID:             batchID,
		TotalItems:          len(results),
		Results:             results,
		SpreadsheetFilename: SpreadsheetFilename(start, opts.ExportFormat),
	}
	for _, r := range results {
		if r.Error == "" {
			res.SuccessfulItems++
		} else {
			res.FailedItems++
		}
	}
	res.ProcessingTimeMs = p.now().Sub(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"successful":         res.SuccessfulItems,
		"failed":             res.FailedItems,
		"processing_time_ms": res.ProcessingTimeMs,
	}).Info("batch complete")
	return res
}

func (p *Processor) processItem(ctx context.Context, idx int, in types.BatchInput, tmpl types.SchemaTemplate, opts Options) types.BatchItemResult {
	item := types.BatchItemResult{Index: idx, InputType: in.InputType, Filename: in.Filename}
	if item.InputType == types.InputURL && item.Filename == "" {
		item.Filename = in.Content
	}

	text, err := p.resolve(ctx, in)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyDocument
	}
	if err != nil {
		p.log.WithError(err).WithField("index", idx).Warn("batch item failed")
		item.Error = err.Error()
		return item
	}

	a := p.analyzer.Analyze(ctx, text, tmpl, analyzer.Options{SkipCustomerInfo: opts.SkipCustomerInfo})
	item.CustomerName = a.CustomerName
	item.MeetingDate = a.MeetingDate
	item.Categories = a.Categories
	item.ProcessingTimeMs = a.ProcessingTimeMs
	item.WordCount = a.WordCount
	return item
}

func (p *Processor) resolve(ctx context.Context, in types.BatchInput) (string, error) {
	switch in.InputType {
	case types.InputText, types.InputFile:
		return in.Content, nil
	case types.InputURL:
		if p.fetcher == nil {
			return "", fmt.Errorf("url inputs are not enabled")
		}
		return p.fetcher.Fetch(ctx, in.Content)
	}
	return "", fmt.Errorf("unknown input type %q", in.InputType)
}

// SpreadsheetFilename names the export for a batch started at t.
func SpreadsheetFilename(t time.Time, format string) string {
	ext := "xlsx"
	if strings.EqualFold(format, "csv") {
		ext = "csv"
	}
	return "batch_insights_" + t.Format("20060102_150405") + "." + ext
}
