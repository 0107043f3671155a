// Package cli implements the insights command line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"meeting-insights-go/internal/analyzer"
	"meeting-insights-go/internal/config"
	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/logger"
	"meeting-insights-go/internal/processor"
	"meeting-insights-go/internal/schema"
	"meeting-insights-go/internal/types"
)

type rootOptions struct {
	envFile    string
	schemaFile string
	templateID string
	mock       bool
	logLevel   string
}

// app is everything a subcommand needs, built once flags are parsed.
type app struct {
	cfg       config.Config
	log       *logger.Logger
	schemas   *schema.Registry
	analyzer  *analyzer.Analyzer
	processor *processor.Processor
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "insights",
		Short:         "Extract structured insights from meeting notes",
		Long:          "Run the schema-driven LLM extraction over a document or a batch of documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before reading config")
	f.StringVar(&opts.schemaFile, "schema-file", "", "YAML schema templates file (default: $SCHEMA_PATH)")
	f.StringVarP(&opts.templateID, "template", "t", "default_product_feedback", "Schema template id")
	f.BoolVar(&opts.mock, "mock", false, "Use the deterministic mock LLM")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $LOG_LEVEL)")

	root.AddCommand(newAnalyzeCmd(opts), newBatchCmd(opts), newSchemasCmd(opts))
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load(o.envFile)
	cfg := config.Load()
	if o.mock {
		cfg.UseMockLLM = true
	}
	if o.schemaFile != "" {
		cfg.SchemaPath = o.schemaFile
	}
	level := o.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	log := logger.NewWithOutput(cmd.ErrOrStderr(), os.Getenv("ENVIRONMENT"), level)

	reg := schema.NewRegistry()
	if cfg.SchemaPath != "" {
		templates, err := schema.LoadFile(cfg.SchemaPath)
		if err != nil {
			return nil, fmt.Errorf("load schema file: %w", err)
		}
		for _, t := range templates {
			if err := reg.Put(t); err != nil {
				return nil, fmt.Errorf("schema %s: %w", t.TemplateID, err)
			}
		}
	}

	gw := llm.FromConfig(cfg, log.Component("llm"))
	a := analyzer.New(gw, analyzer.SettingsFrom(cfg), log.Entry)
	fetcher := processor.NewHTTPFetcher(cfg.LLMTimeout, log.Component("fetcher"))
	return &app{
		cfg:       cfg,
		log:       log,
		schemas:   reg,
		analyzer:  a,
		processor: processor.New(a, fetcher, cfg.BatchConcurrency, log.Entry),
	}, nil
}

func (a *app) template(id string) (types.SchemaTemplate, error) {
	t, ok := a.schemas.Get(id)
	if !ok {
		return types.SchemaTemplate{}, fmt.Errorf("schema template %q not found", id)
	}
	return t, nil
}
