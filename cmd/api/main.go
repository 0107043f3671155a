package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"meeting-insights-go/internal/analyzer"
	"meeting-insights-go/internal/config"
	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/logger"
	"meeting-insights-go/internal/processor"
	"meeting-insights-go/internal/schema"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "meeting-insights-go").Info("starting service")

	cfg := config.Load()

	registry := schema.NewRegistry()
	if cfg.SchemaPath != "" {
		log.WithField("schema_path", cfg.SchemaPath).Info("loading schema templates")
		templates, err := schema.LoadFile(cfg.SchemaPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load schema templates")
		}
		for _, t := range templates {
			if err := registry.Put(t); err != nil {
				log.WithError(err).WithField("template_id", t.TemplateID).Fatal("invalid schema template")
			}
		}
		log.WithField("templates", len(templates)).Info("schema templates loaded")
	}

	gw := llm.FromConfig(cfg, log.Component("llm"))
	a := analyzer.New(gw, analyzer.SettingsFrom(cfg), log.Entry)
	fetcher := processor.NewHTTPFetcher(60*time.Second, log.Component("fetcher"))
	srv := newServer(log, gw, a, processor.New(a, fetcher, cfg.BatchConcurrency, log.Entry), registry)

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).WithField("mock_llm", cfg.UseMockLLM).Info("listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
