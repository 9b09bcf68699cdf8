package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/teaser-cli/internal/narrative"
	"github.com/sells-group/teaser-cli/internal/pipeline"
	"github.com/sells-group/teaser-cli/internal/scrape"
	"github.com/sells-group/teaser-cli/internal/store"
	anthropicpkg "github.com/sells-group/teaser-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline shared by the
// process and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and collaborators and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var scraper scrape.Scraper
	if cfg.Scrape.Enabled {
		scraper = scrape.NewHTTPScraper(scrape.Options{
			Timeout:        time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
			MaxPages:       cfg.Scrape.MaxPages,
			RequestsPerSec: cfg.Scrape.RequestsPerSec,
		})
	} else {
		zap.L().Info("scraping disabled, profiles use uploaded documents only")
	}

	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("TEASER_ANTHROPIC_KEY not set, narrative falls back to sector templates")
	}
	gen := narrative.New(aiClient, nil, narrative.Options{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
	})

	p := pipeline.New(pipeline.Config{
		Store:        st,
		Scraper:      scraper,
		Narrative:    gen,
		Workers:      cfg.Pipeline.Workers,
		CacheTTL:     time.Duration(cfg.Scrape.CacheTTLHours) * time.Hour,
		MaxTextBytes: cfg.Ingest.MaxTextBytes,
		MaxSheetRows: cfg.Ingest.MaxSheetRows,
		Blind:        cfg.Pipeline.Blind,
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
