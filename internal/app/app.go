package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RedditScout/internal/analyze"
	"RedditScout/internal/config"
	"RedditScout/internal/filter"
	"RedditScout/internal/infrastructure/discord"
	"RedditScout/internal/infrastructure/llm"
	"RedditScout/internal/infrastructure/reddit"
	"RedditScout/internal/infrastructure/scheduler"
	"RedditScout/internal/infrastructure/storage"
	"RedditScout/internal/logging"
	"RedditScout/internal/scanner"
	"RedditScout/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	store    *storage.SQLiteStore
	logger   *slog.Logger
}

// New builds a runnable application instance. Rule compilation happens
// here so a malformed filter config stops the process before any run.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := filter.NewRules(cfg.Filters)
	if err != nil {
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(reddit.NewJSONScanner(nil, cfg.Reddit.UserAgent, "",
		baseLogger.With("component", "scanner.json")))
	registry.Register(reddit.NewHTMLScanner(nil, cfg.Reddit.UserAgent, "",
		baseLogger.With("component", "scanner.html")))

	source := reddit.NewSource(registry, nil, reddit.SourceConfig{
		Strategy:   cfg.Reddit.Scanner,
		Sorts:      cfg.Reddit.Sorts,
		TimeFilter: cfg.Reddit.TimeFilter,
		PostLimit:  cfg.Reddit.PostLimit,
		UserAgent:  cfg.Reddit.UserAgent,
	}, baseLogger.With("component", "source"))

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	analyzer := analyze.New(llm.NewGeminiClient(cfg.Gemini), analyze.Options{
		MinScore: cfg.Scorer.MinScore,
		Workers:  cfg.Gemini.Workers,
	}, baseLogger.With("component", "analyzer"))

	store := storage.Open(cfg.Database.Path, baseLogger.With("component", "store"))
	notifier := discord.NewNotifier(cfg.Discord.WebhookURL)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Posts:    source,
		Comments: source,
		Store:    store,
		Scorer:   analyzer,
		Notifier: notifier,
		Rules:    rules,
		Logger:   baseLogger.With("component", "pipeline"),
	}, usecase.PipelineParams{
		Subreddits: cfg.Reddit.Subreddits,
		TTL:        cfg.Database.TTL(),
		TopN:       cfg.Output.TopN,
	})

	return &Application{cfg: cfg, pipeline: pipeline, store: store, logger: baseLogger}, nil
}

// Run executes a single pipeline pass, or keeps running on the
// configured interval when one is set.
func (a *Application) Run(ctx context.Context) error {
	defer a.store.Close()

	now := time.Now().In(a.cfg.Scheduler.Location())
	if a.cfg.Scheduler.Interval <= 0 {
		return a.pipeline.Run(ctx, now)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return runner.Stop(context.Background())
}
