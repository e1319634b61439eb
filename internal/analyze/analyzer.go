package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"RedditScout/internal/domain"
	"RedditScout/internal/ports"
)

const defaultWorkers = 3

// ErrQuotaExhausted is returned when every item in a non-empty batch
// failed on remote quota. A mostly-empty report would mislead, so the
// whole run fails instead.
var ErrQuotaExhausted = errors.New("scorer quota exhausted for whole batch")

// Analyzer wraps the raw generator with prompting, validation, and a
// bounded worker pool. Individual item failures are dropped, never
// propagated past this boundary.
type Analyzer struct {
	gen      ports.Generator
	minScore float64
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

// Options tunes the analyzer beyond its dependencies.
type Options struct {
	MinScore float64 // acceptance floor; items below it are dropped
	Workers  int     // concurrent generator calls, default 3
}

// New builds an analyzer over the given generator.
func New(gen ports.Generator, opts Options, logger *slog.Logger) *Analyzer {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		gen:      gen,
		minScore: opts.MinScore,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

// ScoreBatch scores every item and returns the survivors in input order.
// The result may be shorter than the input: validation failures and
// below-floor scores drop the item. Only whole-batch quota exhaustion is
// an error.
func (a *Analyzer) ScoreBatch(ctx context.Context, items []domain.Item) ([]domain.ScoredItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	type slot struct {
		scored domain.ScoredItem
		ok     bool
		quota  bool
	}
	slots := make([]slot, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, item := range items {
		g.Go(func() error {
			scored, err := a.scoreOne(gctx, item)
			if err != nil {
				if errors.Is(err, ports.ErrQuotaExceeded) {
					slots[i].quota = true
				}
				a.logger.Warn("dropping item after scoring failure",
					"kind", item.Kind, "id", item.ID, "error", err)
				return nil
			}
			if scored.Analysis.RelevanceScore < a.minScore {
				a.logger.Debug("item below acceptance floor",
					"id", item.ID, "score", scored.Analysis.RelevanceScore)
				return nil
			}
			slots[i] = slot{scored: scored, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	var results []domain.ScoredItem
	quotaFailures := 0
	for _, s := range slots {
		if s.ok {
			results = append(results, s.scored)
		}
		if s.quota {
			quotaFailures++
		}
	}

	if quotaFailures == len(items) {
		return nil, ErrQuotaExhausted
	}

	a.logger.Info("batch scored",
		"input", len(items), "accepted", len(results), "quota_failures", quotaFailures)
	return results, nil
}

func (a *Analyzer) scoreOne(ctx context.Context, item domain.Item) (domain.ScoredItem, error) {
	prompt := buildPrompt(item, a.now())

	response, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return domain.ScoredItem{}, fmt.Errorf("generate: %w", err)
	}

	analysis, err := parseAnalysis(response, item.Kind)
	if err != nil {
		return domain.ScoredItem{}, fmt.Errorf("parse response: %w", err)
	}

	return domain.ScoredItem{Item: item, Analysis: analysis}, nil
}
