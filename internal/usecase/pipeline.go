package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"RedditScout/internal/domain"
	"RedditScout/internal/filter"
	"RedditScout/internal/ports"
	"RedditScout/internal/rank"
	"RedditScout/internal/report"
)

// Stage names the pipeline phases for diagnostics. A failed run reports
// which stage died; no stage is ever re-entered within a run.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageFiltering  Stage = "filtering"
	StageScoring    Stage = "scoring"
	StageRanking    Stage = "ranking"
	StageFormatting Stage = "formatting"
	StageDelivering Stage = "delivering"
	StageCommitting Stage = "committing"
)

// Scorer is the batch interface the analyzer satisfies.
type Scorer interface {
	ScoreBatch(ctx context.Context, items []domain.Item) ([]domain.ScoredItem, error)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Posts    ports.PostSource
	Comments ports.CommentSource
	Store    ports.SeenStore
	Scorer   Scorer
	Notifier ports.Notifier
	Rules    *filter.Rules
	Logger   *slog.Logger
}

// PipelineParams carries the per-run tunables from config.
type PipelineParams struct {
	Subreddits []string
	TTL        time.Duration
	TopN       int
}

// Pipeline implements the harvest-score-report workflow. It exclusively
// owns each run's in-memory candidate lists; only the seen store
// survives across runs. Callers must not overlap invocations against the
// same store.
type Pipeline struct {
	posts    ports.PostSource
	comments ports.CommentSource
	store    ports.SeenStore
	scorer   Scorer
	notifier ports.Notifier
	rules    *filter.Rules
	params   PipelineParams
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, params PipelineParams) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		posts:    deps.Posts,
		comments: deps.Comments,
		store:    deps.Store,
		scorer:   deps.Scorer,
		notifier: deps.Notifier,
		rules:    deps.Rules,
		params:   params,
		logger:   logger,
	}
}

// Run executes one single-pass pipeline invocation. Seen ids are
// committed only after delivery succeeds: a crash between the two causes
// a duplicate notification next run, never a silently lost opportunity.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	p.prune(ctx, now)

	// Fetching
	posts, err := p.posts.FetchPosts(ctx, p.params.Subreddits)
	if err != nil {
		return p.fail(StageFetching, err)
	}

	// Filtering: static rules first, then the seen check, so no scorer
	// spend goes to items that cannot be reported.
	postItems := p.rules.Apply(itemsFromPosts(posts))
	postItems, err = p.dropSeen(ctx, postItems)
	if err != nil {
		return p.fail(StageFiltering, err)
	}

	comments, err := p.comments.FetchComments(ctx, postsByID(posts, postItems))
	if err != nil {
		return p.fail(StageFetching, err)
	}
	commentItems := p.rules.Apply(itemsFromComments(comments))
	commentItems, err = p.dropSeen(ctx, commentItems)
	if err != nil {
		return p.fail(StageFiltering, err)
	}

	p.logger.Info("candidates selected",
		"posts", len(postItems), "comments", len(commentItems))

	// Scoring: item failures are dropped inside the scorer; only
	// whole-batch quota exhaustion surfaces here.
	scoredPosts, err := p.scorer.ScoreBatch(ctx, postItems)
	if err != nil {
		return p.fail(StageScoring, err)
	}
	scoredComments, err := p.scorer.ScoreBatch(ctx, commentItems)
	if err != nil {
		return p.fail(StageScoring, err)
	}

	// Ranking and formatting are pure.
	ranked := rank.Rank(append(scoredPosts, scoredComments...), p.params.TopN, now)
	message := report.Format(ranked)

	// Delivering. An empty report still goes out so recipients can tell
	// "nothing qualified" from "did not run".
	if err := p.notifier.Publish(ctx, message); err != nil {
		return p.fail(StageDelivering, err)
	}

	// Committing, gated on successful delivery.
	p.commit(ctx, ranked, now)

	p.summarize(ctx, ranked, now)
	return nil
}

func (p *Pipeline) fail(stage Stage, err error) error {
	p.logger.Error("run failed", "stage", stage, "error", err)
	return fmt.Errorf("stage %s: %w", stage, err)
}

// prune keeps the store bounded. A prune failure is a warning; the run
// can proceed with a slightly oversized store.
func (p *Pipeline) prune(ctx context.Context, now time.Time) {
	removed, err := p.store.Prune(ctx, now, p.params.TTL)
	if err != nil {
		p.logger.Warn("prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.logger.Info("pruned expired seen records", "removed", removed)
	}
}

func (p *Pipeline) dropSeen(ctx context.Context, items []domain.Item) ([]domain.Item, error) {
	fresh := make([]domain.Item, 0, len(items))
	for _, item := range items {
		seen, err := p.store.Exists(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("seen check %s: %w", item.ID, err)
		}
		if !seen {
			fresh = append(fresh, item)
		}
	}
	return fresh, nil
}

// commit marks every reported item as seen. Comments also mark their
// parent post so a reported thread is not re-surfaced from either angle.
// Commit errors degrade to duplicates next run, never to a failed run.
func (p *Pipeline) commit(ctx context.Context, ranked domain.Report, now time.Time) {
	mark := func(id string) {
		if err := p.store.MarkSeen(ctx, id, now); err != nil {
			p.logger.Warn("mark seen failed", "id", id, "error", err)
		}
	}
	for _, s := range ranked.Posts {
		mark(s.Item.ID)
	}
	for _, s := range ranked.Comments {
		mark(s.Item.ID)
		if s.Item.PostID != "" {
			mark(s.Item.PostID)
		}
	}
}

func (p *Pipeline) summarize(ctx context.Context, ranked domain.Report, now time.Time) {
	stats, err := p.store.Stats(ctx, now, p.params.TTL)
	if err != nil {
		p.logger.Warn("store stats unavailable", "error", err)
		stats = domain.StoreStats{}
	}
	p.logger.Info("run complete",
		"top_posts", len(ranked.Posts),
		"top_comments", len(ranked.Comments),
		"store_total", stats.Total,
		"store_recent", stats.Recent)
}

func itemsFromPosts(posts []domain.Post) []domain.Item {
	items := make([]domain.Item, 0, len(posts))
	for _, post := range posts {
		items = append(items, domain.ItemFromPost(post))
	}
	return items
}

func itemsFromComments(comments []domain.Comment) []domain.Item {
	items := make([]domain.Item, 0, len(comments))
	for _, c := range comments {
		items = append(items, domain.ItemFromComment(c))
	}
	return items
}

// postsByID narrows the fetched posts to those whose items survived
// filtering, so comment fetches are only spent on viable threads.
func postsByID(posts []domain.Post, items []domain.Item) []domain.Post {
	keep := make(map[string]struct{}, len(items))
	for _, item := range items {
		keep[item.ID] = struct{}{}
	}
	kept := make([]domain.Post, 0, len(items))
	for _, post := range posts {
		if _, ok := keep[post.ID]; ok {
			kept = append(kept, post)
		}
	}
	return kept
}
