package ports

import (
	"context"
	"errors"
	"time"

	"RedditScout/internal/domain"
)

// ErrQuotaExceeded marks generator failures caused by exhausted remote
// quota. Callers use it to tell a dead batch from a flaky item.
var ErrQuotaExceeded = errors.New("generation quota exceeded")

// PostSource pulls fresh submissions from the configured subreddits.
type PostSource interface {
	FetchPosts(ctx context.Context, subreddits []string) ([]domain.Post, error)
}

// CommentSource pulls comment trees for already-fetched posts.
type CommentSource interface {
	FetchComments(ctx context.Context, posts []domain.Post) ([]domain.Comment, error)
}

// SeenStore is the only state surviving across runs. MarkSeen is
// idempotent; marking an already-seen id keeps the original timestamp.
type SeenStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string, at time.Time) error
	Prune(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
	Stats(ctx context.Context, now time.Time, window time.Duration) (domain.StoreStats, error)
	Close() error
}

// Generator produces raw model text for a prompt. Implementations own
// rate limiting and transient-error retries.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers the formatted report to the outbound channel.
type Notifier interface {
	Publish(ctx context.Context, report string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
