package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"RedditScout/internal/domain"
	"RedditScout/internal/ports"
	"RedditScout/internal/scanner"
)

// Source implements the fetch ports via registered scanner strategies.
// Post listings go through the configured strategy; comment trees always
// use the JSON endpoint, which stays available even when listings are
// scraped from HTML.
type Source struct {
	registry   *scanner.Registry
	client     *client
	strategy   string
	sorts      []string
	timeFilter string
	limit      int
	logger     *slog.Logger
}

var (
	_ ports.PostSource    = (*Source)(nil)
	_ ports.CommentSource = (*Source)(nil)
)

// SourceConfig carries the harvest parameters for all subreddits.
type SourceConfig struct {
	Strategy   string
	Sorts      []string
	TimeFilter string
	PostLimit  int
	UserAgent  string
	BaseURL    string // test override
}

// NewSource wires the scanner registry with harvest parameters.
func NewSource(reg *scanner.Registry, httpClient *http.Client, cfg SourceConfig, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = "json"
	}
	return &Source{
		registry:   reg,
		client:     newClient(httpClient, cfg.UserAgent, cfg.BaseURL),
		strategy:   strategy,
		sorts:      cfg.Sorts,
		timeFilter: cfg.TimeFilter,
		limit:      cfg.PostLimit,
		logger:     logger,
	}
}

// FetchPosts harvests every configured subreddit through the resolved
// strategy. One subreddit failing does not block the others; all of them
// failing is a fetch error.
func (s *Source) FetchPosts(ctx context.Context, subreddits []string) ([]domain.Post, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	strategy, err := s.registry.Resolve(s.strategy)
	if err != nil {
		return nil, fmt.Errorf("resolve scanner: %w", err)
	}

	var aggregated []domain.Post
	failures := 0
	for _, sub := range subreddits {
		req := scanner.Request{
			Subreddit:  sub,
			Sorts:      s.sorts,
			TimeFilter: s.timeFilter,
			Limit:      s.limit,
		}
		posts, err := strategy.Fetch(ctx, req)
		if err != nil {
			failures++
			s.logger.Warn("subreddit fetch failed", "subreddit", sub, "error", err)
			continue
		}
		aggregated = append(aggregated, posts...)
	}

	if len(subreddits) > 0 && failures == len(subreddits) {
		return nil, fmt.Errorf("all %d subreddits failed", len(subreddits))
	}

	s.logger.Info("posts fetched", "subreddits", len(subreddits), "posts", len(aggregated))
	return aggregated, nil
}

// FetchComments pulls the comment tree for each post. Failures are
// isolated per post.
func (s *Source) FetchComments(ctx context.Context, posts []domain.Post) ([]domain.Comment, error) {
	var all []domain.Comment
	for _, post := range posts {
		path := fmt.Sprintf("/r/%s/comments/%s.json?limit=100", post.Subreddit, post.ID)

		// The comments endpoint returns two listings: the post itself,
		// then the comment forest.
		var pages []listing
		if err := s.client.getJSON(ctx, path, &pages); err != nil {
			s.logger.Warn("comment fetch failed", "post", post.ID, "error", err)
			continue
		}
		if len(pages) < 2 {
			continue
		}

		comments := parseComments(pages[1], post, 0)
		all = append(all, comments...)
	}

	s.logger.Info("comments fetched", "posts", len(posts), "comments", len(all))
	return all, nil
}

func parseComments(page listing, post domain.Post, depth int) []domain.Comment {
	var comments []domain.Comment
	for _, child := range page.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var c commentData
		if err := json.Unmarshal(child.Data, &c); err != nil || c.ID == "" {
			continue
		}
		if c.Body == "" || c.Body == "[deleted]" || c.Body == "[removed]" {
			continue
		}

		comments = append(comments, domain.Comment{
			ID:        c.ID,
			Body:      c.Body,
			Author:    c.Author,
			Subreddit: post.Subreddit,
			Score:     c.Score,
			CreatedAt: time.Unix(int64(c.CreatedUTC), 0).UTC(),
			Permalink: "https://reddit.com" + c.Permalink,
			PostID:    post.ID,
			PostTitle: post.Title,
			Depth:     depth,
		})

		// Replies are either an empty string or a nested listing.
		if len(c.Replies) > 2 {
			var nested listing
			if err := json.Unmarshal(c.Replies, &nested); err == nil {
				comments = append(comments, parseComments(nested, post, depth+1)...)
			}
		}
	}
	return comments
}
