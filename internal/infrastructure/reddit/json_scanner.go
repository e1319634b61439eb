package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"RedditScout/internal/domain"
	"RedditScout/internal/scanner"
)

// listing mirrors the envelope Reddit wraps around every JSON response.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
	Stickied    bool    `json:"stickied"`
}

type commentData struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Permalink  string          `json:"permalink"`
	Replies    json.RawMessage `json:"replies"`
}

// JSONScanner reads the public listing endpoints. The post budget is
// split evenly across the configured sorts; duplicates between sorts are
// collapsed by id.
type JSONScanner struct {
	client *client
	logger *slog.Logger
}

var _ scanner.Scanner = (*JSONScanner)(nil)

// NewJSONScanner wires an HTTP client; the base URL override is for tests.
func NewJSONScanner(httpClient *http.Client, userAgent, base string, logger *slog.Logger) *JSONScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONScanner{client: newClient(httpClient, userAgent, base), logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *JSONScanner) Name() string {
	return "json"
}

// Fetch pulls the subreddit listing for each configured sort. One sort
// failing does not block the others; only all sorts failing is an error.
func (s *JSONScanner) Fetch(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	sorts := req.Sorts
	if len(sorts) == 0 {
		sorts = []string{"hot", "rising", "top", "new"}
	}
	perSort := req.Limit / len(sorts)
	if perSort <= 0 {
		perSort = 1
	}

	seen := map[string]struct{}{}
	var posts []domain.Post
	failures := 0

	for _, sort := range sorts {
		path := fmt.Sprintf("/r/%s/%s.json?limit=%d", req.Subreddit, sort, perSort)
		if sort == "top" {
			tf := req.TimeFilter
			if tf == "" {
				tf = "day"
			}
			path = fmt.Sprintf("/r/%s/top.json?t=%s&limit=%d", req.Subreddit, tf, perSort)
		}

		var page listing
		if err := s.client.getJSON(ctx, path, &page); err != nil {
			failures++
			s.logger.Warn("listing fetch failed", "subreddit", req.Subreddit, "sort", sort, "error", err)
			continue
		}

		for _, p := range parsePosts(page) {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			posts = append(posts, p)
		}
	}

	if failures == len(sorts) {
		return nil, fmt.Errorf("all %d listings failed for r/%s", len(sorts), req.Subreddit)
	}

	s.logger.Debug("subreddit fetched", "subreddit", req.Subreddit, "posts", len(posts), "failed_sorts", failures)
	return posts, nil
}

func parsePosts(page listing) []domain.Post {
	var posts []domain.Post
	for _, child := range page.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p postData
		if err := json.Unmarshal(child.Data, &p); err != nil || p.ID == "" {
			continue
		}
		if p.Stickied {
			continue
		}
		posts = append(posts, domain.Post{
			ID:          p.ID,
			Title:       p.Title,
			Body:        p.Selftext,
			Author:      p.Author,
			Subreddit:   p.Subreddit,
			Upvotes:     p.Score,
			NumComments: p.NumComments,
			CreatedAt:   time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Permalink:   "https://reddit.com" + p.Permalink,
		})
	}
	return posts
}
