package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RedditScout/internal/domain"
	"RedditScout/internal/scanner"
)

// HTMLScanner scrapes old-reddit listing pages. It exists for deployments
// where the JSON endpoints are blocked; the markup carries the same
// fields in data attributes on each div.thing entry.
type HTMLScanner struct {
	client *client
	logger *slog.Logger
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires an HTTP client against old.reddit.com (or the
// override base in tests).
func NewHTMLScanner(httpClient *http.Client, userAgent, base string, logger *slog.Logger) *HTMLScanner {
	if base == "" {
		base = "https://old.reddit.com"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLScanner{client: newClient(httpClient, userAgent, base), logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *HTMLScanner) Name() string {
	return "html"
}

// Fetch scrapes the listing page for each configured sort.
func (s *HTMLScanner) Fetch(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	sorts := req.Sorts
	if len(sorts) == 0 {
		sorts = []string{"hot", "new"}
	}
	perSort := req.Limit / len(sorts)
	if perSort <= 0 {
		perSort = 1
	}

	seen := map[string]struct{}{}
	var posts []domain.Post
	failures := 0

	for _, sort := range sorts {
		path := fmt.Sprintf("/r/%s/%s/?limit=%d", req.Subreddit, sort, perSort)

		page, err := s.fetchDocument(ctx, path)
		if err != nil {
			failures++
			s.logger.Warn("listing scrape failed", "subreddit", req.Subreddit, "sort", sort, "error", err)
			continue
		}

		for _, p := range extractPosts(page, req.Subreddit) {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			posts = append(posts, p)
		}
	}

	if failures == len(sorts) {
		return nil, fmt.Errorf("all %d listing pages failed for r/%s", len(sorts), req.Subreddit)
	}
	return posts, nil
}

func (s *HTMLScanner) fetchDocument(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := s.client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractPosts(doc *goquery.Document, subreddit string) []domain.Post {
	var posts []domain.Post

	doc.Find("div.thing[data-fullname]").Each(func(i int, sel *goquery.Selection) {
		fullname, _ := sel.Attr("data-fullname")
		if !strings.HasPrefix(fullname, "t3_") {
			return
		}
		id := strings.TrimPrefix(fullname, "t3_")
		if promoted, _ := sel.Attr("data-promoted"); promoted == "true" {
			return
		}

		title := strings.TrimSpace(sel.Find("a.title").First().Text())
		author, _ := sel.Attr("data-author")
		permalink, _ := sel.Attr("data-permalink")

		score := 0
		if raw, ok := sel.Attr("data-score"); ok {
			score, _ = strconv.Atoi(raw)
		}
		comments := 0
		if raw, ok := sel.Attr("data-comments-count"); ok {
			comments, _ = strconv.Atoi(raw)
		}

		created := time.Now().UTC()
		if raw, ok := sel.Attr("data-timestamp"); ok {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				created = time.UnixMilli(ms).UTC()
			}
		}

		posts = append(posts, domain.Post{
			ID:          id,
			Title:       title,
			Author:      author,
			Subreddit:   subreddit,
			Upvotes:     score,
			NumComments: comments,
			CreatedAt:   created,
			Permalink:   "https://reddit.com" + permalink,
		})
	})

	return posts
}
