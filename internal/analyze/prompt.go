package analyze

import (
	"fmt"
	"strings"
	"time"

	"RedditScout/internal/domain"
)

const bodyPreviewLimit = 500

// buildPrompt renders kind-specific scoring instructions for one item.
func buildPrompt(item domain.Item, now time.Time) string {
	if item.Kind == domain.KindComment {
		return buildCommentPrompt(item, now)
	}
	return buildPostPrompt(item, now)
}

func buildPostPrompt(item domain.Item, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this Reddit post for reply opportunity:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Subreddit: r/%s\n", item.Subreddit)
	fmt.Fprintf(&b, "Content: %s\n", preview(item.Body))
	fmt.Fprintf(&b, "Upvotes: %d\n", item.Upvotes)
	fmt.Fprintf(&b, "Comments: %d\n", item.NumComments)
	fmt.Fprintf(&b, "Posted: %.1f hours ago\n\n", hoursAgo(item.CreatedAt, now))
	b.WriteString(`Evaluate the reply opportunity value of this post on a 0-10 scale,
considering how specific and genuine the question is, engagement
potential, and recency.

Return ONLY valid JSON in this exact format:
{
  "score": 8.5,
  "rationale": "brief explanation of the score",
  "reply_points": ["first angle to cover", "second angle"]
}

Keep reply_points between 1 and 5 short strings, each a concrete point a
reply should make.`)
	return b.String()
}

func buildCommentPrompt(item domain.Item, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this Reddit comment for reply opportunity:\n\n")
	fmt.Fprintf(&b, "Original post: %s\n", item.PostTitle)
	fmt.Fprintf(&b, "Comment by: u/%s\n", item.Author)
	fmt.Fprintf(&b, "Comment: %s\n", preview(item.Body))
	fmt.Fprintf(&b, "Upvotes: %d\n", item.Upvotes)
	fmt.Fprintf(&b, "Posted: %.1f hours ago\n\n", hoursAgo(item.CreatedAt, now))
	b.WriteString(`Evaluate the reply opportunity value of this comment on a 0-10 scale,
considering gaps or inaccuracies in it, its visibility, and recency.
Classify how a reply should relate to it: "agree", "supplement",
"correct", or "ignore".

Return ONLY valid JSON in this exact format:
{
  "score": 7.0,
  "opportunity": "supplement",
  "rationale": "brief explanation of the score",
  "reply_points": ["first angle to cover", "second angle"]
}

Keep reply_points between 1 and 5 short strings, each a concrete point a
reply should make.`)
	return b.String()
}

func preview(body string) string {
	if len(body) > bodyPreviewLimit {
		return body[:bodyPreviewLimit]
	}
	return body
}

func hoursAgo(created, now time.Time) float64 {
	return now.Sub(created).Hours()
}
