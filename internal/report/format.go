// Package report renders a ranked run into the outbound message text.
package report

import (
	"fmt"
	"strings"
	"time"

	"RedditScout/internal/domain"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━"

// Format renders the ranked report. Pure function: empty partitions are
// rendered as explicit placeholders so recipients can tell "ran, nothing
// qualified" from "did not run".
func Format(r domain.Report) string {
	var b strings.Builder

	b.WriteString(divider + "\n")
	b.WriteString("**Reddit Reply Opportunity Report**\n")
	fmt.Fprintf(&b, "%s\n", r.Date.Format("2006-01-02"))
	b.WriteString(divider + "\n\n")

	writeSection(&b, "TOP Posts", r.Posts, r.Date, formatPost)
	writeSection(&b, "TOP Comments", r.Comments, r.Date, formatComment)

	b.WriteString(divider + "\n")
	b.WriteString("Good luck with your outreach!")

	return b.String()
}

func writeSection(b *strings.Builder, title string, items []domain.ScoredItem, date time.Time,
	format func(*strings.Builder, domain.ScoredItem, int, time.Time),
) {
	fmt.Fprintf(b, "**%s**\n\n", title)
	if len(items) == 0 {
		fmt.Fprintf(b, "_No qualifying %s today._\n\n", strings.ToLower(strings.TrimPrefix(title, "TOP ")))
		return
	}
	for i, item := range items {
		format(b, item, i+1, date)
		b.WriteString("\n---\n\n")
	}
	fmt.Fprintf(b, "_End of %s (%d shown)._\n\n", strings.ToLower(title), len(items))
}

func formatPost(b *strings.Builder, s domain.ScoredItem, rank int, date time.Time) {
	fmt.Fprintf(b, "**#%d — Score %.1f/10 (%s fit)**\n", rank, s.Analysis.RelevanceScore, s.Analysis.Fit)
	fmt.Fprintf(b, "**%s**\n", s.Item.Title)
	fmt.Fprintf(b, "r/%s | %d upvotes | %d comments | %s\n",
		s.Item.Subreddit, s.Item.Upvotes, s.Item.NumComments, timeAgo(s.Item.CreatedAt, date))
	fmt.Fprintf(b, "Why: %s\n", s.Analysis.Rationale)
	writeReplyPoints(b, s.Analysis.ReplyPoints)
	fmt.Fprintf(b, "%s\n", s.Item.Permalink)
}

func formatComment(b *strings.Builder, s domain.ScoredItem, rank int, date time.Time) {
	fmt.Fprintf(b, "**#%d — Score %.1f/10 (%s fit, %s)**\n",
		rank, s.Analysis.RelevanceScore, s.Analysis.Fit, s.Analysis.Opportunity)
	fmt.Fprintf(b, "On: %q\n", clip(s.Item.PostTitle, 60))
	fmt.Fprintf(b, "Comment by u/%s: %q\n", s.Item.Author, clip(s.Item.Body, 150))
	fmt.Fprintf(b, "%d upvotes | %s\n", s.Item.Upvotes, timeAgo(s.Item.CreatedAt, date))
	fmt.Fprintf(b, "Why: %s\n", s.Analysis.Rationale)
	writeReplyPoints(b, s.Analysis.ReplyPoints)
	fmt.Fprintf(b, "%s\n", s.Item.Permalink)
}

func writeReplyPoints(b *strings.Builder, points []string) {
	if len(points) == 0 {
		return
	}
	b.WriteString("Reply angles:\n")
	for _, p := range points {
		fmt.Fprintf(b, "- %s\n", p)
	}
}

// clip truncates to limit runes, never mid-rune.
func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func timeAgo(at, now time.Time) string {
	d := now.Sub(at)
	switch {
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%d min ago", mins)
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
