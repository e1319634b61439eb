package rank

import (
	"sort"
	"time"

	"RedditScout/internal/domain"
)

// Rank partitions scored items by kind and builds the two top-N lists.
// Ordering: relevance score descending, then upvotes descending, then
// created time descending. Full ties keep their relative input order, so
// identical input always yields identical output.
func Rank(items []domain.ScoredItem, topN int, date time.Time) domain.Report {
	var posts, comments []domain.ScoredItem
	for _, it := range items {
		switch it.Item.Kind {
		case domain.KindPost:
			posts = append(posts, it)
		case domain.KindComment:
			comments = append(comments, it)
		}
	}

	sortScored(posts)
	sortScored(comments)

	return domain.Report{
		Date:     date,
		Posts:    truncate(posts, topN),
		Comments: truncate(comments, topN),
	}
}

func sortScored(items []domain.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Analysis.RelevanceScore != b.Analysis.RelevanceScore {
			return a.Analysis.RelevanceScore > b.Analysis.RelevanceScore
		}
		if a.Item.Upvotes != b.Item.Upvotes {
			return a.Item.Upvotes > b.Item.Upvotes
		}
		return a.Item.CreatedAt.After(b.Item.CreatedAt)
	})
}

func truncate(items []domain.ScoredItem, n int) []domain.ScoredItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
