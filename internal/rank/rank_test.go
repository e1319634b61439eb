package rank

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"RedditScout/internal/domain"
)

func scored(id string, kind domain.Kind, relevance float64, upvotes int, created time.Time) domain.ScoredItem {
	return domain.ScoredItem{
		Item: domain.Item{
			Kind:      kind,
			ID:        id,
			Upvotes:   upvotes,
			CreatedAt: created,
		},
		Analysis: domain.Analysis{RelevanceScore: relevance},
	}
}

func ids(items []domain.ScoredItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Item.ID)
	}
	return out
}

func TestRankOrdering(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.ScoredItem{
		scored("low", domain.KindPost, 5.0, 100, base),
		scored("high", domain.KindPost, 9.0, 1, base),
		scored("mid", domain.KindPost, 7.0, 1, base),
	}

	got := Rank(items, 10, base)
	want := []string{"high", "mid", "low"}
	if diff := cmp.Diff(want, ids(got.Posts)); diff != "" {
		t.Fatalf("post order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankTieBreaks(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	// Equal relevance: upvotes decide. Equal upvotes too: newer first.
	items := []domain.ScoredItem{
		scored("older", domain.KindPost, 8.0, 10, base),
		scored("newer", domain.KindPost, 8.0, 10, base.Add(time.Hour)),
		scored("popular", domain.KindPost, 8.0, 50, base),
	}

	got := Rank(items, 10, base)
	want := []string{"popular", "newer", "older"}
	if diff := cmp.Diff(want, ids(got.Posts)); diff != "" {
		t.Fatalf("tie-break mismatch (-want +got):\n%s", diff)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.ScoredItem{
		scored("a", domain.KindPost, 8.0, 10, base),
		scored("b", domain.KindPost, 8.0, 10, base), // full tie with a
		scored("c", domain.KindComment, 6.0, 3, base),
	}

	first := Rank(items, 10, base)
	second := Rank(items, 10, base)

	if diff := cmp.Diff(ids(first.Posts), ids(second.Posts)); diff != "" {
		t.Fatalf("ranking not deterministic:\n%s", diff)
	}
	// Full ties keep input order.
	if got := ids(first.Posts); got[0] != "a" || got[1] != "b" {
		t.Fatalf("full tie should be stable, got %v", got)
	}
}

func TestRankPartitionsAndTruncates(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	var items []domain.ScoredItem
	for i := 0; i < 5; i++ {
		items = append(items, scored(string(rune('a'+i)), domain.KindPost, float64(i), i, base))
	}
	items = append(items, scored("c1", domain.KindComment, 9.0, 1, base))

	got := Rank(items, 3, base)
	if len(got.Posts) != 3 {
		t.Fatalf("expected 3 posts after truncation, got %d", len(got.Posts))
	}
	if len(got.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(got.Comments))
	}
	if got.Comments[0].Item.ID != "c1" {
		t.Fatalf("comment leaked into wrong partition: %s", got.Comments[0].Item.ID)
	}
}
