package filter

import (
	"errors"
	"testing"
	"time"

	"RedditScout/internal/config"
	"RedditScout/internal/domain"
)

func post(id string, upvotes, comments int, title, body string) domain.Item {
	return domain.Item{
		Kind:        domain.KindPost,
		ID:          id,
		Title:       title,
		Body:        body,
		Upvotes:     upvotes,
		NumComments: comments,
		CreatedAt:   time.Now(),
	}
}

func comment(id string, score int, body string) domain.Item {
	return domain.Item{
		Kind:      domain.KindComment,
		ID:        id,
		Body:      body,
		Upvotes:   score,
		CreatedAt: time.Now(),
	}
}

func TestPostUpvoteThreshold(t *testing.T) {
	t.Parallel()

	rules, err := NewRules(config.FilterConfig{MinUpvotes: 5})
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	items := []domain.Item{
		post("a", 10, 0, "first", ""),
		post("b", 3, 0, "second", ""),
		post("c", 20, 0, "third", ""),
	}

	passed := rules.Apply(items)
	if len(passed) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(passed))
	}
	if passed[0].ID != "a" || passed[1].ID != "c" {
		t.Fatalf("unexpected candidates: %s, %s", passed[0].ID, passed[1].ID)
	}
}

func TestKeywordRescuesBelowThreshold(t *testing.T) {
	t.Parallel()

	rules, err := NewRules(config.FilterConfig{
		MinUpvotes: 5,
		Keywords:   []string{"speaking"},
		MatchMode:  config.MatchAny,
	})
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	// Below the upvote threshold but matches a keyword: inclusive OR
	// keeps it.
	item := post("a", 1, 0, "How do I improve my Speaking score?", "")
	if !rules.Passes(item) {
		t.Fatal("keyword match should pass the item in any-mode")
	}
}

func TestMatchAllRequiresBoth(t *testing.T) {
	t.Parallel()

	rules, err := NewRules(config.FilterConfig{
		MinUpvotes: 5,
		Keywords:   []string{"speaking"},
		MatchMode:  config.MatchAll,
	})
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	if rules.Passes(post("a", 1, 0, "speaking help", "")) {
		t.Fatal("all-mode must reject an item failing the threshold")
	}
	if rules.Passes(post("b", 10, 0, "unrelated title", "nothing here")) {
		t.Fatal("all-mode must reject an item missing every keyword")
	}
	if !rules.Passes(post("c", 10, 0, "speaking help", "")) {
		t.Fatal("all-mode should pass an item matching both")
	}
}

func TestCommentRules(t *testing.T) {
	t.Parallel()

	rules, err := NewRules(config.FilterConfig{
		MinCommentScore:  3,
		MinCommentLength: 50,
	})
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	long := "this comment is definitely long enough to pass the minimum length rule"
	if !rules.Passes(comment("a", 5, long)) {
		t.Fatal("qualifying comment rejected")
	}
	if rules.Passes(comment("b", 2, long)) {
		t.Fatal("low-score comment accepted")
	}
	if rules.Passes(comment("c", 5, "too short")) {
		t.Fatal("short comment accepted")
	}
	if rules.Passes(comment("d", 5, "[deleted]")) {
		t.Fatal("deleted comment accepted")
	}
}

func TestKeywordMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	rules, err := NewRules(config.FilterConfig{
		MinUpvotes: 100,
		Keywords:   []string{"TOEFL"},
	})
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	if !rules.Passes(post("a", 0, 0, "my toefl experience", "")) {
		t.Fatal("case-insensitive keyword match failed")
	}
}

func TestNewRulesRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewRules(config.FilterConfig{MinUpvotes: -1})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}

	_, err = NewRules(config.FilterConfig{MatchMode: "sometimes"})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for bad match mode, got %v", err)
	}
}
