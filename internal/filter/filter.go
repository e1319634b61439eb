package filter

import (
	"fmt"
	"strings"

	"RedditScout/internal/config"
	"RedditScout/internal/domain"
)

// Reddit replaces the body of deleted or moderated content with these
// markers; they are never worth scoring.
var deletedMarkers = map[string]struct{}{
	"[deleted]": {},
	"[removed]": {},
}

// ConfigError reports malformed filter rules. It is fatal for the run and
// raised before any scoring spend.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filter rules: %s", e.Reason)
}

// Rules evaluates static per-item predicates. Evaluation is pure and
// independent per item; no cross-item state.
type Rules struct {
	minUpvotes       int
	minComments      int
	minCommentScore  int
	minCommentLength int
	keywords         []string
	matchAll         bool
}

// NewRules compiles the configured thresholds and keyword set.
func NewRules(cfg config.FilterConfig) (*Rules, error) {
	if cfg.MinUpvotes < 0 || cfg.MinComments < 0 || cfg.MinCommentScore < 0 || cfg.MinCommentLength < 0 {
		return nil, &ConfigError{Reason: "negative threshold"}
	}
	mode := cfg.MatchMode
	if mode == "" {
		mode = config.MatchAny
	}
	if mode != config.MatchAny && mode != config.MatchAll {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown match mode %q", mode)}
	}

	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return &Rules{
		minUpvotes:       cfg.MinUpvotes,
		minComments:      cfg.MinComments,
		minCommentScore:  cfg.MinCommentScore,
		minCommentLength: cfg.MinCommentLength,
		keywords:         keywords,
		matchAll:         mode == config.MatchAll,
	}, nil
}

// Apply returns the items that pass the rules, preserving input order.
func (r *Rules) Apply(items []domain.Item) []domain.Item {
	passed := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if r.Passes(item) {
			passed = append(passed, item)
		}
	}
	return passed
}

// Passes evaluates a single item against the rules for its kind.
func (r *Rules) Passes(item domain.Item) bool {
	if _, dead := deletedMarkers[strings.TrimSpace(item.Body)]; dead {
		return false
	}

	var threshold bool
	switch item.Kind {
	case domain.KindPost:
		threshold = item.Upvotes >= r.minUpvotes && item.NumComments >= r.minComments
	case domain.KindComment:
		threshold = item.Upvotes >= r.minCommentScore && len(item.Body) >= r.minCommentLength
	default:
		return false
	}

	keyword := r.matchesKeyword(item)

	if r.matchAll {
		// With no keywords configured the keyword rule is vacuous.
		if len(r.keywords) == 0 {
			return threshold
		}
		return threshold && keyword
	}
	return threshold || keyword
}

func (r *Rules) matchesKeyword(item domain.Item) bool {
	if len(r.keywords) == 0 {
		return false
	}
	text := strings.ToLower(item.Title + " " + item.Body)
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
