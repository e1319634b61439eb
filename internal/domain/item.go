package domain

import "time"

// Kind distinguishes the two harvested record types.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Post is a fetched Reddit submission. Immutable once fetched.
type Post struct {
	ID          string
	Title       string
	Body        string
	Author      string
	Subreddit   string
	Upvotes     int
	NumComments int
	CreatedAt   time.Time
	Permalink   string
}

// Comment is a fetched Reddit comment with its parent post context.
type Comment struct {
	ID        string
	Body      string
	Author    string
	Subreddit string
	Score     int
	CreatedAt time.Time
	Permalink string
	PostID    string
	PostTitle string
	Depth     int
}

// Item is the unified view the filter, scorer, and ranker operate on.
type Item struct {
	Kind        Kind
	ID          string
	Title       string // empty for comments
	Body        string
	Author      string
	Subreddit   string
	Upvotes     int
	NumComments int // posts only
	CreatedAt   time.Time
	Permalink   string
	PostID      string // comments: parent post id
	PostTitle   string // comments: parent post title
}

// ItemFromPost adapts a post into the unified item view.
func ItemFromPost(p Post) Item {
	return Item{
		Kind:        KindPost,
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Author:      p.Author,
		Subreddit:   p.Subreddit,
		Upvotes:     p.Upvotes,
		NumComments: p.NumComments,
		CreatedAt:   p.CreatedAt,
		Permalink:   p.Permalink,
		PostID:      p.ID,
	}
}

// ItemFromComment adapts a comment into the unified item view.
func ItemFromComment(c Comment) Item {
	return Item{
		Kind:      KindComment,
		ID:        c.ID,
		Body:      c.Body,
		Author:    c.Author,
		Subreddit: c.Subreddit,
		Upvotes:   c.Score,
		CreatedAt: c.CreatedAt,
		Permalink: c.Permalink,
		PostID:    c.PostID,
		PostTitle: c.PostTitle,
	}
}

// Fit buckets the numeric relevance score for readers of the report.
type Fit string

const (
	FitHigh   Fit = "high"
	FitMedium Fit = "medium"
	FitLow    Fit = "low"
)

// FitForScore buckets a numeric relevance score into a categorical label.
func FitForScore(score float64) Fit {
	switch {
	case score >= 8:
		return FitHigh
	case score >= 6.5:
		return FitMedium
	default:
		return FitLow
	}
}

// OpportunityKind classifies how a reply should relate to an existing
// comment. Posts carry no opportunity kind.
type OpportunityKind string

const (
	OpportunityAgree      OpportunityKind = "agree"
	OpportunitySupplement OpportunityKind = "supplement"
	OpportunityCorrect    OpportunityKind = "correct"
	OpportunityIgnore     OpportunityKind = "ignore"
)

// Analysis is the validated output of the relevance scorer for one item.
type Analysis struct {
	RelevanceScore float64 // [0,10]
	Fit            Fit
	Opportunity    OpportunityKind // comments only
	Rationale      string
	ReplyPoints    []string // 1–5 suggested angles
}

// ScoredItem pairs a surviving candidate with its analysis.
type ScoredItem struct {
	Item     Item
	Analysis Analysis
}

// Report holds the two independently ranked top-N lists for one run.
type Report struct {
	Date     time.Time
	Posts    []ScoredItem
	Comments []ScoredItem
}

// SeenRecord tracks an id already delivered to the channel.
type SeenRecord struct {
	ID          string
	FirstSeenAt time.Time
}

// StoreStats aggregates seen-store counters for the run summary.
type StoreStats struct {
	Total  int
	Recent int // within the requested window
}
