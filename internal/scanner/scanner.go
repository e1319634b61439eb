package scanner

import (
	"context"
	"fmt"

	"RedditScout/internal/domain"
)

// Request carries all parameters required to harvest one subreddit.
type Request struct {
	Subreddit  string
	Sorts      []string // listing strategies: hot, rising, top, new
	TimeFilter string   // window for the "top" listing
	Limit      int      // total post budget, split across sorts
}

// Scanner captures a single harvesting strategy (JSON API, HTML fallback).
type Scanner interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Post, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[s.Name()] = s
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if s, ok := r.scanners[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
