package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"RedditScout/internal/domain"
)

const maxReplyPoints = 5

type rawAnalysis struct {
	// Pointer so an absent score is distinguishable from a literal 0.
	Score       *float64 `json:"score"`
	Opportunity string   `json:"opportunity"`
	Rationale   string   `json:"rationale"`
	ReplyPoints []string `json:"reply_points"`
}

// parseAnalysis validates one raw model response into a domain.Analysis.
// Any validation failure is an error; the caller drops the item rather
// than defaulting missing fields.
func parseAnalysis(response string, kind domain.Kind) (domain.Analysis, error) {
	payload := extractJSON(response)
	if payload == "" {
		return domain.Analysis{}, fmt.Errorf("no JSON object in response")
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	if raw.Score == nil {
		return domain.Analysis{}, fmt.Errorf("missing score")
	}
	score := *raw.Score
	if score < 0 || score > 10 {
		return domain.Analysis{}, fmt.Errorf("score %.2f outside [0,10]", score)
	}
	if strings.TrimSpace(raw.Rationale) == "" {
		return domain.Analysis{}, fmt.Errorf("empty rationale")
	}

	points := make([]string, 0, len(raw.ReplyPoints))
	for _, p := range raw.ReplyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return domain.Analysis{}, fmt.Errorf("no reply points")
	}
	if len(points) > maxReplyPoints {
		points = points[:maxReplyPoints]
	}

	analysis := domain.Analysis{
		RelevanceScore: score,
		Fit:            domain.FitForScore(score),
		Rationale:      strings.TrimSpace(raw.Rationale),
		ReplyPoints:    points,
	}

	if kind == domain.KindComment {
		opp, err := parseOpportunity(raw.Opportunity)
		if err != nil {
			return domain.Analysis{}, err
		}
		analysis.Opportunity = opp
	}

	return analysis, nil
}

func parseOpportunity(value string) (domain.OpportunityKind, error) {
	switch domain.OpportunityKind(strings.ToLower(strings.TrimSpace(value))) {
	case domain.OpportunityAgree:
		return domain.OpportunityAgree, nil
	case domain.OpportunitySupplement:
		return domain.OpportunitySupplement, nil
	case domain.OpportunityCorrect:
		return domain.OpportunityCorrect, nil
	case domain.OpportunityIgnore:
		return domain.OpportunityIgnore, nil
	}
	return "", fmt.Errorf("unknown opportunity kind %q", value)
}

// extractJSON pulls the JSON object out of a response that may wrap it in
// markdown code fences or surrounding prose.
func extractJSON(response string) string {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(response, "```"); idx >= 0 {
		rest := response[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(response[start : end+1])
	}
	return ""
}
