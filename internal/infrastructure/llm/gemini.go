// Package llm implements the generator port against the Gemini
// generateContent API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"RedditScout/internal/config"
	"RedditScout/internal/ports"
)

const maxRetries = 3

// GeminiClient calls the generateContent endpoint with rate limiting and
// retry on transient failures. Quota exhaustion (429 after retries) is
// surfaced as ports.ErrQuotaExceeded so the batch layer can escalate.
type GeminiClient struct {
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
	backoff     time.Duration
}

var _ ports.Generator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(750*time.Millisecond), 1),
		backoff:     time.Second,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.model == "" || c.endpoint == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: c.maxTokens,
			Temperature:     c.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.doWithRetry(ctx, body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidate in response")
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// doWithRetry executes the request with up to three retries on 429/5xx,
// doubling the backoff between attempts.
func (c *GeminiClient) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)

	var lastErr error
	sawQuota := false
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = fmt.Errorf("read response: %w", readErr)
				continue
			}
			return respBody, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			sawQuota = true
			lastErr = fmt.Errorf("gemini rate limited: %s", resp.Status)
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("gemini server error: %s", resp.Status)
		default:
			// 4xx other than 429 will not heal with a retry.
			return nil, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
		}
	}

	if sawQuota {
		return nil, fmt.Errorf("%w: %v", ports.ErrQuotaExceeded, lastErr)
	}
	return nil, fmt.Errorf("gemini unavailable after %d attempts: %w", maxRetries+1, lastErr)
}
