// Package discord delivers reports through a webhook, splitting them
// into the channel's message-size budget.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"RedditScout/internal/ports"
)

// Discord rejects messages over 2000 characters; 1900 leaves headroom
// for the JSON envelope.
const maxChunkLen = 1900

const maxAttempts = 3

// Notifier posts report chunks to a Discord webhook. A single chunk
// failing after retries fails the whole publish, so the caller never
// commits dedupe state for a partially delivered report.
type Notifier struct {
	webhookURL string
	client     *http.Client
	backoff    time.Duration
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		backoff:    time.Second,
	}
}

// Publish sends the report, chunked to the message-size limit. Chunks go
// out in order; the first chunk that exhausts its retries aborts.
func (n *Notifier) Publish(ctx context.Context, report string) error {
	if n.webhookURL == "" {
		return fmt.Errorf("discord notifier misconfigured: empty webhook URL")
	}

	chunks := splitMessage(report, maxChunkLen)
	for i, chunk := range chunks {
		if err := n.sendChunk(ctx, chunk); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (n *Notifier) sendChunk(ctx context.Context, chunk string) error {
	payload, err := json.Marshal(map[string]string{"content": chunk})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.backoff << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("do request: %w", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode < http.StatusMultipleChoices {
			return nil
		}
		lastErr = fmt.Errorf("discord returned %s", resp.Status)
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return lastErr
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// splitMessage breaks the report into chunks on line boundaries. A
// single line longer than the limit is hard-cut, on a rune boundary so
// a chunk never carries half a multi-byte character.
func splitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(message, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				// Limit smaller than one rune; cut mid-rune rather
				// than loop.
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len() > 0 && current.Len()+len(line)+1 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
		if current.Len() > limit {
			// The line alone filled the budget; ship it without the
			// trailing newline rather than emit an empty chunk first.
			chunks = append(chunks, strings.TrimSuffix(current.String(), "\n"))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
