package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if len(cfg.Reddit.Subreddits) == 0 {
		t.Fatal("defaults must include subreddits")
	}
	if cfg.Database.TTLDays != 3 {
		t.Fatalf("default TTL should be 3 days, got %d", cfg.Database.TTLDays)
	}
	if cfg.Output.TopN != 10 {
		t.Fatalf("default topN should be 10, got %d", cfg.Output.TopN)
	}
	if cfg.Filters.MatchMode != MatchAny {
		t.Fatalf("default match mode should be any, got %s", cfg.Filters.MatchMode)
	}
	if got := cfg.Database.TTL().Hours(); got != 72 {
		t.Fatalf("TTL() should be 72h, got %vh", got)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
reddit:
  subreddits: [IELTS]
  postLimit: 20
filters:
  minUpvotes: 8
  keywords: [speaking, writing]
output:
  topN: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if len(cfg.Reddit.Subreddits) != 1 || cfg.Reddit.Subreddits[0] != "IELTS" {
		t.Fatalf("subreddits not overridden: %v", cfg.Reddit.Subreddits)
	}
	if cfg.Filters.MinUpvotes != 8 {
		t.Fatalf("minUpvotes not overridden: %d", cfg.Filters.MinUpvotes)
	}
	if cfg.Output.TopN != 5 {
		t.Fatalf("topN not overridden: %d", cfg.Output.TopN)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.TTLDays != 3 {
		t.Fatalf("unrelated default lost: %d", cfg.Database.TTLDays)
	}
	if cfg.Filters.MinCommentScore != 3 {
		t.Fatalf("unrelated filter default lost: %d", cfg.Filters.MinCommentScore)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv(geminiAPIKeyEnv, "env-key")
	t.Setenv(discordWebhookEnv, "https://example.org/webhook")

	cfg := Load()

	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("gemini key not taken from env: %q", cfg.Gemini.APIKey)
	}
	if cfg.Discord.WebhookURL != "https://example.org/webhook" {
		t.Fatalf("webhook not taken from env: %q", cfg.Discord.WebhookURL)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	good := defaultConfig()
	if err := good.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := defaultConfig()
	bad.Output.TopN = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero topN must be rejected")
	}

	bad = defaultConfig()
	bad.Filters.MinUpvotes = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("negative threshold must be rejected")
	}

	bad = defaultConfig()
	bad.Scorer.MinScore = 11
	if err := bad.Validate(); err == nil {
		t.Fatal("out-of-range scorer floor must be rejected")
	}

	bad = defaultConfig()
	bad.Reddit.Subreddits = nil
	if err := bad.Validate(); err == nil {
		t.Fatal("empty subreddit list must be rejected")
	}
}
