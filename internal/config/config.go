package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "REDDITSCOUT_CONFIG"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	geminiModelEnv     = "GEMINI_MODEL"
	discordWebhookEnv  = "DISCORD_WEBHOOK_URL"
	redditUserAgentEnv = "REDDIT_USER_AGENT"
	databasePathEnv    = "REDDITSCOUT_DB_PATH"
)

// MatchMode selects how filter rule categories combine.
type MatchMode string

const (
	// MatchAny passes an item when any rule category matches
	// (inclusive OR, the default).
	MatchAny MatchMode = "any"
	// MatchAll requires every configured rule category to match.
	MatchAll MatchMode = "all"
)

// Config holds all settings threaded into component constructors.
type Config struct {
	Reddit    RedditConfig    `yaml:"reddit"`
	Filters   FilterConfig    `yaml:"filters"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Scorer    ScorerConfig    `yaml:"scorer"`
	Discord   DiscordConfig   `yaml:"discord"`
	Database  DatabaseConfig  `yaml:"database"`
	Output    OutputConfig    `yaml:"output"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RedditConfig describes what to harvest and how.
type RedditConfig struct {
	Subreddits []string `yaml:"subreddits"`
	UserAgent  string   `yaml:"userAgent"`
	PostLimit  int      `yaml:"postLimit"`
	TimeFilter string   `yaml:"timeFilter"`
	Sorts      []string `yaml:"sorts"`
	Scanner    string   `yaml:"scanner"`
}

// FilterConfig holds the static candidate rules.
type FilterConfig struct {
	MinUpvotes       int       `yaml:"minUpvotes"`
	MinComments      int       `yaml:"minComments"`
	MinCommentScore  int       `yaml:"minCommentScore"`
	MinCommentLength int       `yaml:"minCommentLength"`
	Keywords         []string  `yaml:"keywords"`
	MatchMode        MatchMode `yaml:"matchMode"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
	Workers     int     `yaml:"workers"`
}

// ScorerConfig tunes acceptance of analyzed items.
type ScorerConfig struct {
	MinScore float64 `yaml:"minScore"`
}

// DiscordConfig wires the outbound webhook.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// DatabaseConfig describes the seen-store file.
type DatabaseConfig struct {
	Path    string `yaml:"path"`
	TTLDays int    `yaml:"ttlDays"`
}

// OutputConfig caps report size.
type OutputConfig struct {
	TopN int `yaml:"topN"`
}

// SchedulerConfig defines when the pipeline should run. A zero interval
// means a single run per invocation.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TTL returns the dedupe horizon as a duration.
func (d DatabaseConfig) TTL() time.Duration {
	days := d.TTLDays
	if days <= 0 {
		days = 3
	}
	return time.Duration(days) * 24 * time.Hour
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Reddit.Subreddits) == 0 {
		cfg.Reddit.Subreddits = defaultConfig().Reddit.Subreddits
	}

	return cfg
}

// Validate rejects rule sets that would make the run meaningless. It runs
// before any scoring spend.
func (c Config) Validate() error {
	if len(c.Reddit.Subreddits) == 0 {
		return fmt.Errorf("config: no subreddits configured")
	}
	if c.Filters.MinUpvotes < 0 || c.Filters.MinComments < 0 || c.Filters.MinCommentScore < 0 {
		return fmt.Errorf("config: negative filter threshold")
	}
	if c.Filters.MatchMode != MatchAny && c.Filters.MatchMode != MatchAll {
		return fmt.Errorf("config: unknown filter match mode %q", c.Filters.MatchMode)
	}
	if c.Output.TopN <= 0 {
		return fmt.Errorf("config: topN must be positive, got %d", c.Output.TopN)
	}
	if c.Scorer.MinScore < 0 || c.Scorer.MinScore > 10 {
		return fmt.Errorf("config: scorer minScore %.1f outside [0,10]", c.Scorer.MinScore)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv(discordWebhookEnv); v != "" {
		c.Discord.WebhookURL = v
	}
	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if len(override.Reddit.Subreddits) > 0 {
		base.Reddit.Subreddits = override.Reddit.Subreddits
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if override.Reddit.PostLimit > 0 {
		base.Reddit.PostLimit = override.Reddit.PostLimit
	}
	if override.Reddit.TimeFilter != "" {
		base.Reddit.TimeFilter = override.Reddit.TimeFilter
	}
	if len(override.Reddit.Sorts) > 0 {
		base.Reddit.Sorts = override.Reddit.Sorts
	}
	if override.Reddit.Scanner != "" {
		base.Reddit.Scanner = override.Reddit.Scanner
	}

	if override.Filters.MinUpvotes != 0 {
		base.Filters.MinUpvotes = override.Filters.MinUpvotes
	}
	if override.Filters.MinComments != 0 {
		base.Filters.MinComments = override.Filters.MinComments
	}
	if override.Filters.MinCommentScore != 0 {
		base.Filters.MinCommentScore = override.Filters.MinCommentScore
	}
	if override.Filters.MinCommentLength != 0 {
		base.Filters.MinCommentLength = override.Filters.MinCommentLength
	}
	if len(override.Filters.Keywords) > 0 {
		base.Filters.Keywords = override.Filters.Keywords
	}
	if override.Filters.MatchMode != "" {
		base.Filters.MatchMode = override.Filters.MatchMode
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.MaxTokens > 0 {
		base.Gemini.MaxTokens = override.Gemini.MaxTokens
	}
	if override.Gemini.Temperature > 0 {
		base.Gemini.Temperature = override.Gemini.Temperature
	}
	if override.Gemini.Workers > 0 {
		base.Gemini.Workers = override.Gemini.Workers
	}

	if override.Scorer.MinScore > 0 {
		base.Scorer.MinScore = override.Scorer.MinScore
	}

	if override.Discord.WebhookURL != "" {
		base.Discord.WebhookURL = override.Discord.WebhookURL
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Database.TTLDays > 0 {
		base.Database.TTLDays = override.Database.TTLDays
	}

	if override.Output.TopN > 0 {
		base.Output.TopN = override.Output.TopN
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Reddit: RedditConfig{
			Subreddits: []string{"TOEFL", "ToeflAdvice"},
			UserAgent:  "RedditScout/1.0",
			PostLimit:  50,
			TimeFilter: "day",
			Sorts:      []string{"hot", "rising", "top", "new"},
			Scanner:    "json",
		},
		Filters: FilterConfig{
			MinUpvotes:       5,
			MinComments:      2,
			MinCommentScore:  3,
			MinCommentLength: 50,
			MatchMode:        MatchAny,
		},
		Gemini: GeminiConfig{
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-1.5-flash",
			MaxTokens:   2048,
			Temperature: 0.3,
			Workers:     3,
		},
		Scorer:   ScorerConfig{MinScore: 5.0},
		Database: DatabaseConfig{Path: "data/seen.db", TTLDays: 3},
		Output:   OutputConfig{TopN: 10},
		Scheduler: SchedulerConfig{
			Timezone: defaultTimezone,
			location: tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
