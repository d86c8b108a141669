package config

import (
	"strings"
	"time"

	"protestlens/internal/pipeline"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// InputConfig points at one raw platform export.
type InputConfig struct {
	Platform string `mapstructure:"platform"` // tiktok | twitter
	Path     string `mapstructure:"path"`
	Mapping  string `mapstructure:"mapping"` // optional field-mapping YAML; empty uses built-in defaults
}

// BucketsConfig controls the temporal signal extractor.
type BucketsConfig struct {
	Width        string `mapstructure:"width"`         // duration string, e.g. "24h"
	MinOccupancy int    `mapstructure:"min_occupancy"` // feedback edge: widen once if mean posts per non-empty bucket is below this
	AutoWiden    bool   `mapstructure:"auto_widen"`
}

// FilterConfig narrows the corpus to the research topic before analysis. A
// post passes when any hashtag matches or its text contains any keyword;
// empty lists disable filtering.
type FilterConfig struct {
	Hashtags []string `mapstructure:"hashtags"` // leading '#' optional
	Keywords []string `mapstructure:"keywords"` // case-insensitive substrings
}

// SentimentConfig selects the scoring capability.
type SentimentConfig struct {
	Scorer      string `mapstructure:"scorer"`       // lexicon | openai
	LexiconPath string `mapstructure:"lexicon_path"` // optional YAML wordlist override
	Cache       bool   `mapstructure:"cache"`        // redis score cache
}

// OpenAIConfig holds OpenAI credentials for the LLM-backed scorer.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RedisConfig holds redis connection settings for the score cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GraphConfig selects which centrality metrics to compute.
type GraphConfig struct {
	Metrics []string `mapstructure:"metrics"`
}

// ArchiveConfig points at the local sqlite archive. Empty path disables it.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// ExportConfig controls the aggregation output.
type ExportConfig struct {
	Path        string `mapstructure:"path"` // supports {.CurrentDate}
	TopHashtags int    `mapstructure:"top_hashtags"`
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Inputs    []InputConfig   `mapstructure:"inputs"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Buckets   BucketsConfig   `mapstructure:"buckets"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Export    ExportConfig    `mapstructure:"export"`
	Workers   int             `mapstructure:"workers"`
}

// KnownMetrics are the centrality metrics the graph stage can compute.
var KnownMetrics = []string{"in_degree", "out_degree", "betweenness"}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Buckets.Width == "" {
		c.Buckets.Width = "24h"
	}
	if c.Sentiment.Scorer == "" {
		c.Sentiment.Scorer = "lexicon"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if len(c.Graph.Metrics) == 0 {
		c.Graph.Metrics = append([]string(nil), KnownMetrics...)
	}
	if c.Export.Path == "" {
		c.Export.Path = "out/export-{.CurrentDate}.csv"
	}
	if c.Export.TopHashtags == 0 {
		c.Export.TopHashtags = 5
	}
}

// BucketWidth parses the configured bucket width.
func (c *Config) BucketWidth() (time.Duration, error) {
	d, err := time.ParseDuration(c.Buckets.Width)
	if err != nil || d <= 0 {
		return 0, &pipeline.ConfigurationError{Key: "buckets.width", Reason: "must be a positive duration"}
	}
	return d, nil
}

// Validate fails fast on invalid configuration, before any processing.
func (c *Config) Validate() error {
	if _, err := c.BucketWidth(); err != nil {
		return err
	}
	switch strings.ToLower(c.Sentiment.Scorer) {
	case "lexicon", "openai":
	default:
		return &pipeline.ConfigurationError{Key: "sentiment.scorer", Reason: "unknown scorer " + c.Sentiment.Scorer}
	}
	if strings.ToLower(c.Sentiment.Scorer) == "openai" && strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return &pipeline.ConfigurationError{Key: "openai.api_key", Reason: "required for the openai scorer"}
	}
	for _, m := range c.Graph.Metrics {
		if !knownMetric(m) {
			return &pipeline.ConfigurationError{Key: "graph.metrics", Reason: "unknown metric " + m}
		}
	}
	for _, in := range c.Inputs {
		switch strings.ToLower(in.Platform) {
		case "tiktok", "twitter":
		default:
			return &pipeline.ConfigurationError{Key: "inputs", Reason: "unknown platform " + in.Platform}
		}
		if strings.TrimSpace(in.Path) == "" {
			return &pipeline.ConfigurationError{Key: "inputs", Reason: "missing path for input " + strings.ToLower(in.Platform)}
		}
	}
	if c.Workers < 0 {
		return &pipeline.ConfigurationError{Key: "workers", Reason: "must be >= 0"}
	}
	return nil
}

func knownMetric(m string) bool {
	for _, k := range KnownMetrics {
		if m == k {
			return true
		}
	}
	return false
}
