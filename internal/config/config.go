// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig marks a missing or out-of-range setting.
var ErrInvalidConfig = errors.New("invalid config")

// Site names accepted by the CLI and used as adapter labels.
const (
	SiteWiki    = "wiki"
	SiteCatalog = "catalog"
)

// Config captures all crawler configuration knobs loaded via Viper.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Output  OutputConfig  `mapstructure:"output"`
	Wiki    WikiConfig    `mapstructure:"wiki"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the ops HTTP server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// OutputConfig sets the NDJSON path per adapter.
type OutputConfig struct {
	Wiki    string `mapstructure:"wiki"`
	Catalog string `mapstructure:"catalog"`
}

// WikiConfig governs the encyclopedia adapter.
type WikiConfig struct {
	MaxDocuments       int      `mapstructure:"max_documents"`
	MaxDepth           int      `mapstructure:"max_depth"`
	ConcurrentRequests int      `mapstructure:"concurrent_requests"`
	RequestDelayMs     int      `mapstructure:"request_delay_ms"`
	TimeoutSeconds     int      `mapstructure:"timeout_seconds"`
	MinParagraphs      int      `mapstructure:"min_paragraphs"`
	MinWordCount       int      `mapstructure:"min_word_count"`
	MinTextLength      int      `mapstructure:"min_text_length"`
	DedupTitles        bool     `mapstructure:"dedup_titles"`
	MaxLinksPerPage    int      `mapstructure:"max_links_per_page"`
	ExcludedPatterns   []string `mapstructure:"excluded_patterns"`
	StartURLs          []string `mapstructure:"start_urls"`
	AllowedDomains     []string `mapstructure:"allowed_domains"`
	ArticlePathPrefix  string   `mapstructure:"article_path_prefix"`
	TitleSuffix        string   `mapstructure:"title_suffix"`
	UserAgent          string   `mapstructure:"user_agent"`
	RequestsPerSecond  float64  `mapstructure:"requests_per_second"`
	IdleTimeoutMs      int      `mapstructure:"idle_timeout_ms"`
}

// CatalogConfig governs the article-catalog adapter.
type CatalogConfig struct {
	MaxDocuments       int      `mapstructure:"max_documents"`
	ConcurrentRequests int      `mapstructure:"concurrent_requests"`
	RequestDelayMs     int      `mapstructure:"request_delay_ms"`
	TimeoutSeconds     int      `mapstructure:"timeout_seconds"`
	MinWordCount       int      `mapstructure:"min_word_count"`
	CategoryURLs       []string `mapstructure:"category_urls"`
	MaxPages           int      `mapstructure:"max_pages"`
	UserAgent          string   `mapstructure:"user_agent"`
	Accept             string   `mapstructure:"accept"`
	AcceptLanguage     string   `mapstructure:"accept_language"`
	Referer            string   `mapstructure:"referer"`
	ArticlePathPrefix  string   `mapstructure:"article_path_prefix"`
	TitleSuffixPattern string   `mapstructure:"title_suffix_pattern"`
	TextHeadingMarker  string   `mapstructure:"text_heading_marker"`
	StopHeadingMarkers []string `mapstructure:"stop_heading_markers"`
	MaxAttempts        int      `mapstructure:"max_attempts"`
	RetryPauseMs       int      `mapstructure:"retry_pause_ms"`
	PagePauseMs        int      `mapstructure:"page_pause_ms"`
	RequestsPerSecond  float64  `mapstructure:"requests_per_second"`
}

// Load builds a Config from disk/environment. Environment variables use the
// CORPUS_ prefix with dots replaced by underscores.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("output.wiki", "data/corpus.ndjson")
	v.SetDefault("output.catalog", "data/corpus2.ndjson")

	v.SetDefault("wiki.max_documents", 30000)
	v.SetDefault("wiki.max_depth", 3)
	v.SetDefault("wiki.concurrent_requests", 10)
	v.SetDefault("wiki.request_delay_ms", 100)
	v.SetDefault("wiki.timeout_seconds", 30)
	v.SetDefault("wiki.min_paragraphs", 3)
	v.SetDefault("wiki.min_word_count", 1000)
	v.SetDefault("wiki.min_text_length", 0)
	v.SetDefault("wiki.dedup_titles", true)
	v.SetDefault("wiki.max_links_per_page", 150)
	v.SetDefault("wiki.excluded_patterns", []string{
		"Служебная:", "Википедия:", "Файл:", "Категория:", "Шаблон:",
		"Портал:", "Обсуждение", "Участник", "Справка:", "Проект:",
		"Special:", "File:", "Help:", "Talk:", "Template:",
	})
	v.SetDefault("wiki.start_urls", []string{"https://ru.wikipedia.org/wiki/Россия"})
	v.SetDefault("wiki.allowed_domains", []string{"ru.wikipedia.org"})
	v.SetDefault("wiki.article_path_prefix", "/wiki/")
	v.SetDefault("wiki.title_suffix", " — Википедия")
	v.SetDefault("wiki.user_agent", "corpus-crawler/0.1 (educational search corpus)")
	v.SetDefault("wiki.requests_per_second", 0)
	v.SetDefault("wiki.idle_timeout_ms", 500)

	v.SetDefault("catalog.max_documents", 30000)
	v.SetDefault("catalog.concurrent_requests", 2)
	v.SetDefault("catalog.request_delay_ms", 1000)
	v.SetDefault("catalog.timeout_seconds", 30)
	v.SetDefault("catalog.min_word_count", 1000)
	v.SetDefault("catalog.category_urls", []string{"https://cyberleninka.ru/article/c/physics"})
	v.SetDefault("catalog.max_pages", 500)
	v.SetDefault("catalog.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("catalog.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	v.SetDefault("catalog.accept_language", "ru-RU,ru;q=0.9,en;q=0.8")
	v.SetDefault("catalog.referer", "https://cyberleninka.ru/")
	v.SetDefault("catalog.article_path_prefix", "/article/n/")
	v.SetDefault("catalog.title_suffix_pattern", `\s*Текст научной статьи по специальности.*$`)
	v.SetDefault("catalog.text_heading_marker", "Текст научной работы")
	v.SetDefault("catalog.stop_heading_markers", []string{"Список литературы", "Похожие тем"})
	v.SetDefault("catalog.max_attempts", 3)
	v.SetDefault("catalog.retry_pause_ms", 2000)
	v.SetDefault("catalog.page_pause_ms", 1000)
	v.SetDefault("catalog.requests_per_second", 0)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if err := c.Wiki.Validate(); err != nil {
		return err
	}
	return c.Catalog.Validate()
}

// Validate checks the encyclopedia settings.
func (w WikiConfig) Validate() error {
	switch {
	case w.MaxDocuments <= 0:
		return invalid("wiki.max_documents must be > 0")
	case w.MaxDepth < 0:
		return invalid("wiki.max_depth must be >= 0")
	case w.ConcurrentRequests <= 0:
		return invalid("wiki.concurrent_requests must be > 0")
	case w.RequestDelayMs < 0:
		return invalid("wiki.request_delay_ms must be >= 0")
	case w.TimeoutSeconds <= 0:
		return invalid("wiki.timeout_seconds must be > 0")
	case w.MinParagraphs < 0 || w.MinWordCount < 0 || w.MinTextLength < 0:
		return invalid("wiki quality thresholds must be >= 0")
	case w.MaxLinksPerPage < 0:
		return invalid("wiki.max_links_per_page must be >= 0")
	case len(w.StartURLs) == 0:
		return invalid("wiki.start_urls must not be empty")
	case w.ArticlePathPrefix == "":
		return invalid("wiki.article_path_prefix must be set")
	case w.UserAgent == "":
		return invalid("wiki.user_agent must be set")
	case w.IdleTimeoutMs <= 0:
		return invalid("wiki.idle_timeout_ms must be > 0")
	}
	return nil
}

// Validate checks the catalog settings.
func (c CatalogConfig) Validate() error {
	switch {
	case c.MaxDocuments <= 0:
		return invalid("catalog.max_documents must be > 0")
	case c.ConcurrentRequests <= 0:
		return invalid("catalog.concurrent_requests must be > 0")
	case c.RequestDelayMs < 0:
		return invalid("catalog.request_delay_ms must be >= 0")
	case c.TimeoutSeconds <= 0:
		return invalid("catalog.timeout_seconds must be > 0")
	case c.MinWordCount < 0:
		return invalid("catalog.min_word_count must be >= 0")
	case len(c.CategoryURLs) == 0:
		return invalid("catalog.category_urls must not be empty")
	case c.MaxPages <= 0:
		return invalid("catalog.max_pages must be > 0")
	case c.ArticlePathPrefix == "":
		return invalid("catalog.article_path_prefix must be set")
	case c.TextHeadingMarker == "":
		return invalid("catalog.text_heading_marker must be set")
	case c.MaxAttempts <= 0:
		return invalid("catalog.max_attempts must be > 0")
	case c.RetryPauseMs < 0 || c.PagePauseMs < 0:
		return invalid("catalog pauses must be >= 0")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// RequestDelay is the polite delay before each fetch.
func (w WikiConfig) RequestDelay() time.Duration {
	return time.Duration(w.RequestDelayMs) * time.Millisecond
}

// Timeout bounds a single fetch.
func (w WikiConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// IdleTimeout is how long a worker waits on an empty frontier before rechecking.
func (w WikiConfig) IdleTimeout() time.Duration {
	return time.Duration(w.IdleTimeoutMs) * time.Millisecond
}

// RequestDelay is the polite delay before each article fetch and the base
// unit of the listing retry backoff.
func (c CatalogConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// Timeout bounds a single fetch.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryPause is the extra pause after a failed listing attempt.
func (c CatalogConfig) RetryPause() time.Duration {
	return time.Duration(c.RetryPauseMs) * time.Millisecond
}

// PagePause is the pause between listing pages.
func (c CatalogConfig) PagePause() time.Duration {
	return time.Duration(c.PagePauseMs) * time.Millisecond
}
