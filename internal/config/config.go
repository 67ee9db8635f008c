// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Site    SiteConfig    `mapstructure:"site"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Search  SearchConfig  `mapstructure:"search"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// SiteConfig identifies the site whose sitemap is searched.
type SiteConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	SitemapPath string   `mapstructure:"sitemap_path"`
	Keywords    []string `mapstructure:"keywords"`
}

// HTTPConfig configures outbound HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// SearchConfig governs the match pipeline.
type SearchConfig struct {
	SitemapWorkers  int     `mapstructure:"sitemap_workers"`
	TitleWorkers    int     `mapstructure:"title_workers"`
	SlugCutoff      float64 `mapstructure:"slug_cutoff"`
	TitleCutoff     float64 `mapstructure:"title_cutoff"`
	MaxImages       int     `mapstructure:"max_images"`
	PreviewChars    int     `mapstructure:"preview_chars"`
	ContentSelector string  `mapstructure:"content_selector"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOGSEARCH")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("site.base_url", "https://d5meta.com")
	v.SetDefault("site.sitemap_path", "/wp-sitemap.xml")
	v.SetDefault("site.keywords", []string{
		"blog", "signature", "salesforce", "field", "service", "dispatcher",
	})
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.user_agent", "Mozilla/5.0")
	v.SetDefault("search.sitemap_workers", 5)
	v.SetDefault("search.title_workers", 10)
	v.SetDefault("search.slug_cutoff", 0.5)
	v.SetDefault("search.title_cutoff", 0.6)
	v.SetDefault("search.max_images", 3)
	v.SetDefault("search.preview_chars", 300)
	v.SetDefault("search.content_selector", "div.elementor-widget-container")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute URL")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Search.SitemapWorkers <= 0 {
		return fmt.Errorf("search.sitemap_workers must be > 0")
	}
	if c.Search.TitleWorkers <= 0 {
		return fmt.Errorf("search.title_workers must be > 0")
	}
	if c.Search.SlugCutoff < 0 || c.Search.SlugCutoff > 1 {
		return fmt.Errorf("search.slug_cutoff must be in [0,1]")
	}
	if c.Search.TitleCutoff < 0 || c.Search.TitleCutoff > 1 {
		return fmt.Errorf("search.title_cutoff must be in [0,1]")
	}
	if c.Search.MaxImages < 0 {
		return fmt.Errorf("search.max_images must be >= 0")
	}
	if c.Search.PreviewChars <= 0 {
		return fmt.Errorf("search.preview_chars must be > 0")
	}
	return nil
}

// SitemapURL resolves the configured sitemap path against the base URL.
func (c Config) SitemapURL() string {
	base, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return c.Site.BaseURL + c.Site.SitemapPath
	}
	ref, err := url.Parse(c.Site.SitemapPath)
	if err != nil {
		return c.Site.BaseURL + c.Site.SitemapPath
	}
	return base.ResolveReference(ref).String()
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
