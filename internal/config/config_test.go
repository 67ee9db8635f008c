package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Site.BaseURL != "https://d5meta.com" {
		t.Fatalf("unexpected default base URL: %s", cfg.Site.BaseURL)
	}
	if got := cfg.SitemapURL(); got != "https://d5meta.com/wp-sitemap.xml" {
		t.Fatalf("unexpected sitemap URL: %s", got)
	}
	if len(cfg.Site.Keywords) == 0 {
		t.Fatal("expected default keyword list to be non-empty")
	}
	if cfg.Search.SlugCutoff != 0.5 || cfg.Search.TitleCutoff != 0.6 {
		t.Fatalf("unexpected default cutoffs: %+v", cfg.Search)
	}
	if got := cfg.FetchTimeout(); got != 10*time.Second {
		t.Fatalf("expected fetch timeout 10s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  shutdown_timeout_seconds: 5
site:
  base_url: https://blog.example.com
  sitemap_path: /sitemap_index.xml
  keywords: ["news", "press"]
http:
  timeout_seconds: 20
  user_agent: blogsearch-bot/1.0
search:
  sitemap_workers: 3
  title_workers: 6
  slug_cutoff: 0.4
  title_cutoff: 0.7
  max_images: 5
  preview_chars: 200
  content_selector: article.post
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if got := cfg.SitemapURL(); got != "https://blog.example.com/sitemap_index.xml" {
		t.Fatalf("unexpected sitemap URL: %s", got)
	}
	if len(cfg.Site.Keywords) != 2 || cfg.Site.Keywords[0] != "news" {
		t.Fatalf("expected keyword overrides to apply: %+v", cfg.Site.Keywords)
	}
	if cfg.Search.SitemapWorkers != 3 || cfg.Search.TitleWorkers != 6 {
		t.Fatalf("expected worker overrides to apply: %+v", cfg.Search)
	}
	if cfg.Search.ContentSelector != "article.post" {
		t.Fatalf("unexpected content selector: %s", cfg.Search.ContentSelector)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging to be disabled")
	}
	if got := cfg.FetchTimeout(); got != 20*time.Second {
		t.Fatalf("expected fetch timeout 20s, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080},
		Site:   SiteConfig{BaseURL: "https://example.com"},
		HTTP:   HTTPConfig{TimeoutSeconds: 10},
		Search: SearchConfig{
			SitemapWorkers: 5,
			TitleWorkers:   10,
			SlugCutoff:     0.5,
			TitleCutoff:    0.6,
			PreviewChars:   300,
		},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "missing base url",
			cfg: func() Config {
				c := base
				c.Site.BaseURL = ""
				return c
			}(),
			want: "site.base_url",
		},
		{
			name: "relative base url",
			cfg: func() Config {
				c := base
				c.Site.BaseURL = "example.com/blog"
				return c
			}(),
			want: "absolute URL",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.TimeoutSeconds = 0
				return c
			}(),
			want: "http.timeout_seconds",
		},
		{
			name: "invalid sitemap workers",
			cfg: func() Config {
				c := base
				c.Search.SitemapWorkers = 0
				return c
			}(),
			want: "search.sitemap_workers",
		},
		{
			name: "slug cutoff out of range",
			cfg: func() Config {
				c := base
				c.Search.SlugCutoff = 1.5
				return c
			}(),
			want: "search.slug_cutoff",
		},
		{
			name: "invalid preview chars",
			cfg: func() Config {
				c := base
				c.Search.PreviewChars = 0
				return c
			}(),
			want: "search.preview_chars",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
