// Package cmd defines the CLI commands for the blogsearch executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d5meta/blogsearch/internal/config"
	collyfetcher "github.com/d5meta/blogsearch/internal/fetcher/colly"
	"github.com/d5meta/blogsearch/internal/logging"
	"github.com/d5meta/blogsearch/internal/match"
	"github.com/d5meta/blogsearch/internal/metrics"
	"github.com/d5meta/blogsearch/internal/page"
	"github.com/d5meta/blogsearch/internal/search"
	"github.com/d5meta/blogsearch/internal/sitemap"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogsearch",
		Short: "A sitemap-driven blog search service.",
		Long: `blogsearch crawls a site's XML sitemap on demand, matches a free-text
query against page slugs and titles, and returns the best-matching page's
cleaned content.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the logger shared by commands.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// buildService wires the search pipeline from configuration.
func buildService(cfg config.Config, logger *zap.Logger) *search.Service {
	metrics.Init()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	crawler := sitemap.NewCrawler(
		fetcher,
		cfg.SitemapURL(),
		cfg.Search.SitemapWorkers,
		logger.Named("sitemap"),
	)
	resolver := page.NewResolver(fetcher, cfg.Search.TitleWorkers, logger.Named("titles"))
	extractor := page.NewExtractor(cfg.Search.ContentSelector, cfg.Search.MaxImages)
	matcher := match.New(cfg.Search.SlugCutoff, cfg.Search.TitleCutoff)

	return search.NewService(
		crawler,
		resolver,
		fetcher,
		extractor,
		matcher,
		search.Config{
			Keywords:     cfg.Site.Keywords,
			PreviewChars: cfg.Search.PreviewChars,
		},
		logger.Named("search"),
	)
}
