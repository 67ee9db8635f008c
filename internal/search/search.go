// Package search orchestrates one blog search: crawl, resolve, match, extract.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d5meta/blogsearch/internal/match"
	"github.com/d5meta/blogsearch/internal/metrics"
	"github.com/d5meta/blogsearch/internal/page"
	"github.com/d5meta/blogsearch/internal/sitemap"
)

// Stage failures that escalate to the caller. Per-item sitemap and title
// failures never reach here; they degrade the candidate set instead.
var (
	ErrNoURLs         = errors.New("no blog URLs found from sitemap")
	ErrContentFetch   = errors.New("failed to fetch blog page")
	ErrContentExtract = errors.New("failed to extract blog content")
)

// URLSource produces the full crawled URL set.
type URLSource interface {
	URLs(ctx context.Context) []string
}

// TitleResolver resolves display titles for pages.
type TitleResolver interface {
	Title(ctx context.Context, url string) (string, error)
	Titles(ctx context.Context, urls []string) []page.TitleResult
}

// Fetcher retrieves a document over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ContentExtractor turns fetched HTML into cleaned content.
type ContentExtractor interface {
	Extract(pageURL string, body []byte) (page.Content, error)
}

// Result is the tagged outcome of a search. Matched=false is the valid
// "no matching blog" outcome, not an error.
type Result struct {
	Matched bool
	Title   string
	URL     string
	Preview string
	Content string
	Images  []string
}

// Service runs the search pipeline. All candidate state is rebuilt per call;
// concurrent Search calls share nothing mutable.
type Service struct {
	source       URLSource
	resolver     TitleResolver
	fetcher      Fetcher
	extractor    ContentExtractor
	matcher      *match.Matcher
	keywords     []string
	previewChars int
	logger       *zap.Logger
}

// Config bundles Service construction parameters.
type Config struct {
	Keywords     []string
	PreviewChars int
}

// NewService builds a Service.
func NewService(
	source URLSource,
	resolver TitleResolver,
	fetcher Fetcher,
	extractor ContentExtractor,
	matcher *match.Matcher,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 300
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:       source,
		resolver:     resolver,
		fetcher:      fetcher,
		extractor:    extractor,
		matcher:      matcher,
		keywords:     cfg.Keywords,
		previewChars: cfg.PreviewChars,
		logger:       logger,
	}
}

// Search runs the pipeline stages strictly in sequence with no retries:
// sitemap crawl, bounded title resolution, matching, content extraction.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	start := time.Now()
	s.logger.Info("searching for blog", zap.String("query", query))

	urls := sitemap.FilterURLs(s.source.URLs(ctx), s.keywords)
	if len(urls) == 0 {
		s.observe("error", start)
		return Result{}, ErrNoURLs
	}
	s.logger.Info("checking candidate URLs", zap.Int("count", len(urls)))
	metrics.ObserveCandidates(len(urls))

	titles := s.resolver.Titles(ctx, urls)
	candidates := make([]match.Candidate, len(urls))
	for i, url := range urls {
		candidates[i] = match.Candidate{
			URL:  url,
			Slug: match.SlugFromURL(url),
		}
		if titles[i].OK {
			candidates[i].Title = titles[i].Title
		}
	}

	m, ok := s.matcher.Match(query, candidates)
	if !ok {
		s.logger.Info("no matching blog", zap.String("query", query))
		s.observe("no_match", start)
		return Result{}, nil
	}
	title := s.displayTitle(ctx, m)
	s.logger.Info("closest match",
		zap.String("title", title),
		zap.String("url", m.URL),
	)

	body, err := s.fetcher.Fetch(ctx, m.URL)
	if err != nil {
		s.observe("error", start)
		return Result{}, fmt.Errorf("%w %s: %v", ErrContentFetch, m.URL, err)
	}
	content, err := s.extractor.Extract(m.URL, body)
	if err != nil {
		s.observe("error", start)
		return Result{}, fmt.Errorf("%w: %v", ErrContentExtract, err)
	}

	s.observe("matched", start)
	return Result{
		Matched: true,
		Title:   title,
		URL:     m.URL,
		Preview: preview(content.Text, s.previewChars),
		Content: content.Text,
		Images:  content.Images,
	}, nil
}

// displayTitle resolves the title shown to the caller. Slug matches trigger a
// fresh resolution of the matched URL rather than reusing the title map; a
// failed resolution falls back to a synthesized label.
func (s *Service) displayTitle(ctx context.Context, m match.Match) string {
	if m.Method == match.ViaTitle {
		return m.Title
	}
	title, err := s.resolver.Title(ctx, m.URL)
	if err != nil {
		s.logger.Debug("display title resolution failed",
			zap.String("url", m.URL),
			zap.Error(err),
		)
		return fmt.Sprintf("Matched via URL: %s", m.Slug)
	}
	return title
}

func (s *Service) observe(outcome string, start time.Time) {
	metrics.ObserveSearch(outcome, time.Since(start).Seconds())
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
