// Package page resolves display titles and extracts content from blog pages.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves a document over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ErrNoTitle reports a page with neither an <h1> nor a <title>.
var ErrNoTitle = errors.New("no title element found")

// titleSelectors is the element priority list for display titles.
var titleSelectors = []string{"h1", "title"}

// Resolver fetches pages and extracts display titles.
type Resolver struct {
	fetcher Fetcher
	workers int
	logger  *zap.Logger
}

// NewResolver builds a Resolver. workers bounds Titles fan-out.
func NewResolver(fetcher Fetcher, workers int, logger *zap.Logger) *Resolver {
	if workers <= 0 {
		workers = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fetcher: fetcher,
		workers: workers,
		logger:  logger,
	}
}

// TitleResult is the outcome of resolving one URL.
type TitleResult struct {
	URL   string
	Title string
	OK    bool
}

// Title fetches url and returns its display title, preferring <h1> over <title>.
func (r *Resolver) Title(ctx context.Context, url string) (string, error) {
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	doc, err := parseDocument(body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	for _, sel := range titleSelectors {
		if title := firstText(doc, sel); title != "" {
			return title, nil
		}
	}
	return "", ErrNoTitle
}

// Titles resolves every URL concurrently with bounded parallelism, waiting for
// all to finish. Results are aligned with the input slice; per-URL failures are
// logged and marked not-OK without affecting other URLs.
func (r *Resolver) Titles(ctx context.Context, urls []string) []TitleResult {
	results := make([]TitleResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, url := range urls {
		g.Go(func() error {
			title, err := r.Title(gctx, url)
			if err != nil {
				r.logger.Debug("title resolution failed",
					zap.String("url", url),
					zap.Error(err),
				)
				results[i] = TitleResult{URL: url}
				return nil
			}
			results[i] = TitleResult{URL: url, Title: title, OK: true}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// parseDocument decodes the body to UTF-8 before handing it to goquery.
func parseDocument(body []byte) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(body, "")
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		decoded = body
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
