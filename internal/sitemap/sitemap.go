// Package sitemap discovers page URLs from a site's XML sitemaps.
package sitemap

import (
	"context"
	"encoding/xml"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves a document over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Crawler walks a sitemap index and collects every listed page URL.
type Crawler struct {
	fetcher  Fetcher
	indexURL string
	workers  int
	logger   *zap.Logger
}

// NewCrawler builds a Crawler. workers bounds child sitemap fan-out.
func NewCrawler(fetcher Fetcher, indexURL string, workers int, logger *zap.Logger) *Crawler {
	if workers <= 0 {
		workers = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		fetcher:  fetcher,
		indexURL: indexURL,
		workers:  workers,
		logger:   logger,
	}
}

// URLs fetches the root sitemap and all child sitemaps, returning the flat
// list of page URLs. Child sitemaps are fetched concurrently; a failing child
// contributes nothing. A failing root yields an empty slice, which callers
// must treat as a hard failure. Order follows the root listing, with each
// child's entries in document order.
func (c *Crawler) URLs(ctx context.Context) []string {
	root, err := c.fetcher.Fetch(ctx, c.indexURL)
	if err != nil {
		c.logger.Warn("root sitemap fetch failed",
			zap.String("url", c.indexURL),
			zap.Error(err),
		)
		return nil
	}

	children, pages := parseSitemap(root)
	if len(children) == 0 {
		return pages
	}

	perChild := make([][]string, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, childURL := range children {
		g.Go(func() error {
			body, err := c.fetcher.Fetch(gctx, childURL)
			if err != nil {
				c.logger.Warn("child sitemap fetch failed",
					zap.String("url", childURL),
					zap.Error(err),
				)
				return nil
			}
			_, childPages := parseSitemap(body)
			perChild[i] = childPages
			return nil
		})
	}
	// Workers never return errors; per-item failures are absorbed above.
	_ = g.Wait()

	for _, childPages := range perChild {
		pages = append(pages, childPages...)
	}
	return pages
}

type sitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Location string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Location string `xml:"loc"`
	} `xml:"url"`
}

// parseSitemap decodes either a <sitemapindex> or a <urlset> document,
// returning child sitemap locations and page locations respectively.
// Malformed XML yields nothing.
func parseSitemap(data []byte) (children []string, pages []string) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err == nil && len(index.Sitemaps) > 0 {
		for _, sm := range index.Sitemaps {
			if loc := strings.TrimSpace(sm.Location); loc != "" {
				children = append(children, loc)
			}
		}
		return children, nil
	}

	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, nil
	}
	for _, entry := range set.URLs {
		if loc := strings.TrimSpace(entry.Location); loc != "" {
			pages = append(pages, loc)
		}
	}
	return nil, pages
}
