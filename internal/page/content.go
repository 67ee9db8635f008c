package page

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction errors distinguish a missing container from empty text.
var (
	ErrNoContainer  = errors.New("no content container found")
	ErrEmptyContent = errors.New("no text content after stripping")
)

// contentBlocks are the elements whose text makes up the article body.
const contentBlocks = "p, h2, h3, li"

// Content is the cleaned result of extracting one page.
type Content struct {
	Text   string
	Images []string
}

// Extractor pulls cleaned article text and image URLs out of fetched HTML.
// Extraction is a pure function of the page URL and body.
type Extractor struct {
	selector  string
	maxImages int
}

// NewExtractor builds an Extractor. selector locates the primary content
// container; maxImages caps the returned image URLs.
func NewExtractor(selector string, maxImages int) *Extractor {
	if selector == "" {
		selector = "div.elementor-widget-container"
	}
	return &Extractor{selector: selector, maxImages: maxImages}
}

// Extract parses body, collects paragraph/heading/list-item text from the
// content container (falling back to <body>), strips script/style/noscript,
// and resolves up to maxImages image sources against pageURL.
func (e *Extractor) Extract(pageURL string, body []byte) (Content, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return Content{}, fmt.Errorf("parse page: %w", err)
	}

	container := doc.Find(e.selector).First()
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return Content{}, ErrNoContainer
	}

	var parts []string
	container.Find(contentBlocks).Each(func(_ int, block *goquery.Selection) {
		block.Find("script, style, noscript").Remove()
		if text := blockText(block); text != "" {
			parts = append(parts, text)
		}
	})
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return Content{}, ErrEmptyContent
	}

	return Content{Text: text, Images: e.imageURLs(doc, pageURL)}, nil
}

// blockText collapses a block's text into trimmed non-empty lines.
func blockText(block *goquery.Selection) string {
	var lines []string
	for _, line := range strings.Split(block.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// imageURLs scans the whole document for <img> tags and resolves the first
// maxImages src attributes against the page URL. Images without a src are
// skipped.
func (e *Extractor) imageURLs(doc *goquery.Document, pageURL string) []string {
	images := []string{}
	if e.maxImages <= 0 {
		return images
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return true
		}
		resolved := src
		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				resolved = base.ResolveReference(ref).String()
			}
		}
		images = append(images, resolved)
		return len(images) < e.maxImages
	})
	return images
}
