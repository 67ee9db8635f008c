package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/d5meta/blogsearch/internal/match"
	"github.com/d5meta/blogsearch/internal/page"
)

type fakeSource struct {
	urls []string
}

func (f *fakeSource) URLs(context.Context) []string {
	return f.urls
}

type fakeResolver struct {
	titles      map[string]string
	refetchFail bool
	refetched   []string
}

func (f *fakeResolver) Title(_ context.Context, url string) (string, error) {
	f.refetched = append(f.refetched, url)
	if f.refetchFail {
		return "", errors.New("resolution failed")
	}
	title, ok := f.titles[url]
	if !ok {
		return "", page.ErrNoTitle
	}
	return title, nil
}

func (f *fakeResolver) Titles(_ context.Context, urls []string) []page.TitleResult {
	results := make([]page.TitleResult, len(urls))
	for i, url := range urls {
		title, ok := f.titles[url]
		results[i] = page.TitleResult{URL: url, Title: title, OK: ok}
	}
	return results
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return []byte(body), nil
}

const guideURL = "https://site.test/blog/field-service-guide"

const guideHTML = `<html><body>
<div class="elementor-widget-container">
  <h2>Overview</h2>
  <p>Field service scheduling explained.</p>
</div>
<img src="/img/hero.png">
</body></html>`

func newTestService(source *fakeSource, resolver *fakeResolver, fetcher *fakeFetcher) *Service {
	return NewService(
		source,
		resolver,
		fetcher,
		page.NewExtractor("div.elementor-widget-container", 3),
		match.New(0.5, 0.6),
		Config{
			Keywords:     []string{"blog", "field", "service"},
			PreviewChars: 300,
		},
		zap.NewNop(),
	)
}

func TestSearchNoURLsIsHardFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeSource{}, &fakeResolver{}, &fakeFetcher{})
	_, err := svc.Search(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNoURLs)
}

func TestSearchFilteredToNothingIsHardFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{"https://site.test/pricing", "https://site.test/contact"}}
	svc := newTestService(source, &fakeResolver{}, &fakeFetcher{})
	_, err := svc.Search(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNoURLs)
}

func TestSearchMatchedViaSlugRefetchesTitle(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{
		"https://site.test/blog/pricing-update",
		guideURL,
	}}
	resolver := &fakeResolver{titles: map[string]string{
		guideURL: "The Complete Field Service Guide",
	}}
	fetcher := &fakeFetcher{pages: map[string]string{guideURL: guideHTML}}
	svc := newTestService(source, resolver, fetcher)

	result, err := svc.Search(context.Background(), "field service")
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Equal(t, guideURL, result.URL)
	require.Equal(t, "The Complete Field Service Guide", result.Title)
	require.Equal(t, []string{guideURL}, resolver.refetched,
		"slug match must re-resolve the display title from the matched URL")
	require.Equal(t, "Overview\nField service scheduling explained.", result.Content)
	require.Equal(t, result.Content, result.Preview)
	require.Equal(t, []string{"https://site.test/img/hero.png"}, result.Images)
}

func TestSearchSlugMatchTitleFallbackLabel(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{guideURL}}
	resolver := &fakeResolver{refetchFail: true}
	fetcher := &fakeFetcher{pages: map[string]string{guideURL: guideHTML}}
	svc := newTestService(source, resolver, fetcher)

	result, err := svc.Search(context.Background(), "field service guide")
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Equal(t, "Matched via URL: field-service-guide", result.Title)
}

func TestSearchMatchedViaTitleUsesMapTitle(t *testing.T) {
	t.Parallel()

	url := "https://site.test/blog/xqzw-vbnm"
	source := &fakeSource{urls: []string{url}}
	resolver := &fakeResolver{titles: map[string]string{
		url: "Dispatcher Console Deep Dive",
	}}
	fetcher := &fakeFetcher{pages: map[string]string{url: guideHTML}}
	svc := newTestService(source, resolver, fetcher)

	result, err := svc.Search(context.Background(), "Dispatcher Console Deep Dive")
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Equal(t, "Dispatcher Console Deep Dive", result.Title)
	require.Empty(t, resolver.refetched, "title match must not refetch")
}

func TestSearchNoMatchIsValidOutcome(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{guideURL}}
	resolver := &fakeResolver{titles: map[string]string{guideURL: "Field Service Guide"}}
	svc := newTestService(source, resolver, &fakeFetcher{})

	result, err := svc.Search(context.Background(), "totally unrelated gibberish query")
	require.NoError(t, err)
	require.False(t, result.Matched)
	require.Empty(t, result.URL)
}

func TestSearchContentFetchFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{guideURL}}
	resolver := &fakeResolver{titles: map[string]string{guideURL: "Field Service Guide"}}
	svc := newTestService(source, resolver, &fakeFetcher{})

	_, err := svc.Search(context.Background(), "field service guide")
	require.ErrorIs(t, err, ErrContentFetch)
}

func TestSearchContentExtractionFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{urls: []string{guideURL}}
	resolver := &fakeResolver{titles: map[string]string{guideURL: "Field Service Guide"}}
	fetcher := &fakeFetcher{pages: map[string]string{
		guideURL: `<html><body><div class="elementor-widget-container"></div></body></html>`,
	}}
	svc := newTestService(source, resolver, fetcher)

	_, err := svc.Search(context.Background(), "field service guide")
	require.ErrorIs(t, err, ErrContentExtract)
}

func TestSearchPreviewTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("lorem ipsum ", 60)
	html := `<html><body><div class="elementor-widget-container"><p>` + long + `</p></div></body></html>`
	source := &fakeSource{urls: []string{guideURL}}
	resolver := &fakeResolver{titles: map[string]string{guideURL: "Field Service Guide"}}
	fetcher := &fakeFetcher{pages: map[string]string{guideURL: html}}
	svc := newTestService(source, resolver, fetcher)

	result, err := svc.Search(context.Background(), "field service guide")
	require.NoError(t, err)
	require.Len(t, []rune(result.Preview), 300)
	require.True(t, strings.HasPrefix(result.Content, result.Preview))
	require.Greater(t, len(result.Content), len(result.Preview))
}
