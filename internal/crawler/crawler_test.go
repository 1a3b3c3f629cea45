package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/cache"
)

// identityProvider embeds every text to the same vector, so every
// cached article matches every query with score 1.
type identityProvider struct{}

func (identityProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0, 0, 0}, nil
}
func (identityProvider) ModelName() string { return "fake-model" }
func (identityProvider) Dimensions() int   { return 3 }

type fakeFetcher struct {
	ids        []string
	articles   []article.Article
	searchErr  error
	fetchErr   error
	searchHits int
	fetchHits  int
}

func (f *fakeFetcher) SearchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	f.searchHits++
	return f.ids, f.searchErr
}

func (f *fakeFetcher) FetchDetails(ctx context.Context, ids []string) ([]article.Article, error) {
	f.fetchHits++
	return f.articles, f.fetchErr
}

type fakeRecorder struct {
	searches []string
	stored   []string
	err      error
}

func (r *fakeRecorder) LogSearch(query string) error {
	r.searches = append(r.searches, query)
	return r.err
}

func (r *fakeRecorder) StoreArticle(art article.Article, query string) error {
	r.stored = append(r.stored, art.PMID)
	return r.err
}

func testArticles(pmids ...string) []article.Article {
	arts := make([]article.Article, len(pmids))
	for i, pmid := range pmids {
		arts[i] = article.Article{PMID: pmid, Title: "Article " + pmid}
	}
	return arts
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.New(identityProvider{}, t.TempDir())
}

func TestCrawl_FetchesAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1", "2"}, articles: testArticles("1", "2")}
	recorder := &fakeRecorder{}
	store := newTestCache(t)
	c := New(store, fetcher, WithRecorder(recorder))

	got, err := c.Crawl(context.Background(), "diabetes", 2, false)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}

	if store.Size() != 2 {
		t.Errorf("cache size = %d, want 2", store.Size())
	}
	if len(recorder.searches) != 1 || recorder.searches[0] != "diabetes" {
		t.Errorf("logged searches = %v, want [diabetes]", recorder.searches)
	}
	if len(recorder.stored) != 2 {
		t.Errorf("archived %d articles, want 2", len(recorder.stored))
	}
}

func TestCrawl_ServesFromCacheOnSecondQuery(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1", "2"}, articles: testArticles("1", "2")}
	store := newTestCache(t)
	c := New(store, fetcher)
	ctx := context.Background()

	if _, err := c.Crawl(ctx, "diabetes", 2, false); err != nil {
		t.Fatalf("first Crawl failed: %v", err)
	}

	// The identity provider scores every hit 1.0, so the cache now
	// satisfies the query without another fetch.
	got, err := c.Crawl(ctx, "diabetes", 2, false)
	if err != nil {
		t.Fatalf("second Crawl failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if fetcher.searchHits != 1 {
		t.Errorf("upstream searched %d times, want 1 (cache hit)", fetcher.searchHits)
	}
	for _, art := range got {
		if art.SimilarityScore <= 0 || art.SimilarityScore > 1 {
			t.Errorf("cached hit score %v outside (0, 1]", art.SimilarityScore)
		}
	}
}

func TestCrawl_ForceRefreshBypassesCache(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1", "2"}, articles: testArticles("1", "2")}
	store := newTestCache(t)
	c := New(store, fetcher)
	ctx := context.Background()

	c.Crawl(ctx, "diabetes", 2, false)
	c.Crawl(ctx, "diabetes", 2, true)

	if fetcher.searchHits != 2 {
		t.Errorf("upstream searched %d times, want 2 (refresh forced)", fetcher.searchHits)
	}
	// Re-fetched articles are duplicates; the cache must not grow.
	if store.Size() != 2 {
		t.Errorf("cache size = %d, want 2", store.Size())
	}
}

func TestCrawl_InsufficientCacheHitsFetches(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1", "2", "3"}, articles: testArticles("1", "2", "3")}
	store := newTestCache(t)
	c := New(store, fetcher)
	ctx := context.Background()

	c.Crawl(ctx, "diabetes", 2, false)

	// Asking for more than the cache holds forces a fetch.
	c.Crawl(ctx, "diabetes", 5, false)
	if fetcher.searchHits != 2 {
		t.Errorf("upstream searched %d times, want 2", fetcher.searchHits)
	}
}

func TestCrawl_EmptyUpstream(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New(newTestCache(t), fetcher)

	got, err := c.Crawl(context.Background(), "nonexistent topic", 5, false)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d articles, want 0", len(got))
	}
	if fetcher.fetchHits != 0 {
		t.Error("FetchDetails should not run with no ids")
	}
}

func TestCrawl_UpstreamErrorPropagates(t *testing.T) {
	wantErr := errors.New("after 3 attempts: boom")
	fetcher := &fakeFetcher{searchErr: wantErr}
	c := New(newTestCache(t), fetcher)

	_, err := c.Crawl(context.Background(), "diabetes", 5, false)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestCrawl_RecorderFailureDoesNotFailCrawl(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1"}, articles: testArticles("1")}
	recorder := &fakeRecorder{err: errors.New("disk full")}
	c := New(newTestCache(t), fetcher, WithRecorder(recorder))

	got, err := c.Crawl(context.Background(), "diabetes", 1, false)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d articles, want 1", len(got))
	}
}

func TestSimilar_CacheOnly(t *testing.T) {
	fetcher := &fakeFetcher{ids: []string{"1"}, articles: testArticles("1")}
	store := newTestCache(t)
	c := New(store, fetcher)
	ctx := context.Background()

	c.Crawl(ctx, "diabetes", 1, false)
	fetcher.searchHits = 0

	got, err := c.Similar(ctx, "related topic", 5)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d articles, want 1", len(got))
	}
	if fetcher.searchHits != 0 {
		t.Error("Similar must not touch the network")
	}
}
