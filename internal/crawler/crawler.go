// Package crawler orchestrates a crawl: serve a query from the
// semantic cache when it already holds good matches, otherwise fetch
// from PubMed, normalize, and write the results back into the cache.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/cache"
)

// DefaultMinCacheScore is the similarity a cached hit needs before the
// crawler trusts the cache over a fresh fetch.
const DefaultMinCacheScore = 0.5

// Fetcher is the upstream side of a crawl: id search plus detail
// fetch. *pubmed.Client satisfies it.
type Fetcher interface {
	SearchIDs(ctx context.Context, query string, maxResults int) ([]string, error)
	FetchDetails(ctx context.Context, ids []string) ([]article.Article, error)
}

// Recorder receives fire-and-forget analytics writes. *archive.Archive
// satisfies it. Recorder failures never fail a crawl.
type Recorder interface {
	StoreArticle(art article.Article, query string) error
	LogSearch(query string) error
}

// Crawler routes queries between the semantic cache and PubMed.
type Crawler struct {
	cache    *cache.Cache
	fetcher  Fetcher
	recorder Recorder
	minScore float64
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithRecorder attaches an analytics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Crawler) {
		c.recorder = r
	}
}

// WithMinCacheScore sets the similarity threshold for serving a query
// from cache.
func WithMinCacheScore(score float64) Option {
	return func(c *Crawler) {
		c.minScore = score
	}
}

// New creates a Crawler over an opened cache and a fetch client.
func New(store *cache.Cache, fetcher Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		cache:    store,
		fetcher:  fetcher,
		minScore: DefaultMinCacheScore,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl returns up to maxResults articles for a free-text query.
// Unless forceRefresh is set, the cache is consulted first and serves
// the query when it holds maxResults hits at or above the score
// threshold. Otherwise the upstream pipeline runs: search ids, fetch
// and normalize details, insert each article into the cache (duplicate
// ids are skipped, a normal outcome), and archive the batch.
//
// An upstream failure after exhausted retries returns the error; an
// upstream search that genuinely matches nothing returns an empty
// slice and no error. Callers that collapse both to "no results"
// should still log the error.
func (c *Crawler) Crawl(ctx context.Context, query string, maxResults int, forceRefresh bool) ([]article.Article, error) {
	if c.recorder != nil {
		if err := c.recorder.LogSearch(query); err != nil {
			log.Printf("crawler: logging search: %v", err)
		}
	}

	if !forceRefresh {
		hits, err := c.cache.Search(ctx, query, maxResults)
		if err != nil {
			// Cache failure is absorbed: fall through to a fresh fetch.
			log.Printf("crawler: cache search failed, fetching upstream: %v", err)
		} else if c.servesFromCache(hits, maxResults) {
			return hits, nil
		}
	}

	ids, err := c.fetcher.SearchIDs(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching upstream: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	articles, err := c.fetcher.FetchDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching details: %w", err)
	}

	for _, art := range articles {
		// A false return means the article is already cached, which is
		// a normal outcome, not an error.
		if _, err := c.cache.Add(ctx, art); err != nil {
			if errors.Is(err, cache.ErrPersist) {
				// In-memory insert succeeded; the store may be lost on exit.
				log.Printf("crawler: %v", err)
			} else {
				log.Printf("crawler: caching article %s: %v", art.PMID, err)
			}
		}

		if c.recorder != nil {
			if err := c.recorder.StoreArticle(art, query); err != nil {
				log.Printf("crawler: archiving article %s: %v", art.PMID, err)
			}
		}
	}

	return articles, nil
}

// Similar answers a query from the cache only, never touching the
// network.
func (c *Crawler) Similar(ctx context.Context, query string, maxResults int) ([]article.Article, error) {
	return c.cache.Search(ctx, query, maxResults)
}

// servesFromCache reports whether cached hits satisfy the query: a
// full page of results, all scoring at or above the threshold.
func (c *Crawler) servesFromCache(hits []article.Article, maxResults int) bool {
	if len(hits) < maxResults {
		return false
	}
	for _, hit := range hits {
		if hit.SimilarityScore < c.minScore {
			return false
		}
	}
	return true
}
