// Package cache implements the persistent semantic article cache: a
// similarity index and its parallel article list owned as a single
// entity, with dedup-on-insert and meaning-based search.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/embedding"
)

// ErrPersist reports that an in-memory mutation succeeded but writing
// the store to disk failed. The in-memory state is kept; data is at
// risk of loss on process exit.
var ErrPersist = errors.New("persisting cache")

// Cache holds articles together with their embedding vectors. The
// article list and the similarity index grow in lockstep: after any
// successful Add, len(articles) == index.Size(). Articles are keyed by
// PMID; slot positions never cross the package boundary.
type Cache struct {
	mu       sync.Mutex
	provider embedding.Provider
	dir      string

	index    *flatIndex
	articles []article.Article
	slots    map[string]int // PMID -> slot in index and article list

	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used to stamp AddedAt. Tests use this for
// deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache that persists under dir.
func New(provider embedding.Provider, dir string, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		dir:      dir,
		index:    newFlatIndex(provider.Dimensions()),
		slots:    make(map[string]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates a cache and restores any previously persisted state
// from dir. A missing or corrupt store starts empty.
func Open(provider embedding.Provider, dir string, opts ...Option) *Cache {
	c := New(provider, dir, opts...)
	c.Restore()
	return c
}

// Add inserts an article into the cache. It returns false without
// mutation if an article with the same PMID is already stored.
// Otherwise the article's embedding is computed from its composed
// text, the vector and record are appended as a pair, AddedAt is
// stamped, and the whole store is persisted.
//
// A persistence failure after a successful in-memory insert returns
// true together with an ErrPersist-wrapped error: the article is
// served for the rest of the process lifetime but may be lost on exit.
func (c *Cache) Add(ctx context.Context, art article.Article) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.slots[art.PMID]; exists {
		return false, nil
	}

	vec, err := c.provider.Embed(ctx, art.EmbeddingText())
	if err != nil {
		return false, fmt.Errorf("embedding article %s: %w", art.PMID, err)
	}

	art.AddedAt = c.now()
	art.SimilarityScore = 0

	slot := c.index.Insert(vec)
	c.articles = append(c.articles, art)
	c.slots[art.PMID] = slot

	if err := c.persistLocked(); err != nil {
		return true, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return true, nil
}

// Search returns up to k articles most similar to the query text,
// sorted by descending similarity score. The query text is embedded
// directly; each hit is a copy of the stored article with
// SimilarityScore set to 1/(1+distance), so scores fall in (0, 1].
// An empty store returns an empty result and no error.
func (c *Cache) Search(ctx context.Context, query string, k int) ([]article.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index.Size() == 0 {
		return nil, nil
	}

	vec, err := c.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	if k > c.index.Size() {
		k = c.index.Size()
	}

	results := make([]article.Article, 0, k)
	for _, n := range c.index.Query(vec, k) {
		hit := c.articles[n.Slot]
		hit.SimilarityScore = 1 / (1 + float64(n.Distance))
		results = append(results, hit)
	}

	// The neighbor list is distance-ascending, so descending score is
	// already in order; the stable sort keeps ties in insertion order.
	sortByScore(results)
	return results, nil
}

// Get returns a copy of the stored article for a PMID.
func (c *Cache) Get(pmid string) (article.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, exists := c.slots[pmid]
	if !exists {
		return article.Article{}, false
	}
	return c.articles[slot], true
}

// Size returns the number of stored articles.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.articles)
}

// Articles returns a copy of the stored article list in insertion order.
func (c *Cache) Articles() []article.Article {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]article.Article, len(c.articles))
	copy(out, c.articles)
	return out
}

// ModelName returns the name of the embedding model backing the cache.
func (c *Cache) ModelName() string {
	return c.provider.ModelName()
}

// sortByScore sorts search results by descending similarity score.
// The sort is stable so equal scores keep insertion order.
func sortByScore(results []article.Article) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
}
