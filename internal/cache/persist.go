package cache

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

const (
	// VectorsFile holds the serialized similarity index.
	VectorsFile = "vectors.gob"

	// ArticlesFile holds the article list, one JSON record per line.
	ArticlesFile = "articles.jsonl"

	// CurrentStoreVersion is the on-disk format version. Increment on
	// breaking changes to the vector snapshot layout.
	CurrentStoreVersion = 1

	// maxArticleLineCapacity bounds JSONL line size (1MB per record).
	maxArticleLineCapacity = 1024 * 1024
)

// vectorSnapshot is the gob-encoded form of the similarity index.
type vectorSnapshot struct {
	Version    int
	ModelName  string
	Dimensions int
	Vectors    [][]float32
}

// VectorsPath returns the path to the serialized index under dir.
func VectorsPath(dir string) string {
	return filepath.Join(dir, VectorsFile)
}

// ArticlesPath returns the path to the article list under dir.
func ArticlesPath(dir string) string {
	return filepath.Join(dir, ArticlesFile)
}

// Persist writes the similarity index and the article list to disk as
// a unit. It is exclusive with any in-flight Add.
func (c *Cache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

func (c *Cache) persistLocked() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	snap := vectorSnapshot{
		Version:    CurrentStoreVersion,
		ModelName:  c.provider.ModelName(),
		Dimensions: c.index.dimensions,
		Vectors:    c.index.vectors,
	}
	if err := writeAtomic(VectorsPath(c.dir), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(snap)
	}); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}

	if err := writeAtomic(ArticlesPath(c.dir), func(f *os.File) error {
		w := bufio.NewWriter(f)
		for _, art := range c.articles {
			data, err := json.Marshal(art)
			if err != nil {
				return fmt.Errorf("encoding article %s: %w", art.PMID, err)
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return w.Flush()
	}); err != nil {
		return fmt.Errorf("writing articles: %w", err)
	}

	return nil
}

// Restore loads the persisted store from disk. The two files are read
// together: if either is missing, corrupt, or inconsistent with the
// other, the cache resets to empty rather than entering a
// partially-loaded state.
func (c *Cache) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.restoreLocked(); err != nil {
		log.Printf("cache: resetting to empty store: %v", err)
		c.resetLocked()
	}
}

func (c *Cache) restoreLocked() error {
	snap, err := readVectors(VectorsPath(c.dir))
	if err != nil {
		if os.IsNotExist(err) {
			c.resetLocked()
			return nil
		}
		return err
	}

	articles, err := readArticles(ArticlesPath(c.dir))
	if err != nil {
		if os.IsNotExist(err) {
			// One file without the other is "no store", not a partial load.
			c.resetLocked()
			return nil
		}
		return err
	}

	if snap.Version != CurrentStoreVersion {
		return fmt.Errorf("unsupported store version %d", snap.Version)
	}
	if snap.ModelName != c.provider.ModelName() {
		return fmt.Errorf("store built with model %q, provider is %q", snap.ModelName, c.provider.ModelName())
	}
	if snap.Dimensions != c.provider.Dimensions() {
		return fmt.Errorf("store has %d dimensions, provider produces %d", snap.Dimensions, c.provider.Dimensions())
	}
	if len(snap.Vectors) != len(articles) {
		return fmt.Errorf("store inconsistent: %d vectors, %d articles", len(snap.Vectors), len(articles))
	}

	c.index = &flatIndex{dimensions: snap.Dimensions, vectors: snap.Vectors}
	c.articles = articles
	c.slots = make(map[string]int, len(articles))
	for i, art := range articles {
		if _, dup := c.slots[art.PMID]; dup {
			return fmt.Errorf("store inconsistent: duplicate PMID %s", art.PMID)
		}
		c.slots[art.PMID] = i
	}
	return nil
}

func (c *Cache) resetLocked() {
	c.index = newFlatIndex(c.provider.Dimensions())
	c.articles = nil
	c.slots = make(map[string]int)
}

func readVectors(path string) (vectorSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return vectorSnapshot{}, err
	}
	defer f.Close()

	var snap vectorSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return vectorSnapshot{}, fmt.Errorf("decoding vectors: %w", err)
	}
	return snap, nil
}

func readArticles(path string) ([]article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var articles []article.Article
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxArticleLineCapacity)
	scanner.Buffer(buf, maxArticleLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var art article.Article
		if err := json.Unmarshal(line, &art); err != nil {
			return nil, fmt.Errorf("parsing article line %d: %w", lineNum, err)
		}
		articles = append(articles, art)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading articles: %w", err)
	}
	return articles, nil
}

// writeAtomic writes a file via a temp file and rename so readers
// never observe a partial write.
func writeAtomic(path string, write func(*os.File) error) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
