// Package archive persists crawled articles and search history in a
// SQLite database. It is write-mostly analytics storage; the semantic
// cache never reads from it.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

// Archive wraps the SQLite connection.
type Archive struct {
	db *sql.DB
}

// SearchStat summarizes one distinct query from the search history.
type SearchStat struct {
	Query        string `json:"query"`
	Count        int    `json:"count"`
	LastSearched string `json:"last_searched"`
}

// Open opens or creates the archive database at the given path.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writers.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			pmid TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			authors_json TEXT NOT NULL,
			journal TEXT,
			publication_date TEXT,
			url TEXT,
			keywords_json TEXT,
			query TEXT,
			crawled_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			searched_at TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// StoreArticle upserts an article along with the query that found it.
func (a *Archive) StoreArticle(art article.Article, query string) error {
	authors, err := json.Marshal(art.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	keywords, err := json.Marshal(art.Keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	_, err = a.db.Exec(`
		INSERT OR REPLACE INTO articles
		(pmid, title, abstract, authors_json, journal, publication_date, url, keywords_json, query, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		art.PMID, art.Title, art.Abstract, string(authors), art.Journal,
		art.PublicationDate, art.URL, string(keywords), query,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing article %s: %w", art.PMID, err)
	}
	return nil
}

// GetArticle retrieves an archived article by PMID.
func (a *Archive) GetArticle(pmid string) (article.Article, bool, error) {
	row := a.db.QueryRow(`
		SELECT pmid, title, abstract, authors_json, journal, publication_date, url, keywords_json
		FROM articles WHERE pmid = ?`, pmid)

	var art article.Article
	var authorsJSON, keywordsJSON string
	err := row.Scan(&art.PMID, &art.Title, &art.Abstract, &authorsJSON,
		&art.Journal, &art.PublicationDate, &art.URL, &keywordsJSON)
	if err == sql.ErrNoRows {
		return article.Article{}, false, nil
	}
	if err != nil {
		return article.Article{}, false, fmt.Errorf("retrieving article %s: %w", pmid, err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &art.Authors); err != nil {
		return article.Article{}, false, fmt.Errorf("decoding authors for %s: %w", pmid, err)
	}
	if err := json.Unmarshal([]byte(keywordsJSON), &art.Keywords); err != nil {
		return article.Article{}, false, fmt.Errorf("decoding keywords for %s: %w", pmid, err)
	}
	return art, true, nil
}

// LogSearch records a query in the search history.
func (a *Archive) LogSearch(query string) error {
	_, err := a.db.Exec(
		"INSERT INTO search_history (query, searched_at) VALUES (?, ?)",
		query, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("logging search: %w", err)
	}
	return nil
}

// RecentSearches returns distinct queries with their usage counts,
// most recently searched first.
func (a *Archive) RecentSearches(limit int) ([]SearchStat, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := a.db.Query(`
		SELECT query, COUNT(*) AS count, MAX(searched_at) AS last_searched
		FROM search_history
		GROUP BY query
		ORDER BY last_searched DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var stats []SearchStat
	for rows.Next() {
		var s SearchStat
		if err := rows.Scan(&s.Query, &s.Count, &s.LastSearched); err != nil {
			return nil, fmt.Errorf("scanning search history: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search history: %w", err)
	}
	return stats, nil
}

// ArticleCount returns the number of archived articles.
func (a *Archive) ArticleCount() (int, error) {
	var count int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return count, nil
}
