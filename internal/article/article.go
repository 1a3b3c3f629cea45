// Package article defines the canonical record for a crawled PubMed article.
package article

import (
	"sort"
	"strings"
	"time"
)

// PubMedURLPrefix is the base URL for article links.
const PubMedURLPrefix = "https://pubmed.ncbi.nlm.nih.gov/"

// Article represents one PubMed article normalized into canonical form.
type Article struct {
	// PMID is the stable PubMed identifier and the deduplication key.
	PMID string `json:"pmid"`

	Title    string `json:"title"`
	Abstract string `json:"abstract"`

	// Authors in upstream order, formatted "Last, First" or "Last"
	// when no given name is recorded.
	Authors []string `json:"authors"`

	Journal string `json:"journal"`

	// PublicationDate is free-form: "2024", "2024 Jan", "2024 Jan 15".
	// Empty when upstream records no year.
	PublicationDate string `json:"publication_date"`

	URL string `json:"url"`

	// Keywords are deduplicated and lexicographically sorted at
	// construction time.
	Keywords []string `json:"keywords,omitempty"`

	// AddedAt is stamped once when the article enters the cache.
	AddedAt time.Time `json:"added_at,omitempty"`

	// SimilarityScore is transient: populated only on copies returned
	// from a similarity search, never on the stored record.
	SimilarityScore float64 `json:"similarity_score,omitempty"`

	// Summary is filled in by the summarization step before display.
	// The cache never reads or writes it.
	Summary string `json:"summary,omitempty"`
}

// URLForPMID returns the canonical article URL for a PubMed ID.
func URLForPMID(pmid string) string {
	return PubMedURLPrefix + pmid + "/"
}

// EmbeddingText composes the text that is embedded for an article:
// title, abstract, and the space-joined author list. Cache hit quality
// depends on every caller using this exact composition.
func (a Article) EmbeddingText() string {
	return a.Title + " " + a.Abstract + " " + strings.Join(a.Authors, " ")
}

// NormalizeKeywords deduplicates and sorts a keyword list. Empty
// entries are dropped. Returns nil for an empty result so records
// without keywords marshal without the field.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// FormatDateParts joins the year/month/day parts that are present with
// spaces. Returns an empty string when there is no year.
func FormatDateParts(year, month, day string) string {
	if year == "" {
		return ""
	}
	parts := []string{year}
	if month != "" {
		parts = append(parts, month)
	}
	if day != "" {
		parts = append(parts, day)
	}
	return strings.Join(parts, " ")
}
