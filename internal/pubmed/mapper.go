package pubmed

import (
	"strings"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

// mapArticle converts a raw efetch record into the canonical article.
// Missing or unexpected upstream fields default to empty values; the
// mapper never fails on schema surprises.
func mapArticle(raw rawArticle) article.Article {
	cit := raw.Citation
	pmid := strings.TrimSpace(cit.PMID)

	return article.Article{
		PMID:            pmid,
		Title:           strings.TrimSpace(cit.Article.Title),
		Abstract:        extractAbstract(cit.Article.Abstract),
		Authors:         extractAuthors(cit.Article.Authors),
		Journal:         strings.TrimSpace(cit.Article.Journal.Title),
		PublicationDate: extractPublicationDate(cit.Article.Journal.Issue.PubDate),
		URL:             article.URLForPMID(pmid),
		Keywords:        extractKeywords(cit.MeshHeadings, cit.Keywords),
	}
}

// extractAbstract flattens the abstract sections into one string. A
// labeled section contributes "LABEL: text"; an unlabeled one just its
// text. Sections are joined with single spaces in upstream order. When
// no section carries any text, the copyright notice is the fallback.
func extractAbstract(abs rawAbstract) string {
	var parts []string
	for _, sec := range abs.Sections {
		text := strings.TrimSpace(sec.Text)
		if text == "" {
			continue
		}
		if label := strings.TrimSpace(sec.Label); label != "" {
			parts = append(parts, label+": "+text)
		} else {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return strings.TrimSpace(abs.Copyright)
	}
	return strings.Join(parts, " ")
}

// extractAuthors formats authors as "Last, First", or "Last" when no
// given name is recorded. Collective (group) authors keep their name
// as-is. Upstream order is preserved.
func extractAuthors(raw []rawAuthor) []string {
	var authors []string
	for _, a := range raw {
		last := strings.TrimSpace(a.LastName)
		fore := strings.TrimSpace(a.ForeName)
		switch {
		case last != "" && fore != "":
			authors = append(authors, last+", "+fore)
		case last != "":
			authors = append(authors, last)
		case a.CollectiveName != "":
			authors = append(authors, strings.TrimSpace(a.CollectiveName))
		}
	}
	return authors
}

// extractPublicationDate joins the date parts that are present.
func extractPublicationDate(pd rawPubDate) string {
	return article.FormatDateParts(
		strings.TrimSpace(pd.Year),
		strings.TrimSpace(pd.Month),
		strings.TrimSpace(pd.Day),
	)
}

// extractKeywords merges MeSH subject headings with free-form keyword
// lists into one deduplicated, sorted sequence. Descriptor qualifiers
// are appended parenthesized and comma-joined.
func extractKeywords(mesh []rawMesh, keywords []rawKeyword) []string {
	var merged []string
	for _, m := range mesh {
		desc := strings.TrimSpace(m.Descriptor)
		if desc == "" {
			continue
		}
		var quals []string
		for _, q := range m.Qualifiers {
			if q = strings.TrimSpace(q); q != "" {
				quals = append(quals, q)
			}
		}
		if len(quals) > 0 {
			desc += " (" + strings.Join(quals, ", ") + ")"
		}
		merged = append(merged, desc)
	}

	for _, kw := range keywords {
		merged = append(merged, kw.Text)
	}

	return article.NormalizeKeywords(merged)
}
