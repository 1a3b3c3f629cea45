package pubmed

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// PublicationWindowYears is the date-range filter appended to every
// search term: only articles published within this many years of the
// call are requested.
const PublicationWindowYears = 5

// BuildTerm shapes a free-text query into the percent-encoded term
// string E-utilities expects. Non-alphanumeric characters other than
// quotes and spaces are stripped, tokens are individually encoded and
// joined with an explicit AND, and a publication date-range filter for
// the last five years relative to now is appended. The result is
// already encoded and must be placed in the URL verbatim, not passed
// through url.Values.
func BuildTerm(query string, now time.Time) string {
	tokens := strings.Fields(sanitizeQuery(query))
	for i, tok := range tokens {
		tokens[i] = url.QueryEscape(tok)
	}

	term := strings.Join(tokens, "+AND+")
	filter := dateRangeFilter(now)
	if term == "" {
		return filter
	}
	return term + "+AND+" + filter
}

// sanitizeQuery strips characters that break E-utilities term parsing,
// keeping letters, digits, quotes, and whitespace.
func sanitizeQuery(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '"' || r == '\'' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dateRangeFilter returns the encoded publication date-range clause
// covering the last PublicationWindowYears years up to now.
func dateRangeFilter(now time.Time) string {
	start := now.AddDate(-PublicationWindowYears, 0, 0).Format("2006/01/02")
	clause := `("` + start + `"[Date - Publication] : "3000"[Date - Publication])`
	return url.QueryEscape(clause)
}
