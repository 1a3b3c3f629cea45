package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

const (
	// MaxAuthorsShown before collapsing to "et al." in human output.
	MaxAuthorsShown = 3

	// TitleMaxLen truncates long titles in human output.
	TitleMaxLen = 80
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// printArticlesHuman renders articles as a numbered list: title,
// truncated author list, publication metadata, and the article link.
func printArticlesHuman(articles []article.Article) {
	if len(articles) == 0 {
		fmt.Println("No articles found")
		return
	}

	for i, art := range articles {
		fmt.Printf("%d. %s\n", i+1, truncateString(art.Title, TitleMaxLen))
		if art.SimilarityScore > 0 {
			fmt.Printf("   similarity: %.2f\n", art.SimilarityScore)
		}
		if len(art.Authors) > 0 {
			fmt.Printf("   %s\n", formatAuthorsShort(art.Authors))
		}
		if meta := formatPublication(art); meta != "" {
			fmt.Printf("   %s\n", meta)
		}
		fmt.Printf("   %s\n\n", art.URL)
	}
}

// formatAuthorsShort shows the first three authors, then "et al.".
func formatAuthorsShort(authors []string) string {
	if len(authors) <= MaxAuthorsShown {
		return strings.Join(authors, "; ")
	}
	return strings.Join(authors[:MaxAuthorsShown], "; ") + "; et al."
}

// formatPublication joins journal and date, whichever are present.
func formatPublication(art article.Article) string {
	switch {
	case art.Journal != "" && art.PublicationDate != "":
		return art.Journal + ", " + art.PublicationDate
	case art.Journal != "":
		return art.Journal
	default:
		return art.PublicationDate
	}
}

// truncateString shortens a string to maxLen, appending "..." when cut.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
