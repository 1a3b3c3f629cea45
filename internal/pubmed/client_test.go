package pubmed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// setFastRetries makes backoff waits negligible for the duration of a test.
func setFastRetries(t *testing.T) {
	t.Helper()
	old := RetryBaseDelay
	RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { RetryBaseDelay = old })
}

const searchResponse = `{"esearchresult":{"count":"2","idlist":["111","222"],"webenv":"WEB123","querykey":"1"}}`

const fetchResponseXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>111</PMID>
      <Article>
        <ArticleTitle>Test article</ArticleTitle>
        <Abstract><AbstractText>Some text.</AbstractText></Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><ForeName>Jane</ForeName></Author>
        </AuthorList>
        <Journal>
          <Title>Test Journal</Title>
          <JournalIssue><PubDate><Year>2024</Year></PubDate></JournalIssue>
        </Journal>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestSearch_ParsesIDsAndHistoryTokens(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithEmail("dev@example.org"),
		WithAPIKey("secret"),
		WithClock(func() time.Time { return fixedNow }),
	)

	result, err := client.Search(context.Background(), "diabetes", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(result.IDs) != 2 || result.IDs[0] != "111" || result.IDs[1] != "222" {
		t.Errorf("IDs = %v, want [111 222]", result.IDs)
	}
	if result.WebEnv != "WEB123" || result.QueryKey != "1" {
		t.Errorf("history tokens = %q/%q, want WEB123/1", result.WebEnv, result.QueryKey)
	}

	// Identity parameters must accompany every call.
	if got := gotQuery["tool"]; len(got) != 1 || got[0] != ToolName {
		t.Errorf("tool = %v, want %q", got, ToolName)
	}
	if got := gotQuery["email"]; len(got) != 1 || got[0] != "dev@example.org" {
		t.Errorf("email = %v, want dev@example.org", got)
	}
	if got := gotQuery["api_key"]; len(got) != 1 || got[0] != "secret" {
		t.Errorf("api_key = %v, want secret", got)
	}
	if got := gotQuery["term"]; len(got) != 1 || got[0] == "" {
		t.Errorf("term missing from request: %v", gotQuery)
	}
}

func TestGet_RetriesThenSucceeds(t *testing.T) {
	setFastRetries(t)

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	ids, err := client.SearchIDs(context.Background(), "diabetes", 5)
	if err != nil {
		t.Fatalf("SearchIDs failed after recoverable errors: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(ids) != 2 {
		t.Errorf("got %d ids, want 2", len(ids))
	}
}

func TestGet_RetryTermination(t *testing.T) {
	setFastRetries(t)

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.SearchIDs(context.Background(), "diabetes", 5)

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != MaxAttempts {
		t.Errorf("attempts = %d, want exactly %d (no 4th attempt)", attempts, MaxAttempts)
	}
	if !errors.Is(err, ErrAPIError) {
		t.Errorf("err = %v, want ErrAPIError", err)
	}
}

func TestGet_RateLimitedError(t *testing.T) {
	setFastRetries(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.SearchIDs(context.Background(), "diabetes", 5)

	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestGet_ContextCancelledDuringBackoff(t *testing.T) {
	// Slow retries so cancellation lands inside the backoff wait.
	old := RetryBaseDelay
	RetryBaseDelay = time.Minute
	t.Cleanup(func() { RetryBaseDelay = old })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.SearchIDs(ctx, "diabetes", 5)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestFetchDetails_NormalizesArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("retmode"); got != "xml" {
			t.Errorf("retmode = %q, want xml", got)
		}
		w.Write([]byte(fetchResponseXML))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	articles, err := client.FetchDetails(context.Background(), []string{"111"})
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}

	art := articles[0]
	if art.PMID != "111" || art.Title != "Test article" {
		t.Errorf("article = %+v", art)
	}
	if art.Abstract != "Some text." {
		t.Errorf("Abstract = %q", art.Abstract)
	}
}

func TestFetchDetails_SkipsFailedArticles(t *testing.T) {
	setFastRetries(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "bad" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(fetchResponseXML))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	articles, err := client.FetchDetails(context.Background(), []string{"111", "bad"})
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1 (failed fetch skipped)", len(articles))
	}
}

func TestFetchDetails_EmptyIDs(t *testing.T) {
	client := NewClient()
	articles, err := client.FetchDetails(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
}
