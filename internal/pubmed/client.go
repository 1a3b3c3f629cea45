// Package pubmed implements a resilient client for the NCBI
// E-utilities API: retry with exponential backoff, rate-limit pacing,
// and normalization of efetch XML into canonical articles.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

const (
	// BaseURL is the NCBI E-utilities base URL.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// ToolName identifies this client to NCBI on every request.
	ToolName = "medcrawl"

	// DefaultEmail is the contact address sent when none is configured.
	// NCBI requires a registered contact identity for E-utilities use.
	DefaultEmail = "your-email@example.com"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxAttempts is the total number of tries for each external call.
	MaxAttempts = 3

	// DetailPaceInterval is the fixed pause between detail fetches,
	// keeping the client under NCBI's per-second request ceiling.
	DetailPaceInterval = 340 * time.Millisecond
)

// RetryBaseDelay is the backoff unit: after the n-th failed attempt
// the client waits RetryBaseDelay * 2^(n-1). Tests override this to
// avoid real sleeps.
var RetryBaseDelay = time.Second

// Client is a rate-limited, retrying E-utilities client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiKey     string
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithEmail sets the contact address sent to NCBI.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		if email != "" {
			c.email = email
		}
	}
}

// WithAPIKey sets the NCBI API key, raising the allowed call rate.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithClock sets the clock used for the search date-range filter.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new E-utilities client. PUBMED_EMAIL and
// PUBMED_API_KEY environment variables seed the identity when set;
// options take precedence.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		email:      DefaultEmail,
		limiter:    rate.NewLimiter(rate.Every(DetailPaceInterval), 1),
		now:        time.Now,
	}

	if email := os.Getenv("PUBMED_EMAIL"); email != "" {
		c.email = email
	}
	if key := os.Getenv("PUBMED_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// identity returns the query parameters that identify this client to
// NCBI. Every call carries them, regardless of retry attempt.
func (c *Client) identity() url.Values {
	params := url.Values{}
	params.Set("tool", ToolName)
	params.Set("email", c.email)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return params
}

// Search runs an esearch call and returns the ordered PMID list plus
// the history-server token pair.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := c.identity()
	params.Set("db", "pubmed")
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "json")
	params.Set("usehistory", "y")

	// The term is already percent-encoded by BuildTerm and must not go
	// through url.Values, which would encode it a second time.
	term := BuildTerm(query, c.now())
	callURL := c.baseURL + "/esearch.fcgi?term=" + term + "&" + params.Encode()

	body, err := c.get(ctx, callURL)
	if err != nil {
		return nil, fmt.Errorf("searching pubmed: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}

	return &SearchResult{
		IDs:      resp.Result.IDList,
		WebEnv:   resp.Result.WebEnv,
		QueryKey: resp.Result.QueryKey,
	}, nil
}

// SearchIDs runs a search and returns just the ordered PMID list.
func (c *Client) SearchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	result, err := c.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	return result.IDs, nil
}

// FetchDetails fetches and normalizes one article per id, in order.
// Each fetch is paced by the rate limiter. An article that fails to
// fetch or parse is logged and skipped; the loop only aborts when the
// context is cancelled.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]article.Article, error) {
	articles := make([]article.Article, 0, len(ids))
	for _, id := range ids {
		if err := c.limiter.Wait(ctx); err != nil {
			return articles, fmt.Errorf("rate limiter: %w", err)
		}

		art, err := c.fetchOne(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return articles, ctx.Err()
			}
			log.Printf("pubmed: skipping article %s: %v", id, err)
			continue
		}
		articles = append(articles, art)
	}
	return articles, nil
}

// fetchOne retrieves and normalizes a single article by PMID.
func (c *Client) fetchOne(ctx context.Context, id string) (article.Article, error) {
	params := c.identity()
	params.Set("db", "pubmed")
	params.Set("id", id)
	params.Set("retmode", "xml")

	body, err := c.get(ctx, c.baseURL+"/efetch.fcgi?"+params.Encode())
	if err != nil {
		return article.Article{}, err
	}

	var resp fetchResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return article.Article{}, fmt.Errorf("%w: parsing article XML: %v", ErrInvalidResponse, err)
	}
	if len(resp.Articles) == 0 {
		return article.Article{}, fmt.Errorf("%w: no article in response", ErrInvalidResponse)
	}

	art := mapArticle(resp.Articles[0])
	if art.PMID == "" {
		// Keep the requested id authoritative if upstream omitted it.
		art.PMID = id
		art.URL = article.URLForPMID(id)
	}
	return art, nil
}

// get performs a GET with the retry policy: up to MaxAttempts tries,
// waiting RetryBaseDelay*2^(n-1) after the n-th failure. The error
// from the final attempt propagates to the caller.
func (c *Client) get(ctx context.Context, callURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := RetryBaseDelay << (attempt - 2)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.doOnce(ctx, callURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", MaxAttempts, lastErr)
}

// doOnce performs a single HTTP GET.
func (c *Client) doOnce(ctx context.Context, callURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// Email returns the contact address the client sends to NCBI.
func (c *Client) Email() string {
	return c.email
}

// HasAPIKey reports whether an API key is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}
