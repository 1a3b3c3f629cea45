package pubmed

import "errors"

// Common errors returned by the E-utilities client.
var (
	// ErrRateLimited indicates NCBI rejected a call for exceeding the
	// per-second request ceiling.
	ErrRateLimited = errors.New("pubmed rate limit exceeded")

	// ErrAPIError indicates a non-success HTTP status from E-utilities.
	ErrAPIError = errors.New("pubmed API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with pubmed")

	// ErrInvalidResponse indicates a response the client could not parse.
	ErrInvalidResponse = errors.New("invalid response from pubmed")
)
