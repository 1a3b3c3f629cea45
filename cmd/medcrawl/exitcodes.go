package main

// Exit codes returned by medcrawl commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, missing store)
	ExitAPIError    = 3 // PubMed API error (rate limit, network, exhausted retries)
	ExitOllamaError = 4 // Embedding backend not available
)
