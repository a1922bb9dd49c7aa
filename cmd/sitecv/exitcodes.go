package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no site root, bad sitecv.yml, missing API key)
	ExitDataError   = 3 // Data error (missing or malformed CSV, profile or metrics)
	ExitAPIError    = 4 // SerpApi error (auth, not found, bad response, network)
	ExitRateLimited = 5 // SerpApi quota or rate limit exceeded
)
