package scholar

import (
	"errors"
	"fmt"
)

// Common errors returned by the SerpApi client.
var (
	// ErrMissingAPIKey indicates no API key was configured.
	ErrMissingAPIKey = errors.New("missing SERPAPI_API_KEY")

	// ErrMissingAuthorID indicates no Scholar author id could be resolved.
	ErrMissingAuthorID = errors.New("scholar author id not found")

	// ErrNotFound indicates the author was not found.
	ErrNotFound = errors.New("not found in Google Scholar")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("SerpApi authentication error")

	// ErrRateLimited indicates the account's search quota or rate limit was hit.
	ErrRateLimited = errors.New("SerpApi rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with SerpApi")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from SerpApi")

	// ErrTooManyPages indicates pagination did not terminate.
	ErrTooManyPages = errors.New("SerpApi pagination exceeded page limit")
)

// APIError represents an error reported by SerpApi.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SerpApi error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) || errors.Is(err, ErrMissingAPIKey) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
