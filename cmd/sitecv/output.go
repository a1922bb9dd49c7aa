package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/scholar"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for the list command

	ListCitationMaxLen = 70 // Citation width in list output
	LabelWidth         = 42 // Label column in summary tables
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	_ = logger.Sync()
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScholarError is the JSON error body for SerpApi failures.
type ScholarError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	AuthorID string `json:"author_id,omitempty"`
}

// scholarErrorCode maps a SerpApi error to an exit code and a short code
// for the JSON error body.
func scholarErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, scholar.ErrMissingAPIKey), errors.Is(err, scholar.ErrMissingAuthorID):
		return ExitConfigError, "config_error"
	case scholar.IsRateLimited(err):
		return ExitRateLimited, "rate_limited"
	case scholar.IsAuthError(err):
		return ExitAPIError, "auth_error"
	case scholar.IsNotFound(err):
		return ExitAPIError, "not_found"
	default:
		return ExitAPIError, "api_error"
	}
}

// exitWithScholarError reports a SerpApi failure and exits.
func exitWithScholarError(err error, authorID string) {
	exitCode, errCode := scholarErrorCode(err)

	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		if authorID != "" {
			fmt.Fprintf(os.Stderr, "  Author ID: %s\n", authorID)
		}
	} else {
		outputJSON(map[string]ScholarError{
			"error": {Code: errCode, Message: err.Error(), AuthorID: authorID},
		})
	}
	_ = logger.Sync()
	os.Exit(exitCode)
}

// dataExitCode picks the exit code for a failure reading or building site data.
func dataExitCode(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitError
	case errors.Is(err, publication.ErrNotFound),
		errors.Is(err, publication.ErrMalformed),
		errors.Is(err, profile.ErrNotFound),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return ExitDataError
	default:
		return ExitError
	}
}

// truncateString truncates s to maxWidth display columns, adding "..." if
// truncated.
func truncateString(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}

// printRows prints label/value pairs with the values aligned.
func printRows(rows [][2]string) {
	for _, r := range rows {
		fmt.Printf("  %s %s\n", runewidth.FillRight(r[0]+":", LabelWidth), r[1])
	}
}

// orDash returns "-" for empty values in human output.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
