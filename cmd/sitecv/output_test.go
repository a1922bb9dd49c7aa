package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dtobolski/sitecv/internal/profile"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/scholar"
)

func TestScholarErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit int
		wantCode string
	}{
		{"missing key", scholar.ErrMissingAPIKey, ExitConfigError, "config_error"},
		{"missing author", fmt.Errorf("%w: run metrics first", scholar.ErrMissingAuthorID), ExitConfigError, "config_error"},
		{"rate limited", scholar.ErrRateLimited, ExitRateLimited, "rate_limited"},
		{"rate limited status", &scholar.APIError{StatusCode: 429, Message: "slow down"}, ExitRateLimited, "rate_limited"},
		{"auth", scholar.ErrAuthError, ExitAPIError, "auth_error"},
		{"not found", &scholar.APIError{StatusCode: 404, Message: "gone"}, ExitAPIError, "not_found"},
		{"network", scholar.ErrNetworkError, ExitAPIError, "api_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exit, code := scholarErrorCode(tt.err)
			if exit != tt.wantExit {
				t.Errorf("exit code = %d, want %d", exit, tt.wantExit)
			}
			if code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestDataExitCode(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{Offset: 3}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing csv", fmt.Errorf("%w: data/publications.csv", publication.ErrNotFound), ExitDataError},
		{"malformed csv", fmt.Errorf("%w: empty CSV file", publication.ErrMalformed), ExitDataError},
		{"missing profile", profile.ErrNotFound, ExitDataError},
		{"bad json", fmt.Errorf("parsing profile: %w", syntaxErr), ExitDataError},
		{"cancelled", context.Canceled, ExitError},
		{"other", errors.New("disk full"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dataExitCode(tt.err); got != tt.want {
				t.Errorf("dataExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer citation line", 10, "a longe..."},
		{"Zażółć gęślą jaźń", 9, "Zażółc..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncateString(tt.in, tt.width); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash("  "); got != "-" {
		t.Errorf("orDash(blank) = %q, want -", got)
	}
	if got := orDash("42"); got != "42" {
		t.Errorf("orDash(42) = %q, want 42", got)
	}
}
