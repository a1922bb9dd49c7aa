package scholar

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtobolski/sitecv/internal/storage"
)

// Date formats used in the data files.
const (
	DateLayout    = "02.01.2006"
	ISODateLayout = "2006-01-02"
)

// MissingMetricsNote is recorded when metrics.json does not exist.
const MissingMetricsNote = "metrics.json not found"

// DefaultMetrics returns the placeholder used when no metrics file exists.
func DefaultMetrics() *Metrics {
	return &Metrics{
		Source: SourcePlain,
		Note:   MissingMetricsNote,
	}
}

// LoadMetrics reads metrics.json. A missing file yields DefaultMetrics.
func LoadMetrics(path string) (*Metrics, error) {
	var m Metrics
	if err := storage.ReadJSON(path, &m); err != nil {
		if os.IsNotExist(err) {
			return DefaultMetrics(), nil
		}
		return nil, fmt.Errorf("reading metrics: %w", err)
	}
	return &m, nil
}

// ResolveAuthorID picks the author id for the publications job: the id
// recorded in metrics.json wins over the fallback (environment or config).
func ResolveAuthorID(metricsPath, fallback string) (string, error) {
	if m, err := LoadMetrics(metricsPath); err == nil && strings.TrimSpace(m.AuthorID) != "" {
		return strings.TrimSpace(m.AuthorID), nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: set SCHOLAR_AUTHOR_ID or run the metrics job first", ErrMissingAuthorID)
}
