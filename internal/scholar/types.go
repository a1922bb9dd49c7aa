// Package scholar fetches Google Scholar author metrics and article lists
// through the SerpApi search endpoint and reads and writes the resulting
// site data files.
package scholar

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Source labels written into the data files.
const (
	SourceSerpAPI = "Google Scholar (via SerpApi)"
	SourcePlain   = "Google Scholar"
)

// Stat is a metric value that may arrive as a JSON number, a string or null.
// The empty Stat means "unknown" and is written as "".
type Stat string

// UnmarshalJSON accepts numbers, strings and null.
func (s *Stat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Stat(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Stat(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into Stat", string(data))
}

// MarshalJSON writes numeric values as JSON numbers and everything else as a
// string.
func (s Stat) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	if n, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	if f, err := strconv.ParseFloat(string(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return json.Marshal(f)
	}
	return json.Marshal(string(s))
}

func (s Stat) String() string {
	return string(s)
}

// Metrics is the content of data/metrics.json.
type Metrics struct {
	Source             string    `json:"source"`
	AuthorID           string    `json:"author_id"`
	ProfileURL         string    `json:"profile_url"`
	CitationsAll       Stat      `json:"citations_all"`
	CitationsSince2016 Stat      `json:"citations_since_2016"`
	HIndexAll          Stat      `json:"h_index_all"`
	HIndexSince2016    Stat      `json:"h_index_since_2016"`
	I10IndexAll        Stat      `json:"i10_index_all"`
	I10IndexSince2016  Stat      `json:"i10_index_since_2016"`
	LastUpdated        string    `json:"last_updated"`
	Note               string    `json:"note,omitempty"`
	Raw                *RawTrace `json:"raw,omitempty"`
}

// RawTrace keeps a minimal trace of the API response for debugging.
// It never contains the API key.
type RawTrace struct {
	SearchMetadata   map[string]any `json:"search_metadata"`
	SearchParameters map[string]any `json:"search_parameters"`
}

// PublicationsFile is the content of data/scholar_publications.json.
type PublicationsFile struct {
	Source      string            `json:"source"`
	AuthorID    string            `json:"author_id"`
	ProfileURL  string            `json:"profile_url"`
	GeneratedOn string            `json:"generated_on"`
	Items       []PublicationItem `json:"items"`
}

// PublicationItem is one Scholar article with its citation count.
type PublicationItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Year        string `json:"year"`
	Authors     string `json:"authors"`
	Publication string `json:"publication"`
	CitedBy     *int   `json:"cited_by"`
}

// authorResponse is the subset of the google_scholar_author engine response
// this package reads.
type authorResponse struct {
	Error            string          `json:"error"`
	SearchMetadata   map[string]any  `json:"search_metadata"`
	SearchParameters map[string]any  `json:"search_parameters"`
	CitedBy          json.RawMessage `json:"cited_by"`
	Articles         []article       `json:"articles"`
	Pagination       struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
}

type article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Year        Stat   `json:"year"`
	Authors     string `json:"authors"`
	Publication string `json:"publication"`
	CitedBy     *struct {
		Value *int `json:"value"`
	} `json:"cited_by"`
}

// ProfileURL returns the public Scholar profile URL for an author.
func ProfileURL(authorID, hl string) string {
	return fmt.Sprintf("https://scholar.google.com/citations?hl=%s&user=%s", hl, authorID)
}
