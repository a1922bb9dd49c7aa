package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Endpoint is the SerpApi search endpoint.
	Endpoint = "https://serpapi.com/search.json"

	// Engine is the SerpApi engine for Scholar author profiles.
	Engine = "google_scholar_author"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit is the request rate used when none is configured.
	DefaultRateLimit = 2.0

	// DefaultMaxPages bounds article pagination.
	DefaultMaxPages = 50

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 * 1024
)

// Client is a rate-limited HTTP client for the SerpApi Scholar author engine.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	endpoint   string
	maxPages   int
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

// WithEndpoint sets a custom endpoint URL (for testing).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithRateLimit sets the maximum request rate in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMaxPages bounds the number of article pages fetched.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithClock sets the time source used for last_updated/generated_on stamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new SerpApi client using the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		apiKey:     apiKey,
		endpoint:   Endpoint,
		maxPages:   DefaultMaxPages,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthError, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
}

// get fetches one page. rawURL is either the endpoint (with params) or a
// pagination URL returned by a previous page.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (*authorResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing URL: %v", ErrInvalidResponse, err)
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	if q.Get("api_key") == "" {
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, redactKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var out authorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidResponse, err)
	}
	if out.Error != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: out.Error}
	}

	return &out, nil
}

func (c *Client) authorParams(authorID, hl string) url.Values {
	return url.Values{
		"engine":    {Engine},
		"author_id": {authorID},
		"hl":        {hl},
	}
}

// FetchMetrics fetches the author's citation, h-index and i10-index table.
func (c *Client) FetchMetrics(ctx context.Context, authorID, hl string) (*Metrics, error) {
	if authorID == "" {
		return nil, ErrMissingAuthorID
	}

	resp, err := c.get(ctx, c.endpoint, c.authorParams(authorID, hl))
	if err != nil {
		return nil, err
	}

	table := ParseCitedByTable(resp.CitedBy)

	return &Metrics{
		Source:             SourceSerpAPI,
		AuthorID:           authorID,
		ProfileURL:         ProfileURL(authorID, hl),
		CitationsAll:       table.CitationsAll,
		CitationsSince2016: table.CitationsSince,
		HIndexAll:          table.HIndexAll,
		HIndexSince2016:    table.HIndexSince,
		I10IndexAll:        table.I10IndexAll,
		I10IndexSince2016:  table.I10IndexSince,
		LastUpdated:        c.now().Format(DateLayout),
		Raw: &RawTrace{
			SearchMetadata:   orEmpty(resp.SearchMetadata),
			SearchParameters: withoutAPIKey(resp.SearchParameters),
		},
	}, nil
}

// FetchArticles fetches every article on the author's profile, following
// SerpApi pagination until no next page is reported.
func (c *Client) FetchArticles(ctx context.Context, authorID, hl string) (*PublicationsFile, error) {
	if authorID == "" {
		return nil, ErrMissingAuthorID
	}

	items := make([]PublicationItem, 0)
	next := c.endpoint
	params := c.authorParams(authorID, hl)
	params.Set("start", "0")

	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%w (%d pages)", ErrTooManyPages, c.maxPages)
		}

		resp, err := c.get(ctx, next, params)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page+1, err)
		}

		for _, a := range resp.Articles {
			items = append(items, a.toItem())
		}

		if resp.Pagination.Next == "" {
			break
		}
		next = resp.Pagination.Next
		params = nil
	}

	return &PublicationsFile{
		Source:      SourceSerpAPI,
		AuthorID:    authorID,
		ProfileURL:  ProfileURL(authorID, hl),
		GeneratedOn: c.now().Format(ISODateLayout),
		Items:       items,
	}, nil
}

func (a article) toItem() PublicationItem {
	item := PublicationItem{
		Title:       a.Title,
		Link:        a.Link,
		Year:        a.Year.String(),
		Authors:     a.Authors,
		Publication: a.Publication,
	}
	if a.CitedBy != nil {
		item.CitedBy = a.CitedBy.Value
	}
	return item
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func withoutAPIKey(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if k == "api_key" {
			continue
		}
		out[k] = v
	}
	return out
}

// redactKey removes the API key from error text (URLs in net/http errors
// carry the full query string).
func redactKey(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "REDACTED")
}
