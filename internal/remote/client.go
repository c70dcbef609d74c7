// Package remote asks a hosted PostgREST (Supabase) endpoint for the exact
// row count of a table, optionally restricted by column filters.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMissingCredential is returned by NewClient when the URL or key is unset
var ErrMissingCredential = errors.New("missing credential")

// Config holds the service location and credentials
type Config struct {
	URL    string
	Key    string
	Schema string // Optional; sent as Accept-Profile
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Table      string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("count %s: unexpected status %s", e.Table, e.Status)
}

// CountResult is the answer to a count query
type CountResult struct {
	Table        string
	Count        int64
	StatusCode   int
	ContentRange string // Raw header value, e.g. "0-24/573" or "*/0"
}

// Client issues count queries. It holds no state beyond its configuration.
type Client struct {
	baseURL *url.URL
	key     string
	schema  string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the diagnostic logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient validates cfg and returns a ready client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: SUPABASE_URL is not set", ErrMissingCredential)
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("%w: SUPABASE_KEY is not set", ErrMissingCredential)
	}

	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUPABASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid SUPABASE_URL %q: want an absolute http(s) URL", cfg.URL)
	}

	c := &Client{
		baseURL: u,
		key:     cfg.Key,
		schema:  cfg.Schema,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Count returns the exact number of rows in table that match every filter.
// column is the selected column; the server only needs it to build the
// query.
func (c *Client) Count(ctx context.Context, table, column string, filters ...Filter) (*CountResult, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}
	if column == "" {
		column = "*"
	}

	endpoint := c.baseURL.JoinPath("rest", "v1", table)
	q := endpoint.Query()
	q.Set("select", column)
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return nil, err
		}
		f.apply(q)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Prefer", "count=exact")
	if c.schema != "" {
		req.Header.Set("Accept-Profile", c.schema)
	}

	c.log.Debug("sending count request",
		zap.String("table", table),
		zap.String("url", endpoint.Redacted()),
		zap.Int("filters", len(filters)),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	defer resp.Body.Close()

	c.log.Debug("count response",
		zap.String("table", table),
		zap.Int("status", resp.StatusCode),
		zap.String("content_range", resp.Header.Get("Content-Range")),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Table: table, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	contentRange := resp.Header.Get("Content-Range")
	count, err := ParseContentRange(contentRange)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}

	return &CountResult{
		Table:        table,
		Count:        count,
		StatusCode:   resp.StatusCode,
		ContentRange: contentRange,
	}, nil
}

// ParseContentRange extracts the total from a PostgREST Content-Range value
// such as "0-24/573", "*/0" or "items 0-9/42".
func ParseContentRange(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("response has no Content-Range header")
	}

	slash := strings.LastIndexByte(v, '/')
	if slash < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", v)
	}
	total := v[slash+1:]
	if total == "*" {
		return 0, fmt.Errorf("no exact count in Content-Range %q", v)
	}

	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", v)
	}
	return n, nil
}
