// Package healthcheck polls the API healthcheck document and shares the
// response time numbers with every connected view.
package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// Topic is the pubsub topic snapshots are published on.
const Topic = "healthcheck"

// ErrUnavailable is returned when the healthcheck document cannot be read.
var ErrUnavailable = errors.New("healthcheck: unavailable")

// Snapshot is the subset of the healthcheck document shown on the site.
type Snapshot struct {
	AvgPretty string    `json:"avg_pretty" msgpack:"avg_pretty"`
	P95Pretty string    `json:"p95_pretty" msgpack:"p95_pretty"`
	FetchedAt time.Time `json:"-" msgpack:"fetched_at"`
}

// DefaultSnapshot is shown until the first successful poll.
var DefaultSnapshot = Snapshot{AvgPretty: "128ms", P95Pretty: "1.2s"}

var unitRe = regexp.MustCompile(`ms|s`)

// TrimUnit strips the first ms or s unit: "128ms" becomes "128".
func TrimUnit(s string) string {
	loc := unitRe.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// Avg returns the average response time without its unit.
func (s Snapshot) Avg() string { return TrimUnit(s.AvgPretty) }

// P95 returns the 95th percentile without its unit.
func (s Snapshot) P95() string { return TrimUnit(s.P95Pretty) }

// Client reads the healthcheck document.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client. A nil httpClient uses a 5s timeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{url: url, http: httpClient}
}

type document struct {
	Meta Snapshot `json:"meta"`
}

// Fetch returns the current numbers.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}
	if doc.Meta.AvgPretty == "" || doc.Meta.P95Pretty == "" {
		return Snapshot{}, fmt.Errorf("%w: missing meta timings", ErrUnavailable)
	}
	doc.Meta.FetchedAt = time.Now()
	return doc.Meta, nil
}
