// Package fetch drives the live demo: it tracks the fetch status of one view
// and runs metadata requests in the background on its behalf.
package fetch

import (
	"github.com/linkmeta/metasite/internal/metadata"
)

// Status is the lifecycle of a demo fetch.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusDone     Status = "done"
)

// Result is the outcome of one fetch, delivered to the view that started it.
type Result struct {
	URL  string
	Data metadata.Data
	Err  error
}

// Provider holds the fetch state of a single view. It is owned by the view
// and is not safe for concurrent use.
type Provider struct {
	status Status
	url    string
	data   metadata.Data
	err    error
}

// NewProvider returns an idle provider.
func NewProvider() *Provider {
	return &Provider{status: StatusIdle}
}

// Start records that url is being fetched. Previous data stays visible
// until the result arrives.
func (p *Provider) Start(url string) {
	p.status = StatusFetching
	p.url = url
	p.err = nil
}

// Complete stores a result. Results for a URL other than the one in flight
// are stale and ignored.
func (p *Provider) Complete(r Result) bool {
	if p.status != StatusFetching || r.URL != p.url {
		return false
	}
	p.status = StatusDone
	p.err = r.Err
	if r.Err == nil {
		p.data = r.Data
	}
	return true
}

// Reset returns to idle and forgets any data.
func (p *Provider) Reset() {
	*p = Provider{status: StatusIdle}
}

func (p *Provider) Status() Status      { return p.status }
func (p *Provider) URL() string         { return p.url }
func (p *Provider) Data() metadata.Data { return p.data }
func (p *Provider) Err() error          { return p.err }

// Fetching reports whether a request is in flight.
func (p *Provider) Fetching() bool {
	return p.status == StatusFetching
}
