// Package pages holds the live views served by the site.
package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/linkmeta/metasite/internal/fetch"
	"github.com/linkmeta/metasite/internal/healthcheck"
	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/pubsub"
	"github.com/linkmeta/metasite/pkg/router"
)

// Fetcher runs demo fetches in the background. *fetch.Service implements it.
type Fetcher interface {
	DoFetch(ctx context.Context, url string, deliver func(fetch.Result))
}

// StatsSource provides the latest API timings. *healthcheck.Poller
// implements it.
type StatsSource interface {
	Latest() healthcheck.Snapshot
}

// defaultFetchTimeout is how long a view waits for a demo result when
// Deps.FetchTimeout is unset.
const defaultFetchTimeout = 45 * time.Second

// Deps are the collaborators shared by every page.
type Deps struct {
	// BaseURL is the public origin used in head tags.
	BaseURL string
	Fetcher Fetcher
	Stats   StatsSource
	// FetchTimeout is how long the meta page waits for a demo result
	// before it gives up. It should exceed the fetcher's own timeout.
	FetchTimeout time.Duration
	Logger       logging.Logger
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.NopLogger{}
	}
	return d.Logger
}

func (d Deps) fetchTimeout() time.Duration {
	if d.FetchTimeout <= 0 {
		return defaultFetchTimeout
	}
	return d.FetchTimeout
}

func (d Deps) stats() healthcheck.Snapshot {
	if d.Stats == nil {
		return healthcheck.DefaultSnapshot
	}
	return d.Stats.Latest()
}

// Register mounts every page on r.
func Register(r *router.Router, deps Deps) {
	r.Live("/{$}", func() core.Component { return NewHome(deps) })
	r.Live("/meta", func() core.Component { return NewMeta(deps) })
	r.Live("/pricing", func() core.Component { return NewPricing(deps) })
	r.Live("/colors", func() core.Component { return NewColors(deps) })
}

// FollowStats relays healthcheck snapshots published on ps to every live
// socket. Views that do not show timings ignore the message.
func FollowStats(ps pubsub.PubSub, sockets *core.SocketManager) (pubsub.Subscription, error) {
	sub, err := pubsub.Subscribe(ps, healthcheck.Topic, func(s healthcheck.Snapshot) {
		sockets.BroadcastInfo(statsUpdated{snapshot: s})
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", healthcheck.Topic, err)
	}
	return sub, nil
}
