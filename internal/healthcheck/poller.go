package healthcheck

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/pubsub"
)

// Source returns fresh numbers. *Client implements it.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	Source   Source
	Interval time.Duration
	PubSub   pubsub.PubSub
	Logger   logging.Logger
}

// Poller keeps the latest snapshot. Failed polls keep the previous one.
type Poller struct {
	source   Source
	interval time.Duration
	ps       pubsub.PubSub
	logger   logging.Logger

	latest   atomic.Pointer[Snapshot]
	lastOK   atomic.Int64
	failures atomic.Int32
}

// NewPoller creates a poller holding DefaultSnapshot.
func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.DefaultLogger
	}
	p := &Poller{
		source:   cfg.Source,
		interval: cfg.Interval,
		ps:       cfg.PubSub,
		logger:   cfg.Logger.With(logging.String("component", "healthcheck")),
	}
	snap := DefaultSnapshot
	p.latest.Store(&snap)
	return p
}

// Latest returns the current snapshot.
func (p *Poller) Latest() Snapshot {
	return *p.latest.Load()
}

// Refresh polls once and publishes the snapshot it ends up holding.
func (p *Poller) Refresh(ctx context.Context) error {
	snap, err := p.source.Fetch(ctx)
	if err != nil {
		n := p.failures.Add(1)
		p.logger.Warn("healthcheck poll failed", logging.Int("failures", int(n)), logging.Err(err))
		return err
	}
	p.failures.Store(0)
	p.lastOK.Store(time.Now().UnixNano())
	p.latest.Store(&snap)

	if p.ps != nil {
		if err := pubsub.Publish(p.ps, Topic, snap); err != nil {
			p.logger.Warn("healthcheck publish failed", logging.Err(err))
		}
	}
	return nil
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	_ = p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

// Check is a health check that fails while the last successful poll is
// older than three intervals.
func (p *Poller) Check(ctx context.Context) error {
	last := p.lastOK.Load()
	if last == 0 {
		return fmt.Errorf("%w: no successful poll yet", ErrUnavailable)
	}
	if age := time.Since(time.Unix(0, last)); age > 3*p.interval {
		return fmt.Errorf("%w: last successful poll %s ago", ErrUnavailable, age.Round(time.Second))
	}
	return nil
}
