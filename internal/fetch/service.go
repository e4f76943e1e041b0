package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/linkmeta/metasite/internal/metadata"
	"github.com/linkmeta/metasite/pkg/limits"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/metrics"
)

// ErrRateLimited is delivered when a visitor fetches too often.
var ErrRateLimited = errors.New("fetch: too many requests")

// Fetcher is the metadata source. *metadata.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, target string, opts metadata.Options) (*metadata.Response, error)
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Rate and Burst bound fetches per client key.
	Rate  float64
	Burst int

	// Timeout bounds one background fetch, retries included.
	Timeout time.Duration

	Options metadata.Options
	Logger  logging.Logger
}

// Service runs demo fetches off the view goroutine.
type Service struct {
	fetcher Fetcher
	limiter *limits.TokenBucket
	timeout time.Duration
	opts    metadata.Options
	logger  logging.Logger
}

// NewService creates a service. Call Close to stop the limiter.
func NewService(fetcher Fetcher, cfg ServiceConfig) *Service {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.DefaultLogger
	}
	return &Service{
		fetcher: fetcher,
		limiter: limits.NewTokenBucket(cfg.Rate, cfg.Burst),
		timeout: cfg.Timeout,
		opts:    cfg.Options,
		logger:  cfg.Logger.With(logging.String("component", "fetch")),
	}
}

type clientKey struct{}

// WithClientKey sets the key fetches from ctx are rate limited under,
// usually the visitor IP.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKey{}, key)
}

func clientKeyFrom(ctx context.Context) string {
	if k, ok := ctx.Value(clientKey{}).(string); ok && k != "" {
		return k
	}
	return "anonymous"
}

// DoFetch fetches url in the background and hands the result to deliver.
// It returns immediately. The fetch outlives ctx cancellation so a result
// always arrives, bounded by the service timeout.
func (s *Service) DoFetch(ctx context.Context, url string, deliver func(Result)) {
	if !s.limiter.Allow(clientKeyFrom(ctx)) {
		metrics.RecordFetch(metrics.OutcomeRateLimited, 0)
		go deliver(Result{URL: url, Err: ErrRateLimited})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("fetch panicked", logging.String("url", url), logging.Any("panic", r))
				deliver(Result{URL: url, Err: errors.New("fetch: internal error")})
			}
		}()

		start := time.Now()
		resp, err := s.fetcher.Fetch(ctx, url, s.opts)
		if err != nil {
			metrics.RecordFetch(metrics.OutcomeError, time.Since(start))
			s.logger.Info("demo fetch failed", logging.String("url", url), logging.Err(err))
			deliver(Result{URL: url, Err: err})
			return
		}
		metrics.RecordFetch(metrics.OutcomeOK, time.Since(start))
		deliver(Result{URL: url, Data: resp.Data})
	}()
}

// Close stops the rate limiter.
func (s *Service) Close() error {
	s.limiter.Stop()
	return nil
}

// Message turns a fetch error into text for the visitor.
func Message(err error) string {
	var serr *metadata.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Too many requests, try again in a few seconds."
	case errors.Is(err, metadata.ErrInvalidURL):
		return "The URL is not valid."
	case errors.As(err, &serr) && serr.Message != "":
		return serr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long."
	}
	return "Something went wrong, try again later."
}
