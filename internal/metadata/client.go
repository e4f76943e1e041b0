package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/forms"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/retry"
)

// maxBodySize bounds the API answer.
const maxBodySize = 5 << 20

// Config configures a Client.
type Config struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Retry      *retry.Config
	Breaker    *core.CircuitBreakerConfig
	Logger     logging.Logger
}

// Client fetches metadata from the extraction API. Identical concurrent
// requests share one upstream call and answers are cached for CacheTTL.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	retry    *retry.Config
	breaker  *core.CircuitBreaker
	cache    *Cache
	group    singleflight.Group
	tracer   trace.Tracer
	logger   logging.Logger
}

// NewClient creates a client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.DefaultConfig()
	}
	if cfg.Breaker == nil {
		cfg.Breaker = core.DefaultCircuitBreakerConfig()
	}
	if cfg.Breaker.IsFailure == nil {
		cfg.Breaker.IsFailure = isUpstreamFailure
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.DefaultLogger
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		retry:    cfg.Retry,
		breaker:  core.NewCircuitBreaker(cfg.Breaker),
		cache:    NewCache(cfg.CacheTTL),
		tracer:   otel.Tracer("github.com/linkmeta/metasite/internal/metadata"),
		logger:   cfg.Logger.With(logging.String("component", "metadata")),
	}
}

// isUpstreamFailure keeps client mistakes and cancellations from opening
// the breaker.
func isUpstreamFailure(err error) bool {
	return !retry.IsPermanentError(err) && !errors.Is(err, context.Canceled)
}

// Fetch returns the metadata of target.
func (c *Client) Fetch(ctx context.Context, target string, opts Options) (*Response, error) {
	if !forms.IsURL(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, target)
	}
	reqURL := c.endpoint + "/?" + opts.values(target).Encode()

	if resp, err := c.cache.Get(ctx, reqURL); err == nil {
		return resp, nil
	}

	v, err, shared := c.group.Do(reqURL, func() (any, error) {
		resp, err := c.fetch(ctx, reqURL, target)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, reqURL, resp); err != nil {
			c.logger.Warn("cache set failed", logging.Err(err))
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		// Every caller gets its own copy.
		if resp, err := c.cache.Get(ctx, reqURL); err == nil {
			return resp, nil
		}
	}
	return v.(*Response), nil
}

func (c *Client) fetch(ctx context.Context, reqURL, target string) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "metadata.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("metadata.target", target)),
	)
	defer span.End()

	start := time.Now()
	resp, err := core.ExecuteWithResult(c.breaker, func() (*Response, error) {
		return retry.RetryWithResult(ctx, c.retry, func() (*Response, error) {
			return c.do(ctx, reqURL)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.logger.Warn("fetch failed",
			logging.String("url", target),
			logging.Duration("elapsed", time.Since(start)),
			logging.Err(err))
		return nil, err
	}

	c.logger.Debug("fetched", logging.String("url", target), logging.Duration("elapsed", time.Since(start)))
	return resp, nil
}

func (c *Client) do(ctx context.Context, reqURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata: request: %w", err)
	}
	defer res.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))

	var body Response
	decodeErr := json.NewDecoder(io.LimitReader(res.Body, maxBodySize)).Decode(&body)

	if res.StatusCode >= http.StatusBadRequest {
		serr := &StatusError{Code: res.StatusCode, Status: body.Status, Message: body.Message}
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, serr
		}
		return nil, retry.Permanent(serr)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("metadata: decode: %w", decodeErr)
	}
	if body.Status != "success" {
		return nil, retry.Permanent(&StatusError{Code: res.StatusCode, Status: body.Status, Message: body.Message})
	}
	return &body, nil
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() core.CircuitState {
	return c.breaker.State()
}

// Close releases the cache.
func (c *Client) Close() error {
	return c.cache.Close()
}
