package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrCacheMiss is returned for absent or expired keys.
var ErrCacheMiss = errors.New("metadata: cache miss")

// Cache keeps msgpack-encoded responses in memory for a TTL. Callers always
// get a fresh copy, so a view can never mutate a cached response.
type Cache struct {
	items map[string]*cacheItem
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
	mu    sync.RWMutex
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// NewCache creates a cache and starts its sweeper. A ttl of zero keeps
// entries forever.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*cacheItem),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup(time.Minute)
	return c
}

// Get decodes the response stored under key.
func (c *Cache) Get(ctx context.Context, key string) (*Response, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		c.Delete(ctx, key)
		return nil, ErrCacheMiss
	}

	var resp Response
	if err := msgpack.Unmarshal(item.value, &resp); err != nil {
		return nil, fmt.Errorf("metadata: decode cached %s: %w", key, err)
	}
	return &resp, nil
}

// Set stores resp under key.
func (c *Cache) Set(ctx context.Context, key string, resp *Response) error {
	value, err := msgpack.Marshal(resp)
	if err != nil {
		return fmt.Errorf("metadata: encode %s: %w", key, err)
	}

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[key] = &cacheItem{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
