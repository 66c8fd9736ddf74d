// Package catalog caches upstream reference data (products, counterparts,
// accounts, order lists, dashboard aggregates) keyed by logical resource
// name. Reads are read-through; mutations elsewhere invalidate keys so the
// next read re-fetches.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Logical cache keys. One key covers one upstream list or aggregate.
const (
	KeyProducts       = "products"
	KeyCustomers      = "customers"
	KeySuppliers      = "suppliers"
	KeyCashAccounts   = "cash-accounts"
	KeySalesOrders    = "sales-orders"
	KeyPurchaseOrders = "purchase-orders"
	KeyTransactions   = "transactions"
	KeySummary        = "dashboard:summary"
	KeySalesChart     = "dashboard:chart"
	KeyLowStock       = "dashboard:low-stock"
)

// ErrUnknownKey is returned for keys with no registered loader.
var ErrUnknownKey = errors.New("catalog: unknown cache key")

// Loader fetches the authoritative value for a key from upstream.
type Loader func(ctx context.Context) (any, error)

// Cache is a read-through cache with explicit invalidation. Values live in
// Redis when a client is configured and in process memory otherwise.
// Invalidation only marks a key stale; it never re-fetches. A failed fetch
// surfaces to the caller and leaves any previous value in place, so the
// next read retries instead of serving a poisoned entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group

	mu      sync.Mutex
	stale   map[string]bool
	local   map[string]localEntry
	loaders map[string]Loader
}

// localEntry mirrors the redis TTL for in-memory operation.
type localEntry struct {
	raw     []byte
	expires time.Time
}

// NewCache constructs a Cache. client may be nil for in-memory operation.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client:  client,
		ttl:     ttl,
		stale:   make(map[string]bool),
		local:   make(map[string]localEntry),
		loaders: make(map[string]Loader),
	}
}

// Register binds a loader to a key. Later registrations replace earlier ones.
func (c *Cache) Register(key string, loader Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[key] = loader
}

// Keys lists the registered cache keys.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.loaders))
	for key := range c.loaders {
		keys = append(keys, key)
	}
	return keys
}

// Fetch resolves key into dest, fetching from upstream on miss or staleness.
// Concurrent callers for the same key share a single upstream request.
func (c *Cache) Fetch(ctx context.Context, key string, dest any) error {
	if raw, ok := c.cached(ctx, key); ok {
		return json.Unmarshal(raw, dest)
	}

	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent Fetch may have stored
		// the value between the miss and this callback.
		if raw, ok := c.cached(ctx, key); ok {
			return raw, nil
		}
		return c.load(ctx, key)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate marks key stale. The stored value survives until the next
// successful fetch replaces it.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.stale[key] = true
	}
}

// Refresh force-fetches key and stores the result regardless of staleness.
func (c *Cache) Refresh(ctx context.Context, key string) error {
	_, err, _ := c.group.Do("refresh:"+key, func() (interface{}, error) {
		return c.load(ctx, key)
	})
	return err
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	loader := c.loaders[key]
	c.mu.Unlock()
	if loader == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", key, err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode %s: %w", key, err)
	}
	if err := c.store(ctx, key, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Cache) cached(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	if c.stale[key] {
		c.mu.Unlock()
		return nil, false
	}
	if c.client == nil {
		entry, ok := c.local[key]
		if ok && time.Now().After(entry.expires) {
			delete(c.local, key)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			return nil, false
		}
		return entry.raw, true
	}
	c.mu.Unlock()

	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *Cache) store(ctx context.Context, key string, raw []byte) error {
	if c.client != nil {
		if err := c.client.Set(ctx, c.redisKey(key), raw, c.ttl).Err(); err != nil {
			return fmt.Errorf("catalog: store %s: %w", key, err)
		}
	}
	c.mu.Lock()
	if c.client == nil {
		c.local[key] = localEntry{
			raw:     append([]byte(nil), raw...),
			expires: time.Now().Add(c.ttl),
		}
	}
	delete(c.stale, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) redisKey(key string) string {
	return "catalog:" + key
}
