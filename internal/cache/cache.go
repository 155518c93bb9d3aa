package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pandorascan/weather-scanner/internal/models"
)

// keyPrefix namespaces cache keys in shared backends (memcached, redis).
const keyPrefix = "weather:"

// Cache is the weather report cache. Get returns the cached report if present
// and not expired, Set stores a report with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.WeatherReport, bool, error)
	Set(ctx context.Context, key string, value models.WeatherReport, ttl time.Duration) error
}

// InMemoryCache implements Cache with a map and TTL-based expiration. Expired
// entries are evicted lazily on read. The read-check-evict sequence runs
// under one mutex so concurrent readers cannot observe a half-evicted entry;
// concurrent misses may still race to the upstream, last writer wins.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	value     models.WeatherReport
	expiresAt time.Time
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]memoryEntry),
	}
}

// Get returns the cached report for key if present and younger than its TTL.
// An entry past its expiry is deleted and reported as a miss.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.WeatherReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return models.WeatherReport{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.WeatherReport{}, false, nil
	}

	return entry.value, true, nil
}

// Set stores the report under key, overwriting any prior entry. The entry
// expires after ttl and is removed on the next Get.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.WeatherReport, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Len returns the number of entries currently stored, including entries that
// have expired but not yet been evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
