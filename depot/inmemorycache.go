package depot

import (
	"sync"
	"time"

	"github.com/alagad/depot/matching"
)

// InMemoryListingCache is a simple in-memory implementation of
// ListingCache. Thread-safe for concurrent access. The clock is
// injectable so TTL expiry is testable.
type InMemoryListingCache struct {
	listings []matching.DonationRecord
	cachedAt time.Time
	config   CacheConfig
	clock    matching.Clock
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryListingCache creates a new in-memory listing cache using
// the system clock.
func NewInMemoryListingCache(config CacheConfig) *InMemoryListingCache {
	return NewInMemoryListingCacheWithClock(config, matching.SystemClock())
}

// NewInMemoryListingCacheWithClock creates a cache with an explicit
// clock.
func NewInMemoryListingCacheWithClock(config CacheConfig, clock matching.Clock) *InMemoryListingCache {
	return &InMemoryListingCache{
		config:  config,
		clock:   clock,
		isValid: false,
	}
}

// Get retrieves cached listings. Returns nil if the cache is invalid
// or expired.
func (c *InMemoryListingCache) Get() []matching.DonationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.expiredLocked() {
		// Return copy to prevent external modifications
		listingsCopy := make([]matching.DonationRecord, len(c.listings))
		copy(listingsCopy, c.listings)
		return listingsCopy
	}
	return nil
}

// Set stores listings in the cache.
func (c *InMemoryListingCache) Set(listings []matching.DonationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Store copy to prevent external modifications
	c.listings = make([]matching.DonationRecord, len(listings))
	copy(c.listings, listings)
	c.cachedAt = c.clock.Now()
	c.isValid = true
}

// Invalidate clears the cache.
func (c *InMemoryListingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.listings = nil
}

// IsValid returns true if the cache contains unexpired data.
func (c *InMemoryListingCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return !c.expiredLocked()
}

func (c *InMemoryListingCache) expiredLocked() bool {
	if !c.isValid {
		return true
	}
	if c.config.TTL > 0 {
		return c.clock.Now().Sub(c.cachedAt) > c.config.TTL
	}
	return false
}
