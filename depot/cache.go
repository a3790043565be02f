package depot

import (
	"time"

	"github.com/alagad/depot/matching"
)

// ListingCache provides an abstraction for caching fetched listing
// sets. This allows swapping between in-memory, Redis, or other
// caching implementations.
type ListingCache interface {
	// Get retrieves cached listings, returns nil if cache miss or expired
	Get() []matching.DonationRecord

	// Set stores listings in cache
	Set(listings []matching.DonationRecord)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior.
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultPartnerCacheConfig returns the freshness policy for partner
// listings: refetch once a day, invalidate explicitly in between.
func DefaultPartnerCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 24 * time.Hour,
	}
}
