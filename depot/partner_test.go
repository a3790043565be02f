package depot

import (
	"errors"
	"testing"

	"github.com/alagad/depot/matching"
)

// countingFeed wraps a feed and counts fetches.
type countingFeed struct {
	inner   PartnerFeed
	fetches int
	err     error
}

func (f *countingFeed) Fetch() ([]matching.DonationRecord, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.inner.Fetch()
}

func TestStaticPartnerFeedCatalog(t *testing.T) {
	feed := NewStaticPartnerFeed()

	listings, err := feed.Fetch()
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(listings) == 0 {
		t.Fatal("built-in catalog should not be empty")
	}

	seen := make(map[string]bool)
	for _, d := range listings {
		if d.ID == "" {
			t.Error("catalog listing with empty ID")
		}
		if seen[d.ID] {
			t.Errorf("duplicate catalog ID %s", d.ID)
		}
		seen[d.ID] = true

		if err := ValidateRecord(&d); err != nil {
			t.Errorf("catalog listing %s fails validation: %v", d.ID, err)
		}
	}
}

func TestStaticPartnerFeedReturnsCopy(t *testing.T) {
	feed := NewStaticPartnerFeedWithListings(cacheListings())

	first, _ := feed.Fetch()
	first[0].Title = "mutated"

	second, _ := feed.Fetch()
	if second[0].Title == "mutated" {
		t.Error("Fetch() must return a copy of the catalog")
	}
}

func TestCachedPartnerFeedServesFromCache(t *testing.T) {
	counting := &countingFeed{inner: NewStaticPartnerFeedWithListings(cacheListings())}
	cached := NewCachedPartnerFeed(counting, NewInMemoryListingCache(DefaultPartnerCacheConfig()))

	for i := 0; i < 3; i++ {
		listings, err := cached.Listings()
		if err != nil {
			t.Fatalf("Listings() call %d failed: %v", i, err)
		}
		if len(listings) != 2 {
			t.Fatalf("Listings() call %d returned %d records, want 2", i, len(listings))
		}
	}

	if counting.fetches != 1 {
		t.Errorf("feed fetched %d times, want 1 (cache should absorb repeats)", counting.fetches)
	}
}

func TestCachedPartnerFeedInvalidateForcesRefetch(t *testing.T) {
	counting := &countingFeed{inner: NewStaticPartnerFeedWithListings(cacheListings())}
	cached := NewCachedPartnerFeed(counting, NewInMemoryListingCache(DefaultPartnerCacheConfig()))

	if _, err := cached.Listings(); err != nil {
		t.Fatalf("Listings() failed: %v", err)
	}
	cached.Invalidate()
	if _, err := cached.Listings(); err != nil {
		t.Fatalf("Listings() after Invalidate failed: %v", err)
	}

	if counting.fetches != 2 {
		t.Errorf("feed fetched %d times, want 2 after invalidation", counting.fetches)
	}
}

func TestCachedPartnerFeedPropagatesFetchError(t *testing.T) {
	counting := &countingFeed{err: errors.New("upstream down")}
	cached := NewCachedPartnerFeed(counting, NewInMemoryListingCache(DefaultPartnerCacheConfig()))

	_, err := cached.Listings()
	if err == nil {
		t.Fatal("expected error when the feed fails and nothing is cached")
	}
}
