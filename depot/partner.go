package depot

import (
	"fmt"
	"time"

	"github.com/alagad/depot/matching"
)

// PartnerFeed supplies donation listings from partner NGOs.
type PartnerFeed interface {
	// Fetch retrieves the current partner listings.
	Fetch() ([]matching.DonationRecord, error)
}

// StaticPartnerFeed is a fixed catalog of partner listings. Live
// partner scraping is out of scope; this stands in for it with
// representative data.
type StaticPartnerFeed struct {
	listings []matching.DonationRecord
}

// NewStaticPartnerFeed creates a feed with the built-in partner
// catalog.
func NewStaticPartnerFeed() *StaticPartnerFeed {
	return &StaticPartnerFeed{listings: partnerCatalog()}
}

// NewStaticPartnerFeedWithListings creates a feed over the given
// listings; tests use this.
func NewStaticPartnerFeedWithListings(listings []matching.DonationRecord) *StaticPartnerFeed {
	return &StaticPartnerFeed{listings: listings}
}

// Fetch returns a copy of the catalog.
func (f *StaticPartnerFeed) Fetch() ([]matching.DonationRecord, error) {
	out := make([]matching.DonationRecord, len(f.listings))
	copy(out, f.listings)
	return out, nil
}

// CachedPartnerFeed wraps a PartnerFeed with a TTL cache so repeated
// reads do not refetch until the cache expires or is invalidated.
type CachedPartnerFeed struct {
	feed  PartnerFeed
	cache ListingCache
}

// NewCachedPartnerFeed combines a feed and a cache.
func NewCachedPartnerFeed(feed PartnerFeed, cache ListingCache) *CachedPartnerFeed {
	return &CachedPartnerFeed{feed: feed, cache: cache}
}

// Listings returns the partner listings, serving from cache when it is
// still fresh and refetching otherwise.
func (f *CachedPartnerFeed) Listings() ([]matching.DonationRecord, error) {
	if cached := f.cache.Get(); cached != nil {
		return cached, nil
	}

	listings, err := f.feed.Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetch partner listings: %w", err)
	}

	f.cache.Set(listings)
	return listings, nil
}

// Invalidate forces a refetch on the next Listings call.
func (f *CachedPartnerFeed) Invalidate() {
	f.cache.Invalidate()
}

func partnerCatalog() []matching.DonationRecord {
	manila := &matching.Coordinates{Latitude: 14.5995, Longitude: 120.9842}
	cebu := &matching.Coordinates{Latitude: 10.3157, Longitude: 123.8854}
	davao := &matching.Coordinates{Latitude: 7.1907, Longitude: 125.4553}

	date := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}

	return []matching.DonationRecord{
		{
			ID:           "partner-redcross-relief",
			Title:        "Typhoon relief packs",
			Description:  "Ready-to-distribute relief packs for typhoon-affected families.",
			Category:     matching.CategoryDisaster,
			Status:       matching.StatusUrgent,
			Organization: "Philippine Red Cross",
			Date:         date("2024-11-02"),
			Location:     manila,
			Country:      "PH",
			Community:    "Manila",
			Link:         "https://redcross.org.ph",
		},
		{
			ID:           "partner-caritas-clothing",
			Title:        "Winter clothing drive surplus",
			Category:     matching.CategoryClothing,
			Status:       matching.StatusActive,
			Organization: "Caritas Manila",
			Date:         date("2024-10-20"),
			Location:     manila,
			Country:      "PH",
			Community:    "Manila",
			Link:         "https://caritasmanila.org.ph",
		},
		{
			ID:           "partner-foodbank-rice",
			Title:        "Rice and canned goods",
			Category:     matching.CategoryFood,
			Status:       matching.StatusActive,
			Organization: "Rise Against Hunger Philippines",
			Date:         date("2024-10-28"),
			Location:     cebu,
			Country:      "PH",
			Community:    "Cebu",
		},
		{
			ID:           "partner-wash-filters",
			Title:        "Household water filters",
			Category:     matching.CategoryWater,
			Status:       matching.StatusActive,
			Organization: "Waves for Water",
			Date:         date("2024-09-15"),
			Location:     davao,
			Country:      "PH",
			Community:    "Davao",
		},
		{
			ID:           "partner-books-school",
			Title:        "School books and supplies",
			Category:     matching.CategoryEducation,
			Status:       matching.StatusActive,
			Organization: "Bantay Bata Foundation",
			Date:         date("2024-08-01"),
			Country:      "PH",
		},
	}
}
