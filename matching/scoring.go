package matching

import (
	"fmt"
	"math"
	"time"
)

// Scoring weights. Component scores are independent and additive; the
// 0-100 range is a soft ceiling and sums above it are not clamped.
const (
	categoryMatchPoints = 30
	urgencyAlignPoints  = 25
	proximityMaxPoints  = 25
	recencyMaxPoints    = 20

	// DefaultMaxDistanceKm is the match radius used when a recipient
	// shares a location but no explicit radius.
	DefaultMaxDistanceKm = 50.0

	// recencyWindowDays is how long a listing counts as recent.
	recencyWindowDays = 7.0

	// minScore is the inclusion threshold. Results scoring at or below
	// it are discarded (the comparison is strict).
	minScore = 30
)

// scoreCategory awards points iff the donation's category is one the
// recipient asked for.
func scoreCategory(needs RecipientNeeds, d DonationRecord) (int, string, bool) {
	for _, c := range needs.Categories {
		if c == d.Category {
			return categoryMatchPoints, fmt.Sprintf("Category match: %s", d.Category), true
		}
	}
	return 0, "", false
}

// scoreUrgency awards points iff a high-urgency need meets an urgent
// listing.
func scoreUrgency(needs RecipientNeeds, d DonationRecord) (int, string, bool) {
	if needs.Urgency == UrgencyHigh && d.Status == StatusUrgent {
		return urgencyAlignPoints, "Urgent donation matches high urgency need", true
	}
	return 0, "", false
}

// scoreProximity awards points that decay linearly from the maximum at
// distance zero to nothing at the recipient's match radius. It
// contributes only when both sides share coordinates; donations beyond
// the radius contribute nothing and no reason string.
func scoreProximity(needs RecipientNeeds, d DonationRecord) (int, string, bool) {
	if needs.Location == nil || d.Location == nil {
		return 0, "", false
	}

	maxDistance := needs.EffectiveMaxDistanceKm()
	distance := HaversineDistanceKm(
		needs.Location.Latitude, needs.Location.Longitude,
		d.Location.Latitude, d.Location.Longitude,
	)
	if distance > maxDistance {
		return 0, "", false
	}

	points := roundHalfUp(proximityMaxPoints * (1 - distance/maxDistance))
	return points, fmt.Sprintf("Location proximity: %dkm away", roundHalfUp(distance)), true
}

// scoreRecency awards points that decay linearly over the recency
// window. It applies only when recipients seek donations, not in the
// reverse direction.
func scoreRecency(d DonationRecord, now time.Time) (int, string, bool) {
	daysSince := now.Sub(d.Date).Hours() / 24
	if daysSince < 0 {
		// Future-dated listings count as listed now.
		daysSince = 0
	}
	if daysSince > recencyWindowDays {
		return 0, "", false
	}

	points := roundHalfUp(recencyMaxPoints * (1 - daysSince/recencyWindowDays))
	return points, "Recently listed donation", true
}

// roundHalfUp rounds to the nearest integer. All component scores are
// non-negative, so rounding half away from zero is half-up here.
func roundHalfUp(v float64) int {
	return int(math.Round(v))
}
