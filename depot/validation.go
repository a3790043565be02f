package depot

import (
	"fmt"

	"github.com/alagad/depot/matching"
)

// The matching core treats unrecognized enum values as "rule does not
// match" rather than erroring; validating records before they reach
// scoring is the host's job, and this is where it happens.

// ValidateRecord validates a donation record before it is stored or
// scored. Returns an error if validation fails, nil if the record is
// valid.
func ValidateRecord(d *matching.DonationRecord) error {
	if d == nil {
		return fmt.Errorf("donation record cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("donation ID cannot be empty")
	}
	if len(d.ID) > 100 {
		return fmt.Errorf("donation ID length %d exceeds maximum of 100 characters", len(d.ID))
	}
	if d.Title == "" {
		return fmt.Errorf("donation %q must have a title", d.ID)
	}
	if d.Organization == "" {
		return fmt.Errorf("donation %q must name an organization", d.ID)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("donation %q must have a listing date", d.ID)
	}

	if !isValidCategory(d.Category) {
		return fmt.Errorf("donation %q has invalid category %q (must be one of: clothing, food, healthcare, disaster, education, housing, water, livelihood, culture, environment, other)", d.ID, d.Category)
	}
	if !isValidStatus(d.Status) {
		return fmt.Errorf("donation %q has invalid status %q (must be one of: active, urgent, completed)", d.ID, d.Status)
	}

	if d.Location != nil {
		if err := validateCoordinates(*d.Location); err != nil {
			return fmt.Errorf("donation %q has invalid location: %w", d.ID, err)
		}
	}

	return nil
}

// ValidateNeeds validates a recipient's stated needs before scoring.
func ValidateNeeds(n matching.RecipientNeeds) error {
	if n.UserID == "" {
		return fmt.Errorf("recipient userId cannot be empty")
	}
	if len(n.Categories) == 0 {
		return fmt.Errorf("recipient %q must state at least one category", n.UserID)
	}
	for _, c := range n.Categories {
		if !isValidCategory(c) {
			return fmt.Errorf("recipient %q has invalid category %q", n.UserID, c)
		}
	}

	switch n.LocationScope {
	case "", matching.ScopeCommunity, matching.ScopeCountry, matching.ScopeWorldwide:
	default:
		return fmt.Errorf("recipient %q has invalid location scope %q (must be one of: community, country, worldwide)", n.UserID, n.LocationScope)
	}

	switch n.Urgency {
	case "", matching.UrgencyHigh, matching.UrgencyMedium, matching.UrgencyLow:
	default:
		return fmt.Errorf("recipient %q has invalid urgency %q (must be one of: high, medium, low)", n.UserID, n.Urgency)
	}

	if n.MaxDistanceKm < 0 {
		return fmt.Errorf("recipient %q has negative max distance %f", n.UserID, n.MaxDistanceKm)
	}

	if n.Location != nil {
		if err := validateCoordinates(*n.Location); err != nil {
			return fmt.Errorf("recipient %q has invalid location: %w", n.UserID, err)
		}
	}

	return nil
}

func validateCoordinates(c matching.Coordinates) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return nil
}

func isValidCategory(c matching.Category) bool {
	for _, valid := range matching.ValidCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

func isValidStatus(s matching.Status) bool {
	switch s {
	case matching.StatusActive, matching.StatusUrgent, matching.StatusCompleted:
		return true
	}
	return false
}
