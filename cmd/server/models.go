package main

import (
	"time"

	"github.com/alagad/depot/matching"
)

// API request and response models

// CreateDonationRequest represents the request body for creating a listing
type CreateDonationRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Category     matching.Category     `json:"category"`
	Status       matching.Status       `json:"status,omitempty"`
	Organization string                `json:"organization"`
	Date         string                `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Location     *matching.Coordinates `json:"location,omitempty"`
	Country      string                `json:"country,omitempty"`
	Community    string                `json:"community,omitempty"`
	ContactEmail string                `json:"contactEmail,omitempty"`
	Link         string                `json:"link,omitempty"`
}

// MatchDonationsRequest asks for donations matching a recipient's
// needs. Country and Community anchor the locality scope filter.
type MatchDonationsRequest struct {
	Needs           matching.RecipientNeeds `json:"needs"`
	Country         string                  `json:"country,omitempty"`
	Community       string                  `json:"community,omitempty"`
	ExcludePartners bool                    `json:"excludePartners,omitempty"`
}

// MatchRecipientsRequest asks for recipients matching a specific donation
type MatchRecipientsRequest struct {
	DonationID string                    `json:"donationId"`
	Candidates []matching.RecipientNeeds `json:"candidates"`
}

// MatchResponse represents the response for either matching direction
type MatchResponse struct {
	Results      []matching.MatchResult `json:"results"`
	MatchingTime string                 `json:"matchingTime"`
}

// TimelineResponse carries the derived lifecycle events and the
// progress value of the latest tracked stage reached
type TimelineResponse struct {
	Events   []matching.StatusEvent `json:"events"`
	Progress int                    `json:"progress"`
}

// CreateBoostRequest represents the request body for registering a boost rule
type CreateBoostRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
	Active     bool   `json:"active"`
}

// BoostResponse represents a boost rule in API responses
type BoostResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
	Active     bool   `json:"active"`
}

// parseListingDate parses the optional YYYY-MM-DD listing date,
// defaulting to today.
func parseListingDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}
