package matching

import "time"

// Category classifies what a donation listing offers.
type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryHealthcare  Category = "healthcare"
	CategoryDisaster    Category = "disaster"
	CategoryEducation   Category = "education"
	CategoryHousing     Category = "housing"
	CategoryWater       Category = "water"
	CategoryLivelihood  Category = "livelihood"
	CategoryCulture     Category = "culture"
	CategoryEnvironment Category = "environment"
	CategoryOther       Category = "other"
)

// Status is the listing lifecycle state. It is distinct from the
// derived tracking timeline (see Stage).
type Status string

const (
	StatusActive    Status = "active"
	StatusUrgent    Status = "urgent"
	StatusCompleted Status = "completed"
)

// Urgency is a recipient's stated urgency preference. An empty value
// means no preference.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// LocationScope is the breadth filter applied before scoring.
type LocationScope string

const (
	ScopeCommunity LocationScope = "community"
	ScopeCountry   LocationScope = "country"
	ScopeWorldwide LocationScope = "worldwide"
)

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DonationRecord is a listing representing an item offered or requested.
// The matching engine reads it and never mutates it. Title, Description,
// ContactEmail, and Link are opaque pass-through data; Country and
// Community are read only by the host's locality scope pre-filter.
type DonationRecord struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Category     Category     `json:"category"`
	Status       Status       `json:"status"`
	Organization string       `json:"organization"`
	Date         time.Time    `json:"date"`
	Location     *Coordinates `json:"location,omitempty"`
	Country      string       `json:"country,omitempty"`
	Community    string       `json:"community,omitempty"`
	ContactEmail string       `json:"contactEmail,omitempty"`
	Link         string       `json:"link,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// RecipientNeeds is a structured statement of what a recipient is
// looking for.
type RecipientNeeds struct {
	UserID        string        `json:"userId"`
	Categories    []Category    `json:"categories"`
	LocationScope LocationScope `json:"locationScope,omitempty"`
	Location      *Coordinates  `json:"location,omitempty"`
	Urgency       Urgency       `json:"urgency,omitempty"`
	MaxDistanceKm float64       `json:"maxDistanceKm,omitempty"`
}

// EffectiveMaxDistanceKm returns the match radius, applying the default
// when the recipient did not set one.
func (n RecipientNeeds) EffectiveMaxDistanceKm() float64 {
	if n.MaxDistanceKm > 0 {
		return n.MaxDistanceKm
	}
	return DefaultMaxDistanceKm
}

// MatchResult is the ephemeral outcome of scoring one donation against
// one recipient. It is never persisted by the engine.
type MatchResult struct {
	DonationID   string   `json:"donationId"`
	RecipientID  string   `json:"recipientId"`
	Score        int      `json:"score"`
	MatchReasons []string `json:"matchReasons"`
}

// ValidCategories returns the fixed category enumeration.
func ValidCategories() []Category {
	return []Category{
		CategoryClothing, CategoryFood, CategoryHealthcare, CategoryDisaster,
		CategoryEducation, CategoryHousing, CategoryWater, CategoryLivelihood,
		CategoryCulture, CategoryEnvironment, CategoryOther,
	}
}
