package depot

import (
	"strings"

	"github.com/alagad/depot/matching"
)

// FilterByScope applies a recipient's locality breadth before scoring.
// Worldwide passes everything through; country and community keep only
// records whose Country/Community matches the recipient's own
// (case-insensitive). Records missing the relevant field are excluded
// at the narrower scopes, since they cannot satisfy a locality
// constraint.
func FilterByScope(scope matching.LocationScope, country, community string, records []matching.DonationRecord) []matching.DonationRecord {
	switch scope {
	case matching.ScopeCommunity:
		return filterByField(records, community, func(d matching.DonationRecord) string { return d.Community })
	case matching.ScopeCountry:
		return filterByField(records, country, func(d matching.DonationRecord) string { return d.Country })
	default:
		// Worldwide, or no scope stated.
		out := make([]matching.DonationRecord, len(records))
		copy(out, records)
		return out
	}
}

func filterByField(records []matching.DonationRecord, want string, field func(matching.DonationRecord) string) []matching.DonationRecord {
	filtered := []matching.DonationRecord{}
	if want == "" {
		return filtered
	}
	for _, d := range records {
		if strings.EqualFold(field(d), want) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
