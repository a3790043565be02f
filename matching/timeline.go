package matching

import (
	"fmt"
	"time"
)

// Stage is one milestone in a donation's derived tracking timeline.
// The order here is fixed; events are always emitted in it.
type Stage string

const (
	StageListed    Stage = "listed"
	StageMatched   Stage = "matched"
	StageUrgent    Stage = "urgent"
	StageArranged  Stage = "arranged"
	StageCompleted Stage = "completed"
)

// StatusEvent is one derived lifecycle milestone. Timelines are
// produced fresh on every call from the donation's status and listing
// date and are never persisted.
type StatusEvent struct {
	ID          string    `json:"id"`
	Stage       Stage     `json:"stage"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Actor       string    `json:"actor"`
}

const platformActor = "Alagad Depot"

// DeriveStatusTimeline derives the ordered lifecycle events for a
// donation from its status and listing date:
//
//   - listed: always, at the listing date.
//   - matched: at date+12h once that instant has passed, or regardless
//     of elapsed time when the status is urgent or completed.
//   - urgent, arranged: only for urgent donations, at date+24h and
//     date+30h; arranged additionally waits for date+30h to pass.
//   - completed: for completed donations, at date+7d even when that
//     instant is still in the future (a display simplification).
func (e *Engine) DeriveStatusTimeline(d DonationRecord) []StatusEvent {
	return DeriveStatusTimeline(d, e.clock)
}

// DeriveStatusTimeline is the package-level form taking an explicit
// clock.
func DeriveStatusTimeline(d DonationRecord, clock Clock) []StatusEvent {
	now := clock.Now()
	events := []StatusEvent{
		{
			ID:          d.ID + "-listed",
			Stage:       StageListed,
			Title:       "Donation listed",
			Description: fmt.Sprintf("%s listed this donation", d.Organization),
			Timestamp:   d.Date,
			Actor:       d.Organization,
		},
	}

	matchedAt := d.Date.Add(12 * time.Hour)
	if !matchedAt.After(now) || d.Status == StatusUrgent || d.Status == StatusCompleted {
		events = append(events, StatusEvent{
			ID:          d.ID + "-matched",
			Stage:       StageMatched,
			Title:       "Match found",
			Description: "A recipient was matched with this donation",
			Timestamp:   matchedAt,
			Actor:       platformActor,
		})
	}

	if d.Status == StatusUrgent {
		events = append(events, StatusEvent{
			ID:          d.ID + "-urgent",
			Stage:       StageUrgent,
			Title:       "Marked urgent",
			Description: fmt.Sprintf("%s flagged this donation as urgent", d.Organization),
			Timestamp:   d.Date.Add(24 * time.Hour),
			Actor:       d.Organization,
		})

		arrangedAt := d.Date.Add(30 * time.Hour)
		if !arrangedAt.After(now) {
			events = append(events, StatusEvent{
				ID:          d.ID + "-arranged",
				Stage:       StageArranged,
				Title:       "Handover arranged",
				Description: "Pickup or delivery was arranged",
				Timestamp:   arrangedAt,
				Actor:       platformActor,
			})
		}
	}

	if d.Status == StatusCompleted {
		events = append(events, StatusEvent{
			ID:          d.ID + "-completed",
			Stage:       StageCompleted,
			Title:       "Donation completed",
			Description: "The donation reached its recipient",
			Timestamp:   d.Date.Add(7 * 24 * time.Hour),
			Actor:       platformActor,
		})
	}

	return events
}

// ProgressPercentage maps a tracking stage to its progress-bar value.
// The urgent stage is not part of the four-step tracker and maps to
// zero, as does anything unrecognized.
func ProgressPercentage(stage Stage) int {
	switch stage {
	case StageListed:
		return 25
	case StageMatched:
		return 50
	case StageArranged:
		return 75
	case StageCompleted:
		return 100
	default:
		return 0
	}
}
