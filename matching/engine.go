package matching

import (
	"sort"
	"time"
)

// DonationSource resolves donation records by ID. The host's donation
// store satisfies this; the engine needs nothing else from it.
type DonationSource interface {
	Get(id string) (*DonationRecord, error)
}

// Engine scores and ranks donations against recipient needs and, in the
// reverse direction, recipients against a specific donation. Every
// operation is a pure computation over its inputs and the injected
// clock; the engine holds no per-call state and is safe for concurrent
// use.
type Engine struct {
	source DonationSource
	clock  Clock
	boosts *boostSet
}

// NewEngine creates an engine over the given donation source using the
// system clock.
func NewEngine(source DonationSource) (*Engine, error) {
	return NewEngineWithClock(source, SystemClock())
}

// NewEngineWithClock creates an engine with an explicit clock. Tests
// use this to pin "now" for recency and timeline derivation.
func NewEngineWithClock(source DonationSource, clock Clock) (*Engine, error) {
	boosts, err := newBoostSet()
	if err != nil {
		return nil, err
	}

	return &Engine{
		source: source,
		clock:  clock,
		boosts: boosts,
	}, nil
}

// ScoreDonationsForRecipient scores each candidate donation against the
// recipient's needs and returns the surviving matches ordered by score,
// highest first. Candidates scoring 30 or below are discarded. Ties
// keep the candidates' input order. Empty input yields an empty list,
// never an error.
func (e *Engine) ScoreDonationsForRecipient(needs RecipientNeeds, candidates []DonationRecord) []MatchResult {
	now := e.clock.Now()

	results := make([]MatchResult, 0, len(candidates))
	for _, d := range candidates {
		result := e.scoreOne(needs, d, true, now)
		if result.Score > minScore {
			results = append(results, result)
		}
	}

	sortByScore(results)
	return results
}

// ScoreRecipientsForDonation scores each candidate recipient against
// the donation with the given ID. The recency rule does not apply in
// this direction. An unknown donation ID yields an empty list rather
// than an error; callers cannot distinguish "no matches" from "bad id"
// through this API.
func (e *Engine) ScoreRecipientsForDonation(donationID string, candidates []RecipientNeeds) []MatchResult {
	donation, err := e.source.Get(donationID)
	if err != nil || donation == nil {
		return []MatchResult{}
	}

	now := e.clock.Now()

	results := make([]MatchResult, 0, len(candidates))
	for _, needs := range candidates {
		result := e.scoreOne(needs, *donation, false, now)
		if result.Score > minScore {
			results = append(results, result)
		}
	}

	sortByScore(results)
	return results
}

// scoreOne applies the additive rules to a single pairing. Rules whose
// optional inputs are missing simply do not contribute.
func (e *Engine) scoreOne(needs RecipientNeeds, d DonationRecord, withRecency bool, now time.Time) MatchResult {
	score := 0
	reasons := []string{}

	if points, reason, ok := scoreCategory(needs, d); ok {
		score += points
		reasons = append(reasons, reason)
	}
	if points, reason, ok := scoreUrgency(needs, d); ok {
		score += points
		reasons = append(reasons, reason)
	}
	if points, reason, ok := scoreProximity(needs, d); ok {
		score += points
		reasons = append(reasons, reason)
	}
	if withRecency {
		if points, reason, ok := scoreRecency(d, now); ok {
			score += points
			reasons = append(reasons, reason)
		}
	}

	for _, applied := range e.boosts.apply(d, needs) {
		score += applied.Points
		reasons = append(reasons, applied.Reason)
	}

	return MatchResult{
		DonationID:   d.ID,
		RecipientID:  needs.UserID,
		Score:        score,
		MatchReasons: reasons,
	}
}

func sortByScore(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
