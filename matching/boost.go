package matching

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
)

// BoostRule is an operator-defined scoring extension: a CEL predicate
// over the Donation and Needs fact maps. When it evaluates true, its
// points and reason are appended after the built-in rules and before
// thresholding. With no boost rules configured the engine scores with
// the built-in rules alone.
type BoostRule struct {
	ID         string
	Name       string
	Expression string
	Points     int
	Reason     string
	Active     bool
}

type appliedBoost struct {
	Points int
	Reason string
}

// boostSet holds compiled boost programs keyed by rule ID. Guarded by
// an RWMutex so scoring reads can run concurrently with rule updates.
type boostSet struct {
	env      *cel.Env
	rules    map[string]BoostRule
	programs map[string]cel.Program
	mu       sync.RWMutex
}

func newBoostSet() (*boostSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("Donation", cel.DynType),
		cel.Variable("Needs", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &boostSet{
		env:      env,
		rules:    make(map[string]BoostRule),
		programs: make(map[string]cel.Program),
	}, nil
}

// AddBoostRule compiles and registers a boost rule. Expressions that do
// not compile are rejected. A rule with a duplicate ID is an error.
func (e *Engine) AddBoostRule(r BoostRule) error {
	return e.boosts.add(r)
}

// RemoveBoostRule unregisters a boost rule by ID.
func (e *Engine) RemoveBoostRule(id string) error {
	return e.boosts.remove(id)
}

// ListBoostRules returns the registered boost rules ordered by ID.
func (e *Engine) ListBoostRules() []BoostRule {
	return e.boosts.list()
}

func (b *boostSet) add(r BoostRule) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.rules[r.ID]; exists {
		return fmt.Errorf("boost rule with ID %s already exists", r.ID)
	}

	ast, issues := b.env.Compile(r.Expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	// Cost limit bounds runaway expressions from operator input.
	prog, err := b.env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	b.rules[r.ID] = r
	b.programs[r.ID] = prog
	return nil
}

func (b *boostSet) remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.rules[id]; !exists {
		return fmt.Errorf("boost rule with ID %s not found", id)
	}

	delete(b.rules, id)
	delete(b.programs, id)
	return nil
}

func (b *boostSet) list() []BoostRule {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]BoostRule, 0, len(b.rules))
	for _, r := range b.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// apply evaluates every active boost rule against the pairing, in rule
// ID order so repeated calls produce identical reason ordering. A rule
// that errors at evaluation time simply does not contribute, matching
// how the built-in rules skip on missing inputs.
func (b *boostSet) apply(d DonationRecord, needs RecipientNeeds) []appliedBoost {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.rules) == 0 {
		return nil
	}

	ids := make([]string, 0, len(b.rules))
	for id := range b.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	facts := map[string]any{
		"Donation": donationFacts(d),
		"Needs":    needsFacts(needs),
	}

	var applied []appliedBoost
	for _, id := range ids {
		rule := b.rules[id]
		if !rule.Active {
			continue
		}

		out, _, err := b.programs[id].Eval(facts)
		if err != nil {
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			applied = append(applied, appliedBoost{Points: rule.Points, Reason: rule.Reason})
		}
	}
	return applied
}

// donationFacts flattens a record into the map shape CEL expressions
// evaluate against.
func donationFacts(d DonationRecord) map[string]any {
	facts := map[string]any{
		"ID":           d.ID,
		"Category":     string(d.Category),
		"Status":       string(d.Status),
		"Organization": d.Organization,
		"Country":      d.Country,
		"Community":    d.Community,
		"Date":         d.Date,
	}
	if d.Location != nil {
		facts["Latitude"] = d.Location.Latitude
		facts["Longitude"] = d.Location.Longitude
	}
	return facts
}

func needsFacts(n RecipientNeeds) map[string]any {
	categories := make([]string, len(n.Categories))
	for i, c := range n.Categories {
		categories[i] = string(c)
	}

	facts := map[string]any{
		"UserID":        n.UserID,
		"Categories":    categories,
		"LocationScope": string(n.LocationScope),
		"Urgency":       string(n.Urgency),
		"MaxDistanceKm": n.EffectiveMaxDistanceKm(),
	}
	if n.Location != nil {
		facts["Latitude"] = n.Location.Latitude
		facts["Longitude"] = n.Location.Longitude
	}
	return facts
}
