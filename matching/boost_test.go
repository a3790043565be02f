package matching

import (
	"strings"
	"testing"
)

func TestAddBoostRuleRejectsBadExpression(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	err := engine.AddBoostRule(BoostRule{
		ID:         "bad",
		Name:       "broken",
		Expression: "Donation.Category ==",
		Points:     10,
		Active:     true,
	})
	if err == nil {
		t.Fatal("expected compile error for malformed expression")
	}
}

func TestAddBoostRuleRejectsDuplicateID(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	rule := BoostRule{
		ID:         "r-1",
		Name:       "first",
		Expression: `Donation.Category == "food"`,
		Points:     5,
		Active:     true,
	}
	if err := engine.AddBoostRule(rule); err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	err := engine.AddBoostRule(rule)
	if err == nil {
		t.Fatal("expected error adding duplicate rule ID")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %q, want mention of already exists", err)
	}
}

func TestBoostRuleAddsPointsAndReason(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	err := engine.AddBoostRule(BoostRule{
		ID:         "verified-org",
		Name:       "verified organization",
		Expression: `Donation.Organization == "Philippine Red Cross"`,
		Points:     10,
		Reason:     "Listed by a verified organization",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{
		UserID:     "r-1",
		Categories: []Category{CategoryDisaster},
		Urgency:    UrgencyHigh,
	}
	candidates := []DonationRecord{
		{ID: "d-1", Category: CategoryDisaster, Status: StatusUrgent, Organization: "Philippine Red Cross", Date: testNow},
		{ID: "d-2", Category: CategoryDisaster, Status: StatusUrgent, Organization: "Other", Date: testNow},
	}

	results := engine.ScoreDonationsForRecipient(needs, candidates)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].DonationID != "d-1" || results[0].Score != 85 {
		t.Errorf("boosted result = %s score %d, want d-1 score 85", results[0].DonationID, results[0].Score)
	}
	found := false
	for _, reason := range results[0].MatchReasons {
		if reason == "Listed by a verified organization" {
			found = true
		}
	}
	if !found {
		t.Errorf("boost reason missing: %v", results[0].MatchReasons)
	}
	if results[1].Score != 75 {
		t.Errorf("unboosted score = %d, want 75", results[1].Score)
	}
}

func TestInactiveBoostRuleIgnored(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	err := engine.AddBoostRule(BoostRule{
		ID:         "disabled",
		Name:       "disabled",
		Expression: "true",
		Points:     50,
		Active:     false,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{UserID: "r", Categories: []Category{CategoryFood}, Urgency: UrgencyHigh}
	results := engine.ScoreDonationsForRecipient(needs, []DonationRecord{
		{ID: "d-1", Category: CategoryFood, Status: StatusUrgent, Date: testNow},
	})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 75 {
		t.Errorf("score = %d, want 75 with inactive boost", results[0].Score)
	}
}

func TestBoostRuleEvalErrorSkipsRule(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	// References a field absent from the fact map; evaluation fails and
	// the rule contributes nothing.
	err := engine.AddBoostRule(BoostRule{
		ID:         "missing-field",
		Name:       "missing field",
		Expression: `Donation.NoSuchField == "x"`,
		Points:     40,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{UserID: "r", Categories: []Category{CategoryFood}, Urgency: UrgencyHigh}
	results := engine.ScoreDonationsForRecipient(needs, []DonationRecord{
		{ID: "d-1", Category: CategoryFood, Status: StatusUrgent, Date: testNow},
	})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 75 {
		t.Errorf("score = %d, want 75 when boost evaluation errors", results[0].Score)
	}
}

func TestRemoveBoostRule(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	if err := engine.RemoveBoostRule("absent"); err == nil {
		t.Error("expected error removing unknown rule")
	}

	err := engine.AddBoostRule(BoostRule{
		ID:         "temp",
		Name:       "temp",
		Expression: "true",
		Points:     10,
		Reason:     "always",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}
	if err := engine.RemoveBoostRule("temp"); err != nil {
		t.Fatalf("RemoveBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{UserID: "r", Categories: []Category{CategoryFood}, Urgency: UrgencyHigh}
	results := engine.ScoreDonationsForRecipient(needs, []DonationRecord{
		{ID: "d-1", Category: CategoryFood, Status: StatusUrgent, Date: testNow},
	})
	if len(results) != 1 || results[0].Score != 75 {
		t.Errorf("removed rule still contributing: %+v", results)
	}
}

func TestListBoostRulesSortedByID(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	for _, id := range []string{"zaddress", "alpha", "mid"} {
		err := engine.AddBoostRule(BoostRule{
			ID:         id,
			Name:       id,
			Expression: "true",
			Points:     1,
			Active:     true,
		})
		if err != nil {
			t.Fatalf("AddBoostRule(%s) failed: %v", id, err)
		}
	}

	rules := engine.ListBoostRules()
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	ids := []string{rules[0].ID, rules[1].ID, rules[2].ID}
	if ids[0] != "alpha" || ids[1] != "mid" || ids[2] != "zaddress" {
		t.Errorf("rules not sorted by ID: %v", ids)
	}
}

func TestBoostRuleNonBoolResultIgnored(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	err := engine.AddBoostRule(BoostRule{
		ID:         "numeric",
		Name:       "numeric result",
		Expression: "1 + 1",
		Points:     40,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{UserID: "r", Categories: []Category{CategoryFood}, Urgency: UrgencyHigh}
	results := engine.ScoreDonationsForRecipient(needs, []DonationRecord{
		{ID: "d-1", Category: CategoryFood, Status: StatusUrgent, Date: testNow},
	})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 75 {
		t.Errorf("score = %d, want 75 for non-boolean expression result", results[0].Score)
	}
}

func TestBoostAgainstNeedsFacts(t *testing.T) {
	engine := newTestEngine(t, mapSource{}, testNow)

	err := engine.AddBoostRule(BoostRule{
		ID:         "high-urgency-extra",
		Name:       "extra weight for high urgency recipients",
		Expression: `Needs.Urgency == "high"`,
		Points:     5,
		Reason:     "Priority recipient",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("AddBoostRule() failed: %v", err)
	}

	needs := RecipientNeeds{UserID: "r", Categories: []Category{CategoryFood}, Urgency: UrgencyHigh}
	results := engine.ScoreDonationsForRecipient(needs, []DonationRecord{
		{ID: "d-1", Category: CategoryFood, Status: StatusUrgent, Date: testNow},
	})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 80 {
		t.Errorf("score = %d, want 80", results[0].Score)
	}
}
