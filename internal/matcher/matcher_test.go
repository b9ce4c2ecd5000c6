package matcher

import (
	"testing"

	"github.com/codyseavey/card-pricer/internal/catalog"
	"github.com/codyseavey/card-pricer/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func testMatcher() *Matcher {
	cards := []models.Card{
		{ID: 1, Name: "Charizard", SetName: "Base Set", SetNumber: "4/102", HP: intPtr(120)},
		{ID: 2, Name: "Blastoise", SetName: "Base Set", SetNumber: "2/102", HP: intPtr(100)},
		{ID: 3, Name: "Venusaur", SetName: "Base Set", SetNumber: "15/102", HP: intPtr(100)},
		{ID: 4, Name: "Pikachu", SetName: "Base Set", SetNumber: "58/102", HP: intPtr(40)},
		{ID: 5, Name: "Charmeleon", SetName: "Base Set", SetNumber: "24/102", HP: intPtr(80)},
	}
	return New(catalog.Build(cards))
}

func hasReason(c models.MatchCandidate, reason string) bool {
	for _, r := range c.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

func TestMatchCardSetNumberShortCircuit(t *testing.T) {
	m := testMatcher()

	// A name pointing elsewhere does not dilute an exact set-number hit.
	got := m.MatchCard(models.ExtractedFields{
		Name:      strPtr("Blastoise"),
		SetNumber: strPtr("4/102"),
	})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Card.Name != "Charizard" {
		t.Errorf("matched %q, want Charizard", got[0].Card.Name)
	}
	if got[0].Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got[0].Confidence)
	}
	if len(got[0].Reasons) != 1 || got[0].Reasons[0] != models.ReasonExactSetNumber {
		t.Errorf("reasons = %v, want [%s]", got[0].Reasons, models.ReasonExactSetNumber)
	}
}

func TestMatchCardUnknownSetNumberFallsThrough(t *testing.T) {
	m := testMatcher()

	got := m.MatchCard(models.ExtractedFields{
		Name:      strPtr("Pikachu"),
		SetNumber: strPtr("99/999"),
	})
	if len(got) == 0 {
		t.Fatal("expected name evidence to produce candidates")
	}
	if got[0].Card.Name != "Pikachu" {
		t.Errorf("top candidate %q, want Pikachu", got[0].Card.Name)
	}
}

func TestMatchCardNameOnly(t *testing.T) {
	m := testMatcher()

	got := m.MatchCard(models.ExtractedFields{Name: strPtr("Charizard")})
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	top := got[0]
	if top.Card.Name != "Charizard" {
		t.Fatalf("top candidate %q, want Charizard", top.Card.Name)
	}
	if top.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", top.Confidence)
	}
	if !hasReason(top, models.ReasonName) {
		t.Errorf("reasons = %v, want name evidence", top.Reasons)
	}
}

func TestMatchCardHPBoost(t *testing.T) {
	m := testMatcher()

	got := m.MatchCard(models.ExtractedFields{
		Name: strPtr("Charizard"),
		HP:   intPtr(120),
	})
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	top := got[0]
	if top.Card.Name != "Charizard" {
		t.Fatalf("top candidate %q, want Charizard", top.Card.Name)
	}
	// 0.6 base + 0.25 HP boost
	if top.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", top.Confidence)
	}
	if !hasReason(top, models.ReasonHP) {
		t.Errorf("reasons = %v, want an hp boost", top.Reasons)
	}
}

func TestMatchCardCardNumberBoost(t *testing.T) {
	m := testMatcher()

	// Unknown total keeps the set-number lookup from firing, but the
	// numerator still corroborates the name.
	got := m.MatchCard(models.ExtractedFields{
		Name:      strPtr("Charizard"),
		SetNumber: strPtr("4/999"),
	})
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	top := got[0]
	if top.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", top.Confidence)
	}
	if !hasReason(top, models.ReasonCardNumber) {
		t.Errorf("reasons = %v, want a card number boost", top.Reasons)
	}
}

func TestMatchCardBoostCeiling(t *testing.T) {
	m := testMatcher()

	// 0.6 + 0.25 + 0.2 would exceed the ceiling; it clamps to 0.95.
	got := m.MatchCard(models.ExtractedFields{
		Name:      strPtr("Charizard"),
		HP:        intPtr(120),
		SetNumber: strPtr("4/999"),
	})
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	if got[0].Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got[0].Confidence)
	}
}

func TestMatchCardHPCrossReference(t *testing.T) {
	m := testMatcher()

	// "Charzard" still names Charizard via fuzzy match, and sharing
	// HP 120 adds an hp_name_combo candidate. Dedup keeps the higher
	// of the two per card.
	got := m.MatchCard(models.ExtractedFields{
		Name: strPtr("Charzard"),
		HP:   intPtr(120),
	})
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	top := got[0]
	if top.Card.Name != "Charizard" {
		t.Fatalf("top candidate %q, want Charizard", top.Card.Name)
	}
	// name base 0.6 + hp 0.25 = 0.85; combo is 0.7 + ratio*0.2 with
	// ratio = 16/17, just under 0.89. The combo entry wins the dedup.
	if !hasReason(top, models.ReasonHPNameCombo) {
		t.Errorf("reasons = %v, want hp_name_combo to win dedup", top.Reasons)
	}
	if top.Confidence <= 0.85 || top.Confidence > 0.9 {
		t.Errorf("confidence = %v, want in (0.85, 0.9]", top.Confidence)
	}

	// Each card appears at most once.
	seen := make(map[uint]bool)
	for _, cand := range got {
		if seen[cand.Card.ID] {
			t.Errorf("card %d appears more than once", cand.Card.ID)
		}
		seen[cand.Card.ID] = true
	}
}

func TestMatchCardHPCrossReferenceFloor(t *testing.T) {
	m := testMatcher()

	// HP 100 is shared by Blastoise and Venusaur, but "Pidgeot" is not
	// similar enough to either for the cross-reference to fire.
	got := m.MatchCard(models.ExtractedFields{
		Name: strPtr("Pidgeot"),
		HP:   intPtr(100),
	})
	for _, cand := range got {
		if hasReason(cand, models.ReasonHPNameCombo) {
			t.Errorf("unexpected hp_name_combo candidate %q at %v", cand.Card.Name, cand.Confidence)
		}
	}
}

func TestMatchCardNoEvidence(t *testing.T) {
	m := testMatcher()

	if got := m.MatchCard(models.ExtractedFields{}); len(got) != 0 {
		t.Errorf("no evidence produced %d candidates, want 0", len(got))
	}
	if got := m.MatchCard(models.ExtractedFields{HP: intPtr(120)}); len(got) != 0 {
		t.Errorf("hp alone produced %d candidates, want 0", len(got))
	}
}

func TestMatchCardEmptyCatalog(t *testing.T) {
	m := New(catalog.Build(nil))

	inputs := []models.ExtractedFields{
		{},
		{Name: strPtr("Charizard")},
		{SetNumber: strPtr("4/102")},
		{Name: strPtr("Charizard"), HP: intPtr(120), SetNumber: strPtr("4/102")},
	}
	for _, fields := range inputs {
		if got := m.MatchCard(fields); len(got) != 0 {
			t.Errorf("empty catalog produced %d candidates for %+v, want 0", len(got), fields)
		}
	}
}

func TestMatchCardNoMatch(t *testing.T) {
	m := testMatcher()

	got := m.MatchCard(models.ExtractedFields{Name: strPtr("Alakazam")})
	if len(got) != 0 {
		t.Errorf("got %d candidates for a name outside the catalog, want 0", len(got))
	}
}

func TestMatchCardSortedByConfidence(t *testing.T) {
	m := testMatcher()

	got := m.MatchCard(models.ExtractedFields{
		Name: strPtr("Char"),
		HP:   intPtr(120),
	})
	if len(got) < 2 {
		t.Fatalf("got %d candidates, want at least Charizard and Charmeleon", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("candidates out of order at %d: %v after %v", i, got[i].Confidence, got[i-1].Confidence)
		}
	}
	if got[0].Card.Name != "Charizard" {
		t.Errorf("top candidate %q, want Charizard (hp agreement)", got[0].Card.Name)
	}
}
