package catalog

import (
	"testing"

	"github.com/codyseavey/card-pricer/internal/models"
)

func intPtr(v int) *int { return &v }

func testCards() []models.Card {
	return []models.Card{
		{ID: 1, Name: "Charizard", SetName: "Base Set", SetNumber: "4/102", HP: intPtr(120), Rarity: models.RarityHoloRare},
		{ID: 2, Name: "Blastoise", SetName: "Base Set", SetNumber: "2/102", HP: intPtr(100), Rarity: models.RarityHoloRare},
		{ID: 3, Name: "Venusaur", SetName: "Base Set", SetNumber: "15/102", HP: intPtr(100), Rarity: models.RarityHoloRare},
		{ID: 4, Name: "Pikachu", SetName: "Base Set", SetNumber: "58/102", HP: intPtr(40), Rarity: models.RarityCommon},
		{ID: 5, Name: "Mr. Mime", SetName: "Jungle", SetNumber: "6/64", HP: intPtr(40), Rarity: models.RarityHoloRare},
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Charizard", "charizard"},
		{"strips punctuation", "Mr. Mime", "mr mime"},
		{"collapses whitespace", "  Dark   Charizard ", "dark charizard"},
		{"non-ascii becomes separator", "Farfetch'd", "farfetch d"},
		{"keeps digits", "Porygon2", "porygon2"},
		{"empty", "", ""},
		{"only punctuation", "***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeSetNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4/102", "4/102"},
		{" 4 / 102 ", "4/102"},
		{"4/102\n", "4/102"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSetNumber(tt.input); got != tt.want {
			t.Errorf("NormalizeSetNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLookupName(t *testing.T) {
	c := Build(testCards())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact", "Charizard", "Charizard"},
		{"case insensitive", "CHARIZARD", "Charizard"},
		{"punctuation stripped", "mr mime", "Mr. Mime"},
		{"tight form bridges OCR run-together", "mrmime", "Mr. Mime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := c.LookupName(tt.query)
			if card == nil {
				t.Fatalf("LookupName(%q) = nil, want %q", tt.query, tt.want)
			}
			if card.Name != tt.want {
				t.Errorf("LookupName(%q) = %q, want %q", tt.query, card.Name, tt.want)
			}
		})
	}

	if card := c.LookupName("Mewtwo"); card != nil {
		t.Errorf("LookupName miss returned %q, want nil", card.Name)
	}
}

func TestLookupHP(t *testing.T) {
	c := Build(testCards())

	cards := c.LookupHP(100)
	if len(cards) != 2 {
		t.Fatalf("LookupHP(100) returned %d cards, want 2", len(cards))
	}
	// Catalog order is preserved
	if cards[0].Name != "Blastoise" || cards[1].Name != "Venusaur" {
		t.Errorf("LookupHP(100) = [%s, %s], want [Blastoise, Venusaur]", cards[0].Name, cards[1].Name)
	}

	if cards := c.LookupHP(999); cards != nil {
		t.Errorf("LookupHP(999) returned %d cards, want none", len(cards))
	}
}

func TestLookupSetNumber(t *testing.T) {
	c := Build(testCards())

	if card := c.LookupSetNumber(" 4 / 102 "); card == nil || card.Name != "Charizard" {
		t.Errorf("LookupSetNumber with whitespace did not find Charizard")
	}
	if card := c.LookupSetNumber("99/102"); card != nil {
		t.Errorf("LookupSetNumber miss returned %q, want nil", card.Name)
	}
}

func TestLookupSetNumberLastWriteWins(t *testing.T) {
	cards := append(testCards(), models.Card{ID: 6, Name: "Charizard", SetName: "Base Set 2", SetNumber: "4/102"})
	c := Build(cards)

	card := c.LookupSetNumber("4/102")
	if card == nil || card.SetName != "Base Set 2" {
		t.Errorf("duplicate set number should resolve to the last loaded card")
	}
}

func TestContainmentMatches(t *testing.T) {
	c := Build(testCards())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"query contains card name", "Dark Charizard", []string{"Charizard"}},
		{"card name contains query", "chari", []string{"Charizard"}},
		{"no matches", "Snorlax", nil},
		{"empty query", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ContainmentMatches(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("ContainmentMatches(%q) returned %d cards, want %d", tt.query, len(got), len(tt.want))
			}
			for i, card := range got {
				if card.Name != tt.want[i] {
					t.Errorf("ContainmentMatches(%q)[%d] = %q, want %q", tt.query, i, card.Name, tt.want[i])
				}
			}
		})
	}
}

func TestSearch(t *testing.T) {
	c := Build(testCards())

	got := c.Search("saur")
	if len(got) != 1 || got[0].Name != "Venusaur" {
		t.Fatalf("Search(saur) = %v, want [Venusaur]", got)
	}

	if got := c.Search(""); len(got) != 0 {
		t.Errorf("Search empty query returned %d cards, want 0", len(got))
	}
}

func TestSetNames(t *testing.T) {
	c := Build(testCards())

	names := c.SetNames()
	if len(names) != 2 || names[0] != "Base Set" || names[1] != "Jungle" {
		t.Errorf("SetNames() = %v, want [Base Set, Jungle]", names)
	}
}
