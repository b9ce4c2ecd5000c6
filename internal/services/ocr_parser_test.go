package services

import (
	"testing"
)

func TestParseCardText(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantName       string
		wantHP         int
		wantSetNumber  string
		wantConfidence float64
	}{
		{
			name: "full card text",
			input: `Charizard
HP 120
STAGE 2
4/102`,
			wantName:       "Charizard",
			wantHP:         120,
			wantSetNumber:  "4/102",
			wantConfidence: 1.0,
		},
		{
			name: "name and hp on one line",
			input: `Pikachu HP 40
Gnaw
58/102`,
			wantName:       "Pikachu",
			wantHP:         40,
			wantSetNumber:  "58/102",
			wantConfidence: 1.0,
		},
		{
			name: "hp suffix form",
			input: `Blastoise
100 HP`,
			wantName:       "Blastoise",
			wantHP:         100,
			wantConfidence: 0.7,
		},
		{
			name: "ocr misread of HP prefix",
			input: `Magmar
4P 50`,
			wantName:       "Magmar",
			wantHP:         50,
			wantConfidence: 0.7,
		},
		{
			name: "letter-for-digit misreads in numbers",
			input: `Venusaur
HP l00
l6/l02`,
			wantName:       "Venusaur",
			wantHP:         100,
			wantSetNumber:  "16/102",
			wantConfidence: 1.0,
		},
		{
			name:           "name only",
			input:          "Alakazam",
			wantName:       "Alakazam",
			wantConfidence: 0.4,
		},
		{
			name: "set number only",
			input: `102
44/102`,
			wantSetNumber:  "44/102",
			wantConfidence: 0.3,
		},
		{
			name:           "empty text",
			input:          "",
			wantConfidence: 0,
		},
		{
			name: "garbage symbols around name",
			input: `*** Mewtwo ###
HP 60`,
			wantName:       "Mewtwo",
			wantHP:         60,
			wantConfidence: 0.7,
		},
		{
			name: "hp out of plausible range ignored",
			input: `Chansey
HP 999`,
			wantName:       "Chansey",
			wantConfidence: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, confidence := ParseCardText(tt.input)

			if tt.wantName == "" {
				if fields.Name != nil {
					t.Errorf("Name = %q, want none", *fields.Name)
				}
			} else if fields.Name == nil || *fields.Name != tt.wantName {
				t.Errorf("Name = %v, want %q", fields.Name, tt.wantName)
			}

			if tt.wantHP == 0 {
				if fields.HP != nil {
					t.Errorf("HP = %d, want none", *fields.HP)
				}
			} else if fields.HP == nil || *fields.HP != tt.wantHP {
				t.Errorf("HP = %v, want %d", fields.HP, tt.wantHP)
			}

			if tt.wantSetNumber == "" {
				if fields.SetNumber != nil {
					t.Errorf("SetNumber = %q, want none", *fields.SetNumber)
				}
			} else if fields.SetNumber == nil || *fields.SetNumber != tt.wantSetNumber {
				t.Errorf("SetNumber = %v, want %q", fields.SetNumber, tt.wantSetNumber)
			}

			if confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", confidence, tt.wantConfidence)
			}
		})
	}
}

func TestExtractHPPicksMostFrequent(t *testing.T) {
	// The HP value repeats in OCR output; a one-off misread must not
	// win over a repeated value.
	text := `Charizard
HP 120
energy burn 120 HP
HP 20`
	hp, ok := extractHP(text)
	if !ok {
		t.Fatal("expected an HP value")
	}
	if hp != 120 {
		t.Errorf("hp = %d, want 120", hp)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Charizard HP 120", "Charizard"},
		{"Mr. Mime", "Mr. Mime"},
		{"Farfetch'd", "Farfetch'd"},
		{"@#$%", ""},
		{"  Dark   Charizard  ", "Dark Charizard"},
	}
	for _, tt := range tests {
		if got := cleanName(tt.input); got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
