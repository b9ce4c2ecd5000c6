package models

import (
	"time"
)

// Rarity is the printed rarity of a card
type Rarity string

const (
	RarityCommon     Rarity = "Common"
	RarityUncommon   Rarity = "Uncommon"
	RarityRare       Rarity = "Rare"
	RarityHoloRare   Rarity = "Holo Rare"
	RarityUltraRare  Rarity = "Ultra Rare"
	RaritySecretRare Rarity = "Secret Rare"
	RarityUnknown    Rarity = "Unknown"
)

// Stage is the evolution stage printed on a Pokemon card.
// Trainer and Energy cards have no stage.
type Stage string

const (
	StageBasic  Stage = "Basic"
	StageStage1 Stage = "Stage 1"
	StageStage2 Stage = "Stage 2"
	StageNone   Stage = ""
)

// Card is one known card in the catalog. Records are immutable once
// loaded: the catalog is built during startup and never mutated after.
type Card struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null;index"`
	SetName     string     `json:"set_name" gorm:"index"`
	SetNumber   string     `json:"set_number" gorm:"index"` // printed "<card_no>/<total>" label
	Rarity      Rarity     `json:"rarity"`
	HP          *int       `json:"hp,omitempty"` // nil for Trainer/Energy cards
	CardType    string     `json:"card_type"`    // "Fire", "Water", "Trainer", "Energy", ...
	Stage       Stage      `json:"stage,omitempty"`
	Artist      string     `json:"artist,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HPValue returns the card's HP, or 0 when the card has none.
func (c *Card) HPValue() int {
	if c.HP == nil {
		return 0
	}
	return *c.HP
}

// NormalizeRarity maps free-text rarity strings (catalog imports, OCR
// hints) to our Rarity type. Unknown values map to RarityUnknown.
func NormalizeRarity(s string) Rarity {
	switch s {
	case "Common":
		return RarityCommon
	case "Uncommon":
		return RarityUncommon
	case "Rare":
		return RarityRare
	case "Holo Rare", "Rare Holo":
		return RarityHoloRare
	case "Ultra Rare", "Rare Ultra":
		return RarityUltraRare
	case "Secret Rare", "Rare Secret":
		return RaritySecretRare
	default:
		return RarityUnknown
	}
}

// ExtractedFields holds the best-effort signals pulled out of a card
// photo. Every field is optional: a nil pointer means the field was
// not extracted at all, which is different from a zero value.
type ExtractedFields struct {
	Name      *string `json:"name,omitempty"`
	HP        *int    `json:"hp,omitempty"`
	SetNumber *string `json:"set_number,omitempty"`
	CardType  *string `json:"card_type,omitempty"`
	Stage     *string `json:"stage,omitempty"`
}

// Empty reports whether no usable evidence was extracted.
func (f *ExtractedFields) Empty() bool {
	return f.Name == nil && f.HP == nil && f.SetNumber == nil
}

// Match reason tags attached to candidates. These are part of the API
// response shape, so they are stable strings rather than an enum.
const (
	ReasonExactSetNumber = "exact_set_number_match"
	ReasonName           = "name_match"
	ReasonHP             = "hp_match"
	ReasonCardNumber     = "card_number_match"
	ReasonHPNameCombo    = "hp_name_combo"
)

// MatchCandidate is one scored hypothesis that a given catalog card is
// the one in the photo.
type MatchCandidate struct {
	Card       *Card    `json:"card"`
	Confidence float64  `json:"confidence"` // in [0, 0.98]
	Reasons    []string `json:"match_reasons"`
}

// CardSearchResult is the response shape for catalog search endpoints.
type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}
