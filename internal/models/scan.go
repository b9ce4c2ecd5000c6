package models

import (
	"time"
)

// Scan records one identification request: what the OCR extracted and
// which card (if any) was the top match. Kept so the price worker can
// prioritize recently scanned cards and so misidentifications can be
// reviewed later.
type Scan struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ImagePath     string    `json:"image_path,omitempty"`
	RawText       string    `json:"raw_text,omitempty" gorm:"type:text"`
	ExtractedName string    `json:"extracted_name,omitempty"`
	ExtractedHP   *int      `json:"extracted_hp,omitempty"`
	SetNumber     string    `json:"set_number,omitempty"`
	MatchedCardID *uint     `json:"matched_card_id,omitempty" gorm:"index"`
	Confidence    float64   `json:"confidence"`
	NoMatch       bool      `json:"no_match"`
	CreatedAt     time.Time `json:"created_at"`
}
