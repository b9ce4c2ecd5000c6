package models

import (
	"time"
)

// PriceObservation is one raw sold/listed price pulled from a
// marketplace, tagged with the grade it sold under.
type PriceObservation struct {
	Marketplace string    `json:"marketplace"` // "ebay", "tcgplayer", "pwcc", ...
	Title       string    `json:"title,omitempty"`
	Grade       string    `json:"grade"` // "Ungraded", "PSA 10", "BGS 9.5", ...
	PriceText   string    `json:"price_text,omitempty"`
	Price       float64   `json:"price"`
	SaleDate    time.Time `json:"sale_date"`
	ListingURL  string    `json:"listing_url,omitempty"`
}

// GradeStats summarizes all observations for one grade label.
// Median is sorted[len/2], not an average of the two middles.
type GradeStats struct {
	Count       int                `json:"count"`
	MinPrice    float64            `json:"min_price"`
	MaxPrice    float64            `json:"max_price"`
	AvgPrice    float64            `json:"avg_price"`
	MedianPrice float64            `json:"median_price"`
	RecentSales []PriceObservation `json:"recent_sales"` // up to 5, newest first
}

// PriceReport is the aggregated pricing response for one card.
type PriceReport struct {
	CardName      string                `json:"card_name"`
	SetName       string                `json:"set_name"`
	GradeSummary  map[string]GradeStats `json:"grade_summary"`
	TotalListings int                   `json:"total_listings"`
	ParseFailures int                   `json:"parse_failures,omitempty"`
	LastUpdated   time.Time             `json:"last_updated"`
	Source        string                `json:"source"` // "live", "cached", "cached (stale)"
}

// CachedReport is the persisted form of a PriceReport. The grade
// summary is stored as a JSON blob; its structure only matters to the
// application, not to queries.
type CachedReport struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CardName      string    `json:"card_name" gorm:"not null;uniqueIndex:idx_report_card_set"`
	SetName       string    `json:"set_name" gorm:"uniqueIndex:idx_report_card_set"`
	Summary       []byte    `json:"-" gorm:"type:blob"`
	TotalListings int       `json:"total_listings"`
	FetchedAt     time.Time `json:"fetched_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
