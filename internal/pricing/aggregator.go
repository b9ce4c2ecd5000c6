// Package pricing turns raw marketplace price observations into the
// per-grade summary statistics served by the quote endpoints.
package pricing

import (
	"sort"
	"time"

	"github.com/codyseavey/card-pricer/internal/models"
)

const recentSalesLimit = 5

// Summarize aggregates observations into a per-grade report. Every
// observation is accounted for: parseable prices feed the statistics,
// unparseable ones are counted as parse failures and excluded. Nothing
// is silently dropped.
//
// Median is sorted[len/2] rather than an average of the two middles
// on an even count. Downstream consumers compare medians across
// refreshes, so the convention is part of the report format.
func Summarize(cardName, setName string, observations []models.PriceObservation) models.PriceReport {
	byGrade := make(map[string][]models.PriceObservation)
	failures := 0

	for _, obs := range observations {
		price, ok := resolvePrice(obs)
		if !ok {
			failures++
			continue
		}
		obs.Price = price
		grade := obs.Grade
		if grade == "" {
			grade = ExtractGrade(obs.Title)
		}
		obs.Grade = grade
		byGrade[grade] = append(byGrade[grade], obs)
	}

	summary := make(map[string]models.GradeStats, len(byGrade))
	total := 0
	for grade, sales := range byGrade {
		summary[grade] = gradeStats(sales)
		total += len(sales)
	}

	return models.PriceReport{
		CardName:      cardName,
		SetName:       setName,
		GradeSummary:  summary,
		TotalListings: total,
		ParseFailures: failures,
		LastUpdated:   time.Now(),
	}
}

// resolvePrice prefers an already-parsed price and falls back to the
// raw price text.
func resolvePrice(obs models.PriceObservation) (float64, bool) {
	if obs.Price > 0 {
		return obs.Price, true
	}
	price, err := ParsePrice(obs.PriceText)
	if err != nil {
		return 0, false
	}
	return price, true
}

func gradeStats(sales []models.PriceObservation) models.GradeStats {
	prices := make([]float64, len(sales))
	sum := 0.0
	for i, s := range sales {
		prices[i] = s.Price
		sum += s.Price
	}
	sort.Float64s(prices)

	recent := make([]models.PriceObservation, len(sales))
	copy(recent, sales)
	// Stable keeps input order among same-day sales.
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SaleDate.After(recent[j].SaleDate)
	})
	if len(recent) > recentSalesLimit {
		recent = recent[:recentSalesLimit]
	}

	return models.GradeStats{
		Count:       len(sales),
		MinPrice:    prices[0],
		MaxPrice:    prices[len(prices)-1],
		AvgPrice:    sum / float64(len(sales)),
		MedianPrice: prices[len(prices)/2],
		RecentSales: recent,
	}
}
