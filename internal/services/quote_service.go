package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/models"
	"github.com/codyseavey/card-pricer/internal/pricing"
)

const (
	// ReportStalenessThreshold is how old a cached report can be
	// before it's considered stale.
	ReportStalenessThreshold = 24 * time.Hour

	// hotCacheSize bounds the in-memory report cache. A few hundred
	// cards covers the set of cards people scan repeatedly.
	hotCacheSize = 256
)

// QuoteService answers price questions for identified cards. Reports
// come from a three-tier lookup: in-memory LRU, persistent cache,
// then a live marketplace fetch.
type QuoteService struct {
	market *MarketClient
	db     *gorm.DB
	hot    *lru.Cache[string, *models.PriceReport]
}

func NewQuoteService(market *MarketClient, db *gorm.DB) (*QuoteService, error) {
	hot, err := lru.New[string, *models.PriceReport](hotCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &QuoteService{
		market: market,
		db:     db,
		hot:    hot,
	}, nil
}

func reportKey(cardName, setName string) string {
	return cardName + "|" + setName
}

// GetReport returns the price report for a card, newest source first:
// fresh memory or store entries win, a live fetch replaces anything
// stale, and a stale cached report is still served (marked stale)
// when the live fetch fails or quota is gone.
//
// Reports held in the hot cache are shared across requests, so the
// Source label is always set on a value copy, never on the cached
// struct itself.
func (s *QuoteService) GetReport(ctx context.Context, cardName, setName string) (*models.PriceReport, error) {
	key := reportKey(cardName, setName)

	if report, ok := s.hot.Get(key); ok {
		if s.isFresh(report.LastUpdated) {
			metrics.QuoteCacheHits.WithLabelValues("memory").Inc()
			return withSource(report, "cached"), nil
		}
		s.hot.Remove(key)
	}

	stored, err := s.loadStored(cardName, setName)
	if err == nil && s.isFresh(stored.LastUpdated) {
		metrics.QuoteCacheHits.WithLabelValues("store").Inc()
		s.hot.Add(key, stored)
		return withSource(stored, "cached"), nil
	}

	metrics.QuoteCacheMisses.Inc()

	report, fetchErr := s.fetchLive(ctx, cardName, setName)
	if fetchErr == nil {
		s.hot.Add(key, report)
		return report, nil
	}

	// Live fetch failed: a stale report beats no report.
	if stored != nil {
		log.Printf("Quote service: serving stale report for %s (%s): %v", cardName, setName, fetchErr)
		return withSource(stored, "cached (stale)"), nil
	}
	return nil, fetchErr
}

// withSource returns a copy of the report with the given source label.
// The original is left untouched so a report already handed to one
// request can be safely relabeled for another.
func withSource(report *models.PriceReport, source string) *models.PriceReport {
	out := *report
	out.Source = source
	return &out
}

// RefreshReport forces a live fetch and cache update, bypassing
// staleness checks. Used by the background worker.
func (s *QuoteService) RefreshReport(ctx context.Context, cardName, setName string) (*models.PriceReport, error) {
	report, err := s.fetchLive(ctx, cardName, setName)
	if err != nil {
		return nil, err
	}
	s.hot.Add(reportKey(cardName, setName), report)
	return report, nil
}

// NeedsRefresh reports whether the stored report for a card is missing
// or stale.
func (s *QuoteService) NeedsRefresh(cardName, setName string) bool {
	stored, err := s.loadStored(cardName, setName)
	if err != nil {
		return true
	}
	return !s.isFresh(stored.LastUpdated)
}

func (s *QuoteService) isFresh(t time.Time) bool {
	return time.Since(t) < ReportStalenessThreshold
}

func (s *QuoteService) fetchLive(ctx context.Context, cardName, setName string) (*models.PriceReport, error) {
	observations, err := s.market.FetchSoldListings(ctx, cardName, setName)
	if err != nil {
		return nil, err
	}

	report := pricing.Summarize(cardName, setName, observations)
	report.Source = "live"
	if report.ParseFailures > 0 {
		log.Printf("Quote service: %d unparseable prices for %s (%s)", report.ParseFailures, cardName, setName)
	}

	if err := s.store(&report); err != nil {
		log.Printf("Quote service: failed to persist report for %s: %v", cardName, err)
	}
	return &report, nil
}

func (s *QuoteService) store(report *models.PriceReport) error {
	summary, err := json.Marshal(report.GradeSummary)
	if err != nil {
		return fmt.Errorf("marshal grade summary: %w", err)
	}

	cached := models.CachedReport{
		CardName:      report.CardName,
		SetName:       report.SetName,
		Summary:       summary,
		TotalListings: report.TotalListings,
		FetchedAt:     report.LastUpdated,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_name"}, {Name: "set_name"}},
		UpdateAll: true,
	}).Create(&cached).Error
}

func (s *QuoteService) loadStored(cardName, setName string) (*models.PriceReport, error) {
	var cached models.CachedReport
	err := s.db.Where("card_name = ? AND set_name = ?", cardName, setName).First(&cached).Error
	if err != nil {
		return nil, err
	}

	var summary map[string]models.GradeStats
	if err := json.Unmarshal(cached.Summary, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal grade summary: %w", err)
	}

	return &models.PriceReport{
		CardName:      cached.CardName,
		SetName:       cached.SetName,
		GradeSummary:  summary,
		TotalListings: cached.TotalListings,
		LastUpdated:   cached.FetchedAt,
	}, nil
}
