package services

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/models"
)

const (
	// defaultBatchSize is the number of cards refreshed per batch.
	// Each card costs one marketplace request, so keep this well under
	// the daily quota.
	defaultBatchSize = 10

	defaultUpdateInterval = 15 * time.Minute
)

// popularCards are preloaded into the refresh queue at startup so the
// most-scanned cards have warm reports before the first user request.
var popularCards = []struct {
	Name    string
	SetName string
}{
	{"Charizard", "Base Set"},
	{"Blastoise", "Base Set"},
	{"Venusaur", "Base Set"},
	{"Pikachu", "Base Set"},
	{"Alakazam", "Base Set"},
	{"Mewtwo", "Base Set"},
}

// PriceWorker keeps cached price reports warm in the background. It
// drains a priority queue of user-requested refreshes first, then
// refreshes cards whose stored reports are missing or stale.
type PriceWorker struct {
	quotes *QuoteService
	market *MarketClient
	db     *gorm.DB

	batchSize      int
	updateInterval time.Duration

	// Priority queue for user-requested refreshes
	urgentQueue []uint
	urgentMu    sync.Mutex

	// Stats (reset at midnight)
	mu             sync.RWMutex
	reportsToday   int
	lastUpdateTime time.Time
	lastStatsDay   time.Time
}

// WorkerStatus is the /api/prices/status payload.
type WorkerStatus struct {
	LastUpdateTime time.Time `json:"last_update_time"`
	NextUpdateTime time.Time `json:"next_update_time"`
	ReportsToday   int       `json:"reports_today"`
	BatchSize      int       `json:"batch_size"`
	QueueSize      int       `json:"queue_size"`

	// Marketplace quota info
	DailyLimit int       `json:"daily_limit"`
	Remaining  int       `json:"remaining"`
	ResetsAt   time.Time `json:"resets_at"`
}

func NewPriceWorker(quotes *QuoteService, market *MarketClient, db *gorm.DB) *PriceWorker {
	return &PriceWorker{
		quotes:         quotes,
		market:         market,
		db:             db,
		batchSize:      defaultBatchSize,
		updateInterval: defaultUpdateInterval,
	}
}

// QueueRefresh adds a card to the high-priority refresh queue and
// returns its 1-indexed position.
func (w *PriceWorker) QueueRefresh(cardID uint) int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for i, id := range w.urgentQueue {
		if id == cardID {
			return i + 1
		}
	}
	w.urgentQueue = append(w.urgentQueue, cardID)
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	log.Printf("Price worker: queued refresh for card %d (queue size: %d)", cardID, len(w.urgentQueue))
	return len(w.urgentQueue)
}

// QueueSize returns the current urgent queue size.
func (w *PriceWorker) QueueSize() int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()
	return len(w.urgentQueue)
}

// PreloadPopularCards queues the well-known high-traffic cards whose
// reports are missing or stale.
func (w *PriceWorker) PreloadPopularCards() {
	queued := 0
	for _, p := range popularCards {
		if !w.quotes.NeedsRefresh(p.Name, p.SetName) {
			continue
		}
		var card models.Card
		if err := w.db.Where("name = ? AND set_name = ?", p.Name, p.SetName).First(&card).Error; err != nil {
			continue
		}
		w.QueueRefresh(card.ID)
		queued++
	}
	if queued > 0 {
		log.Printf("Price worker: preloaded %d popular cards into refresh queue", queued)
	}
}

// resetDailyStatsIfNeeded resets reportsToday at midnight.
func (w *PriceWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Price worker: daily stats reset (previous day: %d reports refreshed)", w.reportsToday)
		}
		w.reportsToday = 0
		w.lastStatsDay = today
		metrics.PriceUpdatesToday.Set(0)
	}
}

// Start begins the background refresh loop. Blocks until ctx is
// cancelled.
func (w *PriceWorker) Start(ctx context.Context) {
	log.Printf("Price worker started: up to %d reports every %v", w.batchSize, w.updateInterval)

	w.PreloadPopularCards()

	// Run immediately on startup
	if updated, err := w.UpdateBatch(ctx); err != nil {
		log.Printf("Price worker: initial batch failed: %v", err)
	} else if updated > 0 {
		log.Printf("Price worker: initial batch refreshed %d reports", updated)
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price worker stopping...")
			return
		case <-ticker.C:
			if updated, err := w.UpdateBatch(ctx); err != nil {
				log.Printf("Price worker: batch failed: %v", err)
			} else if updated > 0 {
				log.Printf("Price worker: batch refreshed %d reports", updated)
			}
		}
	}
}

// UpdateBatch refreshes up to batchSize reports with priority
// ordering: user-requested refreshes first, then cards with missing
// or stale stored reports.
func (w *PriceWorker) UpdateBatch(ctx context.Context) (updated int, err error) {
	w.resetDailyStatsIfNeeded()

	if w.market.RequestsRemaining() == 0 {
		log.Printf("Price worker: marketplace quota exhausted, skipping until %s",
			w.market.QuotaResetTime().Format("15:04"))
		return 0, nil
	}

	cards := w.collectBatch()
	if len(cards) == 0 {
		return 0, nil
	}

	start := time.Now()
	for _, card := range cards {
		if ctx.Err() != nil {
			break
		}
		if w.market.RequestsRemaining() == 0 {
			log.Println("Price worker: quota exhausted mid-batch")
			break
		}
		if _, err := w.quotes.RefreshReport(ctx, card.Name, card.SetName); err != nil {
			log.Printf("Price worker: refresh failed for %s (%s): %v", card.Name, card.SetName, err)
			continue
		}
		updated++
		metrics.PriceUpdatesTotal.Inc()
	}
	metrics.PriceBatchDuration.Observe(time.Since(start).Seconds())

	w.mu.Lock()
	w.reportsToday += updated
	w.lastUpdateTime = time.Now()
	metrics.PriceUpdatesToday.Set(float64(w.reportsToday))
	w.mu.Unlock()

	return updated, nil
}

// collectBatch picks the cards to refresh this round.
func (w *PriceWorker) collectBatch() []models.Card {
	var cards []models.Card
	seen := make(map[uint]bool)

	// Priority 1: user-requested refreshes
	w.urgentMu.Lock()
	urgentIDs := w.urgentQueue
	if len(urgentIDs) > w.batchSize {
		urgentIDs = urgentIDs[:w.batchSize]
		w.urgentQueue = w.urgentQueue[w.batchSize:]
	} else {
		w.urgentQueue = nil
	}
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	w.urgentMu.Unlock()

	if len(urgentIDs) > 0 {
		var urgentCards []models.Card
		w.db.Where("id IN ?", urgentIDs).Find(&urgentCards)
		for _, c := range urgentCards {
			cards = append(cards, c)
			seen[c.ID] = true
		}
		log.Printf("Price worker: processing %d urgent refresh requests", len(urgentCards))
	}

	remaining := w.batchSize - len(cards)
	if remaining <= 0 {
		return cards
	}

	// Priority 2: recently scanned cards with no stored report
	var scannedCards []models.Card
	w.db.Raw(`
		SELECT DISTINCT c.* FROM cards c
		INNER JOIN scans s ON s.matched_card_id = c.id
		LEFT JOIN cached_reports r ON r.card_name = c.name AND r.set_name = c.set_name
		WHERE r.id IS NULL
		LIMIT ?
	`, remaining).Scan(&scannedCards)
	for _, c := range scannedCards {
		if seen[c.ID] {
			continue
		}
		cards = append(cards, c)
		seen[c.ID] = true
	}

	remaining = w.batchSize - len(cards)
	if remaining <= 0 {
		return cards
	}

	// Priority 3: oldest stored reports for scanned cards
	var staleCards []models.Card
	w.db.Raw(`
		SELECT DISTINCT c.* FROM cards c
		INNER JOIN scans s ON s.matched_card_id = c.id
		INNER JOIN cached_reports r ON r.card_name = c.name AND r.set_name = c.set_name
		WHERE r.fetched_at < ?
		ORDER BY r.fetched_at ASC
		LIMIT ?
	`, time.Now().Add(-ReportStalenessThreshold), remaining).Scan(&staleCards)
	for _, c := range staleCards {
		if seen[c.ID] {
			continue
		}
		cards = append(cards, c)
	}

	return cards
}

// Status reports worker and quota state.
func (w *PriceWorker) Status() WorkerStatus {
	w.mu.RLock()
	lastUpdate := w.lastUpdateTime
	reportsToday := w.reportsToday
	w.mu.RUnlock()

	next := lastUpdate.Add(w.updateInterval)
	if lastUpdate.IsZero() {
		next = time.Now()
	}

	return WorkerStatus{
		LastUpdateTime: lastUpdate,
		NextUpdateTime: next,
		ReportsToday:   reportsToday,
		BatchSize:      w.batchSize,
		QueueSize:      w.QueueSize(),
		DailyLimit:     w.market.DailyLimit(),
		Remaining:      w.market.RequestsRemaining(),
		ResetsAt:       w.market.QuotaResetTime(),
	}
}
