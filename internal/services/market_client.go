package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/models"
	"github.com/codyseavey/card-pricer/internal/pricing"
)

const (
	marketDefaultTimeout = 10 * time.Second

	// One request per 2 seconds keeps us well under the marketplace's
	// published limits.
	marketRequestInterval = 2 * time.Second
)

// MarketClient fetches sold-listing data from the marketplace API for
// card pricing. Requests are paced and capped by a daily quota.
type MarketClient struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	dailyLimit int
	limiter    *rate.Limiter

	// Quota tracking
	mu             sync.Mutex
	requestsToday  int
	lastRequestDay time.Time
}

// marketSoldResponse is the API envelope for sold-listing queries.
type marketSoldResponse struct {
	Success  bool                `json:"success"`
	Listings []marketSoldListing `json:"listings"`
	Error    string              `json:"error,omitempty"`
}

type marketSoldListing struct {
	Title       string `json:"title"`
	Marketplace string `json:"marketplace"`
	Price       string `json:"price"`
	SoldAt      string `json:"sold_at"`
	URL         string `json:"url,omitempty"`
}

// NewMarketClient creates a marketplace API client. A zero or negative
// dailyLimit falls back to the free tier's 100 requests.
func NewMarketClient(apiKey, baseURL string, dailyLimit int) *MarketClient {
	if dailyLimit <= 0 {
		dailyLimit = 100
	}
	metrics.MarketQuotaLimit.Set(float64(dailyLimit))
	metrics.MarketQuotaRemaining.Set(float64(dailyLimit))

	return &MarketClient{
		client: &http.Client{
			Timeout: marketDefaultTimeout,
		},
		apiKey:     apiKey,
		baseURL:    baseURL,
		dailyLimit: dailyLimit,
		limiter:    rate.NewLimiter(rate.Every(marketRequestInterval), 1),
	}
}

// checkQuota checks if we can make another request today.
func (c *MarketClient) checkQuota() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Reset counter if new day
	if c.lastRequestDay.Before(today) {
		c.requestsToday = 0
		c.lastRequestDay = today
	}

	if c.requestsToday >= c.dailyLimit {
		return false
	}

	c.requestsToday++
	metrics.MarketQuotaRemaining.Set(float64(c.dailyLimit - c.requestsToday))
	return true
}

// RequestsRemaining returns the number of requests remaining today.
func (c *MarketClient) RequestsRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if c.lastRequestDay.Before(today) {
		return c.dailyLimit
	}

	remaining := c.dailyLimit - c.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// QuotaResetTime returns the next midnight, when the daily counter
// resets.
func (c *MarketClient) QuotaResetTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

// DailyLimit returns the configured daily request cap.
func (c *MarketClient) DailyLimit() int {
	return c.dailyLimit
}

// FetchSoldListings returns recent sold listings for a card as price
// observations. Grades are extracted from listing titles, prices
// parsed from the raw price text.
func (c *MarketClient) FetchSoldListings(ctx context.Context, cardName, setName string) ([]models.PriceObservation, error) {
	if !c.checkQuota() {
		metrics.MarketRequestsTotal.WithLabelValues("quota_exhausted").Inc()
		return nil, fmt.Errorf("marketplace daily quota exceeded, resets at %s", c.QuotaResetTime().Format("15:04"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", searchTerm(cardName, setName))
	params.Set("sold", "true")

	reqURL := fmt.Sprintf("%s/listings/sold?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.MarketRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.MarketRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("marketplace API error: status %d", resp.StatusCode)
	}

	var soldResp marketSoldResponse
	if err := json.NewDecoder(resp.Body).Decode(&soldResp); err != nil {
		metrics.MarketRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !soldResp.Success {
		metrics.MarketRequestsTotal.WithLabelValues("error").Inc()
		if soldResp.Error != "" {
			return nil, fmt.Errorf("marketplace API error: %s", soldResp.Error)
		}
		return nil, fmt.Errorf("marketplace API returned unsuccessful response")
	}

	metrics.MarketRequestsTotal.WithLabelValues("success").Inc()

	observations := make([]models.PriceObservation, 0, len(soldResp.Listings))
	for _, l := range soldResp.Listings {
		obs := models.PriceObservation{
			Marketplace: l.Marketplace,
			Title:       l.Title,
			Grade:       pricing.ExtractGrade(l.Title),
			PriceText:   l.Price,
			ListingURL:  l.URL,
		}
		if t, err := time.Parse(time.RFC3339, l.SoldAt); err == nil {
			obs.SaleDate = t
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// searchTerm builds the marketplace query for a card. Set name is
// included when known so reprints don't pollute the results.
func searchTerm(cardName, setName string) string {
	if setName == "" {
		return cardName + " pokemon card"
	}
	return cardName + " " + setName + " pokemon card"
}
