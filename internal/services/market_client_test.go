package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewMarketClient(t *testing.T) {
	// Default limit
	c := NewMarketClient("test-key", "http://example.com", 0)
	if c.dailyLimit != 100 {
		t.Errorf("Expected default daily limit of 100, got %d", c.dailyLimit)
	}
	if c.apiKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got %s", c.apiKey)
	}

	// Custom limit
	c = NewMarketClient("", "http://example.com", 200)
	if c.dailyLimit != 200 {
		t.Errorf("Expected daily limit of 200, got %d", c.dailyLimit)
	}
}

func TestMarketClientDailyQuota(t *testing.T) {
	c := NewMarketClient("", "http://example.com", 3)

	for i := 0; i < 3; i++ {
		if !c.checkQuota() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if c.checkQuota() {
		t.Error("4th request should be blocked by daily quota")
	}

	if remaining := c.RequestsRemaining(); remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
}

func TestFetchSoldListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings/sold" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		q := r.URL.Query().Get("q")
		if q != "Charizard Base Set pokemon card" {
			t.Errorf("query = %q", q)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"listings": [
				{"title": "Charizard PSA 10 GEM MINT", "marketplace": "ebay", "price": "$420.00", "sold_at": "2026-03-02T00:00:00Z", "url": "https://example.com/1"},
				{"title": "Charizard holo", "marketplace": "ebay", "price": "$80.00", "sold_at": "2026-03-01T00:00:00Z"}
			]
		}`))
	}))
	defer server.Close()

	c := NewMarketClient("test-key", server.URL, 10)

	observations, err := c.FetchSoldListings(context.Background(), "Charizard", "Base Set")
	if err != nil {
		t.Fatalf("FetchSoldListings: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}

	first := observations[0]
	if first.Grade != "PSA 10" {
		t.Errorf("grade = %q, want PSA 10", first.Grade)
	}
	if first.PriceText != "$420.00" {
		t.Errorf("price text = %q", first.PriceText)
	}
	if first.SaleDate.IsZero() {
		t.Error("sale date not parsed")
	}

	if observations[1].Grade != "Ungraded" {
		t.Errorf("second grade = %q, want Ungraded", observations[1].Grade)
	}
}

func TestFetchSoldListingsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "invalid API key"}`))
	}))
	defer server.Close()

	c := NewMarketClient("bad-key", server.URL, 10)
	if _, err := c.FetchSoldListings(context.Background(), "Charizard", "Base Set"); err == nil {
		t.Error("expected an error for unsuccessful response")
	}
}

func TestFetchSoldListingsQuotaExhausted(t *testing.T) {
	c := NewMarketClient("", "http://example.com", 1)
	c.checkQuota() // burn the only request

	if _, err := c.FetchSoldListings(context.Background(), "Pikachu", ""); err == nil {
		t.Error("expected quota error")
	}
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		cardName string
		setName  string
		want     string
	}{
		{"Charizard", "Base Set", "Charizard Base Set pokemon card"},
		{"Pikachu", "", "Pikachu pokemon card"},
	}
	for _, tt := range tests {
		if got := searchTerm(tt.cardName, tt.setName); got != tt.want {
			t.Errorf("searchTerm(%q, %q) = %q, want %q", tt.cardName, tt.setName, got, tt.want)
		}
	}
}
