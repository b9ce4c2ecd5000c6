package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/codyseavey/card-pricer/internal/metrics"
)

// OCRResult is the OCR sidecar's response for one card image.
type OCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	TimingsMS  int     `json:"timings_ms,omitempty"`
}

type OCRHealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Version string `json:"version,omitempty"`
}

// OCRClient talks to the OCR sidecar over HTTP. The sidecar owns all
// image preprocessing; this client only ships bytes and reads text
// back.
type OCRClient struct {
	baseURL    string
	configured bool
	client     *http.Client

	// Cached health status
	mu              sync.RWMutex
	lastHealthCheck time.Time
	cachedHealthy   bool
	cachedEngine    string
}

func NewOCRClient() *OCRClient {
	baseURL := os.Getenv("OCR_SERVICE_URL")
	// Default is local dev; treat as "not configured" unless explicitly set.
	configured := baseURL != ""
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8090"
	}

	c := &OCRClient{
		baseURL:    baseURL,
		configured: configured,
		client: &http.Client{
			Timeout: 25 * time.Second,
		},
	}

	// Run initial health check in background
	go c.checkHealth()

	return c
}

func (c *OCRClient) IsConfigured() bool {
	return c.configured
}

// IsHealthy returns true if the OCR sidecar is reachable. Uses a
// cached result (refreshed every 60 seconds) to avoid blocking on
// every request.
func (c *OCRClient) IsHealthy() bool {
	c.mu.RLock()
	if time.Since(c.lastHealthCheck) < 60*time.Second {
		healthy := c.cachedHealthy
		c.mu.RUnlock()
		return healthy
	}
	c.mu.RUnlock()

	return c.checkHealth()
}

// Engine returns the OCR engine name reported by the sidecar.
func (c *OCRClient) Engine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cachedEngine
}

func (c *OCRClient) checkHealth() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		c.updateHealthCache(false, "")
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[OCR] health check failed: %v", err)
		c.updateHealthCache(false, "")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.updateHealthCache(false, "")
		return false
	}

	var health OCRHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		c.updateHealthCache(false, "")
		return false
	}

	healthy := health.Status == "ok"
	c.updateHealthCache(healthy, health.Engine)
	return healthy
}

func (c *OCRClient) updateHealthCache(healthy bool, engine string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastHealthCheck = time.Now()
	c.cachedHealthy = healthy
	c.cachedEngine = engine
}

// ExtractText runs OCR on raw image bytes and returns the recognized
// text.
func (c *OCRClient) ExtractText(ctx context.Context, img []byte) (*OCRResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 25*time.Second)
	defer cancel()

	start := time.Now()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("image", "card.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(img); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", &buf)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OCRRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("ocr failed status=%d", resp.StatusCode)
	}

	var out OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.OCRRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}

	metrics.OCRRequestsTotal.WithLabelValues("success").Inc()
	metrics.OCRProcessingDuration.Observe(time.Since(start).Seconds())
	return &out, nil
}
