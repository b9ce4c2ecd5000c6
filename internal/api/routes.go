package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/card-pricer/internal/api/handlers"
	"github.com/codyseavey/card-pricer/internal/catalog"
	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/services"
)

func SetupRouter(identify *services.IdentifyService, cat *catalog.Catalog, ocr *services.OCRClient, priceWorker *services.PriceWorker, quoteService *services.QuoteService, imageStorage *services.ImageStorage) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	router.Use(metricsMiddleware())

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(identify, cat, ocr)
	priceHandler := handlers.NewPriceHandler(priceWorker, quoteService)

	// Serve scanned images
	if imageStorage != nil {
		router.Static("/images/scanned", imageStorage.StorageDir())
	}

	// API routes
	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:id", cardHandler.GetCard)
			cards.GET("/:id/prices", priceHandler.GetCardPrices)
			cards.POST("/identify", cardHandler.IdentifyCard)
			cards.POST("/identify-image", cardHandler.IdentifyCardFromImage)
			cards.GET("/ocr-status", cardHandler.GetOCRStatus)
			cards.POST("/:id/refresh-price", priceHandler.RefreshCardPrice)
		}

		api.GET("/sets", cardHandler.ListSets)
		api.GET("/scans", cardHandler.GetRecentScans)

		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
// FullPath keeps the label cardinality bounded (":id", not every id).
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
