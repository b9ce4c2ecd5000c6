package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codyseavey/card-pricer/internal/api"
	"github.com/codyseavey/card-pricer/internal/catalog"
	"github.com/codyseavey/card-pricer/internal/database"
	"github.com/codyseavey/card-pricer/internal/matcher"
	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/services"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./card_pricer.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedIfEmpty(db); err != nil {
		log.Fatalf("Failed to seed card database: %v", err)
	}

	// Build the in-memory catalog. It is read-only after this point,
	// so request handlers share it without locking.
	cards, err := database.LoadCards(db)
	if err != nil {
		log.Fatalf("Failed to load cards: %v", err)
	}
	cat := catalog.Build(cards)
	metrics.CatalogSize.Set(float64(cat.Len()))
	log.Printf("Loaded %d cards into catalog (%d sets)", cat.Len(), len(cat.SetNames()))

	// Initialize services
	ocrClient := services.NewOCRClient()
	cardMatcher := matcher.New(cat)
	imageStorage := services.NewImageStorage()
	identifyService := services.NewIdentifyService(ocrClient, cardMatcher, imageStorage, db)

	// Marketplace pricing client
	marketAPIKey := os.Getenv("MARKET_API_KEY")
	marketBaseURL := os.Getenv("MARKET_API_URL")
	if marketBaseURL == "" {
		marketBaseURL = "https://api.cardmarketdata.example.com/v1"
	}
	marketDailyLimit := 100 // Default free tier limit
	if limitStr := os.Getenv("MARKET_DAILY_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			marketDailyLimit = limit
		}
	}
	marketClient := services.NewMarketClient(marketAPIKey, marketBaseURL, marketDailyLimit)

	quoteService, err := services.NewQuoteService(marketClient, db)
	if err != nil {
		log.Fatalf("Failed to initialize quote service: %v", err)
	}

	priceWorker := services.NewPriceWorker(quoteService, marketClient, db)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start price worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in price worker: %v - restarting in 30 seconds", r)
					}
				}()
				priceWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Price worker restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(identifyService, cat, ocrClient, priceWorker, quoteService, imageStorage)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the price worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
