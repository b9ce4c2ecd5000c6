package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-pricer/internal/database"
	"github.com/codyseavey/card-pricer/internal/models"
	"github.com/codyseavey/card-pricer/internal/services"
)

type PriceHandler struct {
	priceWorker  *services.PriceWorker
	quoteService *services.QuoteService
}

func NewPriceHandler(priceWorker *services.PriceWorker, quoteService *services.QuoteService) *PriceHandler {
	return &PriceHandler{
		priceWorker:  priceWorker,
		quoteService: quoteService,
	}
}

// GetCardPrices handles GET /api/cards/:id/prices: the per-grade
// price report for one card.
func (h *PriceHandler) GetCardPrices(c *gin.Context) {
	id := c.Param("id")

	db := database.GetDB()
	var card models.Card
	if err := db.First(&card, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	report, err := h.quoteService.GetReport(c.Request.Context(), card.Name, card.SetName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// RefreshCardPrice handles POST /api/cards/:id/refresh-price: queues
// a card for priority refresh by the background worker.
func (h *PriceHandler) RefreshCardPrice(c *gin.Context) {
	id := c.Param("id")

	db := database.GetDB()
	var card models.Card
	if err := db.First(&card, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	position := h.priceWorker.QueueRefresh(card.ID)
	c.JSON(http.StatusOK, gin.H{
		"card_id":        card.ID,
		"queue_position": position,
	})
}

// GetPriceStatus handles GET /api/prices/status: worker and quota
// state.
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.priceWorker.Status())
}
