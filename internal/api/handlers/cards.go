package handlers

import (
	"bytes"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-pricer/internal/catalog"
	"github.com/codyseavey/card-pricer/internal/database"
	"github.com/codyseavey/card-pricer/internal/models"
	"github.com/codyseavey/card-pricer/internal/services"
)

type CardHandler struct {
	identify *services.IdentifyService
	catalog  *catalog.Catalog
	ocr      *services.OCRClient
}

func NewCardHandler(identify *services.IdentifyService, cat *catalog.Catalog, ocr *services.OCRClient) *CardHandler {
	return &CardHandler{
		identify: identify,
		catalog:  cat,
		ocr:      ocr,
	}
}

// SearchCards handles GET /api/cards/search?q=
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	matches := h.catalog.Search(query)
	cards := make([]models.Card, len(matches))
	for i, card := range matches {
		cards[i] = *card
	}

	c.JSON(http.StatusOK, models.CardSearchResult{
		Cards:      cards,
		TotalCount: len(cards),
		HasMore:    false,
	})
}

// GetCard handles GET /api/cards/:id
func (h *CardHandler) GetCard(c *gin.Context) {
	id := c.Param("id")

	db := database.GetDB()
	var card models.Card
	if err := db.First(&card, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ListSets handles GET /api/sets
func (h *CardHandler) ListSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sets": h.catalog.SetNames()})
}

// IdentifyCardFromImage handles POST /api/cards/identify-image: runs
// the full scan pipeline on an uploaded card photo.
func (h *CardHandler) IdentifyCardFromImage(c *gin.Context) {
	if !h.ocr.IsHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Card identification is not available",
			"message": "OCR service is not reachable",
		})
		return
	}

	imageBytes, ok := readImage(c)
	if !ok {
		return
	}

	result, err := h.identify.IdentifyImage(c.Request.Context(), imageBytes)
	if err != nil {
		log.Printf("Identification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Card identification failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// IdentifyCard handles POST /api/cards/identify: matches
// caller-supplied extracted fields without OCR. A request with no
// usable evidence gets a tagged no-match result, same as the image
// pipeline, not a validation error.
func (h *CardHandler) IdentifyCard(c *gin.Context) {
	var fields models.ExtractedFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.identify.MatchFields(fields))
}

// GetOCRStatus handles GET /api/cards/ocr-status
func (h *CardHandler) GetOCRStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured": h.ocr.IsConfigured(),
		"healthy":    h.ocr.IsHealthy(),
		"engine":     h.ocr.Engine(),
	})
}

// GetRecentScans handles GET /api/scans
func (h *CardHandler) GetRecentScans(c *gin.Context) {
	db := database.GetDB()
	var scans []models.Scan
	if err := db.Order("created_at DESC").Limit(50).Find(&scans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

// readImage pulls image bytes from either a multipart upload or a
// base64 JSON body.
func readImage(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return nil, false
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return nil, false
		}
		return buf.Bytes(), true
	}

	var req struct {
		Image string `json:"image"` // Base64 encoded image
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No image provided",
			"message": "Upload an image file or provide base64 encoded image in JSON body",
		})
		return nil, false
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return nil, false
	}
	return imageBytes, true
}
