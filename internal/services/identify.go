package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/card-pricer/internal/matcher"
	"github.com/codyseavey/card-pricer/internal/metrics"
	"github.com/codyseavey/card-pricer/internal/models"
)

// IdentifyResult is the full response for one scanned image.
type IdentifyResult struct {
	ScanID          uint                   `json:"scan_id"`
	ImageFile       string                 `json:"image_file,omitempty"`
	RawText         string                 `json:"raw_text,omitempty"`
	ExtractedFields models.ExtractedFields `json:"extracted_fields"`
	// OCRConfidence is the sidecar's recognition confidence;
	// ExtractionConfidence scores how many card fields the parser
	// pulled out of the recognized text.
	OCRConfidence        float64                 `json:"ocr_confidence"`
	ExtractionConfidence float64                 `json:"extraction_confidence"`
	Candidates           []models.MatchCandidate `json:"candidates"`
	NoMatch              bool                    `json:"no_match"`
}

// IdentifyService runs the scan pipeline: image in, ranked catalog
// candidates out. OCR happens in the sidecar; extraction and matching
// happen here.
type IdentifyService struct {
	ocr     *OCRClient
	matcher *matcher.Matcher
	storage *ImageStorage
	db      *gorm.DB
}

func NewIdentifyService(ocr *OCRClient, m *matcher.Matcher, storage *ImageStorage, db *gorm.DB) *IdentifyService {
	return &IdentifyService{
		ocr:     ocr,
		matcher: m,
		storage: storage,
		db:      db,
	}
}

// IdentifyImage runs OCR on the image, parses the text, and matches
// against the catalog. The scan is always recorded, matched or not,
// so misses can be reviewed and the catalog improved.
func (s *IdentifyService) IdentifyImage(ctx context.Context, image []byte) (*IdentifyResult, error) {
	start := time.Now()

	filename, err := s.storage.SaveImage(image)
	if err != nil {
		log.Printf("Identify: failed to store scan image: %v", err)
		// Identification still proceeds; the image is only kept for review.
		filename = ""
	}

	ocrResult, err := s.ocr.ExtractText(ctx, image)
	if err != nil {
		metrics.IdentifyRequestsTotal.WithLabelValues("ocr_failed").Inc()
		return nil, fmt.Errorf("ocr: %w", err)
	}

	fields, extractConfidence := ParseCardText(ocrResult.Text)
	result := s.matchFields(fields)
	result.ImageFile = filename
	result.RawText = ocrResult.Text
	result.OCRConfidence = ocrResult.Confidence
	result.ExtractionConfidence = extractConfidence

	s.recordScan(result, filename)

	metrics.IdentifyDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// MatchFields matches caller-supplied fields directly, skipping OCR.
// Used by clients that run their own text extraction. Requests with no
// evidence at all are not recorded: there is nothing to review.
func (s *IdentifyService) MatchFields(fields models.ExtractedFields) *IdentifyResult {
	result := s.matchFields(fields)
	if !fields.Empty() {
		s.recordScan(result, "")
	}
	return result
}

func (s *IdentifyService) matchFields(fields models.ExtractedFields) *IdentifyResult {
	result := &IdentifyResult{
		ExtractedFields: fields,
	}

	if fields.Empty() {
		result.NoMatch = true
		metrics.IdentifyRequestsTotal.WithLabelValues("no_match").Inc()
		return result
	}

	candidates := s.matcher.MatchCard(fields)
	result.Candidates = candidates
	if len(candidates) == 0 {
		result.NoMatch = true
		metrics.IdentifyRequestsTotal.WithLabelValues("no_match").Inc()
		return result
	}

	metrics.IdentifyRequestsTotal.WithLabelValues("matched").Inc()
	metrics.MatchConfidence.Observe(candidates[0].Confidence)
	for _, reason := range candidates[0].Reasons {
		metrics.MatchReasonsTotal.WithLabelValues(reason).Inc()
	}
	return result
}

// recordScan persists the scan outcome. Failures are logged, not
// returned: history is best-effort and never blocks an identification.
func (s *IdentifyService) recordScan(result *IdentifyResult, filename string) {
	scan := models.Scan{
		ImagePath: filename,
		RawText:   result.RawText,
		NoMatch:   result.NoMatch,
	}
	if result.ExtractedFields.Name != nil {
		scan.ExtractedName = *result.ExtractedFields.Name
	}
	if result.ExtractedFields.HP != nil {
		scan.ExtractedHP = result.ExtractedFields.HP
	}
	if result.ExtractedFields.SetNumber != nil {
		scan.SetNumber = *result.ExtractedFields.SetNumber
	}
	if len(result.Candidates) > 0 {
		best := result.Candidates[0]
		scan.MatchedCardID = &best.Card.ID
		scan.Confidence = best.Confidence
	}

	if err := s.db.Create(&scan).Error; err != nil {
		log.Printf("Identify: failed to record scan: %v", err)
		return
	}
	result.ScanID = scan.ID
}
