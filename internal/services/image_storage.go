package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ImageStorage handles storing scanned card images for later review.
type ImageStorage struct {
	storageDir string
}

func NewImageStorage() *ImageStorage {
	storageDir := os.Getenv("SCANNED_IMAGES_DIR")
	if storageDir == "" {
		storageDir = "./data/scanned_images"
	}

	// Ensure the storage directory exists
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		// Log error but don't fail - will fail on actual writes
		fmt.Printf("Warning: could not create scanned images directory: %v\n", err)
	}

	return &ImageStorage{
		storageDir: storageDir,
	}
}

// SaveImage saves image data to disk and returns the filename.
func (s *ImageStorage) SaveImage(imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	// Generate a unique filename
	filename := uuid.New().String() + ".jpg"
	filePath := filepath.Join(s.storageDir, filename)

	// Write the file
	if err := os.WriteFile(filePath, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filename, nil
}

// StorageDir returns the storage directory path.
func (s *ImageStorage) StorageDir() string {
	return s.storageDir
}
