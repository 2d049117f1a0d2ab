package catalog

import (
	"context"
	"strings"
	"time"
)

// AllowedContentTypes is the whitelist of document content types accepted for
// upload. SVG is excluded because it can carry scripts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/zip": true,
}

func isAllowedContentType(contentType string) bool {
	return AllowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// ObjectStorageService defines the object storage operations used for
// product documents. It is implemented by infrastructure/storage.
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	DeleteObject(ctx context.Context, storageKey string) error

	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	UploadURLExpiry        time.Duration
	DownloadURLExpiry      time.Duration
	MaxDocumentsPerProduct int
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:        15 * time.Minute,
		DownloadURLExpiry:      time.Hour,
		MaxDocumentsPerProduct: 50,
	}
}
