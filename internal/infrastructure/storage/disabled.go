package storage

import (
	"context"
	"time"

	catalogapp "github.com/salescrm/backend/internal/application/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ catalogapp.ObjectStorageService = DisabledStorage{}

// ErrStorageDisabled is returned by DisabledStorage for every operation
var ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "document storage is not configured")

// DisabledStorage is used when storage.enabled is false. Document operations fail
// with ErrStorageDisabled while the rest of the catalog keeps working.
type DisabledStorage struct{}

// GenerateUploadURL always fails
func (DisabledStorage) GenerateUploadURL(context.Context, string, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

// GenerateDownloadURL always fails
func (DisabledStorage) GenerateDownloadURL(context.Context, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

// DeleteObject always fails
func (DisabledStorage) DeleteObject(context.Context, string) error {
	return ErrStorageDisabled
}

// ObjectExists always fails
func (DisabledStorage) ObjectExists(context.Context, string) (bool, error) {
	return false, ErrStorageDisabled
}

// New returns the S3 backend when storage is enabled and DisabledStorage otherwise
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (catalogapp.ObjectStorageService, error) {
	if !cfg.Enabled {
		logger.Info("Document storage disabled")
		return DisabledStorage{}, nil
	}
	s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		logger.Warn("Could not ensure storage bucket", zap.String("bucket", s.Bucket()), zap.Error(err))
	}
	logger.Info("Document storage ready", zap.String("bucket", s.Bucket()))
	return s, nil
}
