package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentService handles product documents kept in object storage. Files
// are uploaded by the browser through presigned URLs and registered afterwards.
type DocumentService struct {
	productRepo catalog.ProductRepository
	storage     ObjectStorageService
	config      DocumentServiceConfig
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	productRepo catalog.ProductRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		productRepo: productRepo,
		storage:     storage,
		config:      DefaultDocumentServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// UploadURL returns a presigned URL the client uses to PUT a new document
func (s *DocumentService) UploadURL(ctx context.Context, productID uuid.UUID, req UploadURLRequest) (*UploadURLResponse, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(p.Documents) >= s.config.MaxDocumentsPerProduct {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Maximum %d documents per product allowed", s.config.MaxDocumentsPerProduct))
	}
	if !isAllowedContentType(req.ContentType) {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Content type '%s' is not allowed", req.ContentType))
	}

	key := p.StorageKeyFor(req.FileName)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadURLResponse{UploadURL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

// Register attaches an uploaded object to the product once it exists in storage
func (s *DocumentService) Register(ctx context.Context, productID uuid.UUID, req RegisterDocumentRequest) (*DocumentResponse, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeValidation, "File not found in storage. Upload the file first.")
	}
	fileType := req.FileType
	if fileType == "" {
		fileType = strings.TrimPrefix(path.Ext(req.StorageKey), ".")
	}
	doc, err := p.AttachDocument(req.Name, req.StorageKey, fileType)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Product document registered",
		zap.String("product_id", productID.String()),
		zap.String("storage_key", doc.StorageKey))
	resp := ToDocumentResponse(*doc)
	return &resp, nil
}

// DownloadURL returns a presigned URL to read a product document
func (s *DocumentService) DownloadURL(ctx context.Context, productID, documentID uuid.UUID) (*DownloadURLResponse, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	doc, err := p.FindDocument(documentID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &DownloadURLResponse{URL: url, FileName: doc.Name, ExpiresAt: expiresAt}, nil
}

// Delete detaches a document and removes its object from storage. A failed
// object delete is logged and leaves an orphan object behind.
func (s *DocumentService) Delete(ctx context.Context, productID, documentID uuid.UUID) error {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	doc, err := p.RemoveDocument(documentID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return err
	}
	s.deleteObject(ctx, doc.StorageKey)
	return nil
}

func (s *DocumentService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored document",
			zap.String("storage_key", key),
			zap.Error(err))
	}
}

// ProductDeletedHandler removes the stored documents of deleted products
type ProductDeletedHandler struct {
	documents *DocumentService
	logger    *zap.Logger
}

// NewProductDeletedHandler creates a new ProductDeletedHandler
func NewProductDeletedHandler(documents *DocumentService, logger *zap.Logger) *ProductDeletedHandler {
	return &ProductDeletedHandler{documents: documents, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductDeletedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductDeleted}
}

// Handle deletes every object referenced by the event
func (h *ProductDeletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	deleted, ok := event.(*catalog.ProductDeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductDeleted, event.EventType())
	}
	for _, key := range deleted.StorageKeys {
		h.documents.deleteObject(ctx, key)
	}
	if len(deleted.StorageKeys) > 0 {
		h.logger.Info("Removed documents of deleted product",
			zap.String("code", deleted.Code),
			zap.Int("count", len(deleted.StorageKeys)))
	}
	return nil
}
