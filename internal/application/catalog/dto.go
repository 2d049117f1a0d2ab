package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductRequest represents a request to create or update a product
type ProductRequest struct {
	Code        string          `json:"code" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Unit        string          `json:"unit" binding:"max=20"`
}

// ChannelPriceRequest sets the price of a product in a channel
type ChannelPriceRequest struct {
	ChannelID uuid.UUID       `json:"channel_id" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

// CreateChannelRequest represents a request to create a sales channel
type CreateChannelRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ProductListFilter contains the query parameters of the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UploadURLRequest asks for a presigned URL to upload a product document
type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// RegisterDocumentRequest attaches an uploaded object to a product
type RegisterDocumentRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	StorageKey string `json:"storage_key" binding:"required,max=500"`
	FileType   string `json:"file_type" binding:"max=50"`
}

// UploadURLResponse carries the presigned upload URL
type UploadURLResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DownloadURLResponse carries the presigned download URL
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChannelResponse represents a sales channel
type ChannelResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ChannelPriceResponse represents the price of a product in a channel
type ChannelPriceResponse struct {
	ChannelID   uuid.UUID       `json:"channel_id"`
	ChannelName string          `json:"channel_name"`
	Price       decimal.Decimal `json:"price"`
}

// DocumentResponse represents a product document
type DocumentResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	FileType   string    `json:"file_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID              `json:"id"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	BasePrice     decimal.Decimal        `json:"base_price"`
	Unit          string                 `json:"unit"`
	ChannelPrices []ChannelPriceResponse `json:"channel_prices"`
	Documents     []DocumentResponse     `json:"documents"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		BasePrice:     p.BasePrice,
		Unit:          p.Unit,
		ChannelPrices: make([]ChannelPriceResponse, len(p.ChannelPrices)),
		Documents:     make([]DocumentResponse, len(p.Documents)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for i, cp := range p.ChannelPrices {
		resp.ChannelPrices[i] = ChannelPriceResponse{ChannelID: cp.ChannelID, ChannelName: cp.ChannelName, Price: cp.Price}
	}
	for i, d := range p.Documents {
		resp.Documents[i] = ToDocumentResponse(d)
	}
	return resp
}

// ToDocumentResponse converts a product document
func ToDocumentResponse(d catalog.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID,
		Name:       d.Name,
		StorageKey: d.StorageKey,
		FileType:   d.FileType,
		CreatedAt:  d.CreatedAt,
	}
}
