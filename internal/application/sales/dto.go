package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ItemRequest is a line of a quotation or an order. When a product is given,
// an empty description and a missing unit price are taken from the product.
type ItemRequest struct {
	ProductID   *uuid.UUID       `json:"product_id"`
	Description string           `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// CreateQuotationRequest represents a request to create a draft quotation
type CreateQuotationRequest struct {
	ClientID  uuid.UUID     `json:"client_id" binding:"required"`
	VisitID   *uuid.UUID    `json:"visit_id"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Notes     string        `json:"notes" binding:"max=5000"`
	Items     []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateQuotationRequest replaces the editable fields of a draft quotation
type UpdateQuotationRequest struct {
	VisitID   *uuid.UUID    `json:"visit_id"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Notes     string        `json:"notes" binding:"max=5000"`
	Items     []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// RejectRequest carries an optional rejection or cancellation reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ApproveQuotationRequest carries the shipping address of the resulting order
type ApproveQuotationRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"max=500"`
}

// CreateOrderRequest represents a request to create an order directly
type CreateOrderRequest struct {
	ClientID           uuid.UUID     `json:"client_id" binding:"required"`
	OrderedAt          time.Time     `json:"ordered_at"`
	ExpectedDeliveryAt *time.Time    `json:"expected_delivery_at"`
	ShippingAddress    string        `json:"shipping_address" binding:"max=500"`
	Notes              string        `json:"notes" binding:"max=5000"`
	Items              []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest replaces the editable fields of a pending order
type UpdateOrderRequest struct {
	OrderedAt          time.Time     `json:"ordered_at"`
	ExpectedDeliveryAt *time.Time    `json:"expected_delivery_at"`
	ShippingAddress    string        `json:"shipping_address" binding:"max=500"`
	Notes              string        `json:"notes" binding:"max=5000"`
	Items              []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SalesListFilter contains the query parameters of quotation and order lists
type SalesListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	ClientID *uuid.UUID `form:"client_id"`
	SellerID *uuid.UUID `form:"seller_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents a line item in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	ClientID   uuid.UUID       `json:"client_id"`
	ClientName string          `json:"client_name,omitempty"`
	SellerID   uuid.UUID       `json:"seller_id"`
	VisitID    *uuid.UUID      `json:"visit_id,omitempty"`
	IssuedAt   time.Time       `json:"issued_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Items      []ItemResponse  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
	DecidedAt  *time.Time      `json:"decided_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ApprovalResult is the approved quotation with the order it produced
type ApprovalResult struct {
	Quotation QuotationResponse `json:"quotation"`
	Order     OrderResponse     `json:"order"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	ClientID           uuid.UUID       `json:"client_id"`
	ClientName         string          `json:"client_name,omitempty"`
	SellerID           uuid.UUID       `json:"seller_id"`
	QuotationID        *uuid.UUID      `json:"quotation_id,omitempty"`
	OrderedAt          time.Time       `json:"ordered_at"`
	ExpectedDeliveryAt *time.Time      `json:"expected_delivery_at,omitempty"`
	Items              []ItemResponse  `json:"items"`
	Total              decimal.Decimal `json:"total"`
	Status             string          `json:"status"`
	ShippingAddress    string          `json:"shipping_address"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// OrderStats counts orders per status
type OrderStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// ToItemResponses converts line items
func ToItemResponses(items []sales.LineItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
	}
	return out
}

// ToQuotationResponse converts a domain Quotation to QuotationResponse
func ToQuotationResponse(q *sales.Quotation) QuotationResponse {
	return QuotationResponse{
		ID:        q.ID,
		Code:      q.Code,
		ClientID:  q.ClientID,
		SellerID:  q.SellerID,
		VisitID:   q.VisitID,
		IssuedAt:  q.IssuedAt,
		ExpiresAt: q.ExpiresAt,
		Items:     ToItemResponses(q.Items),
		Total:     q.Total,
		Status:    q.Status.String(),
		Notes:     q.Notes,
		SentAt:    q.SentAt,
		DecidedAt: q.DecidedAt,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *sales.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		Code:               o.Code,
		ClientID:           o.ClientID,
		SellerID:           o.SellerID,
		QuotationID:        o.QuotationID,
		OrderedAt:          o.OrderedAt,
		ExpectedDeliveryAt: o.ExpectedDeliveryAt,
		Items:              ToItemResponses(o.Items),
		Total:              o.Total,
		Status:             o.Status.String(),
		ShippingAddress:    o.ShippingAddress,
		Notes:              o.Notes,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
