package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// LineItemModel holds the columns shared by quotation and order items
type LineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Position    int             `gorm:"not null;default:0"`
}

func (m LineItemModel) toDomain() sales.LineItem {
	return sales.LineItem{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Subtotal:    m.Subtotal,
	}
}

func lineItemModel(it sales.LineItem, pos int) LineItemModel {
	id := it.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return LineItemModel{
		ID:          id,
		ProductID:   it.ProductID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Subtotal:    it.Subtotal,
		Position:    pos,
	}
}

// QuotationModel is the persistence model for the Quotation domain entity.
type QuotationModel struct {
	AggregateModel
	Code      string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	ClientID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	SellerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	VisitID   *uuid.UUID            `gorm:"type:uuid"`
	IssuedAt  time.Time             `gorm:"not null"`
	ExpiresAt time.Time             `gorm:"not null;index"`
	Total     decimal.Decimal       `gorm:"type:decimal(14,2);not null;default:0"`
	Status    sales.QuotationStatus `gorm:"type:varchar(20);not null;index"`
	Notes     string                `gorm:"type:text"`
	SentAt    *time.Time
	DecidedAt *time.Time
	Items     []QuotationItemModel `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// QuotationItemModel is a line of a quotation
type QuotationItemModel struct {
	LineItemModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// ToDomain converts the persistence model to a domain Quotation entity.
func (m *QuotationModel) ToDomain() *sales.Quotation {
	items := make([]sales.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.toDomain()
	}
	return &sales.Quotation{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		ClientID:          m.ClientID,
		SellerID:          m.SellerID,
		VisitID:           m.VisitID,
		IssuedAt:          m.IssuedAt,
		ExpiresAt:         m.ExpiresAt,
		Items:             items,
		Total:             m.Total,
		Status:            m.Status,
		Notes:             m.Notes,
		SentAt:            m.SentAt,
		DecidedAt:         m.DecidedAt,
	}
}

// QuotationModelFromDomain creates a new persistence model from a domain Quotation entity.
func QuotationModelFromDomain(q *sales.Quotation) *QuotationModel {
	m := &QuotationModel{
		Code:      q.Code,
		ClientID:  q.ClientID,
		SellerID:  q.SellerID,
		VisitID:   q.VisitID,
		IssuedAt:  q.IssuedAt,
		ExpiresAt: q.ExpiresAt,
		Total:     q.Total,
		Status:    q.Status,
		Notes:     q.Notes,
		SentAt:    q.SentAt,
		DecidedAt: q.DecidedAt,
		Items:     make([]QuotationItemModel, len(q.Items)),
	}
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	for i, it := range q.Items {
		m.Items[i] = QuotationItemModel{LineItemModel: lineItemModel(it, i), QuotationID: q.ID}
	}
	return m
}

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	AggregateModel
	Code               string            `gorm:"type:varchar(20);not null;uniqueIndex"`
	ClientID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	SellerID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	QuotationID        *uuid.UUID        `gorm:"type:uuid;index"`
	OrderedAt          time.Time         `gorm:"not null"`
	ExpectedDeliveryAt *time.Time        `gorm:"index"`
	Total              decimal.Decimal   `gorm:"type:decimal(14,2);not null;default:0"`
	Status             sales.OrderStatus `gorm:"type:varchar(20);not null;index"`
	ShippingAddress    string            `gorm:"type:text"`
	Notes              string            `gorm:"type:text"`
	Items              []OrderItemModel  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a line of an order
type OrderItemModel struct {
	LineItemModel
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *sales.Order {
	items := make([]sales.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.toDomain()
	}
	return &sales.Order{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		Code:               m.Code,
		ClientID:           m.ClientID,
		SellerID:           m.SellerID,
		QuotationID:        m.QuotationID,
		OrderedAt:          m.OrderedAt,
		ExpectedDeliveryAt: m.ExpectedDeliveryAt,
		Items:              items,
		Total:              m.Total,
		Status:             m.Status,
		ShippingAddress:    m.ShippingAddress,
		Notes:              m.Notes,
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *sales.Order) *OrderModel {
	m := &OrderModel{
		Code:               o.Code,
		ClientID:           o.ClientID,
		SellerID:           o.SellerID,
		QuotationID:        o.QuotationID,
		OrderedAt:          o.OrderedAt,
		ExpectedDeliveryAt: o.ExpectedDeliveryAt,
		Total:              o.Total,
		Status:             o.Status,
		ShippingAddress:    o.ShippingAddress,
		Notes:              o.Notes,
		Items:              make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{LineItemModel: lineItemModel(it, i), OrderID: o.ID}
	}
	return m
}
