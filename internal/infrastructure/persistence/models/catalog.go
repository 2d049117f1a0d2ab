package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Code          string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string              `gorm:"type:varchar(255);not null"`
	Description   string              `gorm:"type:text"`
	BasePrice     decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0"`
	Unit          string              `gorm:"type:varchar(30);not null;default:'unidad'"`
	ChannelPrices []ChannelPriceModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Documents     []DocumentModel     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ChannelModel is the persistence model for sales channels
type ChannelModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the persistence model to a domain Channel.
func (m *ChannelModel) ToDomain() *catalog.Channel {
	return &catalog.Channel{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

// ChannelPriceModel is the price of a product in a channel
type ChannelPriceModel struct {
	ProductID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Channel   ChannelModel    `gorm:"foreignKey:ChannelID"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (ChannelPriceModel) TableName() string {
	return "channel_prices"
}

// DocumentModel is a file attached to a product
type DocumentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	StorageKey string    `gorm:"type:varchar(500);not null"`
	FileType   string    `gorm:"type:varchar(50)"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "product_documents"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	prices := make([]catalog.ChannelPrice, len(m.ChannelPrices))
	for i, cp := range m.ChannelPrices {
		prices[i] = catalog.ChannelPrice{ChannelID: cp.ChannelID, ChannelName: cp.Channel.Name, Price: cp.Price}
	}
	docs := make([]catalog.Document, len(m.Documents))
	for i, d := range m.Documents {
		docs[i] = catalog.Document{
			ID:         d.ID,
			ProductID:  d.ProductID,
			Name:       d.Name,
			StorageKey: d.StorageKey,
			FileType:   d.FileType,
			CreatedAt:  d.CreatedAt,
		}
	}
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		BasePrice:         m.BasePrice,
		Unit:              m.Unit,
		ChannelPrices:     prices,
		Documents:         docs,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		BasePrice:     p.BasePrice,
		Unit:          p.Unit,
		ChannelPrices: make([]ChannelPriceModel, len(p.ChannelPrices)),
		Documents:     make([]DocumentModel, len(p.Documents)),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	for i, cp := range p.ChannelPrices {
		m.ChannelPrices[i] = ChannelPriceModel{ProductID: p.ID, ChannelID: cp.ChannelID, Price: cp.Price}
	}
	for i, d := range p.Documents {
		m.Documents[i] = DocumentModel{
			ID:         d.ID,
			ProductID:  p.ID,
			Name:       d.Name,
			StorageKey: d.StorageKey,
			FileType:   d.FileType,
			CreatedAt:  d.CreatedAt,
		}
	}
	return m
}

// AllModels returns every persistence model, used by AutoMigrate in tests and seeding
func AllModels() []any {
	return []any{
		&UserModel{},
		&ClientModel{},
		&ContactModel{},
		&VisitModel{},
		&QuotationModel{},
		&QuotationItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ChannelModel{},
		&ProductModel{},
		&ChannelPriceModel{},
		&DocumentModel{},
	}
}
