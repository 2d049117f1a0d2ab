package catalog

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Channel is a sales channel with its own price list
type Channel struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NewChannel creates a new sales channel
func NewChannel(name string) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Channel name cannot be empty")
	}
	return &Channel{ID: uuid.New(), Name: name, CreatedAt: time.Now()}, nil
}

// ChannelPrice is the price of a product in a channel
type ChannelPrice struct {
	ChannelID   uuid.UUID
	ChannelName string
	Price       decimal.Decimal
}

// Document is a file attached to a product, stored in object storage
type Document struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Name       string
	StorageKey string
	FileType   string
	CreatedAt  time.Time
}

// Product is the aggregate root for catalog items
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Code          string
	Description   string
	BasePrice     decimal.Decimal
	Unit          string
	ChannelPrices []ChannelPrice
	Documents     []Document
}

// NewProduct creates a new product
func NewProduct(code, name, description string, basePrice decimal.Decimal, unit string) (*Product, error) {
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.apply(code, name, description, basePrice, unit); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the editable fields
func (p *Product) Update(code, name, description string, basePrice decimal.Decimal, unit string) error {
	old := p.BasePrice
	if err := p.apply(code, name, description, basePrice, unit); err != nil {
		return err
	}
	if !old.Equal(p.BasePrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, nil, old, p.BasePrice))
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func (p *Product) apply(code, name, description string, basePrice decimal.Decimal, unit string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return shared.NewDomainError(shared.CodeValidation, "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError(shared.CodeValidation, "Product code cannot exceed 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if basePrice.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Base price cannot be negative")
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "unidad"
	}
	p.Code = code
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.BasePrice = basePrice.Round(2)
	p.Unit = unit
	return nil
}

// SetChannelPrice sets or replaces the price of the product in a channel
func (p *Product) SetChannelPrice(channel *Channel, price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Channel price cannot be negative")
	}
	price = price.Round(2)
	channelID := channel.ID
	for i := range p.ChannelPrices {
		if p.ChannelPrices[i].ChannelID == channel.ID {
			old := p.ChannelPrices[i].Price
			p.ChannelPrices[i].Price = price
			p.ChannelPrices[i].ChannelName = channel.Name
			p.UpdatedAt = time.Now()
			if !old.Equal(price) {
				p.AddDomainEvent(NewProductPriceChangedEvent(p, &channelID, old, price))
			}
			return nil
		}
	}
	p.ChannelPrices = append(p.ChannelPrices, ChannelPrice{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Price:       price,
	})
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, &channelID, p.BasePrice, price))
	return nil
}

// PriceFor returns the channel price, or the base price when the channel has none
func (p *Product) PriceFor(channelID uuid.UUID) decimal.Decimal {
	for _, cp := range p.ChannelPrices {
		if cp.ChannelID == channelID {
			return cp.Price
		}
	}
	return p.BasePrice
}

// StorageKeyFor builds the object key of a new product document
func (p *Product) StorageKeyFor(fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	return fmt.Sprintf("products/%s/%s-%s", p.ID, uuid.NewString()[:8], base)
}

// AttachDocument registers an uploaded file with the product
func (p *Product) AttachDocument(name, storageKey, fileType string) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Document name cannot be empty")
	}
	if !strings.HasPrefix(storageKey, fmt.Sprintf("products/%s/", p.ID)) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Storage key does not belong to this product")
	}
	doc := Document{
		ID:         uuid.New(),
		ProductID:  p.ID,
		Name:       name,
		StorageKey: storageKey,
		FileType:   strings.ToLower(strings.TrimSpace(fileType)),
		CreatedAt:  time.Now(),
	}
	p.Documents = append(p.Documents, doc)
	p.UpdatedAt = time.Now()
	return &p.Documents[len(p.Documents)-1], nil
}

// FindDocument returns a document of the product by ID
func (p *Product) FindDocument(id uuid.UUID) (*Document, error) {
	for i := range p.Documents {
		if p.Documents[i].ID == id {
			return &p.Documents[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// MarkDeleted records the deletion of the product
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// RemoveDocument detaches a document and returns it
func (p *Product) RemoveDocument(id uuid.UUID) (Document, error) {
	for i, d := range p.Documents {
		if d.ID == id {
			p.Documents = append(p.Documents[:i], p.Documents[i+1:]...)
			p.UpdatedAt = time.Now()
			return d, nil
		}
	}
	return Document{}, shared.ErrNotFound
}
