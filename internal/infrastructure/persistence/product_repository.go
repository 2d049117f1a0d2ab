package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product with its channel prices and documents
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("ChannelPrices", "Documents").Create(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// Update updates a product and replaces its channel prices and documents
func (r *GormProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Omit("ChannelPrices", "Documents").Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := r.deleteChildren(tx, p.ID); err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// Delete deletes a product with its prices and documents
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a product by ID with its prices and documents
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withChildren(conn(ctx, r.db)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns products with pagination
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, int64, error) {
	query := conn(ctx, r.db).Model(&models.ProductModel{})
	query = searchAny(query, filter.Search, "name", "code", "description")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var productModels []models.ProductModel
	if err := r.withChildren(paginate(query, filter, productSort, "name")).
		Find(&productModels).Error; err != nil {
		return nil, 0, err
	}
	products := make([]*catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, total, nil
}

// ExistsByCode checks whether another product already uses the code
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.ProductModel{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormProductRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.Preload("ChannelPrices.Channel").
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *GormProductRepository) saveChildren(tx *gorm.DB, model *models.ProductModel) error {
	if len(model.ChannelPrices) > 0 {
		if err := tx.Omit("Channel").Create(&model.ChannelPrices).Error; err != nil {
			return err
		}
	}
	if len(model.Documents) > 0 {
		return tx.Create(&model.Documents).Error
	}
	return nil
}

func (r *GormProductRepository) deleteChildren(tx *gorm.DB, productID uuid.UUID) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ChannelPriceModel{}).Error; err != nil {
		return err
	}
	return tx.Where("product_id = ?", productID).Delete(&models.DocumentModel{}).Error
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// Create creates a new channel
func (r *GormChannelRepository) Create(ctx context.Context, c *catalog.Channel) error {
	return conn(ctx, r.db).Create(&models.ChannelModel{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}).Error
}

// FindByID finds a channel by ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	var model models.ChannelModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every channel ordered by name
func (r *GormChannelRepository) FindAll(ctx context.Context) ([]*catalog.Channel, error) {
	var channelModels []models.ChannelModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&channelModels).Error; err != nil {
		return nil, err
	}
	channels := make([]*catalog.Channel, len(channelModels))
	for i := range channelModels {
		channels[i] = channelModels[i].ToDomain()
	}
	return channels, nil
}

// Ensure GormChannelRepository implements ChannelRepository
var _ catalog.ChannelRepository = (*GormChannelRepository)(nil)
