package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create creates a new order with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *sales.Order) error {
	return conn(ctx, r.db).Create(models.OrderModelFromDomain(o)).Error
}

// Update updates an order and replaces its items
func (r *GormOrderRepository) Update(ctx context.Context, o *sales.Order) error {
	model := models.OrderModelFromDomain(o)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Omit("Items").Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			return tx.Create(&model.Items).Error
		}
		return nil
	})
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds an order by ID with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Order, error) {
	var model models.OrderModel
	if err := r.withItems(conn(ctx, r.db)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns orders with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, filter sales.OrderFilter) ([]*sales.Order, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.OrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.OrderModel
	if err := r.withItems(paginate(query, filter.Filter, orderSort, "ordered_at")).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	return toOrders(orderModels), total, nil
}

// FindByClient returns every order of a client, most recent first
func (r *GormOrderRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*sales.Order, error) {
	var orderModels []models.OrderModel
	if err := r.withItems(conn(ctx, r.db)).
		Where("client_id = ?", clientID).
		Order("ordered_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toOrders(orderModels), nil
}

// CountByClient counts the orders of a client
func (r *GormOrderRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.OrderModel{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

// CountByStatus counts orders matching the filter per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, filter sales.OrderFilter) (map[sales.OrderStatus]int64, error) {
	filter.Status = nil
	query := r.applyFilter(conn(ctx, r.db).Model(&models.OrderModel{}), filter)

	var rows []struct {
		Status sales.OrderStatus
		Total  int64
	}
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[sales.OrderStatus]int64)
	for _, s := range sales.AllOrderStatuses() {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// LastCode returns the highest code starting with prefix, empty when none
func (r *GormOrderRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	return lastCode(conn(ctx, r.db).Model(&models.OrderModel{}), prefix)
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter sales.OrderFilter) *gorm.DB {
	query = searchAny(query, filter.Search, "code", "shipping_address", "notes")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *GormOrderRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func toOrders(orderModels []models.OrderModel) []*sales.Order {
	out := make([]*sales.Order, len(orderModels))
	for i := range orderModels {
		out[i] = orderModels[i].ToDomain()
	}
	return out
}

// Ensure GormOrderRepository implements OrderRepository
var _ sales.OrderRepository = (*GormOrderRepository)(nil)
