package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Create creates a new client
func (r *GormClientRepository) Create(ctx context.Context, c *client.Client) error {
	return conn(ctx, r.db).Create(models.ClientModelFromDomain(c)).Error
}

// Update updates an existing client
func (r *GormClientRepository) Update(ctx context.Context, c *client.Client) error {
	result := conn(ctx, r.db).Save(models.ClientModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a client and its contacts
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&models.ContactModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ClientModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds clients by IDs
func (r *GormClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*client.Client, error) {
	if len(ids) == 0 {
		return []*client.Client{}, nil
	}
	var clientModels []models.ClientModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&clientModels).Error; err != nil {
		return nil, err
	}
	return toClients(clientModels), nil
}

// FindByRUC finds a client by RUC
func (r *GormClientRepository) FindByRUC(ctx context.Context, ruc string) (*client.Client, error) {
	var model models.ClientModel
	if err := conn(ctx, r.db).Where("ruc = ?", ruc).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByRUC checks if a RUC is already registered, ignoring excludeID
func (r *GormClientRepository) ExistsByRUC(ctx context.Context, ruc string, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.ClientModel{}).Where("ruc = ?", ruc)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns clients with pagination
func (r *GormClientRepository) FindAll(ctx context.Context, filter client.ClientFilter) ([]*client.Client, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ClientModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clientModels []models.ClientModel
	if err := paginate(query, filter.Filter, clientSort, "created_at").Find(&clientModels).Error; err != nil {
		return nil, 0, err
	}
	return toClients(clientModels), total, nil
}

// FindAllUnpaged returns every client matching the filter, ordered by business name
func (r *GormClientRepository) FindAllUnpaged(ctx context.Context, filter client.ClientFilter) ([]*client.Client, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ClientModel{}), filter)
	dir := "ASC"
	if filter.OrderBy != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}

	var clientModels []models.ClientModel
	if err := query.Order(clientSort.orderBy(filter.OrderBy, dir, "business_name")).Find(&clientModels).Error; err != nil {
		return nil, err
	}
	return toClients(clientModels), nil
}

// ListOptions returns id and business name of every client ordered by name
func (r *GormClientRepository) ListOptions(ctx context.Context) ([]client.Summary, error) {
	var rows []struct {
		ID           uuid.UUID
		Code         string
		BusinessName string
	}
	if err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Select("id, code, business_name").
		Order("business_name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]client.Summary, len(rows))
	for i, row := range rows {
		out[i] = client.Summary{ID: row.ID, Code: row.Code, BusinessName: row.BusinessName}
	}
	return out, nil
}

// LastCode returns the highest client code, empty when there are none
func (r *GormClientRepository) LastCode(ctx context.Context) (string, error) {
	return lastCode(conn(ctx, r.db).Model(&models.ClientModel{}), client.CodePrefix)
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter client.ClientFilter) *gorm.DB {
	query = searchAny(query, filter.Search, "business_name", "code", "ruc", "sector")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Group.IsValid() {
		query = query.Where("status IN ?", filter.Group.Statuses())
	}
	return query
}

func toClients(clientModels []models.ClientModel) []*client.Client {
	clients := make([]*client.Client, len(clientModels))
	for i := range clientModels {
		clients[i] = clientModels[i].ToDomain()
	}
	return clients
}

// Ensure GormClientRepository implements ClientRepository
var _ client.ClientRepository = (*GormClientRepository)(nil)
