package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create creates a new contact
func (r *GormContactRepository) Create(ctx context.Context, c *client.Contact) error {
	return conn(ctx, r.db).Create(models.ContactModelFromDomain(c)).Error
}

// Update updates an existing contact
func (r *GormContactRepository) Update(ctx context.Context, c *client.Contact) error {
	result := conn(ctx, r.db).Save(models.ContactModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a contact by ID
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.ContactModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a contact by ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Contact, error) {
	var model models.ContactModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByClient returns every contact of a client, primary first and then by name
func (r *GormContactRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*client.Contact, error) {
	var contactModels []models.ContactModel
	if err := conn(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("is_primary DESC, first_name ASC, last_name ASC").
		Find(&contactModels).Error; err != nil {
		return nil, err
	}
	return toContacts(contactModels), nil
}

// FindPrimaryByClients returns the primary contact of each given client
func (r *GormContactRepository) FindPrimaryByClients(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]*client.Contact, error) {
	out := make(map[uuid.UUID]*client.Contact, len(clientIDs))
	if len(clientIDs) == 0 {
		return out, nil
	}
	var contactModels []models.ContactModel
	if err := conn(ctx, r.db).
		Where("client_id IN ? AND is_primary = ?", clientIDs, true).
		Find(&contactModels).Error; err != nil {
		return nil, err
	}
	for i := range contactModels {
		out[contactModels[i].ClientID] = contactModels[i].ToDomain()
	}
	return out, nil
}

// FindAll returns contacts with pagination
func (r *GormContactRepository) FindAll(ctx context.Context, filter client.ContactFilter) ([]*client.Contact, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ContactModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contactModels []models.ContactModel
	if err := paginate(query, filter.Filter, contactSort, "first_name").Find(&contactModels).Error; err != nil {
		return nil, 0, err
	}
	return toContacts(contactModels), total, nil
}

// FindAllUnpaged returns every contact matching the filter
func (r *GormContactRepository) FindAllUnpaged(ctx context.Context, filter client.ContactFilter) ([]*client.Contact, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ContactModel{}), filter)
	var contactModels []models.ContactModel
	if err := query.Order("first_name ASC, last_name ASC").Find(&contactModels).Error; err != nil {
		return nil, err
	}
	return toContacts(contactModels), nil
}

func (r *GormContactRepository) applyFilter(query *gorm.DB, filter client.ContactFilter) *gorm.DB {
	query = searchAny(query, filter.Search, "first_name", "last_name", "email", "title")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.PrimaryOnly {
		query = query.Where("is_primary = ?", true)
	}
	return query
}

func toContacts(contactModels []models.ContactModel) []*client.Contact {
	contacts := make([]*client.Contact, len(contactModels))
	for i := range contactModels {
		contacts[i] = contactModels[i].ToDomain()
	}
	return contacts
}

// Ensure GormContactRepository implements ContactRepository
var _ client.ContactRepository = (*GormContactRepository)(nil)
