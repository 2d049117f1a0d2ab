package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormQuotationRepository implements QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// Create creates a new quotation with its items
func (r *GormQuotationRepository) Create(ctx context.Context, q *sales.Quotation) error {
	return conn(ctx, r.db).Create(models.QuotationModelFromDomain(q)).Error
}

// Update updates a quotation and replaces its items
func (r *GormQuotationRepository) Update(ctx context.Context, q *sales.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Omit("Items").Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			return tx.Create(&model.Items).Error
		}
		return nil
	})
}

// Delete deletes a quotation and its items
func (r *GormQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", id).Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.QuotationModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a quotation by ID with its items
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quotation, error) {
	var model models.QuotationModel
	if err := r.withItems(conn(ctx, r.db)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns quotations with pagination
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter sales.QuotationFilter) ([]*sales.Quotation, int64, error) {
	query := conn(ctx, r.db).Model(&models.QuotationModel{})
	query = searchAny(query, filter.Search, "code", "notes")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotationModels []models.QuotationModel
	if err := r.withItems(paginate(query, filter.Filter, quotationSort, "issued_at")).
		Find(&quotationModels).Error; err != nil {
		return nil, 0, err
	}
	return toQuotations(quotationModels), total, nil
}

// FindByClient returns every quotation of a client, most recent first
func (r *GormQuotationRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*sales.Quotation, error) {
	var quotationModels []models.QuotationModel
	if err := r.withItems(conn(ctx, r.db)).
		Where("client_id = ?", clientID).
		Order("issued_at DESC").
		Find(&quotationModels).Error; err != nil {
		return nil, err
	}
	return toQuotations(quotationModels), nil
}

// FindSentExpiringBefore returns sent quotations whose validity ended before t
func (r *GormQuotationRepository) FindSentExpiringBefore(ctx context.Context, t time.Time) ([]*sales.Quotation, error) {
	var quotationModels []models.QuotationModel
	if err := r.withItems(conn(ctx, r.db)).
		Where("status = ? AND expires_at < ?", sales.QuotationStatusSent, t).
		Find(&quotationModels).Error; err != nil {
		return nil, err
	}
	return toQuotations(quotationModels), nil
}

// CountByClient counts the quotations of a client
func (r *GormQuotationRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.QuotationModel{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

// LastCode returns the highest code starting with prefix, empty when none
func (r *GormQuotationRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	return lastCode(conn(ctx, r.db).Model(&models.QuotationModel{}), prefix)
}

func (r *GormQuotationRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func toQuotations(quotationModels []models.QuotationModel) []*sales.Quotation {
	out := make([]*sales.Quotation, len(quotationModels))
	for i := range quotationModels {
		out[i] = quotationModels[i].ToDomain()
	}
	return out
}

// lastCode returns the code with the highest sequence number under prefix.
// Sequences are zero-padded but may outgrow the padding (COT-2026-10000), so
// longer codes sort first.
func lastCode(query *gorm.DB, prefix string) (string, error) {
	var codes []string
	if err := query.Where("code LIKE ?", prefix+"%").
		Order("LENGTH(code) DESC, code DESC").
		Limit(1).
		Pluck("code", &codes).Error; err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

// Ensure GormQuotationRepository implements QuotationRepository
var _ sales.QuotationRepository = (*GormQuotationRepository)(nil)
