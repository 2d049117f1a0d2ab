package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVisitRepository implements VisitRepository using GORM
type GormVisitRepository struct {
	db *gorm.DB
}

// NewGormVisitRepository creates a new GormVisitRepository
func NewGormVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// Create creates a new visit
func (r *GormVisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	return conn(ctx, r.db).Create(models.VisitModelFromDomain(v)).Error
}

// CreateBatch creates several visits at once
func (r *GormVisitRepository) CreateBatch(ctx context.Context, visits []*visit.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	visitModels := make([]*models.VisitModel, len(visits))
	for i, v := range visits {
		visitModels[i] = models.VisitModelFromDomain(v)
	}
	return conn(ctx, r.db).CreateInBatches(visitModels, 100).Error
}

// Update updates an existing visit
func (r *GormVisitRepository) Update(ctx context.Context, v *visit.Visit) error {
	result := conn(ctx, r.db).Save(models.VisitModelFromDomain(v))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a visit by ID
func (r *GormVisitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.VisitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a visit by ID
func (r *GormVisitRepository) FindByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	var model models.VisitModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns visits with pagination
func (r *GormVisitRepository) FindAll(ctx context.Context, filter visit.VisitFilter) ([]*visit.Visit, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.VisitModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	f := filter.Filter
	if f.OrderBy == "" {
		f.OrderBy = "scheduled_at"
		if filter.Ascending {
			f.OrderDir = "asc"
		}
	}
	var visitModels []models.VisitModel
	if err := paginate(query, f, visitSort, "scheduled_at").Find(&visitModels).Error; err != nil {
		return nil, 0, err
	}
	return toVisits(visitModels), total, nil
}

// FindAllUnpaged returns every visit matching the filter ordered by date
func (r *GormVisitRepository) FindAllUnpaged(ctx context.Context, filter visit.VisitFilter) ([]*visit.Visit, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.VisitModel{}), filter)
	order := "scheduled_at DESC"
	if filter.Ascending {
		order = "scheduled_at ASC"
	}
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
	}
	var visitModels []models.VisitModel
	if err := query.Order(order).Find(&visitModels).Error; err != nil {
		return nil, err
	}
	return toVisits(visitModels), nil
}

// FindByWeek returns the visits of a seller in an ISO week, optionally by status
func (r *GormVisitRepository) FindByWeek(ctx context.Context, sellerID uuid.UUID, week, year int, statuses ...visit.Status) ([]*visit.Visit, error) {
	query := conn(ctx, r.db).
		Where("seller_id = ? AND week = ? AND year = ?", sellerID, week, year)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var visitModels []models.VisitModel
	if err := query.Order("scheduled_at ASC").Find(&visitModels).Error; err != nil {
		return nil, err
	}
	return toVisits(visitModels), nil
}

// FindByClient returns every visit of a client, most recent first
func (r *GormVisitRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*visit.Visit, error) {
	var visitModels []models.VisitModel
	if err := conn(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("scheduled_at DESC").
		Find(&visitModels).Error; err != nil {
		return nil, err
	}
	return toVisits(visitModels), nil
}

// CountByStatus counts visits matching the filter per status
func (r *GormVisitRepository) CountByStatus(ctx context.Context, filter visit.VisitFilter) (map[visit.Status]int64, error) {
	filter.Statuses = nil
	query := r.applyFilter(conn(ctx, r.db).Model(&models.VisitModel{}), filter)

	var rows []struct {
		Status visit.Status
		Total  int64
	}
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[visit.Status]int64, len(visit.AllStatuses()))
	for _, s := range visit.AllStatuses() {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *GormVisitRepository) applyFilter(query *gorm.DB, filter visit.VisitFilter) *gorm.DB {
	query = searchAny(query, filter.Search, "title", "description", "result")
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.PlanningType != nil {
		query = query.Where("planning_type = ?", *filter.PlanningType)
	}
	if filter.Week > 0 && filter.Year > 0 {
		query = query.Where("week = ? AND year = ?", filter.Week, filter.Year)
	}
	if filter.DateFrom != nil {
		query = query.Where("scheduled_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("scheduled_at < ?", *filter.DateTo)
	}
	return query
}

func toVisits(visitModels []models.VisitModel) []*visit.Visit {
	visits := make([]*visit.Visit, len(visitModels))
	for i := range visitModels {
		visits[i] = visitModels[i].ToDomain()
	}
	return visits
}

// Ensure GormVisitRepository implements VisitRepository
var _ visit.VisitRepository = (*GormVisitRepository)(nil)
