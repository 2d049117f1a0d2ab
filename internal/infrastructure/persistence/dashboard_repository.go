package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/report"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDashboardRepository implements DashboardRepository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// CountClients counts clients, optionally restricted to some statuses
func (r *GormDashboardRepository) CountClients(ctx context.Context, statuses ...client.Status) (int64, error) {
	query := conn(ctx, r.db).Model(&models.ClientModel{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountClientsCreatedBetween counts clients created in [from, to)
func (r *GormDashboardRepository) CountClientsCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountClientsWithoutContactSince counts clients never contacted or last contacted before since
func (r *GormDashboardRepository) CountClientsWithoutContactSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Where("last_contact_at IS NULL OR last_contact_at < ?", since).
		Count(&count).Error
	return count, err
}

// PipelineTotals aggregates potential value and close probability over clients
func (r *GormDashboardRepository) PipelineTotals(ctx context.Context, highProbability int) (report.PipelineTotals, error) {
	var result struct {
		TotalValue         decimal.NullDecimal
		WeightedValue      decimal.NullDecimal
		AverageProbability sql.NullFloat64
		HighProbability    int64
	}
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Select(`
			COALESCE(SUM(potential_value), 0) AS total_value,
			COALESCE(SUM(potential_value * close_probability / 100.0), 0) AS weighted_value,
			AVG(close_probability) AS average_probability,
			COALESCE(SUM(CASE WHEN close_probability >= ? THEN 1 ELSE 0 END), 0) AS high_probability
		`, highProbability).
		Scan(&result).Error
	if err != nil {
		return report.PipelineTotals{}, err
	}
	return report.PipelineTotals{
		TotalValue:         result.TotalValue.Decimal.Round(2),
		WeightedValue:      result.WeightedValue.Decimal.Round(2),
		AverageProbability: result.AverageProbability.Float64,
		HighProbability:    result.HighProbability,
	}, nil
}

// PipelineBySector returns the sectors with the highest potential value
func (r *GormDashboardRepository) PipelineBySector(ctx context.Context, limit int) ([]report.SectorValue, error) {
	var rows []struct {
		Sector  string
		Clients int64
		Total   decimal.NullDecimal
	}
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Select("sector, COUNT(*) AS clients, COALESCE(SUM(potential_value), 0) AS total").
		Group("sector").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.SectorValue, len(rows))
	for i, row := range rows {
		out[i] = report.SectorValue{Sector: row.Sector, Clients: row.Clients, Total: row.Total.Decimal.Round(2)}
	}
	return out, nil
}

// ClientsByStatus counts clients per status, in status order
func (r *GormDashboardRepository) ClientsByStatus(ctx context.Context) ([]report.LabelCount, error) {
	var rows []struct {
		Status client.Status
		Total  int64
	}
	if err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[client.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	out := make([]report.LabelCount, 0, len(client.AllStatuses()))
	for _, s := range client.AllStatuses() {
		out = append(out, report.LabelCount{Label: string(s), Total: counts[s], Color: s.BadgeColor()})
	}
	return out, nil
}

// ClientCreationDates returns creation timestamps of clients created since from
func (r *GormDashboardRepository) ClientCreationDates(ctx context.Context, from time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Where("created_at >= ?", from).
		Pluck("created_at", &dates).Error
	return dates, err
}

// RecentClients returns the last created clients
func (r *GormDashboardRepository) RecentClients(ctx context.Context, limit int) ([]report.ClientSummary, error) {
	var rows []report.ClientSummary
	err := conn(ctx, r.db).Model(&models.ClientModel{}).
		Select("id, code, business_name, status, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountContacts counts every contact
func (r *GormDashboardRepository) CountContacts(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ContactModel{}).Count(&count).Error
	return count, err
}

// CountVisits counts visits matching the filter
func (r *GormDashboardRepository) CountVisits(ctx context.Context, filter report.VisitCountFilter) (int64, error) {
	query := r.visitScope(conn(ctx, r.db).Model(&models.VisitModel{}), filter.SellerID)
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at < ?", *filter.To)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// VisitDates returns the scheduled dates of visits since from
func (r *GormDashboardRepository) VisitDates(ctx context.Context, sellerID *uuid.UUID, from time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.visitScope(conn(ctx, r.db).Model(&models.VisitModel{}), sellerID).
		Where("scheduled_at >= ?", from).
		Pluck("scheduled_at", &dates).Error
	return dates, err
}

// VisitsByType counts visits per type
func (r *GormDashboardRepository) VisitsByType(ctx context.Context, sellerID *uuid.UUID) ([]report.LabelCount, error) {
	var rows []report.LabelCount
	err := r.visitScope(conn(ctx, r.db).Model(&models.VisitModel{}), sellerID).
		Select("type AS label, COUNT(*) AS total").
		Group("type").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// AverageSatisfaction averages the satisfaction of rated visits, 0 when none
func (r *GormDashboardRepository) AverageSatisfaction(ctx context.Context, sellerID *uuid.UUID) (float64, error) {
	var result struct {
		Average sql.NullFloat64
	}
	err := r.visitScope(conn(ctx, r.db).Model(&models.VisitModel{}), sellerID).
		Where("customer_satisfaction IS NOT NULL").
		Select("AVG(customer_satisfaction) AS average").
		Scan(&result).Error
	return result.Average.Float64, err
}

// RecentVisits returns the last scheduled visits with client names
func (r *GormDashboardRepository) RecentVisits(ctx context.Context, sellerID *uuid.UUID, limit int) ([]report.VisitSummary, error) {
	var rows []report.VisitSummary
	err := r.visitRows(ctx, sellerID).
		Order("v.scheduled_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UpcomingVisits returns the next open visits from now on
func (r *GormDashboardRepository) UpcomingVisits(ctx context.Context, sellerID *uuid.UUID, now time.Time, limit int) ([]report.VisitSummary, error) {
	var rows []report.VisitSummary
	err := r.visitRows(ctx, sellerID).
		Where("v.scheduled_at >= ? AND v.status IN ?", now, visit.OpenStatuses()).
		Order("v.scheduled_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) visitRows(ctx context.Context, sellerID *uuid.UUID) *gorm.DB {
	query := conn(ctx, r.db).Table("visits v").
		Select(`v.id, v.title, v.client_id, COALESCE(c.business_name, '') AS client_name,
			v.seller_id, v.scheduled_at, v.status, v.type`).
		Joins("LEFT JOIN clients c ON c.id = v.client_id")
	if sellerID != nil {
		query = query.Where("v.seller_id = ?", *sellerID)
	}
	return query
}

func (r *GormDashboardRepository) visitScope(query *gorm.DB, sellerID *uuid.UUID) *gorm.DB {
	if sellerID != nil {
		return query.Where("seller_id = ?", *sellerID)
	}
	return query
}

// Ensure GormDashboardRepository implements DashboardRepository
var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
