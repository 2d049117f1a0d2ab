package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/shopspring/decimal"
)

// ClientMetrics summarizes the client portfolio
type ClientMetrics struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Potential    int64 `json:"potential"`
	NewThisMonth int64 `json:"new_this_month"`
	NewLastMonth int64 `json:"new_last_month"`
	MonthChange  int   `json:"month_change"` // Percentage
}

// VisitMetrics summarizes visit activity
type VisitMetrics struct {
	ThisMonth          int64 `json:"this_month"`
	CompletedThisMonth int64 `json:"completed_this_month"`
	Scheduled          int64 `json:"scheduled"`
	Today              int64 `json:"today"`
	Overdue            int64 `json:"overdue"`
	CompletionRate     int   `json:"completion_rate"` // Percentage
}

// PipelineMetrics summarizes the commercial pipeline of the clients
type PipelineMetrics struct {
	TotalValue         decimal.Decimal `json:"total_value"`
	AverageProbability float64         `json:"average_probability"`
	HighProbability    int64           `json:"high_probability"`
	WeightedValue      decimal.Decimal `json:"weighted_value"`
}

// ContactMetrics summarizes contacts and follow-up coverage
type ContactMetrics struct {
	Total                int64 `json:"total"`
	ClientsWithoutRecent int64 `json:"clients_without_recent_contact"`
}

// MonthlyCount is a count bucketed by calendar month (YYYY-MM)
type MonthlyCount struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// LabelCount is a count grouped by a label such as a status or a type
type LabelCount struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
	Color string `json:"color,omitempty"`
}

// SectorValue is the pipeline value of a sector
type SectorValue struct {
	Sector  string          `json:"sector"`
	Clients int64           `json:"clients"`
	Total   decimal.Decimal `json:"total"`
}

// VisitSummary is a compact row used in activity feeds and agendas
type VisitSummary struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	ClientID    uuid.UUID    `json:"client_id"`
	ClientName  string       `json:"client_name"`
	SellerID    uuid.UUID    `json:"seller_id"`
	ScheduledAt time.Time    `json:"scheduled_at"`
	Status      visit.Status `json:"status"`
	Type        visit.Type   `json:"type"`
}

// ClientSummary is a compact client row used in activity feeds
type ClientSummary struct {
	ID           uuid.UUID     `json:"id"`
	Code         string        `json:"code"`
	BusinessName string        `json:"business_name"`
	Status       client.Status `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// VisitCountFilter narrows visit counts. Nil bounds are open.
type VisitCountFilter struct {
	SellerID *uuid.UUID
	Statuses []visit.Status
	From     *time.Time
	To       *time.Time
}

// PipelineTotals holds raw aggregates over clients
type PipelineTotals struct {
	TotalValue         decimal.Decimal
	WeightedValue      decimal.Decimal
	AverageProbability float64
	HighProbability    int64
}

// DashboardRepository defines the read queries behind the dashboard.
// A nil sellerID means every seller.
type DashboardRepository interface {
	CountClients(ctx context.Context, statuses ...client.Status) (int64, error)
	CountClientsCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountClientsWithoutContactSince(ctx context.Context, since time.Time) (int64, error)
	PipelineTotals(ctx context.Context, highProbability int) (PipelineTotals, error)
	PipelineBySector(ctx context.Context, limit int) ([]SectorValue, error)
	ClientsByStatus(ctx context.Context) ([]LabelCount, error)
	ClientCreationDates(ctx context.Context, from time.Time) ([]time.Time, error)
	RecentClients(ctx context.Context, limit int) ([]ClientSummary, error)

	CountContacts(ctx context.Context) (int64, error)

	CountVisits(ctx context.Context, filter VisitCountFilter) (int64, error)
	VisitDates(ctx context.Context, sellerID *uuid.UUID, from time.Time) ([]time.Time, error)
	VisitsByType(ctx context.Context, sellerID *uuid.UUID) ([]LabelCount, error)
	AverageSatisfaction(ctx context.Context, sellerID *uuid.UUID) (float64, error)
	RecentVisits(ctx context.Context, sellerID *uuid.UUID, limit int) ([]VisitSummary, error)
	UpcomingVisits(ctx context.Context, sellerID *uuid.UUID, now time.Time, limit int) ([]VisitSummary, error)
}

// MonthKey formats the calendar month bucket of t
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// BucketByMonth counts dates per month over the last n months ending at now,
// oldest first, including empty months
func BucketByMonth(dates []time.Time, now time.Time, n int) []MonthlyCount {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(n - 1), 0)
	out := make([]MonthlyCount, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := MonthKey(start.AddDate(0, i, 0))
		out[i] = MonthlyCount{Month: key}
		index[key] = i
	}
	for _, d := range dates {
		if i, ok := index[MonthKey(d.In(now.Location()))]; ok {
			out[i].Total++
		}
	}
	return out
}

// PercentChange returns the rounded month-over-month change. A previous value of zero
// yields 100 when there is current activity and 0 otherwise.
func PercentChange(current, previous int64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(decimal.NewFromInt(current - previous).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(previous)).
		Round(0).
		IntPart())
}

// Rate returns part/total as a rounded percentage, 0 when total is 0
func Rate(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(0).
		IntPart())
}
