package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/report"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CacheKeyPrefix prefixes every cached dashboard
const CacheKeyPrefix = "dashboard:"

const (
	highProbabilityThreshold = 70
	staleContactDays         = 30
	trendMonths              = 12
	topSectors               = 10
	recentLimit              = 5
	upcomingLimit            = 5
)

// Dashboard is the full payload of the dashboard page
type Dashboard struct {
	Clients        report.ClientMetrics   `json:"clients"`
	Visits         report.VisitMetrics    `json:"visits"`
	Pipeline       report.PipelineMetrics `json:"pipeline"`
	Contacts       report.ContactMetrics  `json:"contacts"`
	Charts         Charts                 `json:"charts"`
	RecentActivity Activity               `json:"recent_activity"`
	Alerts         []Alert                `json:"alerts"`
	UpcomingVisits []report.VisitSummary  `json:"upcoming_visits"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// Charts holds the chart series of the dashboard
type Charts struct {
	VisitsPerMonth      []report.MonthlyCount `json:"visits_per_month"`
	ClientsByStatus     []report.LabelCount   `json:"clients_by_status"`
	VisitsByType        []report.LabelCount   `json:"visits_by_type"`
	PipelineBySector    []report.SectorValue  `json:"pipeline_by_sector"`
	NewClientsTrend     []report.MonthlyCount `json:"new_clients_trend"`
	AverageSatisfaction float64               `json:"average_satisfaction"`
}

// Activity lists the latest visits and clients
type Activity struct {
	Visits  []report.VisitSummary  `json:"visits"`
	Clients []report.ClientSummary `json:"clients"`
}

// Alert is a condition that needs the user's attention
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Count    int64  `json:"count"`
}

// DashboardService builds the dashboard and caches it per role scope
type DashboardService struct {
	repo   report.DashboardRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService. A zero ttl disables caching.
func NewDashboardService(repo report.DashboardRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// CacheKey returns the cache key of the actor's dashboard. Managers share one
// entry; every seller has their own.
func CacheKey(actor identity.Actor) string {
	if actor.IsManager() {
		return CacheKeyPrefix + "manager"
	}
	return CacheKeyPrefix + "seller:" + actor.UserID.String()
}

// Get returns the dashboard of the actor, from cache when fresh
func (s *DashboardService) Get(ctx context.Context, actor identity.Actor) (*Dashboard, error) {
	key := CacheKey(actor)
	if s.ttl > 0 {
		var cached Dashboard
		ok, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			s.logger.Warn("Dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return &cached, nil
		}
	}

	d, err := s.build(ctx, actor)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := cache.SetJSON(ctx, s.cache, key, d, s.ttl); err != nil {
			s.logger.Warn("Dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return d, nil
}

// Invalidate drops every cached dashboard
func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, CacheKeyPrefix)
}

func (s *DashboardService) build(ctx context.Context, actor identity.Actor) (*Dashboard, error) {
	now := s.now()
	sellerID := scope(actor)
	d := &Dashboard{GeneratedAt: now}
	var err error

	if d.Clients, err = s.clientMetrics(ctx, now); err != nil {
		return nil, fmt.Errorf("client metrics: %w", err)
	}
	if d.Visits, err = s.visitMetrics(ctx, actor, now); err != nil {
		return nil, fmt.Errorf("visit metrics: %w", err)
	}
	if d.Pipeline, err = s.pipelineMetrics(ctx); err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", err)
	}
	if d.Contacts.Total, err = s.repo.CountContacts(ctx); err != nil {
		return nil, err
	}
	if d.Contacts.ClientsWithoutRecent, err = s.repo.CountClientsWithoutContactSince(ctx, now.AddDate(0, 0, -staleContactDays)); err != nil {
		return nil, err
	}
	if d.Charts, err = s.charts(ctx, actor, now); err != nil {
		return nil, fmt.Errorf("charts: %w", err)
	}
	if d.RecentActivity.Visits, err = s.repo.RecentVisits(ctx, sellerID, recentLimit); err != nil {
		return nil, err
	}
	if d.RecentActivity.Clients, err = s.repo.RecentClients(ctx, recentLimit); err != nil {
		return nil, err
	}
	if d.UpcomingVisits, err = s.repo.UpcomingVisits(ctx, sellerID, now, upcomingLimit); err != nil {
		return nil, err
	}
	d.Alerts = alerts(d)
	return d, nil
}

// scope restricts visit figures to the seller for vendedor users
func scope(actor identity.Actor) *uuid.UUID {
	if actor.IsManager() {
		return nil
	}
	id := actor.UserID
	return &id
}

func (s *DashboardService) clientMetrics(ctx context.Context, now time.Time) (report.ClientMetrics, error) {
	var m report.ClientMetrics
	var err error
	if m.Total, err = s.repo.CountClients(ctx); err != nil {
		return m, err
	}
	if m.Active, err = s.repo.CountClients(ctx, statusesWhere(client.Status.IsActive)...); err != nil {
		return m, err
	}
	if m.Potential, err = s.repo.CountClients(ctx, statusesWhere(client.Status.IsPotential)...); err != nil {
		return m, err
	}
	month := visit.MonthRange(now)
	if m.NewThisMonth, err = s.repo.CountClientsCreatedBetween(ctx, month.From, month.To); err != nil {
		return m, err
	}
	if m.NewLastMonth, err = s.repo.CountClientsCreatedBetween(ctx, month.From.AddDate(0, -1, 0), month.From); err != nil {
		return m, err
	}
	m.MonthChange = report.PercentChange(m.NewThisMonth, m.NewLastMonth)
	return m, nil
}

func statusesWhere(pred func(client.Status) bool) []client.Status {
	var out []client.Status
	for _, st := range client.AllStatuses() {
		if pred(st) {
			out = append(out, st)
		}
	}
	return out
}

func (s *DashboardService) visitMetrics(ctx context.Context, actor identity.Actor, now time.Time) (report.VisitMetrics, error) {
	var m report.VisitMetrics
	sellerID := scope(actor)
	month := visit.MonthRange(now)
	today := visit.DayRange(now)

	counts := []struct {
		dst    *int64
		filter report.VisitCountFilter
	}{
		{&m.ThisMonth, report.VisitCountFilter{SellerID: sellerID, From: &month.From, To: &month.To}},
		{&m.CompletedThisMonth, report.VisitCountFilter{SellerID: sellerID, From: &month.From, To: &month.To,
			Statuses: []visit.Status{visit.StatusDone}}},
		{&m.Scheduled, report.VisitCountFilter{SellerID: sellerID, Statuses: []visit.Status{visit.StatusScheduled}}},
		{&m.Today, report.VisitCountFilter{SellerID: sellerID, From: &today.From, To: &today.To}},
		{&m.Overdue, report.VisitCountFilter{SellerID: sellerID, To: &now, Statuses: visit.OpenStatuses()}},
	}
	for _, c := range counts {
		n, err := s.repo.CountVisits(ctx, c.filter)
		if err != nil {
			return m, err
		}
		*c.dst = n
	}
	m.CompletionRate = report.Rate(m.CompletedThisMonth, m.ThisMonth)
	return m, nil
}

func (s *DashboardService) pipelineMetrics(ctx context.Context) (report.PipelineMetrics, error) {
	totals, err := s.repo.PipelineTotals(ctx, highProbabilityThreshold)
	if err != nil {
		return report.PipelineMetrics{}, err
	}
	return report.PipelineMetrics{
		TotalValue:         totals.TotalValue.Round(2),
		AverageProbability: math.Round(totals.AverageProbability*10) / 10,
		HighProbability:    totals.HighProbability,
		WeightedValue:      totals.WeightedValue.Round(2),
	}, nil
}

func (s *DashboardService) charts(ctx context.Context, actor identity.Actor, now time.Time) (Charts, error) {
	var c Charts
	sellerID := scope(actor)
	trendStart := visit.MonthRange(now).From.AddDate(0, -(trendMonths - 1), 0)

	visitDates, err := s.repo.VisitDates(ctx, sellerID, trendStart)
	if err != nil {
		return c, err
	}
	c.VisitsPerMonth = report.BucketByMonth(visitDates, now, trendMonths)

	if c.ClientsByStatus, err = s.repo.ClientsByStatus(ctx); err != nil {
		return c, err
	}
	if c.VisitsByType, err = s.repo.VisitsByType(ctx, sellerID); err != nil {
		return c, err
	}
	for i := range c.VisitsByType {
		c.VisitsByType[i].Color = visit.Type(c.VisitsByType[i].Label).BadgeColor()
	}
	if c.PipelineBySector, err = s.repo.PipelineBySector(ctx, topSectors); err != nil {
		return c, err
	}

	clientDates, err := s.repo.ClientCreationDates(ctx, trendStart)
	if err != nil {
		return c, err
	}
	c.NewClientsTrend = report.BucketByMonth(clientDates, now, trendMonths)

	avg, err := s.repo.AverageSatisfaction(ctx, sellerID)
	if err != nil {
		return c, err
	}
	c.AverageSatisfaction = math.Round(avg*10) / 10
	return c, nil
}

func alerts(d *Dashboard) []Alert {
	out := make([]Alert, 0, 3)
	if d.Visits.Overdue > 0 {
		out = append(out, Alert{
			Type:     "overdue_visits",
			Severity: "danger",
			Message:  fmt.Sprintf("%d visitas vencidas sin completar", d.Visits.Overdue),
			Count:    d.Visits.Overdue,
		})
	}
	if d.Contacts.ClientsWithoutRecent > 0 {
		out = append(out, Alert{
			Type:     "clients_without_contact",
			Severity: "warning",
			Message:  fmt.Sprintf("%d clientes sin contacto en los últimos %d días", d.Contacts.ClientsWithoutRecent, staleContactDays),
			Count:    d.Contacts.ClientsWithoutRecent,
		})
	}
	if d.Visits.Today > 0 {
		out = append(out, Alert{
			Type:     "visits_today",
			Severity: "info",
			Message:  fmt.Sprintf("%d visitas programadas para hoy", d.Visits.Today),
			Count:    d.Visits.Today,
		})
	}
	return out
}
