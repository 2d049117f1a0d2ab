package dashboard

import (
	"context"

	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"go.uber.org/zap"
)

// InvalidationHandler drops cached dashboards whenever data they summarize changes
type InvalidationHandler struct {
	service *DashboardService
	logger  *zap.Logger
}

// NewInvalidationHandler creates a new InvalidationHandler
func NewInvalidationHandler(service *DashboardService, logger *zap.Logger) *InvalidationHandler {
	return &InvalidationHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvalidationHandler) EventTypes() []string {
	return []string{
		client.EventTypeClientCreated,
		client.EventTypeClientStatusChanged,
		client.EventTypeClientPipelineChanged,
		client.EventTypeClientDeleted,
		client.EventTypeContactCreated,
		client.EventTypeContactDeleted,
		client.EventTypePrimaryContactChanged,
		visit.EventTypeVisitScheduled,
		visit.EventTypeVisitReviewed,
		visit.EventTypeVisitCompleted,
		visit.EventTypeVisitCancelled,
		visit.EventTypeVisitRescheduled,
		visit.EventTypeVisitDeleted,
		visit.EventTypeVisitPlanningSaved,
		visit.EventTypeVisitPlanningSubmitted,
		visit.EventTypeVisitPlanningReviewed,
		visit.EventTypeVisitPlanningReverted,
		sales.EventTypeQuotationCreated,
		sales.EventTypeQuotationStatusChanged,
		sales.EventTypeOrderStatusChanged,
		catalog.EventTypeProductDeleted,
	}
}

// Handle invalidates the cache. Failures are logged and swallowed; entries expire on their own.
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.service.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate dashboard cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
	return nil
}
