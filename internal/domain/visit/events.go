package visit

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeVisit = "Visit"
	// AggregateTypePlanning identifies a seller's weekly plan; its aggregate ID is the seller ID
	AggregateTypePlanning = "VisitPlanning"
)

// Visit domain event types
const (
	EventTypeVisitScheduled         = "VisitScheduled"
	EventTypeVisitReviewed          = "VisitReviewed"
	EventTypeVisitCompleted         = "VisitCompleted"
	EventTypeVisitCancelled         = "VisitCancelled"
	EventTypeVisitRescheduled       = "VisitRescheduled"
	EventTypeVisitDeleted           = "VisitDeleted"
	EventTypeVisitPlanningSaved     = "VisitPlanningSaved"
	EventTypeVisitPlanningSubmitted = "VisitPlanningSubmitted"
	EventTypeVisitPlanningReviewed  = "VisitPlanningReviewed"
	EventTypeVisitPlanningReverted  = "VisitPlanningReverted"
)

// VisitScheduledEvent is published when a visit is submitted directly
type VisitScheduledEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID `json:"client_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewVisitScheduledEvent creates a new VisitScheduledEvent
func NewVisitScheduledEvent(v *Visit) *VisitScheduledEvent {
	return &VisitScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitScheduled, AggregateTypeVisit, v.ID),
		ClientID:        v.ClientID,
		SellerID:        v.SellerID,
		ScheduledAt:     v.ScheduledAt,
	}
}

// VisitReviewedEvent is published when a manager approves or rejects a visit
type VisitReviewedEvent struct {
	shared.BaseDomainEvent
	SellerID uuid.UUID `json:"seller_id"`
	Approved bool      `json:"approved"`
	Comments string    `json:"comments,omitempty"`
}

// NewVisitReviewedEvent creates a new VisitReviewedEvent
func NewVisitReviewedEvent(v *Visit, approved bool) *VisitReviewedEvent {
	return &VisitReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitReviewed, AggregateTypeVisit, v.ID),
		SellerID:        v.SellerID,
		Approved:        approved,
		Comments:        v.ManagerComments,
	}
}

// VisitCompletedEvent is published when a visit is carried out
type VisitCompletedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID `json:"client_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewVisitCompletedEvent creates a new VisitCompletedEvent
func NewVisitCompletedEvent(v *Visit) *VisitCompletedEvent {
	at := time.Now()
	if v.CompletedAt != nil {
		at = *v.CompletedAt
	}
	return &VisitCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitCompleted, AggregateTypeVisit, v.ID),
		ClientID:        v.ClientID,
		SellerID:        v.SellerID,
		CompletedAt:     at,
	}
}

// VisitCancelledEvent is published when a visit is cancelled by its seller or a manager
type VisitCancelledEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	OldStatus Status    `json:"old_status"`
	Reason    string    `json:"reason,omitempty"`
}

// NewVisitCancelledEvent creates a new VisitCancelledEvent
func NewVisitCancelledEvent(v *Visit, old Status, reason string) *VisitCancelledEvent {
	return &VisitCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitCancelled, AggregateTypeVisit, v.ID),
		ClientID:        v.ClientID,
		SellerID:        v.SellerID,
		OldStatus:       old,
		Reason:          reason,
	}
}

// VisitRescheduledEvent is published when the date of a visit moves
type VisitRescheduledEvent struct {
	shared.BaseDomainEvent
	SellerID    uuid.UUID `json:"seller_id"`
	Status      Status    `json:"status"`
	PreviousAt  time.Time `json:"previous_at"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewVisitRescheduledEvent creates a new VisitRescheduledEvent
func NewVisitRescheduledEvent(v *Visit, previous time.Time) *VisitRescheduledEvent {
	return &VisitRescheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitRescheduled, AggregateTypeVisit, v.ID),
		SellerID:        v.SellerID,
		Status:          v.Status,
		PreviousAt:      previous,
		ScheduledAt:     v.ScheduledAt,
	}
}

// VisitDeletedEvent is published after a visit is removed
type VisitDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	SellerID uuid.UUID `json:"seller_id"`
	Status   Status    `json:"status"`
}

// NewVisitDeletedEvent creates a new VisitDeletedEvent
func NewVisitDeletedEvent(v *Visit) *VisitDeletedEvent {
	return &VisitDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitDeleted, AggregateTypeVisit, v.ID),
		ClientID:        v.ClientID,
		SellerID:        v.SellerID,
		Status:          v.Status,
	}
}

// PlanningSavedEvent is published when a seller replaces the drafts of a week
type PlanningSavedEvent struct {
	shared.BaseDomainEvent
	SellerID   uuid.UUID `json:"seller_id"`
	Week       int       `json:"week"`
	Year       int       `json:"year"`
	VisitCount int       `json:"visit_count"`
}

// NewPlanningSavedEvent creates a new PlanningSavedEvent
func NewPlanningSavedEvent(sellerID uuid.UUID, week, year, count int) *PlanningSavedEvent {
	return &PlanningSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitPlanningSaved, AggregateTypePlanning, sellerID),
		SellerID:        sellerID,
		Week:            week,
		Year:            year,
		VisitCount:      count,
	}
}

// PlanningSubmittedEvent is published when a seller submits a weekly plan
type PlanningSubmittedEvent struct {
	shared.BaseDomainEvent
	SellerID   uuid.UUID `json:"seller_id"`
	SellerName string    `json:"seller_name"`
	Week       int       `json:"week"`
	Year       int       `json:"year"`
	VisitCount int       `json:"visit_count"`
}

// NewPlanningSubmittedEvent creates a new PlanningSubmittedEvent
func NewPlanningSubmittedEvent(sellerID uuid.UUID, sellerName string, week, year, count int) *PlanningSubmittedEvent {
	return &PlanningSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitPlanningSubmitted, AggregateTypePlanning, sellerID),
		SellerID:        sellerID,
		SellerName:      sellerName,
		Week:            week,
		Year:            year,
		VisitCount:      count,
	}
}

// PlanningReviewedEvent is published when a manager decides on a weekly plan
type PlanningReviewedEvent struct {
	shared.BaseDomainEvent
	SellerID   uuid.UUID `json:"seller_id"`
	ManagerID  uuid.UUID `json:"manager_id"`
	Week       int       `json:"week"`
	Year       int       `json:"year"`
	Approved   bool      `json:"approved"`
	VisitCount int       `json:"visit_count"`
	Comments   string    `json:"comments,omitempty"`
}

// NewPlanningReviewedEvent creates a new PlanningReviewedEvent
func NewPlanningReviewedEvent(sellerID, managerID uuid.UUID, week, year int, approved bool, count int, comments string) *PlanningReviewedEvent {
	return &PlanningReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitPlanningReviewed, AggregateTypePlanning, sellerID),
		SellerID:        sellerID,
		ManagerID:       managerID,
		Week:            week,
		Year:            year,
		Approved:        approved,
		VisitCount:      count,
		Comments:        comments,
	}
}

// PlanningRevertedEvent is published when a seller takes a submitted week back to draft
type PlanningRevertedEvent struct {
	shared.BaseDomainEvent
	SellerID   uuid.UUID `json:"seller_id"`
	Week       int       `json:"week"`
	Year       int       `json:"year"`
	VisitCount int       `json:"visit_count"`
}

// NewPlanningRevertedEvent creates a new PlanningRevertedEvent
func NewPlanningRevertedEvent(sellerID uuid.UUID, week, year, count int) *PlanningRevertedEvent {
	return &PlanningRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVisitPlanningReverted, AggregateTypePlanning, sellerID),
		SellerID:        sellerID,
		Week:            week,
		Year:            year,
		VisitCount:      count,
	}
}
