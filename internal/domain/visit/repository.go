package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// VisitRepository defines the interface for visit persistence
type VisitRepository interface {
	// Create creates a new visit
	Create(ctx context.Context, visit *Visit) error

	// CreateBatch creates several visits at once
	CreateBatch(ctx context.Context, visits []*Visit) error

	// Update updates an existing visit
	Update(ctx context.Context, visit *Visit) error

	// Delete deletes a visit by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a visit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	// FindAll returns visits with pagination
	FindAll(ctx context.Context, filter VisitFilter) ([]*Visit, int64, error)

	// FindAllUnpaged returns every visit matching the filter
	FindAllUnpaged(ctx context.Context, filter VisitFilter) ([]*Visit, error)

	// FindByWeek returns the visits of a seller in an ISO week, optionally by status
	FindByWeek(ctx context.Context, sellerID uuid.UUID, week, year int, statuses ...Status) ([]*Visit, error)

	// FindByClient returns every visit of a client, most recent first
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Visit, error)

	// CountByStatus counts visits matching the filter per status
	CountByStatus(ctx context.Context, filter VisitFilter) (map[Status]int64, error)
}

// VisitFilter contains filter options for querying visits
type VisitFilter struct {
	shared.Filter
	SellerID     *uuid.UUID
	ClientID     *uuid.UUID
	Statuses     []Status
	Type         *Type
	PlanningType *PlanningType
	Week         int
	Year         int
	DateFrom     *time.Time
	DateTo       *time.Time
	Ascending    bool
}

// Scope is a named, time-relative selection of visits
type Scope string

const (
	ScopeToday    Scope = "today"
	ScopeThisWeek Scope = "this_week"
	ScopeOverdue  Scope = "overdue"
	ScopeUpcoming Scope = "upcoming"
)

// IsValid checks if the scope is known
func (s Scope) IsValid() bool {
	switch s {
	case ScopeToday, ScopeThisWeek, ScopeOverdue, ScopeUpcoming:
		return true
	}
	return false
}

// Apply narrows the filter to the scope relative to now
func (s Scope) Apply(f *VisitFilter, now time.Time) {
	switch s {
	case ScopeToday:
		r := DayRange(now)
		f.DateFrom, f.DateTo = &r.From, &r.To
	case ScopeThisWeek:
		w, y := ISOWeek(now)
		r := WeekRange(w, y, now.Location())
		f.DateFrom, f.DateTo = &r.From, &r.To
	case ScopeOverdue:
		to := now
		f.DateTo = &to
		f.Statuses = []Status{StatusDraft, StatusScheduled, StatusApproved}
	case ScopeUpcoming:
		from := now
		f.DateFrom = &from
		f.Statuses = []Status{StatusDraft, StatusScheduled, StatusApproved}
		f.Ascending = true
	}
}
