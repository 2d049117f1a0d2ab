package visit

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/shopspring/decimal"
)

// VisitRequest carries the schedulable fields of a visit
type VisitRequest struct {
	ClientID          uuid.UUID `json:"client_id" binding:"required"`
	Title             string    `json:"title" binding:"required,min=1,max=255"`
	Description       string    `json:"description" binding:"max=5000"`
	Objectives        string    `json:"objectives" binding:"max=5000"`
	ScheduledAt       time.Time `json:"scheduled_at" binding:"required"`
	Shift             string    `json:"shift" binding:"omitempty,oneof=mañana tarde"`
	EstimatedDuration int       `json:"estimated_duration" binding:"omitempty,min=15,max=480"`
	Type              string    `json:"type" binding:"omitempty,oneof=comercial tecnica seguimiento postventa"`
	Priority          string    `json:"priority" binding:"omitempty,oneof=baja media alta urgente"`
}

func (r VisitRequest) toDetails() visit.Details {
	return visit.Details{
		ClientID:          r.ClientID,
		Title:             r.Title,
		Description:       r.Description,
		Objectives:        r.Objectives,
		ScheduledAt:       r.ScheduledAt,
		Shift:             visit.Shift(r.Shift),
		EstimatedDuration: r.EstimatedDuration,
		Type:              visit.Type(r.Type),
		Priority:          visit.Priority(r.Priority),
	}
}

// WeekRequest identifies an ISO week
type WeekRequest struct {
	Week int `json:"week" form:"week" binding:"required,min=1,max=53"`
	Year int `json:"year" form:"year" binding:"required,min=2024"`
}

// SavePlanningRequest adds draft visits to a weekly plan
type SavePlanningRequest struct {
	WeekRequest
	Visits []VisitRequest `json:"visits" binding:"required,min=1,dive"`
}

// ApprovePlanningRequest is the manager decision on a seller's weekly plan
type ApprovePlanningRequest struct {
	WeekRequest
	SellerID uuid.UUID `json:"seller_id" binding:"required"`
	Approve  bool      `json:"approve"`
	Comments string    `json:"comments" binding:"max=1000"`
}

// ReviewRequest is the manager decision on a single visit
type ReviewRequest struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments" binding:"max=1000"`
}

// CompleteVisitRequest records the outcome of a visit
type CompleteVisitRequest struct {
	Result               string     `json:"result" binding:"required,max=2000"`
	Notes                string     `json:"notes" binding:"max=1000"`
	CustomerSatisfaction *int       `json:"customer_satisfaction" binding:"omitempty,min=1,max=5"`
	ObjectivesMet        *bool      `json:"objectives_met"`
	RequiresFollowUp     bool       `json:"requires_follow_up"`
	NextContactAt        *time.Time `json:"next_contact_at"`
	ActualDuration       *int       `json:"actual_duration" binding:"omitempty,min=1,max=1440"`
}

func (r CompleteVisitRequest) toCompletion() visit.Completion {
	return visit.Completion{
		Result:               r.Result,
		Notes:                r.Notes,
		CustomerSatisfaction: r.CustomerSatisfaction,
		ObjectivesMet:        r.ObjectivesMet,
		RequiresFollowUp:     r.RequiresFollowUp,
		NextContactAt:        r.NextContactAt,
		ActualDuration:       r.ActualDuration,
	}
}

// RealizeVisitRequest quickly marks a visit as done
type RealizeVisitRequest struct {
	Result         string `json:"result" binding:"max=2000"`
	ActualDuration *int   `json:"actual_duration" binding:"omitempty,min=1,max=1440"`
}

// UnplannedVisitRequest reports a visit that happened without planning
type UnplannedVisitRequest struct {
	ClientID           uuid.UUID        `json:"client_id" binding:"required"`
	Title              string           `json:"title" binding:"required,max=255"`
	Description        string           `json:"description" binding:"max=5000"`
	Summary            string           `json:"summary" binding:"required,max=2000"`
	Agreements         string           `json:"agreements" binding:"max=2000"`
	NextSteps          string           `json:"next_steps" binding:"max=2000"`
	ProbabilityOfClose *int             `json:"probability_of_close" binding:"omitempty,min=0,max=100"`
	EstimatedValue     *decimal.Decimal `json:"estimated_value"`
}

// CancelVisitRequest carries the cancellation reason
type CancelVisitRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// RescheduleVisitRequest carries the new date of a visit
type RescheduleVisitRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// CommentsRequest carries seller or manager comments
type CommentsRequest struct {
	Comments string `json:"comments" binding:"max=1000"`
}

// VisitListFilter contains the query parameters of the visit list
type VisitListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	Type     string     `form:"type"`
	SellerID *uuid.UUID `form:"seller_id"`
	ClientID *uuid.UUID `form:"client_id"`
	Week     int        `form:"week" binding:"omitempty,min=1,max=53"`
	Year     int        `form:"year" binding:"omitempty,min=2024"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Scope    string     `form:"scope" binding:"omitempty,oneof=today this_week overdue upcoming"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VisitResponse represents a visit in API responses
type VisitResponse struct {
	ID                   uuid.UUID        `json:"id"`
	ClientID             uuid.UUID        `json:"client_id"`
	ClientName           string           `json:"client_name,omitempty"`
	SellerID             uuid.UUID        `json:"seller_id"`
	SellerName           string           `json:"seller_name,omitempty"`
	ManagerID            *uuid.UUID       `json:"manager_id,omitempty"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Objectives           string           `json:"objectives"`
	ScheduledAt          time.Time        `json:"scheduled_at"`
	Shift                string           `json:"shift"`
	EstimatedDuration    int              `json:"estimated_duration"`
	ActualDuration       *int             `json:"actual_duration,omitempty"`
	Duration             string           `json:"duration"`
	Type                 string           `json:"type"`
	TypeColor            string           `json:"type_color"`
	PlanningType         string           `json:"planning_type"`
	Priority             string           `json:"priority"`
	PriorityColor        string           `json:"priority_color"`
	Status               string           `json:"status"`
	StatusColor          string           `json:"status_color"`
	Week                 int              `json:"week"`
	Year                 int              `json:"year"`
	IsOverdue            bool             `json:"is_overdue"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	Result               string           `json:"result,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	Comments             string           `json:"comments,omitempty"`
	ManagerComments      string           `json:"manager_comments,omitempty"`
	CustomerSatisfaction *int             `json:"customer_satisfaction,omitempty"`
	ObjectivesMet        *bool            `json:"objectives_met,omitempty"`
	RequiresFollowUp     bool             `json:"requires_follow_up"`
	NextContactAt        *time.Time       `json:"next_contact_at,omitempty"`
	SubmittedAt          *time.Time       `json:"submitted_at,omitempty"`
	ApprovedAt           *time.Time       `json:"approved_at,omitempty"`
	ProbabilityOfClose   *int             `json:"probability_of_close,omitempty"`
	EstimatedValue       *decimal.Decimal `json:"estimated_value,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// VisitStats summarizes the visits visible to the user
type VisitStats struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
	Today     int64            `json:"today"`
	Planned   int64            `json:"planned"`
	Unplanned int64            `json:"unplanned"`
}

// ClientOption is a client entry for the planning selector
type ClientOption struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	BusinessName string    `json:"business_name"`
}

// PlanningData is the weekly planning view of a seller
type PlanningData struct {
	Week      int             `json:"week"`
	Year      int             `json:"year"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Submitted bool            `json:"submitted"`
	Visits    []VisitResponse `json:"visits"`
	Clients   []ClientOption  `json:"clients"`
}

// PlanningResult reports how many visits a planning action changed
type PlanningResult struct {
	Week     int `json:"week"`
	Year     int `json:"year"`
	Affected int `json:"affected"`
}

// ToVisitResponse converts a domain Visit to VisitResponse
func ToVisitResponse(v *visit.Visit, now time.Time) VisitResponse {
	return VisitResponse{
		ID:                   v.ID,
		ClientID:             v.ClientID,
		SellerID:             v.SellerID,
		ManagerID:            v.ManagerID,
		Title:                v.Title,
		Description:          v.Description,
		Objectives:           v.Objectives,
		ScheduledAt:          v.ScheduledAt,
		Shift:                string(v.Shift),
		EstimatedDuration:    v.EstimatedDuration,
		ActualDuration:       v.ActualDuration,
		Duration:             v.FormattedDuration(),
		Type:                 string(v.Type),
		TypeColor:            v.Type.BadgeColor(),
		PlanningType:         string(v.PlanningType),
		Priority:             string(v.Priority),
		PriorityColor:        v.Priority.BadgeColor(),
		Status:               v.Status.String(),
		StatusColor:          v.Status.BadgeColor(),
		Week:                 v.Week,
		Year:                 v.Year,
		IsOverdue:            v.IsOverdue(now),
		CompletedAt:          v.CompletedAt,
		Result:               v.Result,
		Notes:                v.Notes,
		Comments:             v.Comments,
		ManagerComments:      v.ManagerComments,
		CustomerSatisfaction: v.CustomerSatisfaction,
		ObjectivesMet:        v.ObjectivesMet,
		RequiresFollowUp:     v.RequiresFollowUp,
		NextContactAt:        v.NextContactAt,
		SubmittedAt:          v.SubmittedAt,
		ApprovedAt:           v.ApprovedAt,
		ProbabilityOfClose:   v.ProbabilityOfClose,
		EstimatedValue:       v.EstimatedValue,
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
}
