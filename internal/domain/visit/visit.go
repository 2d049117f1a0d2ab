package visit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	DefaultDuration = 60
	MinDuration     = 15
	MaxDuration     = 480

	MaxResultLength   = 2000
	MaxNotesLength    = 1000
	MaxCommentsLength = 1000
)

// Visit is the aggregate root for a sales visit to a client
type Visit struct {
	shared.BaseAggregateRoot
	ClientID             uuid.UUID
	SellerID             uuid.UUID
	ManagerID            *uuid.UUID
	Title                string
	Description          string
	Objectives           string
	ScheduledAt          time.Time
	Shift                Shift
	EstimatedDuration    int
	ActualDuration       *int
	Type                 Type
	PlanningType         PlanningType
	Priority             Priority
	Status               Status
	Week                 int
	Year                 int
	CompletedAt          *time.Time
	Result               string
	Notes                string
	Comments             string
	ManagerComments      string
	CustomerSatisfaction *int
	ObjectivesMet        *bool
	RequiresFollowUp     bool
	NextContactAt        *time.Time
	SubmittedAt          *time.Time
	ApprovedAt           *time.Time
	ProbabilityOfClose   *int
	EstimatedValue       *decimal.Decimal
}

// Details carries the schedulable fields of a visit
type Details struct {
	ClientID          uuid.UUID
	Title             string
	Description       string
	Objectives        string
	ScheduledAt       time.Time
	Shift             Shift
	EstimatedDuration int
	Type              Type
	Priority          Priority
}

func (d *Details) normalize() error {
	if d.ClientID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Client is required")
	}
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return shared.NewDomainError(shared.CodeValidation, "Title cannot be empty")
	}
	if len(d.Title) > 255 {
		return shared.NewDomainError(shared.CodeValidation, "Title cannot exceed 255 characters")
	}
	if d.ScheduledAt.IsZero() {
		return shared.NewDomainError(shared.CodeValidation, "Scheduled date is required")
	}
	if d.EstimatedDuration == 0 {
		d.EstimatedDuration = DefaultDuration
	}
	if d.EstimatedDuration < MinDuration || d.EstimatedDuration > MaxDuration {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Estimated duration must be between %d and %d minutes", MinDuration, MaxDuration))
	}
	if d.Type == "" {
		d.Type = TypeCommercial
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid visit type: %s", d.Type))
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid priority: %s", d.Priority))
	}
	if d.Shift == "" {
		d.Shift = ShiftFor(d.ScheduledAt)
	}
	if !d.Shift.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid shift: %s", d.Shift))
	}
	return nil
}

func newVisit(sellerID uuid.UUID, d Details, status Status, planning PlanningType) (*Visit, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Seller is required")
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	v := &Visit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		Status:            status,
		PlanningType:      planning,
	}
	v.applyDetails(d)
	v.SetCreatedBy(sellerID)
	return v, nil
}

// NewScheduledVisit creates a visit submitted directly for approval.
// The scheduled day cannot be in the past.
func NewScheduledVisit(sellerID uuid.UUID, d Details, now time.Time) (*Visit, error) {
	if StartOfDay(d.ScheduledAt).Before(StartOfDay(now)) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Scheduled date cannot be in the past")
	}
	v, err := newVisit(sellerID, d, StatusScheduled, PlanningPlanned)
	if err != nil {
		return nil, err
	}
	v.SubmittedAt = &now
	v.AddDomainEvent(NewVisitScheduledEvent(v))
	return v, nil
}

// NewDraftVisit creates a draft visit inside a weekly plan. The scheduled date
// must fall inside the ISO week being planned.
func NewDraftVisit(sellerID uuid.UUID, d Details, week, year int) (*Visit, error) {
	if err := ValidateWeek(week, year); err != nil {
		return nil, err
	}
	w, y := ISOWeek(d.ScheduledAt)
	if w != week || y != year {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Scheduled date %s is outside week %d of %d", d.ScheduledAt.Format("2006-01-02"), week, year))
	}
	return newVisit(sellerID, d, StatusDraft, PlanningPlanned)
}

// UnplannedReport describes a visit that happened without planning
type UnplannedReport struct {
	ClientID           uuid.UUID
	Title              string
	Description        string
	Summary            string
	Agreements         string
	NextSteps          string
	ProbabilityOfClose *int
	EstimatedValue     *decimal.Decimal
}

// NewUnplannedVisit records a visit already carried out without planning
func NewUnplannedVisit(sellerID uuid.UUID, r UnplannedReport, now time.Time) (*Visit, error) {
	summary := strings.TrimSpace(r.Summary)
	if summary == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Visit summary is required")
	}
	if len(summary) > MaxResultLength {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Visit summary cannot exceed %d characters", MaxResultLength))
	}
	if r.ProbabilityOfClose != nil && (*r.ProbabilityOfClose < 0 || *r.ProbabilityOfClose > 100) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Probability of close must be between 0 and 100")
	}
	if r.EstimatedValue != nil && r.EstimatedValue.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Estimated value cannot be negative")
	}

	v, err := newVisit(sellerID, Details{
		ClientID:    r.ClientID,
		Title:       r.Title,
		Description: r.Description,
		ScheduledAt: now,
		Type:        TypeFollowUp,
	}, StatusDone, PlanningUnplanned)
	if err != nil {
		return nil, err
	}

	var notes []string
	if a := strings.TrimSpace(r.Agreements); a != "" {
		notes = append(notes, "Acuerdos: "+a)
	}
	if n := strings.TrimSpace(r.NextSteps); n != "" {
		notes = append(notes, "Próximos pasos: "+n)
	}
	v.Result = summary
	v.Notes = strings.Join(notes, "\n\n")
	v.CompletedAt = &now
	v.ProbabilityOfClose = r.ProbabilityOfClose
	v.EstimatedValue = r.EstimatedValue

	v.AddDomainEvent(NewVisitCompletedEvent(v))
	return v, nil
}

func (v *Visit) applyDetails(d Details) {
	v.ClientID = d.ClientID
	v.Title = d.Title
	v.Description = strings.TrimSpace(d.Description)
	v.Objectives = strings.TrimSpace(d.Objectives)
	v.EstimatedDuration = d.EstimatedDuration
	v.Type = d.Type
	v.Priority = d.Priority
	v.Shift = d.Shift
	v.setSchedule(d.ScheduledAt)
}

// setSchedule keeps Week and Year in sync with ScheduledAt
func (v *Visit) setSchedule(at time.Time) {
	v.ScheduledAt = at
	v.Week, v.Year = ISOWeek(at)
}

func (v *Visit) transition(target Status, action string) error {
	if !v.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot %s visit in %s status", action, v.Status))
	}
	v.Status = target
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// IsOwnedBy reports whether the visit belongs to the seller
func (v *Visit) IsOwnedBy(userID uuid.UUID) bool {
	return v.SellerID == userID
}

// UpdateDetails edits a visit that is not finished. Moving an approved visit
// to another date sends it back for approval.
func (v *Visit) UpdateDetails(d Details) error {
	if v.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot edit visit in %s status", v.Status))
	}
	if err := d.normalize(); err != nil {
		return err
	}
	previous := v.ScheduledAt
	dateChanged := !d.ScheduledAt.Equal(previous)
	if dateChanged && v.Status == StatusApproved {
		if err := v.transition(StatusScheduled, "reschedule"); err != nil {
			return err
		}
		now := time.Now()
		v.SubmittedAt = &now
		v.ApprovedAt = nil
	}
	v.applyDetails(d)
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	if dateChanged {
		v.AddDomainEvent(NewVisitRescheduledEvent(v, previous))
	}
	return nil
}

// Submit sends a draft visit for manager approval
func (v *Visit) Submit(now time.Time) error {
	if err := v.transition(StatusScheduled, "submit"); err != nil {
		return err
	}
	v.SubmittedAt = &now
	return nil
}

// RevertToDraft takes a submitted visit back into the weekly plan
func (v *Visit) RevertToDraft() error {
	if v.Status != StatusScheduled {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot revert visit in %s status", v.Status))
	}
	if err := v.transition(StatusDraft, "revert"); err != nil {
		return err
	}
	v.SubmittedAt = nil
	return nil
}

// Approve accepts a submitted visit
func (v *Visit) Approve(managerID uuid.UUID, comments string, now time.Time) error {
	if v.Status != StatusScheduled {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot approve visit in %s status", v.Status))
	}
	if err := validateComments(comments); err != nil {
		return err
	}
	if err := v.transition(StatusApproved, "approve"); err != nil {
		return err
	}
	v.ManagerID = &managerID
	v.ApprovedAt = &now
	if c := strings.TrimSpace(comments); c != "" {
		v.ManagerComments = c
	}
	v.AddDomainEvent(NewVisitReviewedEvent(v, true))
	return nil
}

// Reject refuses a submitted visit
func (v *Visit) Reject(managerID uuid.UUID, comments string) error {
	if v.Status != StatusScheduled {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot reject visit in %s status", v.Status))
	}
	if err := validateComments(comments); err != nil {
		return err
	}
	if err := v.transition(StatusCancelled, "reject"); err != nil {
		return err
	}
	v.ManagerID = &managerID
	if c := strings.TrimSpace(comments); c != "" {
		v.ManagerComments = c
	}
	v.AddDomainEvent(NewVisitReviewedEvent(v, false))
	return nil
}

// Completion holds the outcome of a visit
type Completion struct {
	Result               string
	Notes                string
	CustomerSatisfaction *int
	ObjectivesMet        *bool
	RequiresFollowUp     bool
	NextContactAt        *time.Time
	ActualDuration       *int
}

// Validate checks the completion against the current day
func (c Completion) Validate(now time.Time, requireResult bool) error {
	result := strings.TrimSpace(c.Result)
	if requireResult && result == "" {
		return shared.NewDomainError(shared.CodeValidation, "Result is required")
	}
	if len(result) > MaxResultLength {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Result cannot exceed %d characters", MaxResultLength))
	}
	if len(c.Notes) > MaxNotesLength {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Notes cannot exceed %d characters", MaxNotesLength))
	}
	if c.CustomerSatisfaction != nil && (*c.CustomerSatisfaction < 1 || *c.CustomerSatisfaction > 5) {
		return shared.NewDomainError(shared.CodeValidation, "Customer satisfaction must be between 1 and 5")
	}
	if c.NextContactAt != nil && !StartOfDay(*c.NextContactAt).After(StartOfDay(now)) {
		return shared.NewDomainError(shared.CodeValidation, "Next contact date must be after today")
	}
	if c.ActualDuration != nil && (*c.ActualDuration < 1 || *c.ActualDuration > 24*60) {
		return shared.NewDomainError(shared.CodeValidation, "Actual duration must be between 1 and 1440 minutes")
	}
	return nil
}

// Complete records the outcome of an approved visit
func (v *Visit) Complete(c Completion, now time.Time) error {
	return v.complete(c, now, true)
}

// Realize marks an approved visit as done with an optional result
func (v *Visit) Realize(result string, actualDuration *int, now time.Time) error {
	return v.complete(Completion{Result: result, ActualDuration: actualDuration}, now, false)
}

func (v *Visit) complete(c Completion, now time.Time, requireResult bool) error {
	if v.Status != StatusApproved {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot complete visit in %s status", v.Status))
	}
	if err := c.Validate(now, requireResult); err != nil {
		return err
	}
	if err := v.transition(StatusDone, "complete"); err != nil {
		return err
	}
	v.CompletedAt = &now
	v.Result = strings.TrimSpace(c.Result)
	if n := strings.TrimSpace(c.Notes); n != "" {
		v.Notes = n
	}
	v.CustomerSatisfaction = c.CustomerSatisfaction
	v.ObjectivesMet = c.ObjectivesMet
	v.RequiresFollowUp = c.RequiresFollowUp
	v.NextContactAt = c.NextContactAt
	v.ActualDuration = c.ActualDuration

	v.AddDomainEvent(NewVisitCompletedEvent(v))
	return nil
}

// Cancel cancels an open visit and records the reason in the notes
func (v *Visit) Cancel(reason string) error {
	old := v.Status
	if err := v.transition(StatusCancelled, "cancel"); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	v.AddDomainEvent(NewVisitCancelledEvent(v, old, reason))
	line := "Motivo de cancelación: " + reason
	if v.Notes != "" {
		v.Notes = v.Notes + "\n\n" + line
	} else {
		v.Notes = line
	}
	return nil
}

// Reschedule moves a visit to a new date. Approved and submitted visits go
// back to programada and need a new approval.
func (v *Visit) Reschedule(at time.Time, now time.Time) error {
	if at.IsZero() {
		return shared.NewDomainError(shared.CodeValidation, "New date is required")
	}
	if StartOfDay(at).Before(StartOfDay(now)) {
		return shared.NewDomainError(shared.CodeValidation, "New date cannot be in the past")
	}
	switch v.Status {
	case StatusApproved:
		if err := v.transition(StatusScheduled, "reschedule"); err != nil {
			return err
		}
		v.ApprovedAt = nil
		v.SubmittedAt = &now
	case StatusDraft, StatusScheduled:
	default:
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot reschedule visit in %s status", v.Status))
	}
	previous := v.ScheduledAt
	v.setSchedule(at)
	v.Shift = ShiftFor(at)
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	v.AddDomainEvent(NewVisitRescheduledEvent(v, previous))
	return nil
}

// SetSellerComments stores the comments written by the seller
func (v *Visit) SetSellerComments(comments string) error {
	if err := validateComments(comments); err != nil {
		return err
	}
	v.Comments = strings.TrimSpace(comments)
	v.UpdatedAt = time.Now()
	return nil
}

// SetManagerComments stores the comments written by a manager
func (v *Visit) SetManagerComments(managerID uuid.UUID, comments string) error {
	if err := validateComments(comments); err != nil {
		return err
	}
	v.ManagerComments = strings.TrimSpace(comments)
	v.ManagerID = &managerID
	v.UpdatedAt = time.Now()
	return nil
}

// CanBeDeleted reports whether the visit may be removed
func (v *Visit) CanBeDeleted() bool {
	return v.Status != StatusDone
}

// IsOverdue reports whether an open visit is past its scheduled time
func (v *Visit) IsOverdue(now time.Time) bool {
	return v.Status.IsOpen() && v.ScheduledAt.Before(now)
}

// IsToday reports whether the visit is scheduled for the day of now
func (v *Visit) IsToday(now time.Time) bool {
	return DayRange(now).Contains(v.ScheduledAt)
}

// FormattedDuration renders the actual duration, or the estimate when missing
func (v *Visit) FormattedDuration() string {
	if v.ActualDuration != nil && *v.ActualDuration > 0 {
		return FormatDuration(*v.ActualDuration)
	}
	return FormatDuration(v.EstimatedDuration)
}

func validateComments(comments string) error {
	if len(comments) > MaxCommentsLength {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Comments cannot exceed %d characters", MaxCommentsLength))
	}
	return nil
}
