package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"go.uber.org/zap"
)

// VisitService handles visits and the weekly planning workflow
type VisitService struct {
	visitRepo      visit.VisitRepository
	clientRepo     client.ClientRepository
	userRepo       identity.UserRepository
	txManager      shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewVisitService creates a new VisitService
func NewVisitService(
	visitRepo visit.VisitRepository,
	clientRepo client.ClientRepository,
	userRepo identity.UserRepository,
	txManager shared.TxManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *VisitService {
	return &VisitService{
		visitRepo:      visitRepo,
		clientRepo:     clientRepo,
		userRepo:       userRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

var (
	errSellerOnly  = shared.NewDomainError(shared.CodeForbidden, "Only sellers can perform this action")
	errManagerOnly = shared.NewDomainError(shared.CodeForbidden, "Only managers can perform this action")
	errNotOwner    = shared.NewDomainError(shared.CodeForbidden, "You can only manage your own visits")
)

// List returns visits with pagination and per status statistics. Sellers
// only see their own visits.
func (s *VisitService) List(ctx context.Context, actor identity.Actor, filter VisitListFilter) ([]VisitResponse, int64, *VisitStats, error) {
	domainFilter, err := s.toDomainFilter(actor, filter)
	if err != nil {
		return nil, 0, nil, err
	}
	visits, total, err := s.visitRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, nil, err
	}
	out, err := s.withNames(ctx, visits)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.stats(ctx, actor)
	if err != nil {
		return nil, 0, nil, err
	}
	return out, total, stats, nil
}

func (s *VisitService) toDomainFilter(actor identity.Actor, filter VisitListFilter) (visit.VisitFilter, error) {
	f := visit.VisitFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		SellerID: filter.SellerID,
		ClientID: filter.ClientID,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
	f.Normalize()
	if !actor.IsManager() {
		f.SellerID = &actor.UserID
	}
	if filter.Status != "" {
		status := visit.Status(filter.Status)
		if !status.IsValid() {
			return f, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid visit status: %s", filter.Status))
		}
		f.Statuses = []visit.Status{status}
	}
	if filter.Type != "" {
		t := visit.Type(filter.Type)
		if !t.IsValid() {
			return f, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid visit type: %s", filter.Type))
		}
		f.Type = &t
	}
	if filter.Week > 0 || filter.Year > 0 {
		if err := visit.ValidateWeek(filter.Week, filter.Year); err != nil {
			return f, err
		}
		f.Week, f.Year = filter.Week, filter.Year
	}
	if filter.Scope != "" {
		scope := visit.Scope(filter.Scope)
		if !scope.IsValid() {
			return f, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid scope: %s", filter.Scope))
		}
		scope.Apply(&f, s.now())
	}
	return f, nil
}

func (s *VisitService) stats(ctx context.Context, actor identity.Actor) (*VisitStats, error) {
	base := visit.VisitFilter{}
	if !actor.IsManager() {
		base.SellerID = &actor.UserID
	}
	byStatus, err := s.visitRepo.CountByStatus(ctx, base)
	if err != nil {
		return nil, err
	}
	stats := &VisitStats{ByStatus: make(map[string]int64, len(byStatus))}
	for _, st := range visit.AllStatuses() {
		stats.ByStatus[st.String()] = byStatus[st]
		stats.Total += byStatus[st]
	}

	unplanned := base
	planning := visit.PlanningUnplanned
	unplanned.PlanningType = &planning
	if stats.Unplanned, err = s.count(ctx, unplanned); err != nil {
		return nil, err
	}
	stats.Planned = stats.Total - stats.Unplanned

	today := base
	r := visit.DayRange(s.now())
	today.DateFrom, today.DateTo = &r.From, &r.To
	if stats.Today, err = s.count(ctx, today); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *VisitService) count(ctx context.Context, filter visit.VisitFilter) (int64, error) {
	counts, err := s.visitRepo.CountByStatus(ctx, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, c := range counts {
		n += c
	}
	return n, nil
}

// withNames converts visits to responses with client and seller names
func (s *VisitService) withNames(ctx context.Context, visits []*visit.Visit) ([]VisitResponse, error) {
	clientIDs := make([]uuid.UUID, 0, len(visits))
	sellerIDs := make([]uuid.UUID, 0, len(visits))
	seenClients := make(map[uuid.UUID]struct{})
	seenSellers := make(map[uuid.UUID]struct{})
	for _, v := range visits {
		if _, ok := seenClients[v.ClientID]; !ok {
			seenClients[v.ClientID] = struct{}{}
			clientIDs = append(clientIDs, v.ClientID)
		}
		if _, ok := seenSellers[v.SellerID]; !ok {
			seenSellers[v.SellerID] = struct{}{}
			sellerIDs = append(sellerIDs, v.SellerID)
		}
	}

	clients, err := s.clientRepo.FindByIDs(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	clientNames := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.BusinessName
	}
	sellers, err := s.userRepo.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, err
	}
	sellerNames := make(map[uuid.UUID]string, len(sellers))
	for _, u := range sellers {
		sellerNames[u.ID] = u.Name
	}

	now := s.now()
	out := make([]VisitResponse, len(visits))
	for i, v := range visits {
		out[i] = ToVisitResponse(v, now)
		out[i].ClientName = clientNames[v.ClientID]
		out[i].SellerName = sellerNames[v.SellerID]
	}
	return out, nil
}

func (s *VisitService) respond(ctx context.Context, v *visit.Visit) (*VisitResponse, error) {
	out, err := s.withNames(ctx, []*visit.Visit{v})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetByID returns a visit. Sellers can only read their own visits.
func (s *VisitService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*VisitResponse, error) {
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !v.IsOwnedBy(actor.UserID) {
		return nil, errNotOwner
	}
	return s.respond(ctx, v)
}

// Create schedules a visit directly for manager approval
func (s *VisitService) Create(ctx context.Context, actor identity.Actor, req VisitRequest) (*VisitResponse, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	v, err := visit.NewScheduledVisit(actor.UserID, req.toDetails(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.visitRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.publish(ctx, v)

	s.logger.Info("Visit scheduled",
		zap.String("visit_id", v.ID.String()),
		zap.String("seller_id", actor.UserID.String()),
		zap.Time("scheduled_at", v.ScheduledAt))
	return s.respond(ctx, v)
}

// ownedVisit loads a visit that the actor must own
func (s *VisitService) ownedVisit(ctx context.Context, actor identity.Actor, id uuid.UUID) (*visit.Visit, error) {
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(actor.UserID) {
		return nil, errNotOwner
	}
	return v, nil
}

// Update edits a visit of the seller that is not finished
func (s *VisitService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req VisitRequest) (*VisitResponse, error) {
	v, err := s.ownedVisit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != v.ClientID {
		if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
			return nil, err
		}
	}
	if err := v.UpdateDetails(req.toDetails()); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	return s.respond(ctx, v)
}

// Delete removes a visit of the seller unless it was carried out
func (s *VisitService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	v, err := s.ownedVisit(ctx, actor, id)
	if err != nil {
		return err
	}
	if !v.CanBeDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Completed visits cannot be deleted")
	}
	if err := s.visitRepo.Delete(ctx, id); err != nil {
		return err
	}
	v.AddDomainEvent(visit.NewVisitDeletedEvent(v))
	s.publish(ctx, v)
	s.logger.Info("Visit deleted", zap.String("visit_id", id.String()))
	return nil
}

// Review approves or rejects a single submitted visit
func (s *VisitService) Review(ctx context.Context, actor identity.Actor, id uuid.UUID, req ReviewRequest) (*VisitResponse, error) {
	if !actor.IsManager() {
		return nil, errManagerOnly
	}
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Approve {
		err = v.Approve(actor.UserID, req.Comments, s.now())
	} else {
		err = v.Reject(actor.UserID, req.Comments)
	}
	if err != nil {
		return nil, err
	}
	if err := s.visitRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	return s.respond(ctx, v)
}

// Complete records the outcome of an approved visit. The client's last
// contact is updated and a Pendiente client becomes Visitado.
func (s *VisitService) Complete(ctx context.Context, actor identity.Actor, id uuid.UUID, req CompleteVisitRequest) (*VisitResponse, error) {
	return s.finish(ctx, actor, id, func(v *visit.Visit, now time.Time) error {
		return v.Complete(req.toCompletion(), now)
	})
}

// Realize marks an approved visit as done with an optional result
func (s *VisitService) Realize(ctx context.Context, actor identity.Actor, id uuid.UUID, req RealizeVisitRequest) (*VisitResponse, error) {
	return s.finish(ctx, actor, id, func(v *visit.Visit, now time.Time) error {
		return v.Realize(req.Result, req.ActualDuration, now)
	})
}

func (s *VisitService) finish(ctx context.Context, actor identity.Actor, id uuid.UUID, apply func(*visit.Visit, time.Time) error) (*VisitResponse, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	var v *visit.Visit
	var c *client.Client
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.ownedVisit(ctx, actor, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := apply(v, now); err != nil {
			return err
		}
		if err := s.visitRepo.Update(ctx, v); err != nil {
			return err
		}
		c, err = s.touchClient(ctx, v.ClientID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	s.publish(ctx, c)

	s.logger.Info("Visit completed",
		zap.String("visit_id", v.ID.String()),
		zap.String("client_id", v.ClientID.String()))
	return s.respond(ctx, v)
}

// touchClient records a contact with the client and advances a Pendiente
// client to Visitado
func (s *VisitService) touchClient(ctx context.Context, clientID uuid.UUID, at time.Time) (*client.Client, error) {
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c.RecordContact(at)
	if c.Status == client.StatusPending {
		c.AdvanceTo(client.StatusVisited)
	}
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateUnplanned records a visit that already happened without planning
func (s *VisitService) CreateUnplanned(ctx context.Context, actor identity.Actor, req UnplannedVisitRequest) (*VisitResponse, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	var v *visit.Visit
	var c *client.Client
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		var err error
		v, err = visit.NewUnplannedVisit(actor.UserID, visit.UnplannedReport{
			ClientID:           req.ClientID,
			Title:              req.Title,
			Description:        req.Description,
			Summary:            req.Summary,
			Agreements:         req.Agreements,
			NextSteps:          req.NextSteps,
			ProbabilityOfClose: req.ProbabilityOfClose,
			EstimatedValue:     req.EstimatedValue,
		}, now)
		if err != nil {
			return err
		}
		c, err = s.touchClient(ctx, req.ClientID, now)
		if err != nil {
			return err
		}
		return s.visitRepo.Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	s.publish(ctx, c)
	return s.respond(ctx, v)
}

// Cancel cancels an open visit. The owner seller or a manager may cancel.
func (s *VisitService) Cancel(ctx context.Context, actor identity.Actor, id uuid.UUID, req CancelVisitRequest) (*VisitResponse, error) {
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !v.IsOwnedBy(actor.UserID) {
		return nil, errNotOwner
	}
	if err := v.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	s.logger.Info("Visit cancelled", zap.String("visit_id", id.String()))
	return s.respond(ctx, v)
}

// Reschedule moves a visit to a new date
func (s *VisitService) Reschedule(ctx context.Context, actor identity.Actor, id uuid.UUID, req RescheduleVisitRequest) (*VisitResponse, error) {
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !v.IsOwnedBy(actor.UserID) {
		return nil, errNotOwner
	}
	if err := v.Reschedule(req.ScheduledAt, s.now()); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.publish(ctx, v)
	return s.respond(ctx, v)
}

// UpdateComments stores manager comments when the actor is a manager, and
// seller comments when the actor owns the visit
func (s *VisitService) UpdateComments(ctx context.Context, actor identity.Actor, id uuid.UUID, req CommentsRequest) (*VisitResponse, error) {
	v, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsManager():
		err = v.SetManagerComments(actor.UserID, req.Comments)
	case v.IsOwnedBy(actor.UserID):
		err = v.SetSellerComments(req.Comments)
	default:
		return nil, errNotOwner
	}
	if err != nil {
		return nil, err
	}
	if err := s.visitRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.respond(ctx, v)
}

func (s *VisitService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, agg); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}
