package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"go.uber.org/zap"
)

// PlanningData returns the seller's visits of an ISO week with the client
// options used to plan them
func (s *VisitService) PlanningData(ctx context.Context, actor identity.Actor, week, year int) (*PlanningData, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	if week == 0 && year == 0 {
		week, year = visit.ISOWeek(s.now())
	}
	if err := visit.ValidateWeek(week, year); err != nil {
		return nil, err
	}

	visits, err := s.visitRepo.FindByWeek(ctx, actor.UserID, week, year)
	if err != nil {
		return nil, err
	}
	responses, err := s.withNames(ctx, visits)
	if err != nil {
		return nil, err
	}
	options, err := s.clientRepo.ListOptions(ctx)
	if err != nil {
		return nil, err
	}

	r := visit.WeekRange(week, year, s.now().Location())
	data := &PlanningData{
		Week:    week,
		Year:    year,
		From:    r.From,
		To:      r.To,
		Visits:  responses,
		Clients: make([]ClientOption, len(options)),
	}
	for i, o := range options {
		data.Clients[i] = ClientOption{ID: o.ID, Code: o.Code, BusinessName: o.BusinessName}
	}
	for _, v := range visits {
		if v.Status == visit.StatusScheduled || v.Status == visit.StatusApproved {
			data.Submitted = true
			break
		}
	}
	return data, nil
}

// SavePlanning replaces the seller's draft visits of a week with the given ones.
// Every date must fall inside the week.
func (s *VisitService) SavePlanning(ctx context.Context, actor identity.Actor, req SavePlanningRequest) ([]VisitResponse, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	if err := visit.ValidateWeek(req.Week, req.Year); err != nil {
		return nil, err
	}

	drafts := make([]*visit.Visit, 0, len(req.Visits))
	clientIDs := make(map[uuid.UUID]struct{})
	for i, item := range req.Visits {
		v, err := visit.NewDraftVisit(actor.UserID, item.toDetails(), req.Week, req.Year)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				return nil, shared.NewDomainError(domainErr.Code, fmt.Sprintf("Visit %d: %s", i+1, domainErr.Message))
			}
			return nil, err
		}
		drafts = append(drafts, v)
		clientIDs[v.ClientID] = struct{}{}
	}
	if err := s.ensureClientsExist(ctx, clientIDs); err != nil {
		return nil, err
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.visitRepo.FindByWeek(ctx, actor.UserID, req.Week, req.Year, visit.StatusDraft)
		if err != nil {
			return err
		}
		for _, v := range existing {
			if err := s.visitRepo.Delete(ctx, v.ID); err != nil {
				return err
			}
		}
		return s.visitRepo.CreateBatch(ctx, drafts)
	})
	if err != nil {
		return nil, err
	}

	event := visit.NewPlanningSavedEvent(actor.UserID, req.Week, req.Year, len(drafts))
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish planning saved event", zap.Error(err))
	}
	s.logger.Info("Weekly planning saved",
		zap.String("seller_id", actor.UserID.String()),
		zap.Int("week", req.Week),
		zap.Int("year", req.Year),
		zap.Int("visits", len(drafts)))
	return s.withNames(ctx, drafts)
}

func (s *VisitService) ensureClientsExist(ctx context.Context, ids map[uuid.UUID]struct{}) error {
	list := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	clients, err := s.clientRepo.FindByIDs(ctx, list)
	if err != nil {
		return err
	}
	if len(clients) != len(list) {
		found := make(map[uuid.UUID]struct{}, len(clients))
		for _, c := range clients {
			found[c.ID] = struct{}{}
		}
		missing := make([]string, 0)
		for _, id := range list {
			if _, ok := found[id]; !ok {
				missing = append(missing, id.String())
			}
		}
		return shared.NewDomainError(shared.CodeValidation, "Unknown clients: "+strings.Join(missing, ", "))
	}
	return nil
}

// SubmitPlanning sends every draft visit of the week for manager approval
func (s *VisitService) SubmitPlanning(ctx context.Context, actor identity.Actor, req WeekRequest) (*PlanningResult, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	if err := visit.ValidateWeek(req.Week, req.Year); err != nil {
		return nil, err
	}

	var count int
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		drafts, err := s.visitRepo.FindByWeek(ctx, actor.UserID, req.Week, req.Year, visit.StatusDraft)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "No planned visits to submit")
		}
		now := s.now()
		for _, v := range drafts {
			if err := v.Submit(now); err != nil {
				return err
			}
			if err := s.visitRepo.Update(ctx, v); err != nil {
				return err
			}
		}
		count = len(drafts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := visit.NewPlanningSubmittedEvent(actor.UserID, actor.Name, req.Week, req.Year, count)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish planning submitted event", zap.Error(err))
	}
	s.logger.Info("Weekly planning submitted",
		zap.String("seller_id", actor.UserID.String()),
		zap.Int("week", req.Week),
		zap.Int("year", req.Year),
		zap.Int("visits", count))
	return &PlanningResult{Week: req.Week, Year: req.Year, Affected: count}, nil
}

// RevertPlanning takes the submitted visits of the week back to draft
func (s *VisitService) RevertPlanning(ctx context.Context, actor identity.Actor, req WeekRequest) (*PlanningResult, error) {
	if !actor.IsSeller() {
		return nil, errSellerOnly
	}
	if err := visit.ValidateWeek(req.Week, req.Year); err != nil {
		return nil, err
	}

	var count int
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		submitted, err := s.visitRepo.FindByWeek(ctx, actor.UserID, req.Week, req.Year, visit.StatusScheduled)
		if err != nil {
			return err
		}
		if len(submitted) == 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "No submitted visits to revert")
		}
		for _, v := range submitted {
			if err := v.RevertToDraft(); err != nil {
				return err
			}
			if err := s.visitRepo.Update(ctx, v); err != nil {
				return err
			}
		}
		count = len(submitted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := visit.NewPlanningRevertedEvent(actor.UserID, req.Week, req.Year, count)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish planning reverted event", zap.Error(err))
	}
	return &PlanningResult{Week: req.Week, Year: req.Year, Affected: count}, nil
}

// ApprovePlanning approves or rejects every submitted visit of a seller's week
func (s *VisitService) ApprovePlanning(ctx context.Context, actor identity.Actor, req ApprovePlanningRequest) (*PlanningResult, error) {
	if !actor.IsManager() {
		return nil, errManagerOnly
	}
	if err := visit.ValidateWeek(req.Week, req.Year); err != nil {
		return nil, err
	}

	var reviewed []*visit.Visit
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		submitted, err := s.visitRepo.FindByWeek(ctx, req.SellerID, req.Week, req.Year, visit.StatusScheduled)
		if err != nil {
			return err
		}
		if len(submitted) == 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "No submitted visits to review for this week")
		}
		now := s.now()
		for _, v := range submitted {
			if req.Approve {
				err = v.Approve(actor.UserID, req.Comments, now)
			} else {
				err = v.Reject(actor.UserID, req.Comments)
			}
			if err != nil {
				return err
			}
			if err := s.visitRepo.Update(ctx, v); err != nil {
				return err
			}
		}
		reviewed = submitted
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, v := range reviewed {
		v.ClearDomainEvents()
	}
	event := visit.NewPlanningReviewedEvent(req.SellerID, actor.UserID, req.Week, req.Year,
		req.Approve, len(reviewed), strings.TrimSpace(req.Comments))
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish planning reviewed event", zap.Error(err))
	}
	s.logger.Info("Weekly planning reviewed",
		zap.String("seller_id", req.SellerID.String()),
		zap.String("manager_id", actor.UserID.String()),
		zap.Bool("approved", req.Approve),
		zap.Int("visits", len(reviewed)))
	return &PlanningResult{Week: req.Week, Year: req.Year, Affected: len(reviewed)}, nil
}
