package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/shopspring/decimal"
)

// VisitModel is the persistence model for the Visit domain entity.
type VisitModel struct {
	AggregateModel
	ClientID             uuid.UUID          `gorm:"type:uuid;not null;index"`
	SellerID             uuid.UUID          `gorm:"type:uuid;not null;index:idx_visits_seller_week,priority:1"`
	ManagerID            *uuid.UUID         `gorm:"type:uuid"`
	Title                string             `gorm:"type:varchar(255);not null"`
	Description          string             `gorm:"type:text"`
	Objectives           string             `gorm:"type:text"`
	ScheduledAt          time.Time          `gorm:"not null;index"`
	Shift                visit.Shift        `gorm:"type:varchar(10);not null;default:'mañana'"`
	EstimatedDuration    int                `gorm:"not null;default:60"`
	ActualDuration       *int               `gorm:"column:actual_duration"`
	Type                 visit.Type         `gorm:"type:varchar(20);not null;default:'comercial'"`
	PlanningType         visit.PlanningType `gorm:"type:varchar(20);not null;default:'planificada'"`
	Priority             visit.Priority     `gorm:"type:varchar(10);not null;default:'media'"`
	Status               visit.Status       `gorm:"type:varchar(20);not null;index"`
	Week                 int                `gorm:"not null;index:idx_visits_seller_week,priority:3"`
	Year                 int                `gorm:"not null;index:idx_visits_seller_week,priority:2"`
	CompletedAt          *time.Time
	Result               string `gorm:"type:text"`
	Notes                string `gorm:"type:text"`
	Comments             string `gorm:"type:text"`
	ManagerComments      string `gorm:"type:text"`
	CustomerSatisfaction *int
	ObjectivesMet        *bool
	RequiresFollowUp     bool `gorm:"not null;default:false"`
	NextContactAt        *time.Time
	SubmittedAt          *time.Time
	ApprovedAt           *time.Time
	ProbabilityOfClose   *int
	EstimatedValue       *decimal.Decimal `gorm:"type:decimal(14,2)"`
}

// TableName returns the table name for GORM
func (VisitModel) TableName() string {
	return "visits"
}

// ToDomain converts the persistence model to a domain Visit entity.
func (m *VisitModel) ToDomain() *visit.Visit {
	return &visit.Visit{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		ClientID:             m.ClientID,
		SellerID:             m.SellerID,
		ManagerID:            m.ManagerID,
		Title:                m.Title,
		Description:          m.Description,
		Objectives:           m.Objectives,
		ScheduledAt:          m.ScheduledAt,
		Shift:                m.Shift,
		EstimatedDuration:    m.EstimatedDuration,
		ActualDuration:       m.ActualDuration,
		Type:                 m.Type,
		PlanningType:         m.PlanningType,
		Priority:             m.Priority,
		Status:               m.Status,
		Week:                 m.Week,
		Year:                 m.Year,
		CompletedAt:          m.CompletedAt,
		Result:               m.Result,
		Notes:                m.Notes,
		Comments:             m.Comments,
		ManagerComments:      m.ManagerComments,
		CustomerSatisfaction: m.CustomerSatisfaction,
		ObjectivesMet:        m.ObjectivesMet,
		RequiresFollowUp:     m.RequiresFollowUp,
		NextContactAt:        m.NextContactAt,
		SubmittedAt:          m.SubmittedAt,
		ApprovedAt:           m.ApprovedAt,
		ProbabilityOfClose:   m.ProbabilityOfClose,
		EstimatedValue:       m.EstimatedValue,
	}
}

// FromDomain populates the persistence model from a domain Visit entity.
// Week and Year are always derived from ScheduledAt.
func (m *VisitModel) FromDomain(v *visit.Visit) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.ClientID = v.ClientID
	m.SellerID = v.SellerID
	m.ManagerID = v.ManagerID
	m.Title = v.Title
	m.Description = v.Description
	m.Objectives = v.Objectives
	m.ScheduledAt = v.ScheduledAt
	m.Shift = v.Shift
	m.EstimatedDuration = v.EstimatedDuration
	m.ActualDuration = v.ActualDuration
	m.Type = v.Type
	m.PlanningType = v.PlanningType
	m.Priority = v.Priority
	m.Status = v.Status
	m.Week, m.Year = visit.ISOWeek(v.ScheduledAt)
	m.CompletedAt = v.CompletedAt
	m.Result = v.Result
	m.Notes = v.Notes
	m.Comments = v.Comments
	m.ManagerComments = v.ManagerComments
	m.CustomerSatisfaction = v.CustomerSatisfaction
	m.ObjectivesMet = v.ObjectivesMet
	m.RequiresFollowUp = v.RequiresFollowUp
	m.NextContactAt = v.NextContactAt
	m.SubmittedAt = v.SubmittedAt
	m.ApprovedAt = v.ApprovedAt
	m.ProbabilityOfClose = v.ProbabilityOfClose
	m.EstimatedValue = v.EstimatedValue
}

// VisitModelFromDomain creates a new persistence model from a domain Visit entity.
func VisitModelFromDomain(v *visit.Visit) *VisitModel {
	m := &VisitModel{}
	m.FromDomain(v)
	return m
}
