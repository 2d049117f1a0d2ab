package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	AggregateModel
	Code             string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	RUC              string          `gorm:"column:ruc;type:varchar(11);not null;uniqueIndex"`
	BusinessName     string          `gorm:"type:varchar(255);not null;index"`
	Sector           string          `gorm:"type:varchar(50);not null;index"`
	Status           client.Status   `gorm:"type:varchar(20);not null;default:'Pendiente';index"`
	Notes            string          `gorm:"type:text"`
	Phone            string          `gorm:"type:varchar(50)"`
	Website          string          `gorm:"type:varchar(255)"`
	Address          string          `gorm:"type:text"`
	PotentialValue   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CloseProbability int             `gorm:"not null;default:0"`
	Tags             pq.StringArray  `gorm:"type:text[]"`
	LastContactAt    *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *client.Client {
	tags := make([]string, len(m.Tags))
	copy(tags, m.Tags)
	return &client.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		RUC:               m.RUC,
		BusinessName:      m.BusinessName,
		Sector:            m.Sector,
		Status:            m.Status,
		Notes:             m.Notes,
		Phone:             m.Phone,
		Website:           m.Website,
		Address:           m.Address,
		PotentialValue:    m.PotentialValue,
		CloseProbability:  m.CloseProbability,
		Tags:              tags,
		LastContactAt:     m.LastContactAt,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *client.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.RUC = c.RUC
	m.BusinessName = c.BusinessName
	m.Sector = c.Sector
	m.Status = c.Status
	m.Notes = c.Notes
	m.Phone = c.Phone
	m.Website = c.Website
	m.Address = c.Address
	m.PotentialValue = c.PotentialValue
	m.CloseProbability = c.CloseProbability
	m.Tags = pq.StringArray(c.Tags)
	m.LastContactAt = c.LastContactAt
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// ContactModel is the persistence model for the Contact domain entity.
type ContactModel struct {
	AggregateModel
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FirstName string    `gorm:"type:varchar(255);not null"`
	LastName  string    `gorm:"type:varchar(255)"`
	Title     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Mobile    string    `gorm:"type:varchar(50)"`
	Email     string    `gorm:"type:varchar(200);index"`
	AltEmail  string    `gorm:"type:varchar(200)"`
	IsPrimary bool      `gorm:"not null;default:false"`
	Notes     string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
func (m *ContactModel) ToDomain() *client.Contact {
	return &client.Contact{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Title:             m.Title,
		Phone:             m.Phone,
		Mobile:            m.Mobile,
		Email:             m.Email,
		AltEmail:          m.AltEmail,
		IsPrimary:         m.IsPrimary,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Contact entity.
func (m *ContactModel) FromDomain(c *client.Contact) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ClientID = c.ClientID
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Title = c.Title
	m.Phone = c.Phone
	m.Mobile = c.Mobile
	m.Email = c.Email
	m.AltEmail = c.AltEmail
	m.IsPrimary = c.IsPrimary
	m.Notes = c.Notes
}

// ContactModelFromDomain creates a new persistence model from a domain Contact entity.
func ContactModelFromDomain(c *client.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}
