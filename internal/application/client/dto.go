package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/shopspring/decimal"
)

// ContactRequest carries the fields of a contact
type ContactRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=255"`
	LastName  string `json:"last_name" binding:"max=255"`
	Title     string `json:"title" binding:"max=255"`
	Phone     string `json:"phone" binding:"omitempty,max=50,phone"`
	Mobile    string `json:"mobile" binding:"omitempty,max=50,phone"`
	Email     string `json:"email" binding:"omitempty,email,max=255"`
	AltEmail  string `json:"alt_email" binding:"omitempty,email,max=255"`
	Notes     string `json:"notes" binding:"max=2000"`
}

// PrincipalContactRequest is the contact created together with a client.
// Its email is mandatory.
type PrincipalContactRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Title     string `json:"title" binding:"max=255"`
	Phone     string `json:"phone" binding:"omitempty,max=50,phone"`
	Mobile    string `json:"mobile" binding:"omitempty,max=50,phone"`
	Email     string `json:"email" binding:"required,email,max=255"`
}

// CreateClientRequest represents a request to create a client with its principal contact
type CreateClientRequest struct {
	RUC              string                  `json:"ruc" binding:"required,ruc"`
	BusinessName     string                  `json:"business_name" binding:"required,min=1,max=255"`
	Sector           string                  `json:"sector" binding:"required,sector"`
	Notes            string                  `json:"notes" binding:"max=5000"`
	Phone            string                  `json:"phone" binding:"omitempty,max=50,phone"`
	Website          string                  `json:"website" binding:"omitempty,url,max=255"`
	Address          string                  `json:"address" binding:"max=500"`
	PotentialValue   *decimal.Decimal        `json:"potential_value"`
	CloseProbability *int                    `json:"close_probability" binding:"omitempty,min=0,max=100"`
	Tags             []string                `json:"tags"`
	Contact          PrincipalContactRequest `json:"contact" binding:"required"`
}

// UpdateClientRequest represents a request to update a client. A status change
// must follow the client status table.
type UpdateClientRequest struct {
	RUC              string           `json:"ruc" binding:"required,ruc"`
	BusinessName     string           `json:"business_name" binding:"required,min=1,max=255"`
	Sector           string           `json:"sector" binding:"required,sector"`
	Status           *string          `json:"status"`
	Notes            string           `json:"notes" binding:"max=5000"`
	Phone            string           `json:"phone" binding:"omitempty,max=50,phone"`
	Website          string           `json:"website" binding:"omitempty,url,max=255"`
	Address          string           `json:"address" binding:"max=500"`
	PotentialValue   *decimal.Decimal `json:"potential_value"`
	CloseProbability *int             `json:"close_probability" binding:"omitempty,min=0,max=100"`
	Tags             []string         `json:"tags"`
}

// ClientListFilter contains the query parameters of the client list
type ClientListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Sector   string `form:"sector"`
	Group    string `form:"group" binding:"omitempty,oneof=active potential"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID             uuid.UUID `json:"id"`
	ClientID       uuid.UUID `json:"client_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name"`
	Title          string    `json:"title"`
	Phone          string    `json:"phone"`
	Mobile         string    `json:"mobile"`
	Email          string    `json:"email"`
	AltEmail       string    `json:"alt_email"`
	PreferredPhone string    `json:"preferred_phone"`
	PreferredEmail string    `json:"preferred_email"`
	IsPrimary      bool      `json:"is_primary"`
	Notes          string    `json:"notes"`
	ClientName     string    `json:"client_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID               uuid.UUID         `json:"id"`
	Code             string            `json:"code"`
	RUC              string            `json:"ruc"`
	BusinessName     string            `json:"business_name"`
	Sector           string            `json:"sector"`
	Status           string            `json:"status"`
	StatusColor      string            `json:"status_color"`
	Notes            string            `json:"notes"`
	Phone            string            `json:"phone"`
	Website          string            `json:"website"`
	Address          string            `json:"address"`
	PotentialValue   decimal.Decimal   `json:"potential_value"`
	CloseProbability int               `json:"close_probability"`
	WeightedValue    decimal.Decimal   `json:"weighted_value"`
	Tags             []string          `json:"tags"`
	LastContactAt    *time.Time        `json:"last_contact_at,omitempty"`
	PrimaryContact   *ContactResponse  `json:"primary_contact,omitempty"`
	Contacts         []ContactResponse `json:"contacts,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ClientOption is an entry of the client selector
type ClientOption struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	BusinessName string    `json:"business_name"`
}

// HistoryEntry is an item of the client timeline
type HistoryEntry struct {
	Kind   string           `json:"kind"` // visita, cotizacion, pedido
	ID     uuid.UUID        `json:"id"`
	Title  string           `json:"title"`
	Status string           `json:"status"`
	Date   time.Time        `json:"date"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ImportResult summarizes a client CSV import
type ImportResult struct {
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
	Truncated bool     `json:"truncated"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *client.Client) ClientResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ClientResponse{
		ID:               c.ID,
		Code:             c.Code,
		RUC:              c.RUC,
		BusinessName:     c.BusinessName,
		Sector:           c.Sector,
		Status:           c.Status.String(),
		StatusColor:      c.Status.BadgeColor(),
		Notes:            c.Notes,
		Phone:            c.Phone,
		Website:          c.Website,
		Address:          c.Address,
		PotentialValue:   c.PotentialValue,
		CloseProbability: c.CloseProbability,
		WeightedValue:    c.WeightedValue().Round(2),
		Tags:             tags,
		LastContactAt:    c.LastContactAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ToContactResponse converts a domain Contact to ContactResponse
func ToContactResponse(c *client.Contact) ContactResponse {
	return ContactResponse{
		ID:             c.ID,
		ClientID:       c.ClientID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		FullName:       c.FullName(),
		Title:          c.Title,
		Phone:          c.Phone,
		Mobile:         c.Mobile,
		Email:          c.Email,
		AltEmail:       c.AltEmail,
		PreferredPhone: c.PreferredPhone(),
		PreferredEmail: c.PreferredEmail(),
		IsPrimary:      c.IsPrimary,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToContactResponses converts a slice of domain contacts
func ToContactResponses(contacts []*client.Contact) []ContactResponse {
	out := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = ToContactResponse(c)
	}
	return out
}

func (r ContactRequest) toInput() client.ContactInput {
	return client.ContactInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Title:     r.Title,
		Phone:     r.Phone,
		Mobile:    r.Mobile,
		Email:     r.Email,
		AltEmail:  r.AltEmail,
		Notes:     r.Notes,
	}
}

func (r PrincipalContactRequest) toInput() client.ContactInput {
	return client.ContactInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Title:     r.Title,
		Phone:     r.Phone,
		Mobile:    r.Mobile,
		Email:     r.Email,
	}
}

func clientInput(ruc, name, sector, notes, phone, website, address string, value *decimal.Decimal, prob *int, tags []string) client.ClientInput {
	in := client.ClientInput{
		RUC:          ruc,
		BusinessName: name,
		Sector:       sector,
		Notes:        notes,
		Phone:        phone,
		Website:      website,
		Address:      address,
		Tags:         tags,
	}
	if value != nil {
		in.PotentialValue = *value
	}
	if prob != nil {
		in.CloseProbability = *prob
	}
	return in
}
