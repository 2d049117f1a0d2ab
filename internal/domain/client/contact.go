package client

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// Contact is a person working at a client
type Contact struct {
	shared.BaseAggregateRoot
	ClientID  uuid.UUID
	FirstName string
	LastName  string
	Title     string
	Phone     string
	Mobile    string
	Email     string
	AltEmail  string
	IsPrimary bool
	Notes     string
}

// ContactInput carries the editable fields of a contact
type ContactInput struct {
	FirstName string
	LastName  string
	Title     string
	Phone     string
	Mobile    string
	Email     string
	AltEmail  string
	Notes     string
}

// NewContact creates a contact for a client
func NewContact(clientID uuid.UUID, in ContactInput) (*Contact, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Client ID cannot be empty")
	}
	c := &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
	}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewContactEvent(EventTypeContactCreated, c))
	return c, nil
}

// Update replaces the editable fields
func (c *Contact) Update(in ContactInput) error {
	if err := c.apply(in); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Contact) apply(in ContactInput) error {
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return shared.NewDomainError(shared.CodeValidation, "Contact first name cannot be empty")
	}
	if len(first) > 255 || len(in.LastName) > 255 {
		return shared.NewDomainError(shared.CodeValidation, "Contact name cannot exceed 255 characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError(shared.CodeValidation, "Invalid contact email format")
	}
	alt := strings.ToLower(strings.TrimSpace(in.AltEmail))
	if alt != "" && !emailRegex.MatchString(alt) {
		return shared.NewDomainError(shared.CodeValidation, "Invalid alternative email format")
	}
	c.FirstName = first
	c.LastName = strings.TrimSpace(in.LastName)
	c.Title = strings.TrimSpace(in.Title)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Mobile = strings.TrimSpace(in.Mobile)
	c.Email = email
	c.AltEmail = alt
	c.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// FullName returns first and last name joined
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PreferredPhone returns the mobile number, or the landline when missing
func (c *Contact) PreferredPhone() string {
	if c.Mobile != "" {
		return c.Mobile
	}
	return c.Phone
}

// PreferredEmail returns the main email, or the alternative one when missing
func (c *Contact) PreferredEmail() string {
	if c.Email != "" {
		return c.Email
	}
	return c.AltEmail
}

// SetPrimary marks or unmarks the contact as primary
func (c *Contact) SetPrimary(primary bool) {
	if c.IsPrimary == primary {
		return
	}
	c.IsPrimary = primary
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	if primary {
		c.AddDomainEvent(NewContactEvent(EventTypePrimaryContactChanged, c))
	}
}

// SortByName orders contacts by full name, case-insensitive
func SortByName(contacts []*Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].FullName()) < strings.ToLower(contacts[j].FullName())
	})
}

// SortPrimaryFirst orders contacts with the primary first, then by name
func SortPrimaryFirst(contacts []*Contact) {
	SortByName(contacts)
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].IsPrimary && !contacts[j].IsPrimary
	})
}

// AssignPrimary marks target as the only primary contact among siblings.
// It returns the contacts whose flag changed.
func AssignPrimary(siblings []*Contact, target *Contact) []*Contact {
	changed := make([]*Contact, 0, 2)
	for _, c := range siblings {
		if c.ID == target.ID {
			continue
		}
		if c.IsPrimary {
			c.SetPrimary(false)
			changed = append(changed, c)
		}
	}
	if !target.IsPrimary {
		target.SetPrimary(true)
		changed = append(changed, target)
	}
	return changed
}

// SuccessorOnDelete picks the contact that becomes primary when the contact
// being removed is the primary one. It fails when the removed contact is the
// only one of the client, and returns nil when no promotion is needed.
func SuccessorOnDelete(siblings []*Contact, removed *Contact) (*Contact, error) {
	others := make([]*Contact, 0, len(siblings))
	for _, c := range siblings {
		if c.ID != removed.ID {
			others = append(others, c)
		}
	}
	if len(others) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "cannot delete the last contact of a client")
	}
	if !removed.IsPrimary {
		return nil, nil
	}
	SortByName(others)
	return others[0], nil
}
