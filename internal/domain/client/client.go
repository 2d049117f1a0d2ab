package client

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	rucRegex   = regexp.MustCompile(`^[0-9]{11}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// CodePrefix prefixes every client code
const CodePrefix = "EMP-"

// Client is the aggregate root for companies followed by the sales team
type Client struct {
	shared.BaseAggregateRoot
	Code             string
	RUC              string
	BusinessName     string
	Sector           string
	Status           Status
	Notes            string
	Phone            string
	Website          string
	Address          string
	PotentialValue   decimal.Decimal
	CloseProbability int
	Tags             []string
	LastContactAt    *time.Time
}

// ClientInput carries the editable fields of a client
type ClientInput struct {
	RUC              string
	BusinessName     string
	Sector           string
	Notes            string
	Phone            string
	Website          string
	Address          string
	PotentialValue   decimal.Decimal
	CloseProbability int
	Tags             []string
}

// NewClient creates a new client in Pendiente status
func NewClient(code string, in ClientInput) (*Client, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Client code cannot be empty")
	}
	c := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Status:            StatusPending,
	}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// Update replaces the editable fields
func (c *Client) Update(in ClientInput) error {
	value, probability, sector := c.PotentialValue, c.CloseProbability, c.Sector
	if err := c.apply(in); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	if !value.Equal(c.PotentialValue) || probability != c.CloseProbability || sector != c.Sector {
		c.AddDomainEvent(NewClientPipelineChangedEvent(c))
	}
	return nil
}

func (c *Client) apply(in ClientInput) error {
	ruc := strings.TrimSpace(in.RUC)
	if err := ValidateRUC(ruc); err != nil {
		return err
	}
	name := strings.TrimSpace(in.BusinessName)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Business name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError(shared.CodeValidation, "Business name cannot exceed 255 characters")
	}
	if !IsValidSector(in.Sector) {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid sector: %s", in.Sector))
	}
	website := strings.TrimSpace(in.Website)
	if website != "" {
		u, err := url.ParseRequestURI(website)
		if err != nil || u.Host == "" {
			return shared.NewDomainError(shared.CodeValidation, "Website must be a valid URL")
		}
	}
	if in.PotentialValue.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Potential value cannot be negative")
	}
	if in.CloseProbability < 0 || in.CloseProbability > 100 {
		return shared.NewDomainError(shared.CodeValidation, "Close probability must be between 0 and 100")
	}

	c.RUC = ruc
	c.BusinessName = name
	c.Sector = in.Sector
	c.Notes = strings.TrimSpace(in.Notes)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Website = website
	c.Address = strings.TrimSpace(in.Address)
	c.PotentialValue = in.PotentialValue
	c.CloseProbability = in.CloseProbability
	c.Tags = normalizeTags(in.Tags)
	return nil
}

// ChangeStatus moves the client through the status table
func (c *Client) ChangeStatus(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid client status: %s", target))
	}
	if c.Status == target {
		return nil
	}
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot change client status from %s to %s", c.Status, target))
	}
	old := c.Status
	c.Status = target
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, old))
	return nil
}

// AdvanceTo applies a status change only when the table allows it.
// It reports whether the status changed.
func (c *Client) AdvanceTo(target Status) bool {
	if c.Status == target || !c.Status.CanTransitionTo(target) {
		return false
	}
	return c.ChangeStatus(target) == nil
}

// RecordContact stores the time of the last interaction with the client
func (c *Client) RecordContact(at time.Time) {
	c.LastContactAt = &at
	c.UpdatedAt = time.Now()
}

// WeightedValue returns potential value weighted by close probability
func (c *Client) WeightedValue() decimal.Decimal {
	return c.PotentialValue.Mul(decimal.NewFromInt(int64(c.CloseProbability))).Div(decimal.NewFromInt(100))
}

// ValidateRUC checks a Peruvian taxpayer number (11 digits)
func ValidateRUC(ruc string) error {
	if ruc == "" {
		return shared.NewDomainError(shared.CodeValidation, "RUC cannot be empty")
	}
	if !rucRegex.MatchString(ruc) {
		return shared.NewDomainError(shared.CodeValidation, "RUC must have exactly 11 digits")
	}
	return nil
}

// FormatCode builds a client code from its sequence number
func FormatCode(n int) string {
	return fmt.Sprintf("%s%06d", CodePrefix, n)
}

// ParseCodeNumber extracts the sequence number of a client code
func ParseCodeNumber(code string) int {
	if !strings.HasPrefix(code, CodePrefix) {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimPrefix(code, CodePrefix), "%d", &n); err != nil {
		return 0
	}
	return n
}

// NextCode returns the code following the highest existing one
func NextCode(lastCode string) string {
	return FormatCode(ParseCodeNumber(lastCode) + 1)
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(t)]; ok {
			continue
		}
		seen[strings.ToLower(t)] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Summary is a lightweight client reference
type Summary struct {
	ID           uuid.UUID
	Code         string
	BusinessName string
}
