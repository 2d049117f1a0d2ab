package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *Client) error

	// Update updates an existing client
	Update(ctx context.Context, client *Client) error

	// Delete deletes a client and its contacts
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByIDs finds clients by IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Client, error)

	// FindByRUC finds a client by RUC
	FindByRUC(ctx context.Context, ruc string) (*Client, error)

	// ExistsByRUC checks if a RUC is already registered, ignoring excludeID
	ExistsByRUC(ctx context.Context, ruc string, excludeID *uuid.UUID) (bool, error)

	// FindAll returns clients with pagination
	FindAll(ctx context.Context, filter ClientFilter) ([]*Client, int64, error)

	// FindAllUnpaged returns every client matching the filter, used by exports
	FindAllUnpaged(ctx context.Context, filter ClientFilter) ([]*Client, error)

	// ListOptions returns id and business name of every client ordered by name
	ListOptions(ctx context.Context) ([]Summary, error)

	// LastCode returns the highest client code, empty when there are none
	LastCode(ctx context.Context) (string, error)
}

// ClientFilter contains filter options for querying clients
type ClientFilter struct {
	shared.Filter
	Status *Status
	Sector string
	Group  Group
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// Create creates a new contact
	Create(ctx context.Context, contact *Contact) error

	// Update updates an existing contact
	Update(ctx context.Context, contact *Contact) error

	// Delete deletes a contact by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a contact by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)

	// FindByClient returns every contact of a client
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Contact, error)

	// FindPrimaryByClients returns the primary contact of each given client
	FindPrimaryByClients(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]*Contact, error)

	// FindAll returns contacts with pagination
	FindAll(ctx context.Context, filter ContactFilter) ([]*Contact, int64, error)

	// FindAllUnpaged returns every contact matching the filter, used by exports
	FindAllUnpaged(ctx context.Context, filter ContactFilter) ([]*Contact, error)
}

// ContactFilter contains filter options for querying contacts
type ContactFilter struct {
	shared.Filter
	ClientID    *uuid.UUID
	PrimaryOnly bool
}
