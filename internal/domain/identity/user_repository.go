package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByIDs finds users by IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindAll returns users with pagination
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	// FindFirstActiveByRole returns the oldest active user with the given role
	FindFirstActiveByRole(ctx context.Context, role Role) (*User, error)

	// FindActiveByRole returns every active user with the given role
	FindActiveByRole(ctx context.Context, role Role) ([]*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	shared.Filter
	Role   *Role
	Active *bool
}
