package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/salescrm/backend/internal/domain/shared"
)

// Role is the sales role of a user
type Role string

const (
	RoleSeller  Role = "vendedor"
	RoleManager Role = "gerente"
)

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	return r == RoleSeller || r == RoleManager
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the aggregate root for CRM users (sellers and managers)
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	// OriginalRole is the role the account was created with. A manager may act
	// as a seller and switch back.
	OriginalRole Role
	Active       bool
	LastLoginAt  *time.Time
}

// NewUser creates a new active user
func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 255 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be vendedor or gerente")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              role,
		OriginalRole:      role,
		Active:            true,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// IsSeller reports whether the user currently acts as a seller
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

// IsManager reports whether the user currently acts as a manager
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// CanSwitchRole reports whether the account may toggle between roles
func (u *User) CanSwitchRole() bool {
	return u.OriginalRole == RoleManager
}

// SwitchRole changes the acting role. Only accounts created as managers can do it.
func (u *User) SwitchRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be vendedor or gerente")
	}
	if !u.CanSwitchRole() {
		return shared.NewDomainError(shared.CodeForbidden, "Only managers can switch roles")
	}
	if u.Role == role {
		return nil
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Update changes the name and email of the user
func (u *User) Update(name, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// ChangeRole sets both the acting and the original role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be vendedor or gerente")
	}
	u.Role = role
	u.OriginalRole = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetPasswordHash replaces the stored password hash
func (u *User) SetPasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// CanLogin reports whether the user is allowed to authenticate
func (u *User) CanLogin() bool {
	return u.Active
}

// RecordLogin stores the time of a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Activate re-enables a deactivated user
func (u *User) Activate() error {
	if u.Active {
		return shared.NewDomainError(shared.CodeInvalidState, "User is already active")
	}
	u.Active = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Deactivate disables the user
func (u *User) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError(shared.CodeInvalidState, "User is already inactive")
	}
	u.Active = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// ValidateEmail checks an email address format
func ValidateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidatePassword checks the strength of a plain password
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}
