package identity

import "github.com/google/uuid"

// Actor is the authenticated user on whose behalf an operation runs
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
}

// IsManager reports whether the actor currently acts as a manager
func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

// IsSeller reports whether the actor currently acts as a seller
func (a Actor) IsSeller() bool {
	return a.Role == RoleSeller
}

// ActorFor builds the actor of a user
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
