package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// userRevocationTTL outlives any refresh token issued before a deactivation
const userRevocationTTL = 30 * 24 * time.Hour

// UserService handles user administration
type UserService struct {
	userRepo       identity.UserRepository
	hasher         identity.PasswordHasher
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	hasher identity.PasswordHasher,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		hasher:         hasher,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := identity.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeConflict, "A user with this email already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Name, email, hash, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", req.Role))
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns users with pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := identity.UserFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Active: filter.Active,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}
	domainFilter.Normalize()
	if filter.Role != "" {
		role := identity.Role(filter.Role)
		domainFilter.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// Update changes profile, role or password of a user
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Email != nil {
		name, email := user.Name, user.Email
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil && normalizeEmail(*req.Email) != user.Email {
			email = normalizeEmail(*req.Email)
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError(shared.CodeConflict, "A user with this email already exists")
			}
		}
		if err := user.Update(name, email); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		if err := user.ChangeRole(identity.Role(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := identity.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		if err := user.SetPasswordHash(hash); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate disables a user and revokes every token issued to it
func (s *UserService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	if actor.UserID == id {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "You cannot deactivate your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), userRevocationTTL); err != nil {
		s.logger.Error("Failed to revoke tokens of deactivated user", zap.Error(err))
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("User deactivated",
		zap.String("user_id", user.ID.String()),
		zap.String("by", actor.UserID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate re-enables a user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
