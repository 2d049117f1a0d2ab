package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "invalid email or password")

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// AllowDemoLogin enables logging in by role without a password
	AllowDemoLogin bool
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	hasher     identity.PasswordHasher
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	hasher identity.PasswordHasher,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a user by email and password and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login with unknown email", zap.String("email", input.Email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	return s.startSession(ctx, user)
}

// DemoLogin logs in as the first active user with the given role
func (s *AuthService) DemoLogin(ctx context.Context, input DemoLoginInput) (*LoginResult, error) {
	if !s.config.AllowDemoLogin {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Demo login is disabled")
	}
	role := identity.Role(input.Role)
	if !role.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Role must be vendedor or gerente")
	}

	user, err := s.userRepo.FindFirstActiveByRole(ctx, role)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "No active user with role "+input.Role)
		}
		return nil, err
	}

	s.logger.Info("Demo login", zap.String("role", input.Role), zap.String("user_id", user.ID.String()))
	return s.startSession(ctx, user)
}

// RefreshToken issues a new token pair and revokes the refresh token used
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Refresh token has been revoked")
	}
	userRevoked, err := s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return nil, err
	}
	if userRevoked {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	// Refresh tokens are single use
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	return s.issue(user)
}

// Logout revokes the access token of the current session
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to revoke token on logout", zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser returns the authenticated user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// SwitchRole lets a manager act as a seller and back. The role travels in the
// access token, so a new token pair is issued.
func (s *AuthService) SwitchRole(ctx context.Context, userID uuid.UUID, input SwitchRoleInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SwitchRole(identity.Role(input.Role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User switched role",
		zap.String("user_id", user.ID.String()),
		zap.String("role", input.Role))
	return s.issue(user)
}

func (s *AuthService) startSession(ctx context.Context, user *identity.User) (*LoginResult, error) {
	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// A failed last-login update must not block the login
		s.logger.Error("Failed to record login", zap.Error(err))
	}
	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return result, nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens", err)
	}
	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}
