package services

import (
	"context"
	"strings"
	"time"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/auth"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// userStore is the account persistence surface the auth service needs.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, uid string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// tokenStore tracks issued refresh tokens server-side.
type tokenStore interface {
	Create(ctx context.Context, token, uid string, expiresAt time.Time) error
	GetByValue(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService handles registration, login and refresh token exchange
type AuthService struct {
	users  userStore
	tokens tokenStore
	jwt    *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(users userStore, tokens tokenStore, jwt *auth.JWTService) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt}
}

// Register creates a new account and issues its first token pair. Role-specific
// profile fields are validated against the requested role.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	role := models.Role(req.Role)
	if !models.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role: " + req.Role)
	}

	if err := validateRoleFields(role, req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    email,
		Password: hashed,
		Role:     role,
		USN:      strings.TrimSpace(req.USN),
		Semester: req.Semester,
		Subjects: req.Subjects,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().Str("uid", user.UID()).Str("role", string(role)).Msg("New account registered")

	return s.tokenResponse(ctx, user)
}

// Login verifies credentials and issues a token pair. Blocked accounts are
// rejected even with valid credentials.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Do not leak whether the account exists
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Blocked {
		return nil, apperrors.ErrAccountBlocked
	}

	return s.tokenResponse(ctx, user)
}

// RefreshToken exchanges a live refresh token for a new token pair. The spent
// token is revoked so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	record, err := s.tokens.GetByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if record.Revoked {
		return nil, apperrors.ErrTokenInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		// The account behind the token is gone
		return nil, apperrors.ErrTokenInvalid
	}
	if user.Blocked {
		return nil, apperrors.ErrAccountBlocked
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.tokenResponse(ctx, user)
}

func (s *AuthService) tokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, refreshToken, user.UID(), s.jwt.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		User:             dto.NewUserResponse(user),
	}, nil
}

// validateRoleFields checks the role-specific profile fields of a registration
func validateRoleFields(role models.Role, req dto.RegisterRequest) error {
	switch role {
	case models.RoleStudent:
		if strings.TrimSpace(req.USN) == "" {
			return apperrors.NewValidationError("usn is required for student accounts")
		}
		if req.Semester < models.MinSemester || req.Semester > models.MaxSemester {
			return apperrors.NewValidationError("semester must be between 1 and 8")
		}
	case models.RoleTeacher:
		if len(req.Subjects) == 0 {
			return apperrors.NewValidationError("at least one subject is required for teacher accounts")
		}
	}
	return nil
}
