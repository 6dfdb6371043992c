package services

import (
	"context"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// accountStore is the account persistence surface the user service needs.
type accountStore interface {
	GetByID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetBlocked(ctx context.Context, uid string, blocked bool) error
	Delete(ctx context.Context, uid string) error
}

// resourceCascader removes every catalog record owned by a user.
type resourceCascader interface {
	DeleteAllByOwner(ctx context.Context, uid string) (int, error)
}

// tokenRevoker invalidates every live refresh token of an account.
type tokenRevoker interface {
	RevokeAllForUser(ctx context.Context, uid string) error
}

// UserService implements the admin account operations
type UserService struct {
	users     accountStore
	resources resourceCascader
	tokens    tokenRevoker
}

// NewUserService creates a new UserService
func NewUserService(users accountStore, resources resourceCascader, tokens tokenRevoker) *UserService {
	return &UserService{users: users, resources: resources, tokens: tokens}
}

// GetProfile returns one account's public profile
func (s *UserService) GetProfile(ctx context.Context, uid string) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ListUsers returns every account profile for the admin panel
func (s *UserService) ListUsers(ctx context.Context) (*dto.UserListResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return &dto.UserListResponse{Users: out, Total: len(out)}, nil
}

// SetBlocked blocks or unblocks an account. Admin accounts cannot be blocked.
func (s *UserService) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin && blocked {
		return apperrors.NewForbiddenError("admin accounts cannot be blocked")
	}

	if err := s.users.SetBlocked(ctx, uid, blocked); err != nil {
		return err
	}

	logger.Info().Str("uid", uid).Bool("blocked", blocked).Msg("Account blocked flag updated")
	return nil
}

// DeleteUser removes an account and cascades over everything it owns: the
// profile document goes first, then every owned catalog record with its
// hosted binary. Cascade failures degrade to orphans rather than aborting.
func (s *UserService) DeleteUser(ctx context.Context, actorUID, uid string) error {
	if actorUID == uid {
		return apperrors.NewForbiddenError("you cannot delete your own account")
	}

	if err := s.users.Delete(ctx, uid); err != nil {
		return err
	}

	if err := s.tokens.RevokeAllForUser(ctx, uid); err != nil {
		logger.Warn().Err(err).Str("uid", uid).Msg("Failed to revoke refresh tokens of deleted account")
	}

	deleted, err := s.resources.DeleteAllByOwner(ctx, uid)
	if err != nil {
		// The profile is already gone; the remaining records are orphans
		// until an admin retries.
		logger.Error().Err(err).Str("uid", uid).Msg("Cascade deletion failed after profile removal")
		return nil
	}

	logger.Info().Str("uid", uid).Int("resourcesDeleted", deleted).Msg("Account deleted with owned resources")
	return nil
}
