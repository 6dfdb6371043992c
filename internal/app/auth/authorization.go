package auth

import (
	"context"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// Actor is the authenticated identity performing an operation. Role is the
// actor's current profile role, not the role snapshotted onto any resource.
type Actor struct {
	UID      string
	Username string
	Role     models.Role
}

// CanMutate decides whether the actor may modify or delete the resource.
// Admins may mutate anything; teachers only resources they own; students and
// unauthenticated actors nothing. Ownership is row-level, so this must be
// evaluated per resource. The check is advisory: authoritative enforcement
// lives in the store's access rules.
func CanMutate(actor Actor, resource *models.Resource) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return actor.UID != "" && resource.UploadedBy == actor.UID
	default:
		return false
	}
}

// CanUpload decides whether the actor may create new resources.
func CanUpload(actor Actor) bool {
	return actor.Role == models.RoleTeacher || actor.Role == models.RoleAdmin
}

// RoleSource looks up an account's current role. Implementations fail closed:
// any lookup error yields no role.
type RoleSource interface {
	GetRole(ctx context.Context, uid string) (models.Role, error)
}

// AuthorizationService resolves actors against live profile data and applies
// the access policy. The role stored on a resource at upload time is display
// metadata only; a demoted teacher loses mutation rights immediately.
type AuthorizationService struct {
	roles RoleSource
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(roles RoleSource) *AuthorizationService {
	return &AuthorizationService{roles: roles}
}

// ResolveActor builds an Actor from an authenticated uid, consulting the live
// profile for the current role. Lookup failures fail closed to a role-less
// actor that no policy check accepts.
func (s *AuthorizationService) ResolveActor(ctx context.Context, uid, username string) Actor {
	role, err := s.roles.GetRole(ctx, uid)
	if err != nil {
		logger.Warn().Err(err).Str("uid", uid).Msg("Role lookup failed, treating actor as unprivileged")
		return Actor{UID: uid, Username: username}
	}
	return Actor{UID: uid, Username: username, Role: role}
}

// ValidateCanMutate returns a permission error unless the actor may mutate
// the resource.
func (s *AuthorizationService) ValidateCanMutate(actor Actor, resource *models.Resource) error {
	if !CanMutate(actor, resource) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateCanUpload returns a permission error unless the actor may upload.
func (s *AuthorizationService) ValidateCanUpload(actor Actor) error {
	if !CanUpload(actor) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
