package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusshare/campusshare/internal/app/auth"
	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
)

type stubRoleSource struct {
	role models.Role
	err  error
}

func (s stubRoleSource) GetRole(ctx context.Context, uid string) (models.Role, error) {
	return s.role, s.err
}

func TestCanMutate(t *testing.T) {
	resource := &models.Resource{ID: "r1", UploadedBy: "owner-uid"}

	cases := []struct {
		name  string
		actor auth.Actor
		want  bool
	}{
		{"admin mutates anything", auth.Actor{UID: "someone", Role: models.RoleAdmin}, true},
		{"admin mutates without ownership", auth.Actor{UID: "not-owner", Role: models.RoleAdmin}, true},
		{"teacher mutates own upload", auth.Actor{UID: "owner-uid", Role: models.RoleTeacher}, true},
		{"teacher cannot mutate others", auth.Actor{UID: "other-uid", Role: models.RoleTeacher}, false},
		{"teacher with empty uid denied", auth.Actor{UID: "", Role: models.RoleTeacher}, false},
		{"student never mutates", auth.Actor{UID: "owner-uid", Role: models.RoleStudent}, false},
		{"role-less actor denied", auth.Actor{UID: "owner-uid"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.CanMutate(tc.actor, resource))
		})
	}
}

func TestCanMutate_OwnershipIsPerResource(t *testing.T) {
	teacher := auth.Actor{UID: "t1", Role: models.RoleTeacher}

	owned := &models.Resource{ID: "a", UploadedBy: "t1"}
	foreign := &models.Resource{ID: "b", UploadedBy: "t2"}

	assert.True(t, auth.CanMutate(teacher, owned))
	assert.False(t, auth.CanMutate(teacher, foreign))
}

func TestCanMutate_EmptyOwnerNeverMatchesEmptyUID(t *testing.T) {
	orphan := &models.Resource{ID: "r", UploadedBy: ""}
	assert.False(t, auth.CanMutate(auth.Actor{UID: "", Role: models.RoleTeacher}, orphan))
}

func TestCanUpload(t *testing.T) {
	assert.True(t, auth.CanUpload(auth.Actor{Role: models.RoleTeacher}))
	assert.True(t, auth.CanUpload(auth.Actor{Role: models.RoleAdmin}))
	assert.False(t, auth.CanUpload(auth.Actor{Role: models.RoleStudent}))
	assert.False(t, auth.CanUpload(auth.Actor{}))
}

func TestResolveActor_UsesLiveRole(t *testing.T) {
	svc := auth.NewAuthorizationService(stubRoleSource{role: models.RoleAdmin})

	actor := svc.ResolveActor(context.Background(), "uid-1", "name")
	assert.Equal(t, models.RoleAdmin, actor.Role)
	assert.Equal(t, "uid-1", actor.UID)
}

func TestResolveActor_FailsClosedOnLookupError(t *testing.T) {
	svc := auth.NewAuthorizationService(stubRoleSource{err: errors.New("store down")})

	actor := svc.ResolveActor(context.Background(), "uid-1", "name")
	assert.Equal(t, models.Role(""), actor.Role)
	assert.False(t, auth.CanUpload(actor))
	assert.False(t, auth.CanMutate(actor, &models.Resource{UploadedBy: "uid-1"}))
}

func TestValidate_ReturnsPermissionError(t *testing.T) {
	svc := auth.NewAuthorizationService(stubRoleSource{role: models.RoleStudent})
	actor := svc.ResolveActor(context.Background(), "uid-1", "name")

	err := svc.ValidateCanUpload(actor)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = svc.ValidateCanMutate(actor, &models.Resource{UploadedBy: "uid-1"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
