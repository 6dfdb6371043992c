package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
)

type mockAccountStore struct {
	users   map[string]*models.User
	deleted []string
}

func newMockAccountStore(users ...*models.User) *mockAccountStore {
	m := &mockAccountStore{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.UID()] = u
	}
	return m
}

func (m *mockAccountStore) GetByID(ctx context.Context, uid string) (*models.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (m *mockAccountStore) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockAccountStore) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	u, ok := m.users[uid]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Blocked = blocked
	return nil
}

func (m *mockAccountStore) Delete(ctx context.Context, uid string) error {
	if _, ok := m.users[uid]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, uid)
	m.deleted = append(m.deleted, uid)
	return nil
}

type mockCascader struct {
	calls []string
	count int
	err   error
}

func (m *mockCascader) DeleteAllByOwner(ctx context.Context, uid string) (int, error) {
	m.calls = append(m.calls, uid)
	return m.count, m.err
}

type mockTokenRevoker struct {
	revokedFor []string
	err        error
}

func (m *mockTokenRevoker) RevokeAllForUser(ctx context.Context, uid string) error {
	m.revokedFor = append(m.revokedFor, uid)
	return m.err
}

// userWithRole builds a user whose UID is the given 24-char hex string.
func userWithRole(uid string, role models.Role) *models.User {
	id, _ := primitive.ObjectIDFromHex(uid)
	return &models.User{ID: id, Username: uid, Email: uid + "@example.com", Role: role}
}

func TestSetBlocked(t *testing.T) {
	teacher := userWithRole("a1b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher)
	store := newMockAccountStore(teacher)
	svc := NewUserService(store, &mockCascader{}, &mockTokenRevoker{})

	require.NoError(t, svc.SetBlocked(context.Background(), teacher.UID(), true))
	assert.True(t, teacher.Blocked)

	require.NoError(t, svc.SetBlocked(context.Background(), teacher.UID(), false))
	assert.False(t, teacher.Blocked)
}

func TestSetBlocked_AdminCannotBeBlocked(t *testing.T) {
	admin := userWithRole("b1b2c3d4e5f6a7b8c9d0e1f2", models.RoleAdmin)
	store := newMockAccountStore(admin)
	svc := NewUserService(store, &mockCascader{}, &mockTokenRevoker{})

	err := svc.SetBlocked(context.Background(), admin.UID(), true)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.False(t, admin.Blocked)
}

func TestDeleteUser_CascadesOwnedResources(t *testing.T) {
	target := userWithRole("c1b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher)
	store := newMockAccountStore(target)
	cascader := &mockCascader{count: 3}
	svc := NewUserService(store, cascader, &mockTokenRevoker{})

	err := svc.DeleteUser(context.Background(), "admin-uid", target.UID())

	require.NoError(t, err)
	assert.Equal(t, []string{target.UID()}, store.deleted)
	assert.Equal(t, []string{target.UID()}, cascader.calls)
}

func TestDeleteUser_SelfDeletionRefused(t *testing.T) {
	target := userWithRole("d1b2c3d4e5f6a7b8c9d0e1f2", models.RoleAdmin)
	store := newMockAccountStore(target)
	cascader := &mockCascader{}
	svc := NewUserService(store, cascader, &mockTokenRevoker{})

	err := svc.DeleteUser(context.Background(), target.UID(), target.UID())

	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, store.deleted)
	assert.Empty(t, cascader.calls)
}

func TestDeleteUser_CascadeFailureDoesNotResurrectProfile(t *testing.T) {
	target := userWithRole("e1b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher)
	store := newMockAccountStore(target)
	cascader := &mockCascader{err: errors.New("catalog unavailable")}
	svc := NewUserService(store, cascader, &mockTokenRevoker{})

	err := svc.DeleteUser(context.Background(), "admin-uid", target.UID())

	require.NoError(t, err, "the profile is gone; the cascade failure only leaves orphans")
	assert.Equal(t, []string{target.UID()}, store.deleted)
}

func TestDeleteUser_RevokesRefreshTokens(t *testing.T) {
	target := userWithRole("a2b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher)
	store := newMockAccountStore(target)
	revoker := &mockTokenRevoker{}
	svc := NewUserService(store, &mockCascader{}, revoker)

	err := svc.DeleteUser(context.Background(), "admin-uid", target.UID())

	require.NoError(t, err)
	assert.Equal(t, []string{target.UID()}, revoker.revokedFor)
}

func TestDeleteUser_TokenRevocationFailureDoesNotAbort(t *testing.T) {
	target := userWithRole("b2b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher)
	store := newMockAccountStore(target)
	revoker := &mockTokenRevoker{err: errors.New("token store unavailable")}
	cascader := &mockCascader{}
	svc := NewUserService(store, cascader, revoker)

	err := svc.DeleteUser(context.Background(), "admin-uid", target.UID())

	require.NoError(t, err)
	assert.Equal(t, []string{target.UID()}, store.deleted)
	assert.Equal(t, []string{target.UID()}, cascader.calls, "the cascade still runs")
}

func TestDeleteUser_UnknownUser(t *testing.T) {
	store := newMockAccountStore()
	svc := NewUserService(store, &mockCascader{}, &mockTokenRevoker{})

	err := svc.DeleteUser(context.Background(), "admin-uid", "f1b2c3d4e5f6a7b8c9d0e1f2")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	store := newMockAccountStore(
		userWithRole("a1b2c3d4e5f6a7b8c9d0e1f2", models.RoleStudent),
		userWithRole("b1b2c3d4e5f6a7b8c9d0e1f2", models.RoleTeacher),
	)
	svc := NewUserService(store, &mockCascader{}, &mockTokenRevoker{})

	list, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Users, 2)
}
