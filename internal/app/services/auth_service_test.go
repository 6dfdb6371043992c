package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/auth"
)

type mockUserStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{},
	}
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	m.byEmail[user.Email] = user
	m.byID[user.UID()] = user
	return nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetByID(ctx context.Context, uid string) (*models.User, error) {
	user, ok := m.byID[uid]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

type mockTokenStore struct {
	records map[string]*models.RefreshToken
	revoked []string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{records: map[string]*models.RefreshToken{}}
}

func (m *mockTokenStore) Create(ctx context.Context, token, uid string, expiresAt time.Time) error {
	m.records[token] = &models.RefreshToken{
		Token:     token,
		UserID:    uid,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *mockTokenStore) GetByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	record, ok := m.records[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return record, nil
}

func (m *mockTokenStore) Revoke(ctx context.Context, token string) error {
	record, ok := m.records[token]
	if !ok {
		return apperrors.ErrTokenInvalid
	}
	record.Revoked = true
	m.revoked = append(m.revoked, token)
	return nil
}

func newTestAuthService(store *mockUserStore, tokens *mockTokenStore) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	return NewAuthService(store, tokens, jwtService)
}

func studentRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
		Role:     "student",
		USN:      "1XX22CS001",
		Semester: 3,
	}
}

func TestRegister_Student(t *testing.T) {
	store := newMockUserStore()
	tokens := newMockTokenStore()
	svc := newTestAuthService(store, tokens)

	resp, err := svc.Register(context.Background(), studentRegistration())

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "alice@example.com", store.created[0].Email, "email is lowercased")
	assert.Equal(t, models.RoleStudent, store.created[0].Role)
	assert.NotEqual(t, "secret123", store.created[0].Password, "password must be hashed")
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	require.NotEmpty(t, resp.RefreshToken)
	record, ok := tokens.records[resp.RefreshToken]
	require.True(t, ok, "issued refresh token must be persisted")
	assert.Equal(t, store.created[0].UID(), record.UserID)
	assert.False(t, record.Revoked)
}

func TestRegister_TeacherRequiresSubjects(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	req := dto.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
		Role:     "teacher",
	}

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req.Subjects = []string{"Operating Systems"}
	_, err = svc.Register(context.Background(), req)
	assert.NoError(t, err)
}

func TestRegister_StudentFieldValidation(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	t.Run("missing usn", func(t *testing.T) {
		req := studentRegistration()
		req.USN = ""
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("semester out of range", func(t *testing.T) {
		req := studentRegistration()
		req.Semester = 9
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestRegister_UnknownRole(t *testing.T) {
	svc := newTestAuthService(newMockUserStore(), newMockTokenStore())

	req := studentRegistration()
	req.Role = "superuser"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	_, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), studentRegistration())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	store := newMockUserStore()
	tokens := newMockTokenStore()
	svc := newTestAuthService(store, tokens)

	_, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Contains(t, tokens.records, resp.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email does not leak existence", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("blocked account rejected with valid credentials", func(t *testing.T) {
		store.byEmail["alice@example.com"].Blocked = true
		defer func() { store.byEmail["alice@example.com"].Blocked = false }()

		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, apperrors.ErrAccountBlocked)
	})
}

func TestRefreshToken_RotatesTokenPair(t *testing.T) {
	store := newMockUserStore()
	tokens := newMockTokenStore()
	svc := newTestAuthService(store, tokens)

	first, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	second, err := svc.RefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	assert.NotEmpty(t, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, []string{first.RefreshToken}, tokens.revoked, "spent token is revoked")
	assert.Contains(t, tokens.records, second.RefreshToken, "replacement token is persisted")
}

func TestRefreshToken_SpentTokenRejected(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	first, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, "a refresh token cannot be replayed")
}

func TestRefreshToken_UnknownToken(t *testing.T) {
	svc := newTestAuthService(newMockUserStore(), newMockTokenStore())

	_, err := svc.RefreshToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.RefreshToken(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRefreshToken_ExpiredToken(t *testing.T) {
	store := newMockUserStore()
	tokens := newMockTokenStore()
	svc := newTestAuthService(store, tokens)

	first, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	tokens.records[first.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestRefreshToken_BlockedAccountRejected(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	first, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	store.byEmail["alice@example.com"].Blocked = true

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountBlocked)
}

func TestRefreshToken_DeletedAccountRejected(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store, newMockTokenStore())

	first, err := svc.Register(context.Background(), studentRegistration())
	require.NoError(t, err)

	uid := store.created[0].UID()
	delete(store.byID, uid)

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
