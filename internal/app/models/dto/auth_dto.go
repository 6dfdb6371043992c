package dto

import "github.com/campusshare/campusshare/internal/app/models"

// RegisterRequest represents a signup request. Role-specific fields are
// validated in the auth service against the requested role.
type RegisterRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     string   `json:"role" binding:"required,oneof=student teacher admin"`
	USN      string   `json:"usn,omitempty"`
	Semester int      `json:"semester,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries the refresh token to exchange
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	ExpiresIn        int          `json:"expiresIn"`
	RefreshExpiresIn int          `json:"refreshExpiresIn"`
	User             UserResponse `json:"user"`
}

// UserResponse is the public view of an account profile
type UserResponse struct {
	UID         string      `json:"uid"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Blocked     bool        `json:"blocked"`
	USN         string      `json:"usn,omitempty"`
	Semester    int         `json:"semester,omitempty"`
	Subjects    []string    `json:"subjects,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
}

// NewUserResponse maps a user model to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		UID:         u.UID(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Blocked:     u.Blocked,
		USN:         u.USN,
		Semester:    u.Semester,
		Subjects:    u.Subjects,
		Permissions: u.Permissions,
	}
}
