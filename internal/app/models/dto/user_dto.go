package dto

// UserListResponse lists account profiles for the admin panel
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// SetBlockedRequest toggles the blocked flag on an account
type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}
