package dto

import "time"

// RegisterUserRequest payload.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries optional account changes.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned after registration or login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
