package dto

import (
	"time"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// LoginRequest payload for staff login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse is the directory identity projection.
type IdentityResponse struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Email       *string `json:"email,omitempty"`
	Department  *string `json:"department,omitempty"`
}

// NewIdentityResponse maps a domain identity.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Department:  identity.Department,
	}
}
