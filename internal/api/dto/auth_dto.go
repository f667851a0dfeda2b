package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email          string              `json:"email"`
	Name           string              `json:"name"`
	Password       string              `json:"password"`
	Role           domain.Role         `json:"role"`
	Permissions    []domain.Permission `json:"permissions"`
	OrganizationID *int64              `json:"organization_id"`
	VendorID       *int64              `json:"vendor_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and account view.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account view.
type UserResponse struct {
	ID             int64               `json:"id"`
	Email          string              `json:"email"`
	Name           string              `json:"name"`
	Role           domain.Role         `json:"role"`
	Permissions    []domain.Permission `json:"permissions,omitempty"`
	OrganizationID *int64              `json:"organization_id,omitempty"`
	VendorID       *int64              `json:"vendor_id,omitempty"`
}
