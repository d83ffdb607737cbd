package dto

import (
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse returns the issued token.
type StaffLoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Name      string           `json:"name"`
	Role      domain.StaffRole `json:"role"`
}
