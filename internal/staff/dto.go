package staff

import (
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries a new staff account. Only accepted outside
// production and behind a feature flag.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// RefreshRequest rotates a refresh token. The access token may be expired.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Summary is the staff account shape returned to clients.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse is the token pair plus the authenticated account.
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         Summary `json:"user"`
}

// RefreshResponse is the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FromModel converts a staff row into its API shape.
func FromModel(row *models.StaffUser) Summary {
	return Summary{
		ID:          row.ID,
		Email:       row.Email,
		FullName:    row.FullName,
		LastLoginAt: row.LastLoginAt,
	}
}
