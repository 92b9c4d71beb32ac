package models

import "time"

// Account roles. A user carries exactly one role; providers additionally
// own a ProviderProfile of the matching kind.
const (
	RoleBuyer     = "BUYER"
	RoleSupplier  = "SUPPLIER"
	RoleMechanic  = "MECHANIC"
	RoleLogistics = "LOGISTICS"
	RoleAdmin     = "ADMIN"
)

// User represents an account in the marketplace.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProviderProfile holds business metadata for supplier, mechanic and
// logistics accounts. Rating is a denormalized average of booking feedback.
type ProviderProfile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Kind         string    `json:"kind"` // SUPPLIER, MECHANIC or LOGISTICS
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Verified     bool      `json:"verified"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=BUYER SUPPLIER MECHANIC LOGISTICS"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup, login and the OAuth callback.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	BusinessName *string `json:"business_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
}
