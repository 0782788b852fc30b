package dto

import "github.com/google/uuid"

type CreateAccountRequest struct {
	Role     string     `json:"role"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone_number"`
	Password string     `json:"password"`
	ClinicID *uuid.UUID `json:"clinic_id,omitempty"`
	CoachID  *uuid.UUID `json:"coach_id,omitempty"`
}

// UpdateAccountRequest is used by both the admin update and PUT /me. Role and
// IsActive are ignored on PUT /me.
type UpdateAccountRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone_number"`
	Role          string `json:"role"`
	IsActive      *bool  `json:"is_active,omitempty"`
	PreviousEmail string `json:"previous_email,omitempty"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}
