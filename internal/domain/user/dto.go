package user

import (
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/domain/profile"
)

// CreateUserRequest is the body of POST /api/admin/create-user. The field
// names follow the admin panel's camelCase payload.
type CreateUserRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	FullName       string     `json:"fullName" validate:"required,min=2,max=200"`
	PositionID     *uuid.UUID `json:"positionId"`
	WorkLocationID *uuid.UUID `json:"workLocationId"`
	Role           string     `json:"role" validate:"omitempty,role"`
	AvatarURL      *string    `json:"avatarUrl" validate:"omitempty,url"`
	// AdminToken is read by the auth middleware when no header is sent.
	AdminToken string `json:"adminToken"`
}

// CreateUserResponse is returned flat, outside the envelope.
type CreateUserResponse struct {
	Success      bool      `json:"success"`
	TempPassword string    `json:"tempPassword"`
	UserID       uuid.UUID `json:"userId"`
}

// UpdateRoleRequest is the body of POST /api/admin/update-user-role.
type UpdateRoleRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   string    `json:"role" validate:"required,role"`
}

// UpdateUserRequest is the body of PUT /api/admin/users/{id}.
type UpdateUserRequest struct {
	profile.UpdateMeRequest
	Role *string `json:"role" validate:"omitempty,role"`
}

// Created is the outcome of a create-user call.
type Created struct {
	UserID       uuid.UUID
	TempPassword string
}
