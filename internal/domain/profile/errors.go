package profile

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrProfileNotFound = apperror.NotFound("Profile not found")
	ErrEmailTaken      = apperror.Conflict("E-mail already registered")
)
