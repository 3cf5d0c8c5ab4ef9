package gallery

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrImageNotFound     = apperror.NotFound("Image not found")
	ErrSubsectorNotFound = apperror.NotFound("Subsector not found")
)
