package reference

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrWorkLocationNotFound = apperror.NotFound("Work location not found")
	ErrPositionNotFound     = apperror.NotFound("Position not found")
)
