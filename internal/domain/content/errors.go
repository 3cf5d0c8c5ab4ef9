package content

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrNotFound     = apperror.NotFound("Content not found")
	ErrInvalidDates = apperror.Validation("end_date must not be before start_date")
	ErrReorderIDs   = apperror.Validation("ids must list items of this scope")
)
