package sector

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrSectorNotFound    = apperror.NotFound("Sector not found")
	ErrSubsectorNotFound = apperror.NotFound("Subsector not found")
	ErrAdminNotFound     = apperror.NotFound("Assignment not found")
	ErrSectorOutOfScope  = apperror.Forbidden("You do not manage this sector")
)
