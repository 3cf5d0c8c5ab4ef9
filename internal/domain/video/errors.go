package video

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrVideoNotFound      = apperror.NotFound("Video not found")
	ErrCollectionNotFound = apperror.NotFound("Collection not found")
)
