package collection

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrCollectionNotFound = apperror.NotFound("Collection not found")
	ErrItemNotFound       = apperror.NotFound("Collection item not found")
	ErrImageNotFound      = apperror.NotFound("Image not found")
	ErrVideoNotFound      = apperror.NotFound("Video not found")
	ErrDuplicateItem      = apperror.Conflict("Item already in collection")
	ErrItemTypeMismatch   = apperror.Validation("Item type does not match the collection type")
	ErrReorderIDs         = apperror.Validation("ids must list every item of the collection once")
)
