package upload

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrFileTooLarge       = apperror.Validation("File exceeds maximum size")
	ErrInvalidMime        = apperror.Validation("File type not allowed")
	ErrEmptyFile          = apperror.Validation("File is empty")
	ErrUnreadableImage    = apperror.Validation("Image could not be decoded")
	ErrStorageUnavailable = apperror.Upstream("Storage unavailable")
)
