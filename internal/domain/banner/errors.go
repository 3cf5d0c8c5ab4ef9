package banner

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrBannerNotFound = apperror.NotFound("Banner not found")
	ErrReorderIDs     = apperror.Validation("ids must list existing banners once")
	ErrTitleRequired  = apperror.Validation("title is required")
)
