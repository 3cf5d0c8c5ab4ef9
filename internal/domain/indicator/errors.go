package indicator

import "github.com/cresol/hub-api/internal/pkg/apperror"

var ErrIndicatorNotFound = apperror.NotFound("Indicator not found")
