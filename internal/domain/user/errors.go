package user

import (
	"github.com/cresol/hub-api/internal/pkg/apperror"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

var (
	ErrSelfDemotion     = apperror.Validation("Admins cannot remove their own admin role")
	ErrInvalidReference = apperror.Validation("Position or work location does not exist")
	ErrAuthUnavailable  = apperror.Upstream("Authentication service unavailable")
)

// errNotCorporate is built per call since the domain is configured at
// startup.
func errNotCorporate() error {
	return apperror.Validation("Use um e-mail corporativo (@" + validator.CorporateDomain() + ")")
}
