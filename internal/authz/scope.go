package authz

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/response"
)

// ScopeStore answers admin assignment questions. Implemented by the sector
// repository.
type ScopeStore interface {
	IsSectorAdmin(ctx context.Context, userID, sectorID uuid.UUID) (bool, error)
	IsSubsectorAdmin(ctx context.Context, userID, subsectorID uuid.UUID) (bool, error)
	// SectorOfSubsector returns the parent sector, uuid.Nil when the
	// subsector does not exist.
	SectorOfSubsector(ctx context.Context, subsectorID uuid.UUID) (uuid.UUID, error)
}

// Scopes applies the sector and subsector scope rules.
type Scopes struct {
	store ScopeStore
}

// NewScopes creates the scope checker.
func NewScopes(store ScopeStore) *Scopes {
	return &Scopes{store: store}
}

// CanManageSector reports whether the caller may write content of sectorID.
func (s *Scopes) CanManageSector(ctx context.Context, id middleware.Identity, sectorID uuid.UUID) (bool, error) {
	switch id.Role {
	case RoleAdmin:
		return true, nil
	case RoleSectorAdmin:
		return s.store.IsSectorAdmin(ctx, id.UserID, sectorID)
	default:
		return false, nil
	}
}

// CanManageSubsector reports whether the caller may write content of
// subsectorID. Sector admins manage the subsectors of their sectors.
func (s *Scopes) CanManageSubsector(ctx context.Context, id middleware.Identity, subsectorID uuid.UUID) (bool, error) {
	switch id.Role {
	case RoleAdmin:
		return true, nil
	case RoleSubsectorAdmin:
		return s.store.IsSubsectorAdmin(ctx, id.UserID, subsectorID)
	case RoleSectorAdmin:
		sectorID, err := s.store.SectorOfSubsector(ctx, subsectorID)
		if err != nil || sectorID == uuid.Nil {
			return false, err
		}
		return s.store.IsSectorAdmin(ctx, id.UserID, sectorID)
	default:
		return false, nil
	}
}

// RequireSector guards routes whose URL parameter param names a sector.
func (s *Scopes) RequireSector(param string) func(http.Handler) http.Handler {
	return s.require(param, s.CanManageSector)
}

// RequireSubsector guards routes whose URL parameter param names a subsector.
func (s *Scopes) RequireSubsector(param string) func(http.Handler) http.Handler {
	return s.require(param, s.CanManageSubsector)
}

func (s *Scopes) require(param string, check func(context.Context, middleware.Identity, uuid.UUID) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.GetIdentity(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			scopeID, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				response.BadRequest(w, "Invalid ID")
				return
			}

			allowed, err := check(r.Context(), id, scopeID)
			if err != nil {
				logger.FromContext(r.Context()).Error().Err(err).Str("scope_id", scopeID.String()).Msg("Scope check failed")
				response.InternalError(w)
				return
			}
			if !allowed {
				response.Forbidden(w, "You do not manage this scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
