// Package authz holds the single authorization policy of the API: which roles
// may perform which action on which resource, and the sector/subsector scope
// rules layered on top.
package authz

import (
	"net/http"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/response"
)

// Roles stored in profiles.role.
const (
	RoleUser           = "user"
	RoleSectorAdmin    = "sector_admin"
	RoleSubsectorAdmin = "subsector_admin"
	RoleAdmin          = "admin"
)

// Roles lists every valid role.
var Roles = []string{RoleUser, RoleSectorAdmin, RoleSubsectorAdmin, RoleAdmin}

// Resource is a policy subject.
type Resource string

const (
	Banners          Resource = "banners"
	Gallery          Resource = "gallery"
	Sectors          Resource = "sectors"
	Subsectors       Resource = "subsectors"
	SectorContent    Resource = "sector_content"
	SubsectorContent Resource = "subsector_content"
	Collections      Resource = "collections"
	Videos           Resource = "videos"
	Indicators       Resource = "indicators"
	SystemLinks      Resource = "system_links"
	Reference        Resource = "reference"
	Users            Resource = "users"
	Notifications    Resource = "notifications"
	Audit            Resource = "audit"
)

// Action is what the caller wants to do with a resource.
type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

type rule struct {
	resource Resource
	action   Action
}

var (
	everyone      = []string{RoleUser, RoleSectorAdmin, RoleSubsectorAdmin, RoleAdmin}
	adminsOnly    = []string{RoleAdmin}
	sectorAdmins  = []string{RoleAdmin, RoleSectorAdmin}
	contentAdmins = []string{RoleAdmin, RoleSectorAdmin, RoleSubsectorAdmin}
)

// policy maps (resource, action) to the roles allowed. Pairs missing from
// the table are denied.
var policy = map[rule][]string{}

func init() {
	grant := func(res Resource, read []string, write []string) {
		policy[rule{res, Read}] = read
		policy[rule{res, Create}] = write
		policy[rule{res, Update}] = write
		policy[rule{res, Delete}] = write
	}

	grant(Banners, everyone, adminsOnly)
	grant(Gallery, everyone, adminsOnly)
	grant(Sectors, everyone, adminsOnly)
	grant(Subsectors, everyone, sectorAdmins)
	grant(SectorContent, everyone, sectorAdmins)
	grant(SubsectorContent, everyone, contentAdmins)
	grant(Collections, everyone, adminsOnly)
	grant(Videos, everyone, adminsOnly)
	grant(Indicators, everyone, adminsOnly)
	grant(SystemLinks, everyone, adminsOnly)
	grant(Reference, everyone, adminsOnly)
	grant(Users, adminsOnly, adminsOnly)
	grant(Notifications, adminsOnly, adminsOnly)
	policy[rule{Audit, Read}] = adminsOnly
}

// Allowed reports whether role may perform action on resource.
func Allowed(role string, resource Resource, action Action) bool {
	for _, r := range policy[rule{resource, action}] {
		if r == role {
			return true
		}
	}
	return false
}

// IsManager reports whether role can write resource at all. Used to decide
// whether drafts and inactive rows are visible.
func IsManager(role string, resource Resource) bool {
	return Allowed(role, resource, Update)
}

// Require rejects callers whose role is not allowed action on resource.
// It must run after the authenticator.
func Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.GetIdentity(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !Allowed(id.Role, resource, action) {
				response.Forbidden(w, "Permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActionFor maps an HTTP method to the policy action.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	case http.MethodPost:
		return Create
	case http.MethodDelete:
		return Delete
	default:
		return Update
	}
}

// RequireMethod is Require with the action taken from the request method.
func RequireMethod(resource Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Require(resource, ActionFor(r.Method))(next).ServeHTTP(w, r)
		})
	}
}

// RequireManage is RequireMethod for admin routers: reads are checked
// against Update, so only roles that can write the resource may list it.
func RequireManage(resource Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := ActionFor(r.Method)
			if action == Read {
				action = Update
			}
			Require(resource, action)(next).ServeHTTP(w, r)
		})
	}
}

// RequireStaff rejects plain users. It guards the whole admin surface.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetIdentity(r.Context())
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}
		if !IsStaff(id.Role) {
			response.Forbidden(w, "Permission denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsStaff reports whether role holds any administrative role.
func IsStaff(role string) bool {
	switch role {
	case RoleAdmin, RoleSectorAdmin, RoleSubsectorAdmin:
		return true
	}
	return false
}
