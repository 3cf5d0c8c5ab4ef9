package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/pkg/pagination"
)

// Actions recorded by the admin surfaces.
const (
	ActionUserCreated      = "user.created"
	ActionUserRoleChanged  = "user.role_changed"
	ActionUserUpdated      = "user.updated"
	ActionSectorDeleted    = "sector.deleted"
	ActionSubsectorDeleted = "subsector.deleted"
	ActionAdminAssigned    = "scope_admin.assigned"
	ActionAdminRevoked     = "scope_admin.revoked"
	ActionNotificationSent = "notification.sent"
)

// Log is one audit_logs row.
type Log struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ActorID    uuid.NullUUID   `db:"actor_id" json:"actor_id"`
	ActorEmail sql.NullString  `db:"actor_email" json:"-"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.NullUUID   `db:"entity_id" json:"entity_id"`
	OldValue   json.RawMessage `db:"old_value" json:"old_value,omitempty"`
	NewValue   json.RawMessage `db:"new_value" json:"new_value,omitempty"`
	Reason     sql.NullString  `db:"reason" json:"-"`
	IPAddress  sql.NullString  `db:"ip_address" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Entry is what callers hand to the recorder; the actor comes from the
// request context.
type Entry struct {
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValue   interface{}
	NewValue   interface{}
	Reason     string
}

// Filter narrows the audit log listing.
type Filter struct {
	Action     string
	EntityType string
	pagination.Params
}
