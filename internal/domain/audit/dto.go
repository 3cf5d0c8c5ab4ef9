package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogResponse flattens the nullable columns of Log.
type LogResponse struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	ActorEmail string          `json:"actor_email,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToResponse converts a row for the API.
func ToResponse(l *Log) *LogResponse {
	resp := &LogResponse{
		ID:         l.ID,
		ActorEmail: l.ActorEmail.String,
		Action:     l.Action,
		EntityType: l.EntityType,
		OldValue:   l.OldValue,
		NewValue:   l.NewValue,
		Reason:     l.Reason.String,
		IPAddress:  l.IPAddress.String,
		CreatedAt:  l.CreatedAt,
	}
	if l.ActorID.Valid {
		resp.ActorID = &l.ActorID.UUID
	}
	if l.EntityID.Valid {
		resp.EntityID = &l.EntityID.UUID
	}
	return resp
}
