package notification

import "github.com/google/uuid"

// GroupRequest is the body of group create and update.
type GroupRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// MembersRequest adds users to a group.
type MembersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" validate:"required,min=1"`
}

// SendRequest is the body of POST /api/admin/notifications. Recipients are
// the union of UserIDs and the members of GroupIDs.
type SendRequest struct {
	Title    string      `json:"title" validate:"required,max=200"`
	Message  string      `json:"message" validate:"required,max=2000"`
	Type     Type        `json:"type" validate:"omitempty,oneof=info success warning error"`
	Link     *string     `json:"link" validate:"omitempty,max=500"`
	UserIDs  []uuid.UUID `json:"user_ids"`
	GroupIDs []uuid.UUID `json:"group_ids"`
}

// SendResult reports how many rows a send inserted.
type SendResult struct {
	Recipients int `json:"recipients"`
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// ReadAllResponse for the read-all endpoint
type ReadAllResponse struct {
	Updated int64 `json:"updated"`
}
