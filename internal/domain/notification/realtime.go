package notification

import (
	"context"

	"github.com/google/uuid"
)

// EventNew is the realtime event type of a delivered notification.
const EventNew = "notification:new"

// RealtimePublisher pushes a freshly stored notification to its recipient.
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID uuid.UUID, n *Notification, unreadCount int) error
}

type userSender interface {
	SendToUserJSON(userID uuid.UUID, payload any) error
}

// Event is the frame sent on the recipient's personal channel.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the notification and the badge count after it.
type EventData struct {
	Notification *Notification `json:"notification"`
	UnreadCount  int           `json:"unread_count"`
}

// WSPublisher sends events through the realtime hub. A nil publisher or
// sender drops them.
type WSPublisher struct {
	sender userSender
}

func NewWSPublisher(sender userSender) *WSPublisher {
	return &WSPublisher{sender: sender}
}

func (p *WSPublisher) NotifyNew(_ context.Context, userID uuid.UUID, n *Notification, unreadCount int) error {
	if p == nil || p.sender == nil {
		return nil
	}
	return p.sender.SendToUserJSON(userID, Event{
		Type: EventNew,
		Data: EventData{Notification: n, UnreadCount: unreadCount},
	})
}
