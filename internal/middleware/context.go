package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
	clientIPKey  contextKey = "client_ip"
)

// Identity is the authenticated caller resolved for a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
	Token  string
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller, ok is false for anonymous requests.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := GetIdentity(ctx)
	return id.UserID
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	id, _ := GetIdentity(ctx)
	return id.Role
}

// GetRequestID returns the request id set by RequestID.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetClientIP returns the caller address recorded by RequestID.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
