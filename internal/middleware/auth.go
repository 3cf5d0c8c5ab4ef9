package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cresol/hub-api/internal/pkg/jwt"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/supabase"
)

// ErrInvalidToken is returned by verifiers for bad or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Principal is what a verified token says about its owner.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// TokenVerifier checks an access token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// RoleLookup returns the role stored on the caller's profile. found is
// false when no profile row exists.
type RoleLookup interface {
	LookupRole(ctx context.Context, userID uuid.UUID) (role string, found bool, err error)
}

// JWTVerifier verifies tokens locally with the project JWT secret.
type JWTVerifier struct {
	svc *jwt.Service
}

func NewJWTVerifier(svc *jwt.Service) *JWTVerifier {
	return &JWTVerifier{svc: svc}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	claims, err := v.svc.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, _ := claims.UserID()
	return &Principal{UserID: userID, Email: claims.Email}, nil
}

// RemoteVerifier asks the auth server who owns the token.
type RemoteVerifier struct {
	client *supabase.Client
}

func NewRemoteVerifier(client *supabase.Client) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	u, err := v.client.GetUser(ctx, token)
	if errors.Is(err, supabase.ErrInvalidToken) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: u.ID, Email: u.Email}, nil
}

// Authenticator resolves the caller of every protected request: token,
// then identity, then role.
type Authenticator struct {
	verifier   TokenVerifier
	roles      RoleLookup
	cookieName string
}

// NewAuthenticator creates the auth resolver.
func NewAuthenticator(verifier TokenVerifier, roles RoleLookup, cookieName string) *Authenticator {
	return &Authenticator{verifier: verifier, roles: roles, cookieName: cookieName}
}

// Middleware authenticates with the bearer header, the session cookie or,
// for WebSocket upgrades, the token query parameter.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return a.handler(next, "")
}

// WithBodyToken is Middleware that also accepts the token in a top-level
// JSON body field when no header or cookie is present.
func (a *Authenticator) WithBodyToken(field string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.handler(next, field)
	}
}

func (a *Authenticator) handler(next http.Handler, bodyField string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.tokenFromRequest(r)
		if token == "" && bodyField != "" {
			token = tokenFromBody(r, bodyField)
		}
		if token == "" {
			response.Unauthorized(w, "Missing authorization")
			return
		}

		principal, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}
			logger.FromContext(r.Context()).Error().Err(err).Msg("Token verification failed")
			response.BadGateway(w, "Authentication service unavailable")
			return
		}

		role, found, err := a.roles.LookupRole(r.Context(), principal.UserID)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Str("user_id", principal.UserID.String()).Msg("Role lookup failed")
			response.InternalError(w)
			return
		}
		if !found {
			response.Forbidden(w, "Profile not found")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID: principal.UserID,
			Email:  principal.Email,
			Role:   role,
			Token:  token,
		})
		ctx = logger.With(ctx, "user_id", principal.UserID.String())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if a.cookieName != "" {
		if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
			return tokenFromCookie(c.Value)
		}
	}

	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

// tokenFromCookie accepts a raw token or the JSON array form
// ["<access>","<refresh>",...] written by the auth helpers.
func tokenFromCookie(value string) string {
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	if strings.HasPrefix(value, "[") {
		var parts []string
		if err := json.Unmarshal([]byte(value), &parts); err == nil && len(parts) > 0 {
			return parts[0]
		}
		return ""
	}
	return value
}

// tokenFromBody reads field from a JSON body and restores the body for the
// next handler.
func tokenFromBody(r *http.Request, field string) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var token string
	if err := json.Unmarshal(body[field], &token); err != nil {
		return ""
	}
	return token
}
