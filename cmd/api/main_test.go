package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/jwt"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                       "test",
		SupabaseJWTSecret:         "test-secret",
		AuthCookieName:            "sb-access-token",
		AllowedOrigins:            []string{"http://localhost:3000"},
		CacheTTL:                  time.Minute,
		NotificationRetentionDays: 90,
	}
	return newApp(cfg, nil, nil, store)
}

func TestRouterRegistersAllRoutes(t *testing.T) {
	router := newTestApp(t).router()

	registered := map[string]bool{}
	require.NoError(t, chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.Replace(route, "/*/", "/", -1)
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		registered[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ws",
		"GET /files/*",

		"GET /api/me",
		"PUT /api/me",
		"GET /api/feed",
		"GET /api/banners",
		"GET /api/gallery",
		"GET /api/videos",
		"GET /api/collections",
		"POST /api/collections",
		"GET /api/collections/{id}",
		"PUT /api/collections/{id}",
		"DELETE /api/collections/{id}",
		"GET /api/collections/{id}/items",
		"POST /api/collections/{id}/items",
		"PUT /api/collections/{id}/items",
		"DELETE /api/collections/{id}/items/{itemId}",
		"GET /api/indicators",
		"GET /api/system-links",
		"GET /api/work-locations",
		"GET /api/positions",
		"GET /api/notifications",
		"GET /api/notifications/unread-count",
		"POST /api/notifications/{id}/read",
		"POST /api/notifications/read-all",

		"GET /api/sectors",
		"GET /api/sectors/{id}",
		"GET /api/sectors/{id}/subsectors",
		"GET /api/sectors/{id}/news",
		"GET /api/sectors/{id}/events",
		"GET /api/sectors/{id}/videos",
		"GET /api/subsectors/{id}/news",
		"GET /api/subsectors/{id}/events",
		"GET /api/subsectors/{id}/videos",
		"GET /api/subsectors/{id}/images",

		"POST /api/admin/create-user",
		"POST /api/admin/update-user-role",
		"GET /api/admin/users",
		"GET /api/admin/users/{id}",
		"PUT /api/admin/users/{id}",

		"POST /api/admin/sectors",
		"PUT /api/admin/sectors/{id}",
		"DELETE /api/admin/sectors/{id}",
		"GET /api/admin/sectors/{id}/admins",
		"POST /api/admin/sectors/{id}/admins",
		"DELETE /api/admin/sectors/{id}/admins/{userId}",
		"POST /api/admin/sectors/{id}/news",
		"PUT /api/admin/sectors/{id}/news/{itemId}",
		"DELETE /api/admin/sectors/{id}/news/{itemId}",
		"PATCH /api/admin/sectors/{id}/news/{itemId}/featured",
		"PATCH /api/admin/sectors/{id}/news/{itemId}/published",
		"POST /api/admin/sectors/{id}/events",
		"POST /api/admin/sectors/{id}/videos",

		"POST /api/admin/subsectors",
		"PUT /api/admin/subsectors/{id}",
		"DELETE /api/admin/subsectors/{id}",
		"GET /api/admin/subsectors/{id}/admins",
		"POST /api/admin/subsectors/{id}/news",
		"POST /api/admin/subsectors/{id}/images",

		"POST /api/admin/banners",
		"PUT /api/admin/banners/{id}",
		"DELETE /api/admin/banners/{id}",
		"PATCH /api/admin/banners/{id}/active",
		"PUT /api/admin/banners/reorder",
		"POST /api/admin/banners/upload",
		"POST /api/admin/gallery",
		"PUT /api/admin/gallery/{id}",
		"DELETE /api/admin/gallery/{id}",
		"PATCH /api/admin/gallery/{id}/active",
		"POST /api/admin/gallery/upload",
		"POST /api/admin/videos",
		"PUT /api/admin/videos/{id}",
		"DELETE /api/admin/videos/{id}",
		"POST /api/admin/videos/upload",
		"POST /api/admin/indicators",
		"PATCH /api/admin/indicators/{id}/active",
		"POST /api/admin/system-links",
		"PATCH /api/admin/system-links/{id}/active",
		"POST /api/admin/work-locations",
		"PUT /api/admin/positions/{id}",

		"GET /api/admin/notification-groups",
		"POST /api/admin/notification-groups",
		"GET /api/admin/notification-groups/{id}/members",
		"POST /api/admin/notification-groups/{id}/members",
		"DELETE /api/admin/notification-groups/{id}/members/{userId}",
		"POST /api/admin/notifications",
		"GET /api/admin/audit/logs",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestApp(t).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestApp(t).router()

	for _, path := range []string{"/api/feed", "/api/banners", "/api/admin/banners", "/api/admin/audit/logs"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/create-user", strings.NewReader(`{"email":"a@cresol.com.br"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fixedRole string

func (f fixedRole) LookupRole(context.Context, uuid.UUID) (string, bool, error) {
	return string(f), true, nil
}

var routeParam = regexp.MustCompile(`\{[^}]+\}`)

func TestAdminRoutesRejectPlainUsers(t *testing.T) {
	a := newTestApp(t)
	tokens := jwt.NewService(a.cfg.SupabaseJWTSecret)
	a.auth = middleware.NewAuthenticator(middleware.NewJWTVerifier(tokens), fixedRole(authz.RoleUser), a.cfg.AuthCookieName)
	router := a.router()

	token, err := tokens.Sign(uuid.New(), "someone@cresol.com.br", time.Hour)
	require.NoError(t, err)

	checked := 0
	require.NoError(t, chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.Replace(route, "/*/", "/", -1)
		if !strings.HasPrefix(route, "/api/admin/") {
			return nil
		}
		path := routeParam.ReplaceAllString(route, uuid.NewString())

		req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", method, route)
		checked++
		return nil
	}))
	assert.Greater(t, checked, 80)
}

func TestAdminListsRequireManageRights(t *testing.T) {
	a := newTestApp(t)
	tokens := jwt.NewService(a.cfg.SupabaseJWTSecret)
	a.auth = middleware.NewAuthenticator(middleware.NewJWTVerifier(tokens), fixedRole(authz.RoleSectorAdmin), a.cfg.AuthCookieName)
	router := a.router()

	token, err := tokens.Sign(uuid.New(), "sector@cresol.com.br", time.Hour)
	require.NoError(t, err)

	for _, path := range []string{"/api/admin/videos", "/api/admin/system-links", "/api/admin/work-locations", "/api/admin/positions", "/api/admin/banners"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}
