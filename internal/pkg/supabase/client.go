// Package supabase is a small client for the GoTrue auth REST API of a
// Supabase project: token introspection and the admin user endpoints.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

var (
	ErrInvalidToken  = errors.New("supabase: invalid or expired token")
	ErrEmailExists   = errors.New("supabase: email already registered")
	ErrUserNotFound  = errors.New("supabase: user not found")
	ErrNotConfigured = errors.New("supabase: url or service role key not configured")
)

// User is the subset of the GoTrue user object the hub uses.
type User struct {
	ID           uuid.UUID              `json:"id"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// CreateUserParams is the body of POST /auth/v1/admin/users.
type CreateUserParams struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
}

// UpdateUserParams is the body of PUT /auth/v1/admin/users/{id}.
type UpdateUserParams struct {
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Client talks to {baseURL}/auth/v1.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewClient creates a client. serviceKey is the project service-role key; it
// is sent as apikey on every call and as bearer on admin calls.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: timeout, Transport: transport},
	}
}

// GetUser resolves the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	status, body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &u, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, httpError("get user", status, body)
	}
}

// CreateUser creates a confirmed user with a password.
func (c *Client) CreateUser(ctx context.Context, p CreateUserParams) (*User, error) {
	var u User
	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", c.serviceKey, p, &u)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return &u, nil
	case status == http.StatusUnprocessableEntity && isDuplicateEmail(body):
		return nil, ErrEmailExists
	default:
		return nil, httpError("create user", status, body)
	}
}

// UpdateUserByID patches metadata of an existing user.
func (c *Client) UpdateUserByID(ctx context.Context, id uuid.UUID, p UpdateUserParams) error {
	status, body, err := c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+id.String(), c.serviceKey, p, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return httpError("update user", status, body)
	}
}

// DeleteUser removes a user. A missing user is not an error.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id.String(), c.serviceKey, nil, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return httpError("delete user", status, body)
	}
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out interface{}) (int, []byte, error) {
	if c == nil || c.baseURL == "" || c.serviceKey == "" {
		return 0, nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("supabase request error: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("supabase request error: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("supabase timeout: %w", err)
		}
		return 0, nil, fmt.Errorf("supabase network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("supabase read error: %w", err)
	}

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, body, fmt.Errorf("supabase decode error: %w", err)
		}
	}
	return resp.StatusCode, body, nil
}

func isDuplicateEmail(body []byte) bool {
	var e struct {
		Code    string `json:"error_code"`
		Message string `json:"msg"`
	}
	_ = json.Unmarshal(body, &e)
	return e.Code == "email_exists" || strings.Contains(strings.ToLower(e.Message), "already been registered")
}

func httpError(op string, status int, body []byte) error {
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Errorf("supabase %s http error: status=%d body=%s", op, status, string(body))
}
