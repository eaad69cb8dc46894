// Package directory implements the Overlord user-directory integration:
// a typed HTTP client for the external directory service, an in-memory
// store that keeps the dashboard's view of users consistent, and a
// read-only audit log reader.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/orivyx/orivyx-backend/internal/models"
)

// auditPageSize bounds one audit fetch. The dashboard shows a single page.
const auditPageSize = 50

const maxResponseBytes = 4 << 20

// Client is the stateless HTTP boundary to the directory service. Every
// call obtains a fresh bearer token from its TokenSource; the client holds
// no directory state and no credentials of its own.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient builds a directory client. timeout is the per-call budget; a
// call that exceeds it surfaces a TimeoutError rather than hanging the
// dashboard in a pending state.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope is the directory response convention: a body with an optional
// top-level data field. When data is present the payload lives there,
// otherwise the body itself is the payload.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// apiError is the directory error body convention.
type apiError struct {
	Error string `json:"error"`
}

// ListUsers returns every user in the directory.
func (c *Client) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	var users []models.DirectoryUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &users, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user by username. A 404 surfaces as NotFoundError.
func (c *Client) GetUser(ctx context.Context, username string) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	path := "/api/v1/users/" + url.PathEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &user, "user "+username); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user. The directory assigns the username and
// validates password strength; rejections surface as ValidationError with
// the server's message. The request password is not retained.
func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	if err := c.do(ctx, http.MethodPost, "/api/v1/users", req, &user, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the mutable fields of a user. The username itself is
// immutable and never part of the request body.
func (c *Client) UpdateUser(ctx context.Context, username string, req models.UpdateUserRequest) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	path := "/api/v1/users/" + url.PathEscape(username)
	if err := c.do(ctx, http.MethodPut, path, req, &user, "user "+username); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user. Deleting an already-deleted user surfaces as
// NotFoundError, never as silent success.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	path := "/api/v1/users/" + url.PathEscape(username)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "user "+username)
}

// SetUserEnabled hits the enable or disable endpoint depending on the
// desired target state. The caller decides the direction from its last
// known status; the server remains authoritative if that status is stale.
func (c *Client) SetUserEnabled(ctx context.Context, username string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}
	path := "/api/v1/users/" + url.PathEscape(username) + "/" + action
	return c.do(ctx, http.MethodPost, path, nil, nil, "user "+username)
}

// ResetPassword sets a new password for the user. The password is never
// echoed back and never logged.
func (c *Client) ResetPassword(ctx context.Context, username, newPassword string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/reset-password"
	body := struct {
		NewPassword string `json:"newPassword"`
	}{NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, path, body, nil, "user "+username)
}

// RenewExpiration extends the account expiry by the server-defined window
// (120 days as deployed). The new expiry is not computed here; callers
// refetch to observe the authoritative value.
func (c *Client) RenewExpiration(ctx context.Context, username string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/renew-expiration"
	return c.do(ctx, http.MethodPost, path, nil, nil, "user "+username)
}

// UserGroups returns the groups a user belongs to.
func (c *Client) UserGroups(ctx context.Context, username string) ([]string, error) {
	var groups []string
	path := "/api/v1/users/" + url.PathEscape(username) + "/groups"
	if err := c.do(ctx, http.MethodGet, path, nil, &groups, "user "+username); err != nil {
		return nil, err
	}
	return groups, nil
}

// AddUserToGroup adds the user to a group.
func (c *Client) AddUserToGroup(ctx context.Context, username, group string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/groups"
	body := struct {
		Group string `json:"group"`
	}{Group: group}
	return c.do(ctx, http.MethodPost, path, body, nil, "user "+username)
}

// RemoveUserFromGroup removes the user from a group.
func (c *Client) RemoveUserFromGroup(ctx context.Context, username, group string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/groups/" + url.PathEscape(group)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "group "+group)
}

// ListGroups returns all directory groups with member counts.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.do(ctx, http.MethodGet, "/api/v1/groups", nil, &groups, "groups"); err != nil {
		return nil, err
	}
	return groups, nil
}

// AuditLogs fetches the newest page of audit events for a user. Order is
// server-defined.
func (c *Client) AuditLogs(ctx context.Context, username string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	path := fmt.Sprintf("/api/v1/users/%s/audit?pageSize=%d", url.PathEscape(username), auditPageSize)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries, "audit for "+username); err != nil {
		return nil, err
	}
	return entries, nil
}

// do performs one authenticated round trip: fresh token, JSON request,
// envelope-unwrapped JSON response, typed error on any failure.
func (c *Client) do(ctx context.Context, method, path string, body, out any, resource string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		var authErr *AuthTokenError
		var timeoutErr *TimeoutError
		if errors.As(err, &authErr) || errors.As(err, &timeoutErr) {
			return err
		}
		return &AuthTokenError{Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		op := method + " " + path
		if isTimeout(err) {
			return &TimeoutError{Op: op}
		}
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw, resource)
	}

	if out == nil {
		return nil
	}
	return decodeBody(raw, out)
}

// decodeBody unwraps the {data: ...} envelope when present, otherwise
// decodes the body directly.
func decodeBody(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		raw = env.Data
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}

// decodeError maps a non-2xx response to the error taxonomy. The server
// message from {error: string} is preferred; otherwise a synthesized
// "HTTP <status>" message is used.
func decodeError(status int, raw []byte, resource string) error {
	message := ""
	var body apiError
	if err := json.Unmarshal(raw, &body); err == nil {
		message = body.Error
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	switch {
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: resource, Message: message}
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return &ValidationError{Status: status, Message: message}
	default:
		return &HTTPError{Status: status, Message: message}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
