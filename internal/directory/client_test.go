package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orivyx/orivyx-backend/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticTokenSource("test-token"), 5*time.Second), srv
}

func TestListUsersEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"username":"alice","status":"active"},{"username":"bob","status":"blocked"}]}`))
	}))

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("unexpected usernames: %+v", users)
	}
	if !users[1].IsBlocked() {
		t.Error("bob should be blocked")
	}
}

func TestListUsersBareBody(t *testing.T) {
	// Responses without the data envelope decode directly.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"username":"carol","status":"active"}]`))
	}))

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "carol" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestGetUserNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"user does not exist"}`))
	}))

	_, err := client.GetUser(context.Background(), "ghost")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Message != "user does not exist" {
		t.Errorf("message = %q, want server message", notFound.Message)
	}
}

func TestCreateUserValidationError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"password too weak"}`))
	}))

	_, err := client.CreateUser(context.Background(), models.CreateUserRequest{
		DisplayName: "New User", Password: "123",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Message != "password too weak" {
		t.Errorf("message = %q, want server message preserved", validation.Message)
	}
	if validation.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", validation.Status)
	}
}

func TestServerErrorFallbackMessage(t *testing.T) {
	// No parseable error body: the message is synthesized from the status.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))

	err := client.DeleteUser(context.Background(), "alice")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if httpErr.Message != "HTTP 500" {
		t.Errorf("message = %q, want %q", httpErr.Message, "HTTP 500")
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, StaticTokenSource("t"), 50*time.Millisecond)
	_, err := client.ListUsers(context.Background())
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
}

func TestNetworkError(t *testing.T) {
	// Server closed before the call: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, StaticTokenSource("t"), time.Second)
	_, err := client.ListUsers(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

type failingTokenSource struct{}

func (failingTokenSource) Token(ctx context.Context) (string, error) {
	return "", &AuthTokenError{Err: errors.New("idp unreachable")}
}

func TestTokenFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, failingTokenSource{}, time.Second)
	_, err := client.ListUsers(context.Background())
	var authErr *AuthTokenError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthTokenError", err)
	}
	if called {
		t.Error("no request should reach the directory without a token")
	}
}

func TestSetUserEnabledEndpoints(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))

	if err := client.SetUserEnabled(context.Background(), "alice", true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if gotPath != "/api/v1/users/alice/enable" {
		t.Errorf("enable path = %q", gotPath)
	}

	if err := client.SetUserEnabled(context.Background(), "alice", false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if gotPath != "/api/v1/users/alice/disable" {
		t.Errorf("disable path = %q", gotPath)
	}
}

func TestResetPasswordBody(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
	}))

	if err := client.ResetPassword(context.Background(), "alice", "s3cret!"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if gotBody != `{"newPassword":"s3cret!"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestAuditLogsPageSize(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[{"id":"1","action":"CREATE_USER","success":true}]}`))
	}))

	entries, err := client.AuditLogs(context.Background(), "alice")
	if err != nil {
		t.Fatalf("AuditLogs: %v", err)
	}
	if gotQuery != "pageSize=50" {
		t.Errorf("query = %q, want pageSize=50", gotQuery)
	}
	if len(entries) != 1 || entries[0].Action != "CREATE_USER" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
