package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orivyx/orivyx-backend/internal/models"
)

// fakeDirectory is a minimal in-memory directory service for store tests.
type fakeDirectory struct {
	mux       *http.ServeMux
	users     []models.DirectoryUser
	listCalls atomic.Int64
	failList  atomic.Bool
}

func newFakeDirectory(users ...models.DirectoryUser) *fakeDirectory {
	f := &fakeDirectory{mux: http.NewServeMux(), users: users}

	f.mux.HandleFunc("GET /api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		if f.failList.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"directory down"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": f.users})
	})
	f.mux.HandleFunc("POST /api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateUserRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password == "weak" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"password too weak"}`))
			return
		}
		u := models.DirectoryUser{Username: "generated.name", DisplayName: req.DisplayName, Status: models.StatusActive}
		f.users = append(f.users, u)
		json.NewEncoder(w).Encode(map[string]any{"data": u})
	})
	f.mux.HandleFunc("DELETE /api/v1/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("username")
		for i, u := range f.users {
			if u.Username == name {
				f.users = append(f.users[:i], f.users[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"user not found"}`))
	})
	f.mux.HandleFunc("POST /api/v1/users/{username}/enable", func(w http.ResponseWriter, r *http.Request) {
		f.setStatus(r.PathValue("username"), models.StatusActive)
	})
	f.mux.HandleFunc("POST /api/v1/users/{username}/disable", func(w http.ResponseWriter, r *http.Request) {
		f.setStatus(r.PathValue("username"), models.StatusBlocked)
	})

	return f
}

func (f *fakeDirectory) setStatus(username string, status models.UserStatus) {
	for i := range f.users {
		if f.users[i].Username == username {
			f.users[i].Status = status
		}
	}
}

func newTestStore(t *testing.T, f *fakeDirectory) *Store {
	t.Helper()
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, StaticTokenSource("t"), 5*time.Second)
	return NewStore(client, nil)
}

func TestStoreLifecycle(t *testing.T) {
	f := newFakeDirectory(models.DirectoryUser{Username: "alice", Status: models.StatusActive})
	store := newTestStore(t, f)

	if store.State() != StateUninitialized {
		t.Fatalf("initial state = %q, want uninitialized", store.State())
	}
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if store.State() != StateReady {
		t.Errorf("state = %q, want ready", store.State())
	}
	if got := store.Users(); len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("users = %+v", got)
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	f := newFakeDirectory(models.DirectoryUser{Username: "alice", Status: models.StatusActive})
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	f.failList.Store(true)
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if store.State() != StateError {
		t.Errorf("state = %q, want error", store.State())
	}
	if store.Err() == "" {
		t.Error("expected recorded error message")
	}
	// Previous snapshot survives the failed refresh.
	if got := store.Users(); len(got) != 1 {
		t.Errorf("users = %+v, want previous snapshot kept", got)
	}

	// Retriable: the next successful refresh clears the error.
	f.failList.Store(false)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("retry Refresh: %v", err)
	}
	if store.State() != StateReady || store.Err() != "" {
		t.Errorf("state = %q err = %q after recovery", store.State(), store.Err())
	}
}

func TestMutationTriggersRefresh(t *testing.T) {
	f := newFakeDirectory()
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	before := f.listCalls.Load()
	err := store.AddUser(context.Background(), models.CreateUserRequest{DisplayName: "New User", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if f.listCalls.Load() != before+1 {
		t.Error("successful mutation must trigger a full list refresh")
	}
	// The snapshot shows the server-assigned username, not a local patch.
	if _, ok := store.GetUser("generated.name"); !ok {
		t.Error("refreshed snapshot missing server-created user")
	}
}

func TestMutationFailureNoRefresh(t *testing.T) {
	f := newFakeDirectory()
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	before := f.listCalls.Load()
	err := store.AddUser(context.Background(), models.CreateUserRequest{DisplayName: "X", Password: "weak"})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if f.listCalls.Load() != before {
		t.Error("failed mutation must not refresh")
	}
	if store.Err() != "password too weak" {
		t.Errorf("recorded err = %q", store.Err())
	}

	// The next action starts with a clean error slot.
	if err := store.AddUser(context.Background(), models.CreateUserRequest{DisplayName: "Y", Password: "Str0ng!pass"}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if store.Err() != "" {
		t.Errorf("err = %q, want cleared after success", store.Err())
	}
}

func TestDeleteUnknownUserSurfacesNotFound(t *testing.T) {
	f := newFakeDirectory()
	store := newTestStore(t, f)

	err := store.DeleteUser(context.Background(), "ghost")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestGetUserIsCacheOnly(t *testing.T) {
	f := newFakeDirectory(models.DirectoryUser{Username: "alice", Status: models.StatusActive})
	store := newTestStore(t, f)

	// Nothing loaded yet: miss, and no network traffic.
	if _, ok := store.GetUser("alice"); ok {
		t.Error("GetUser before refresh should miss")
	}
	if f.listCalls.Load() != 0 {
		t.Error("GetUser must not hit the network")
	}
}

func TestFetchUserFailureReturnsNil(t *testing.T) {
	f := newFakeDirectory(models.DirectoryUser{Username: "alice", Status: models.StatusActive})
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// The fake has no single-user endpoint: any fetch 404s upstream.
	if got := store.FetchUser(context.Background(), "ghost"); got != nil {
		t.Fatalf("FetchUser = %+v, want nil on failure", got)
	}

	// The failed fetch touches neither the snapshot nor the error slot.
	if got := store.Users(); len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("users = %+v, want snapshot untouched", got)
	}
	if store.State() != StateReady || store.Err() != "" {
		t.Errorf("state = %q err = %q, want ready with no error", store.State(), store.Err())
	}
}

func TestToggleBlockDirection(t *testing.T) {
	f := newFakeDirectory(
		models.DirectoryUser{Username: "active.user", Status: models.StatusActive},
		models.DirectoryUser{Username: "blocked.user", Status: models.StatusBlocked},
	)
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := store.ToggleBlock(context.Background(), "active.user"); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if u, _ := store.GetUser("active.user"); !u.IsBlocked() {
		t.Error("active user should be blocked after toggle")
	}

	if err := store.ToggleBlock(context.Background(), "blocked.user"); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if u, _ := store.GetUser("blocked.user"); u.IsBlocked() {
		t.Error("blocked user should be active after toggle")
	}
}

func TestUsersReturnsCopy(t *testing.T) {
	f := newFakeDirectory(models.DirectoryUser{Username: "alice", Status: models.StatusActive})
	store := newTestStore(t, f)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snapshot := store.Users()
	snapshot[0].Username = "mutated"
	if u, _ := store.GetUser("alice"); u.Username != "alice" {
		t.Error("caller mutation leaked into the store snapshot")
	}
}
