package directory

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/orivyx/orivyx-backend/internal/models"
	"github.com/orivyx/orivyx-backend/internal/pkg/metrics"
)

// State is the store lifecycle: Uninitialized -> Loading -> Ready on the
// first successful refresh, or -> Error, retriable via Refresh.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateError         State = "error"
)

// Store owns the dashboard-visible snapshot of directory users. It is a
// read-through cache invalidated after every write: each successful
// mutation triggers a full ListUsers refresh instead of patching local
// state, so server-side side effects (group policy, assigned usernames)
// are never shadowed by local edits. The authoritative state lives in the
// directory service.
type Store struct {
	client *Client
	log    *slog.Logger

	mu      sync.RWMutex
	users   []models.DirectoryUser
	state   State
	lastErr string

	// mutateMu serializes mutating actions: at most one in flight per
	// store instance, so two admin tabs cannot interleave writes.
	mutateMu sync.Mutex
	refresh  singleflight.Group
}

// NewStore builds a store around the given client. The store starts
// Uninitialized; call Refresh to load the first snapshot.
func NewStore(client *Client, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		client: client,
		log:    log,
		state:  StateUninitialized,
	}
}

// Users returns a copy of the current snapshot. Never triggers network I/O.
func (s *Store) Users() []models.DirectoryUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DirectoryUser, len(s.users))
	copy(out, s.users)
	return out
}

// State returns the store lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the last recorded error message, or empty. Informational
// only: a recorded error never blocks subsequent actions.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// GetUser is the cache-only lookup: no network call, ok=false on a miss.
// Callers that need a guaranteed-fresh view must use FetchUser.
func (s *Store) GetUser(username string) (models.DirectoryUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return models.DirectoryUser{}, false
}

// FetchUser always performs a server round trip and returns nil on any
// failure. It does not touch the cached snapshot.
func (s *Store) FetchUser(ctx context.Context, username string) *models.DirectoryUser {
	user, err := s.client.GetUser(ctx, username)
	if err != nil {
		s.log.Warn("fetch user failed", "username", username, "error", err)
		return nil
	}
	return user
}

// Refresh reloads the full user list. Concurrent calls collapse into one
// round trip. On failure the previous snapshot is kept and the error is
// recorded; Refresh can be retried at any time.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refresh.Do("refresh", func() (any, error) {
		s.mu.Lock()
		s.state = StateLoading
		s.lastErr = ""
		s.mu.Unlock()

		users, err := s.client.ListUsers(ctx)
		if err != nil {
			metrics.DirectoryRefreshTotal.WithLabelValues("error").Inc()
			s.mu.Lock()
			s.state = StateError
			s.lastErr = err.Error()
			s.mu.Unlock()
			return nil, err
		}

		metrics.DirectoryRefreshTotal.WithLabelValues("success").Inc()
		s.mu.Lock()
		s.users = users
		s.state = StateReady
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// AddUser creates a user and resynchronizes the snapshot. The request
// password is forwarded once and not retained.
func (s *Store) AddUser(ctx context.Context, req models.CreateUserRequest) error {
	return s.mutate(ctx, "add_user", func(ctx context.Context) error {
		_, err := s.client.CreateUser(ctx, req)
		return err
	})
}

// UpdateUser updates displayName/email. The username is never sent: the
// directory key is immutable and the request type has no field for it.
func (s *Store) UpdateUser(ctx context.Context, username string, req models.UpdateUserRequest) error {
	return s.mutate(ctx, "update_user", func(ctx context.Context) error {
		_, err := s.client.UpdateUser(ctx, username, req)
		return err
	})
}

// DeleteUser removes a user. A second delete of the same username surfaces
// the directory's NotFoundError rather than succeeding silently.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	return s.mutate(ctx, "delete_user", func(ctx context.Context) error {
		return s.client.DeleteUser(ctx, username)
	})
}

// ToggleBlock flips the user between active and blocked. The direction is
// decided from the cached status, which may be stale; the server stays
// authoritative and the refresh after the call corrects the visible state.
// An unknown username is treated as blocked, so the call defaults to enable.
func (s *Store) ToggleBlock(ctx context.Context, username string) error {
	user, ok := s.GetUser(username)
	enable := !ok || user.IsBlocked()
	return s.mutate(ctx, "toggle_block", func(ctx context.Context) error {
		return s.client.SetUserEnabled(ctx, username, enable)
	})
}

// ResetPassword sets a new password for the user.
func (s *Store) ResetPassword(ctx context.Context, username, newPassword string) error {
	return s.mutate(ctx, "reset_password", func(ctx context.Context) error {
		return s.client.ResetPassword(ctx, username, newPassword)
	})
}

// RenewExpiration extends the account expiry by the server-defined window.
// The new expiry date is observed through the refresh, never computed here.
func (s *Store) RenewExpiration(ctx context.Context, username string) error {
	return s.mutate(ctx, "renew_expiration", func(ctx context.Context) error {
		return s.client.RenewExpiration(ctx, username)
	})
}

// AddToGroup adds the user to a directory group.
func (s *Store) AddToGroup(ctx context.Context, username, group string) error {
	return s.mutate(ctx, "add_to_group", func(ctx context.Context) error {
		return s.client.AddUserToGroup(ctx, username, group)
	})
}

// RemoveFromGroup removes the user from a directory group.
func (s *Store) RemoveFromGroup(ctx context.Context, username, group string) error {
	return s.mutate(ctx, "remove_from_group", func(ctx context.Context) error {
		return s.client.RemoveUserFromGroup(ctx, username, group)
	})
}

// mutate runs one mutating action under the single-flight gate: clear the
// previous error, perform the call, and on success await a full refresh
// before returning. On failure the snapshot is left untouched, the error
// message is recorded for passive display, and the error is returned to
// the caller for active handling.
func (s *Store) mutate(ctx context.Context, action string, op func(context.Context) error) error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	if err := op(ctx); err != nil {
		metrics.DirectoryMutationsTotal.WithLabelValues(action, "error").Inc()
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		return err
	}

	metrics.DirectoryMutationsTotal.WithLabelValues(action, "success").Inc()
	return s.Refresh(ctx)
}
