package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orivyx/orivyx-backend/internal/directory"
	"github.com/orivyx/orivyx-backend/internal/models"
)

// OverlordHandler exposes the user-directory panel: CRUD and account
// actions proxied through the directory store, plus read-only group and
// audit views. All routes require admin auth at the router level.
type OverlordHandler struct {
	store  *directory.Store
	client *directory.Client
	audit  *directory.AuditReader
}

// NewOverlordHandler creates a new overlord handler.
func NewOverlordHandler(store *directory.Store, client *directory.Client, audit *directory.AuditReader) *OverlordHandler {
	return &OverlordHandler{store: store, client: client, audit: audit}
}

// RegisterRoutes registers overlord routes.
func (h *OverlordHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/overlord/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/overlord/users", h.CreateUser).Methods("POST")
	router.HandleFunc("/overlord/users/refresh", h.Refresh).Methods("POST")
	router.HandleFunc("/overlord/users/{username}", h.GetUser).Methods("GET")
	router.HandleFunc("/overlord/users/{username}", h.UpdateUser).Methods("PUT")
	router.HandleFunc("/overlord/users/{username}", h.DeleteUser).Methods("DELETE")
	router.HandleFunc("/overlord/users/{username}/toggle-block", h.ToggleBlock).Methods("POST")
	router.HandleFunc("/overlord/users/{username}/reset-password", h.ResetPassword).Methods("POST")
	router.HandleFunc("/overlord/users/{username}/renew-expiration", h.RenewExpiration).Methods("POST")
	router.HandleFunc("/overlord/users/{username}/groups", h.UserGroups).Methods("GET")
	router.HandleFunc("/overlord/users/{username}/groups", h.AddToGroup).Methods("POST")
	router.HandleFunc("/overlord/users/{username}/groups/{group}", h.RemoveFromGroup).Methods("DELETE")
	router.HandleFunc("/overlord/users/{username}/audit", h.AuditLogs).Methods("GET")
	router.HandleFunc("/overlord/groups", h.ListGroups).Methods("GET")
}

// usersResponse is the panel payload: the snapshot plus the store's
// lifecycle state and last error for passive display.
type usersResponse struct {
	Users []models.DirectoryUser `json:"users"`
	State directory.State        `json:"state"`
	Error string                 `json:"error,omitempty"`
}

// ListUsers handles GET /overlord/users. An uninitialized store loads its
// first snapshot here; afterwards the cached view is served and the
// dashboard refreshes explicitly.
func (h *OverlordHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h.store.State() == directory.StateUninitialized {
		if err := h.store.Refresh(r.Context()); err != nil {
			respondDirectoryError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, usersResponse{
		Users: h.store.Users(),
		State: h.store.State(),
		Error: h.store.Err(),
	})
}

// Refresh handles POST /overlord/users/refresh.
func (h *OverlordHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(r.Context()); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{
		Users: h.store.Users(),
		State: h.store.State(),
	})
}

// GetUser handles GET /overlord/users/{username}. The default is the
// cache-only lookup; ?fresh=1 forces a server round trip.
func (h *OverlordHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if r.URL.Query().Get("fresh") == "1" {
		user := h.store.FetchUser(r.Context(), username)
		if user == nil {
			respondErrorWithCode(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
			return
		}
		respondJSON(w, http.StatusOK, user)
		return
	}

	user, ok := h.store.GetUser(username)
	if !ok {
		respondErrorWithCode(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /overlord/users. The directory assigns the
// username and validates the password; its message is passed through on
// rejection.
func (h *OverlordHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DisplayName == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "displayName and password required")
		return
	}

	if err := h.store.AddUser(r.Context(), req); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// UpdateUser handles PUT /overlord/users/{username}. Only displayName and
// email are mutable; the username never changes.
func (h *OverlordHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateUser(r.Context(), username, req); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// DeleteUser handles DELETE /overlord/users/{username}. A repeated delete
// surfaces the directory's 404.
func (h *OverlordHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		respondDirectoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleBlock handles POST /overlord/users/{username}/toggle-block.
func (h *OverlordHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.store.ToggleBlock(r.Context(), username); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// ResetPasswordRequest is the body for POST .../reset-password.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /overlord/users/{username}/reset-password.
// The password is forwarded once and never logged or echoed.
func (h *OverlordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "newPassword required")
		return
	}

	if err := h.store.ResetPassword(r.Context(), username, req.NewPassword); err != nil {
		respondDirectoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RenewExpiration handles POST /overlord/users/{username}/renew-expiration.
func (h *OverlordHandler) RenewExpiration(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.store.RenewExpiration(r.Context(), username); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// UserGroups handles GET /overlord/users/{username}/groups. Reads straight
// from the directory, not the snapshot, so membership is always current.
func (h *OverlordHandler) UserGroups(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	groups, err := h.client.UserGroups(r.Context(), username)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	if groups == nil {
		groups = []string{}
	}
	respondJSON(w, http.StatusOK, groups)
}

// AddToGroupRequest is the body for POST .../groups.
type AddToGroupRequest struct {
	Group string `json:"group"`
}

// AddToGroup handles POST /overlord/users/{username}/groups.
func (h *OverlordHandler) AddToGroup(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req AddToGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Group == "" {
		respondError(w, http.StatusBadRequest, "group required")
		return
	}

	if err := h.store.AddToGroup(r.Context(), username, req.Group); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// RemoveFromGroup handles DELETE /overlord/users/{username}/groups/{group}.
func (h *OverlordHandler) RemoveFromGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.store.RemoveFromGroup(r.Context(), vars["username"], vars["group"]); err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usersResponse{Users: h.store.Users(), State: h.store.State()})
}

// AuditLogs handles GET /overlord/users/{username}/audit. Audit history is
// advisory: failures surface as an empty list, never an error.
func (h *OverlordHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	respondJSON(w, http.StatusOK, h.audit.Logs(r.Context(), username))
}

// ListGroups handles GET /overlord/groups. Groups are not cached; the
// panel reads them straight from the directory.
func (h *OverlordHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.client.ListGroups(r.Context())
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	respondJSON(w, http.StatusOK, groups)
}
