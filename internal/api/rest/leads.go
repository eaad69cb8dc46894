package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orivyx/orivyx-backend/internal/models"
	"github.com/orivyx/orivyx-backend/internal/pkg/metrics"
	"github.com/orivyx/orivyx-backend/internal/repository"
)

// LeadsHandler handles /api/v1/leads endpoints: public capture from the
// contact form, and the authenticated admin inbox.
type LeadsHandler struct {
	repo *repository.SQLiteRepository
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(repo *repository.SQLiteRepository) *LeadsHandler {
	return &LeadsHandler{repo: repo}
}

// RegisterRoutes registers lead routes.
func (h *LeadsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/leads", h.CreateLead).Methods("POST")
	router.HandleFunc("/leads", h.ListLeads).Methods("GET")
	router.HandleFunc("/leads/{id}", h.GetLead).Methods("GET")
	router.HandleFunc("/leads/{id}", h.DeleteLead).Methods("DELETE")
}

// CreateLeadRequest is the contact-form body.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
	Message string `json:"message"`
}

// CreateLead handles POST /leads (public, rate-limited at the router).
func (h *LeadsHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "name, email, and message required")
		return
	}

	lead := &models.Lead{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Company: strings.TrimSpace(req.Company),
		Role:    strings.TrimSpace(req.Role),
		Message: req.Message,
	}

	if err := h.repo.CreateLead(r.Context(), lead); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store lead")
		return
	}

	metrics.LeadsCapturedTotal.Inc()
	respondJSON(w, http.StatusCreated, lead)
}

// ListLeads handles GET /leads (admin), newest first.
func (h *LeadsHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.repo.ListLeads(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list leads: "+err.Error())
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	respondJSON(w, http.StatusOK, leads)
}

// GetLead handles GET /leads/{id} (admin).
func (h *LeadsHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	lead, err := h.repo.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Lead not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to get lead: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /leads/{id} (admin).
func (h *LeadsHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.DeleteLead(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Lead not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete lead: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
