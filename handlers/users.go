package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shelfwise/library/backend/library"
)

type UsersHandler struct {
	Library *library.Store
}

// List returns all registered users (admin only).
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	users, err := h.Library.Users(actorFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role (admin only). At most one admin exists.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	user, err := h.Library.UpdateUserRole(r.Context(), actorFrom(r), chi.URLParam(r, "id"), role)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	user.Password = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
