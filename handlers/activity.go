package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
	"github.com/shelfwise/library/backend/models"
)

type ActivityHandler struct {
	Library *library.Store
}

type RecordActivityRequest struct {
	Minutes int `json:"minutes"`
}

// Record adds reading minutes to today's accumulator for the caller.
func (h *ActivityHandler) Record(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RecordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Library.RecordActivity(r.Context(), actorFrom(r), req.Minutes); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History returns the caller's per-day reading totals.
func (h *ActivityHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	activities := h.Library.ActivityFor(userID)
	if activities == nil {
		activities = []models.UserActivity{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activities)
}
