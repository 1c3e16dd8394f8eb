package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
)

type ReviewsHandler struct {
	Library *library.Store
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListForBook returns all reviews for a book.
func (h *ReviewsHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.Library.BookByID(chi.URLParam(r, "id")) == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	reviews := h.Library.ReviewsForBook(chi.URLParam(r, "id"))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

// Create adds the caller's review for a book; one per user per book.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	review, err := h.Library.AddReview(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}

// Update edits the caller's own review.
func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	review, err := h.Library.UpdateReview(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(review)
}

// Delete removes the caller's own review.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.Library.DeleteReview(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
