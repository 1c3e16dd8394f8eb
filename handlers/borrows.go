package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/models"
)

type BorrowsHandler struct {
	Library *library.Store
}

// BorrowResponse is a borrow record plus the fine it would carry if returned
// now.
type BorrowResponse struct {
	models.BorrowRecord
	OutstandingFine int `json:"outstandingFine"`
}

func (h *BorrowsHandler) toResponse(rec models.BorrowRecord) BorrowResponse {
	return BorrowResponse{
		BorrowRecord:    rec,
		OutstandingFine: h.Library.OutstandingFine(rec),
	}
}

// Borrow lends a copy of the book to the acting user.
func (h *BorrowsHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec, err := h.Library.Borrow(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.toResponse(*rec))
}

// Return closes the loan and reports the computed fine.
func (h *BorrowsHandler) Return(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec, err := h.Library.Return(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toResponse(*rec))
}

// ClearFine zeroes the fine on a record (admin only).
func (h *BorrowsHandler) ClearFine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec, err := h.Library.ClearFine(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// List returns loans: all of them for admins, the caller's own otherwise.
func (h *BorrowsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recs, err := h.Library.Borrows(actorFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]BorrowResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, h.toResponse(rec))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
