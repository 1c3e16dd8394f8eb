package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
)

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeStoreError maps circulation-engine sentinels onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrUnauthenticated):
		jsonError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, library.ErrForbidden), errors.Is(err, library.ErrNotOwner):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, library.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, library.ErrUnavailable),
		errors.Is(err, library.ErrAlreadyBorrowed),
		errors.Is(err, library.ErrAlreadyReturned),
		errors.Is(err, library.ErrDuplicateReview),
		errors.Is(err, library.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, library.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func actorFrom(r *http.Request) library.Actor {
	id, _ := middleware.UserIDFromContext(r.Context())
	return library.Actor{
		UserID: id,
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
