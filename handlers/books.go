package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
	"github.com/shelfwise/library/backend/models"
	"github.com/shelfwise/library/backend/service"
)

type BooksHandler struct {
	Library       *library.Store
	Covers        *service.CoverService
	MaxCoverBytes int64
}

// setCoverURL fills in the deterministic fallback URL for books whose cover
// lives in our own storage.
func setCoverURL(book *models.Book) {
	if book.CoverS3Key != "" && book.CoverURL == "" {
		book.CoverURL = "/api/books/" + book.ID + "/cover"
	}
}

// List returns the catalog, optionally filtered by ?q= (substring search) or
// ?genre= (exact genre match).
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var books []models.Book
	if genre := r.URL.Query().Get("genre"); genre != "" {
		books = h.Library.BooksByGenre(genre)
	} else {
		books = h.Library.Search(r.URL.Query().Get("q"))
	}
	for i := range books {
		setCoverURL(&books[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

// Popular returns the top five books by rating.
func (h *BooksHandler) Popular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	books := h.Library.PopularBooks()
	for i := range books {
		setCoverURL(&books[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	book := h.Library.BookByID(chi.URLParam(r, "id"))
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	setCoverURL(book)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// Cover streams the book's stored cover image. Public so img src works.
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	book := h.Library.BookByID(chi.URLParam(r, "id"))
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	if book.CoverS3Key == "" || h.Covers == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}
	body, contentType, err := h.Covers.GetObject(r.Context(), book.CoverS3Key)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load cover")
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	io.Copy(w, body)
}

type BookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	PublicationYear int    `json:"publicationYear"`
	TotalCopies     int    `json:"totalCopies"`
	CoverURL        string `json:"coverUrl"`
}

func (req *BookRequest) toModel() models.Book {
	return models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		ISBN:            req.ISBN,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		CoverURL:        req.CoverURL,
	}
}

// Create adds a catalog entry (admin only).
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	book, err := h.Library.AddBook(r.Context(), actorFrom(r), req.toModel())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

// Update replaces a book's catalog fields (admin only).
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	book, err := h.Library.UpdateBook(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	setCoverURL(book)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// Delete removes a book (admin only) along with its stored cover.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	removed, err := h.Library.DeleteBook(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if h.Covers != nil && removed.CoverS3Key != "" {
		_ = h.Covers.Delete(r.Context(), removed.CoverS3Key)
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover stores a cover image for a book (admin only, multipart field
// "cover").
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Covers == nil {
		jsonError(w, http.StatusServiceUnavailable, "cover storage not configured")
		return
	}
	id := chi.URLParam(r, "id")
	book := h.Library.BookByID(id)
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	if h.MaxCoverBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxCoverBytes)
	}
	if err := r.ParseMultipartForm(h.MaxCoverBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "missing cover file")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		jsonError(w, http.StatusBadRequest, "cover must be an image")
		return
	}
	key, err := h.Covers.Upload(r.Context(), header.Filename, file, contentType)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store cover")
		return
	}
	updated, err := h.Library.SetBookCover(r.Context(), actorFrom(r), id, key, "")
	if err != nil {
		_ = h.Covers.Delete(r.Context(), key)
		writeStoreError(w, err)
		return
	}
	if book.CoverS3Key != "" && book.CoverS3Key != key {
		_ = h.Covers.Delete(r.Context(), book.CoverS3Key)
	}
	setCoverURL(updated)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
