package library

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shelfwise/library/backend/models"
)

// AddBook creates a catalog entry (admin only). All copies start available.
func (s *Store) AddBook(ctx context.Context, actor Actor, book models.Book) (*models.Book, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageCatalog) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(book.Title) == "" || book.TotalCopies < 0 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = uuid.NewString()
	book.AvailableCopies = book.TotalCopies
	book.AverageRating = 0
	book.TotalRatings = 0
	book.CreatedAt = s.now()
	s.books = append(s.books, book)
	s.persist(ctx, keyBooks)
	out := book
	return &out, nil
}

// UpdateBook replaces a book's catalog fields (admin only). Available copies
// are re-derived from the new total minus active loans so that
// 0 <= availableCopies <= totalCopies always holds.
func (s *Store) UpdateBook(ctx context.Context, actor Actor, id string, upd models.Book) (*models.Book, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageCatalog) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(upd.Title) == "" || upd.TotalCopies < 0 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.findBook(id)
	if book == nil {
		return nil, ErrNotFound
	}
	active := 0
	for _, r := range s.borrows {
		if r.BookID == id && !r.Returned() {
			active++
		}
	}
	book.Title = upd.Title
	book.Author = upd.Author
	book.Genre = upd.Genre
	book.ISBN = upd.ISBN
	book.Description = upd.Description
	book.PublicationYear = upd.PublicationYear
	book.CoverURL = upd.CoverURL
	book.TotalCopies = upd.TotalCopies
	book.AvailableCopies = upd.TotalCopies - active
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}
	s.persist(ctx, keyBooks)
	out := *book
	return &out, nil
}

// DeleteBook removes a book and its reviews (admin only). Books with active
// loans cannot be deleted. Returns the removed book so the caller can clean
// up stored covers.
func (s *Store) DeleteBook(ctx context.Context, actor Actor, id string) (*models.Book, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageCatalog) {
		return nil, ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.books {
		if s.books[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}
	for _, r := range s.borrows {
		if r.BookID == id && !r.Returned() {
			return nil, ErrConflict
		}
	}
	removed := s.books[idx]
	s.books = append(s.books[:idx], s.books[idx+1:]...)
	kept := s.reviews[:0]
	for _, rv := range s.reviews {
		if rv.BookID != id {
			kept = append(kept, rv)
		}
	}
	s.reviews = kept
	s.persist(ctx, keyBooks, keyReviews)
	return &removed, nil
}

// SetBookCover records where a book's stored cover lives (admin only).
func (s *Store) SetBookCover(ctx context.Context, actor Actor, id, s3Key, coverURL string) (*models.Book, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageCatalog) {
		return nil, ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.findBook(id)
	if book == nil {
		return nil, ErrNotFound
	}
	book.CoverS3Key = s3Key
	book.CoverURL = coverURL
	s.persist(ctx, keyBooks)
	out := *book
	return &out, nil
}

// BookByID returns a copy of the book, or nil if unknown.
func (s *Store) BookByID(id string) *models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.findBook(id); b != nil {
		out := *b
		return &out
	}
	return nil
}

// Search matches a case-insensitive substring against title, author, genre,
// description and ISBN. An empty query returns the full catalog in original
// order.
func (s *Store) Search(query string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) ||
			strings.Contains(strings.ToLower(b.Description), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			out = append(out, b)
		}
	}
	return out
}

// PopularBooks returns the top five books by average rating, ties broken by
// rating count. Sort is stable so equally-rated books keep catalog order.
func (s *Store) PopularBooks() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].TotalRatings > out[j].TotalRatings
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// BooksByGenre filters by case-insensitive exact genre match.
func (s *Store) BooksByGenre(genre string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Book
	for _, b := range s.books {
		if strings.EqualFold(b.Genre, genre) {
			out = append(out, b)
		}
	}
	return out
}
