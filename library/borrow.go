package library

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/library/backend/models"
)

// fineBetween is the overdue fine in currency units: one per full day past
// due, floor-truncated, never negative.
func fineBetween(due, at time.Time) int {
	if !at.After(due) {
		return 0
	}
	return int(at.Sub(due) / (24 * time.Hour))
}

// Borrow creates a loan for the acting user, due in 25 days, and decrements
// the book's available copies.
func (s *Store) Borrow(ctx context.Context, actor Actor, bookID string) (*models.BorrowRecord, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.findBook(bookID)
	if book == nil {
		return nil, ErrNotFound
	}
	if book.AvailableCopies <= 0 {
		return nil, ErrUnavailable
	}
	for i := range s.borrows {
		r := &s.borrows[i]
		if r.BookID == bookID && r.UserID == actor.UserID && !r.Returned() {
			return nil, ErrAlreadyBorrowed
		}
	}

	now := s.now()
	rec := models.BorrowRecord{
		ID:         uuid.NewString(),
		BookID:     bookID,
		UserID:     actor.UserID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, models.LoanPeriodDays),
	}
	book.AvailableCopies--
	s.borrows = append(s.borrows, rec)
	s.persist(ctx, keyBooks, keyBorrows)
	return &rec, nil
}

// Return closes a loan, computing the overdue fine from the due date to now,
// and restores the book's available copy.
func (s *Store) Return(ctx context.Context, actor Actor, borrowID string) (*models.BorrowRecord, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *models.BorrowRecord
	for i := range s.borrows {
		if s.borrows[i].ID == borrowID {
			rec = &s.borrows[i]
			break
		}
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.UserID != actor.UserID && !actor.can(capViewAllBorrows) {
		return nil, ErrNotOwner
	}
	if rec.Returned() {
		return nil, ErrAlreadyReturned
	}

	now := s.now()
	rec.Fine = fineBetween(rec.DueDate, now)
	rec.ReturnDate = &now
	if book := s.findBook(rec.BookID); book != nil && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	s.persist(ctx, keyBooks, keyBorrows)
	out := *rec
	return &out, nil
}

// ClearFine is the administrative override: fine goes to 0 regardless of
// return state, with no recomputation. Idempotent.
func (s *Store) ClearFine(ctx context.Context, actor Actor, borrowID string) (*models.BorrowRecord, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capClearFine) {
		return nil, ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.borrows {
		if s.borrows[i].ID == borrowID {
			if s.borrows[i].Fine != 0 {
				s.borrows[i].Fine = 0
				s.persist(ctx, keyBorrows)
			}
			out := s.borrows[i]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// OutstandingFine is the fine a record would carry if returned now: the
// stored fine once returned, otherwise the accrued overdue amount.
func (s *Store) OutstandingFine(rec models.BorrowRecord) int {
	if rec.Returned() {
		return rec.Fine
	}
	return fineBetween(rec.DueDate, s.now())
}

// Borrows lists loans visible to the actor: everything for admins, the
// actor's own otherwise.
func (s *Store) Borrows(actor Actor) ([]models.BorrowRecord, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.BorrowRecord, 0, len(s.borrows))
	for _, r := range s.borrows {
		if actor.can(capViewAllBorrows) || r.UserID == actor.UserID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ActiveBorrows returns all unreturned loans. Used by the reminder worker.
func (s *Store) ActiveBorrows() []models.BorrowRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.BorrowRecord
	for _, r := range s.borrows {
		if !r.Returned() {
			out = append(out, r)
		}
	}
	return out
}
