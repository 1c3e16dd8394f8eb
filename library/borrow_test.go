package library

import (
	"context"
	"testing"
	"time"

	"github.com/shelfwise/library/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = Actor{UserID: "admin-1", Role: models.RoleAdmin}
	student = Actor{UserID: "student-1", Role: models.RoleStudent}
	faculty = Actor{UserID: "faculty-1", Role: models.RoleFaculty}
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), NewMemorySnapshots())
	require.NoError(t, err)
	return s
}

func addTestBook(t *testing.T, s *Store, title string, copies int) *models.Book {
	t.Helper()
	book, err := s.AddBook(context.Background(), admin, models.Book{Title: title, TotalCopies: copies})
	require.NoError(t, err)
	return book
}

func TestBorrowAndReturn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "The Go Programming Language", 2)

	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	assert.Equal(t, student.UserID, rec.UserID)
	assert.Equal(t, rec.BorrowDate.AddDate(0, 0, 25), rec.DueDate)
	assert.Nil(t, rec.ReturnDate)
	assert.Equal(t, 0, rec.Fine)
	assert.Equal(t, 1, s.BookByID(book.ID).AvailableCopies)

	returned, err := s.Return(ctx, student, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 0, returned.Fine)
	assert.Equal(t, 2, s.BookByID(book.ID).AvailableCopies)
}

func TestBorrowErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Single Copy", 1)

	_, err := s.Borrow(ctx, Actor{}, book.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.Borrow(ctx, student, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)

	// Same user cannot hold a second unreturned loan of the same book.
	_, err = s.Borrow(ctx, student, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)

	// All copies out: next user sees Unavailable and state is untouched.
	_, err = s.Borrow(ctx, faculty, book.ID)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, s.BookByID(book.ID).AvailableCopies)
	recs, err := s.Borrows(admin)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestBorrowAgainAfterReturn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Rereadable", 1)

	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	_, err = s.Return(ctx, student, rec.ID)
	require.NoError(t, err)

	_, err = s.Borrow(ctx, student, book.ID)
	assert.NoError(t, err)
}

func TestFineComputation(t *testing.T) {
	day := func(d string) time.Time {
		ts, err := time.Parse("2006-01-02", d)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}
	tests := []struct {
		name string
		due  string
		at   string
		want int
	}{
		{"three days late", "2024-01-01", "2024-01-04", 3},
		{"same day", "2024-01-01", "2024-01-01", 0},
		{"returned early", "2024-01-10", "2024-01-05", 0},
		{"ten days late", "2024-01-01", "2024-01-11", 10},
		{"partial day is not a full day", "2024-01-01", "2024-01-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fineBetween(day(tt.due), day(tt.at)))
		})
	}
	// Hours under a full day never round up.
	assert.Equal(t, 0, fineBetween(day("2024-01-01"), day("2024-01-01").Add(23*time.Hour)))
	assert.Equal(t, 1, fineBetween(day("2024-01-01"), day("2024-01-02").Add(time.Hour)))
}

func TestReturnComputesOverdueFine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Late Book", 1)

	borrowedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return borrowedAt }
	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 26, 10, 0, 0, 0, time.UTC), rec.DueDate)

	// Ten days past due before return: outstanding fine accrues.
	s.now = func() time.Time { return rec.DueDate.AddDate(0, 0, 10) }
	assert.Equal(t, 10, s.OutstandingFine(*rec))

	// Return three days past due.
	s.now = func() time.Time { return rec.DueDate.AddDate(0, 0, 3) }
	returned, err := s.Return(ctx, student, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, returned.Fine)
	assert.Equal(t, 3, s.OutstandingFine(*returned))
}

func TestReturnErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Once Only", 1)

	_, err := s.Return(ctx, student, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)

	_, err = s.Return(ctx, faculty, rec.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.Return(ctx, student, rec.ID)
	require.NoError(t, err)
	_, err = s.Return(ctx, student, rec.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
}

func TestClearFine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Fined", 1)

	borrowedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return borrowedAt }
	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	s.now = func() time.Time { return rec.DueDate.AddDate(0, 0, 5) }
	returned, err := s.Return(ctx, student, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 5, returned.Fine)

	_, err = s.ClearFine(ctx, student, rec.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cleared, err := s.ClearFine(ctx, admin, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.Fine)

	// Second clear is a no-op, not an error.
	cleared, err = s.ClearFine(ctx, admin, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.Fine)

	_, err = s.ClearFine(ctx, admin, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvailabilityBoundsInvariant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Invariant", 2)

	check := func() {
		b := s.BookByID(book.ID)
		if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
			t.Fatalf("availability out of bounds: %d of %d", b.AvailableCopies, b.TotalCopies)
		}
	}

	r1, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	check()
	r2, err := s.Borrow(ctx, faculty, book.ID)
	require.NoError(t, err)
	check()
	_, err = s.Borrow(ctx, admin, book.ID)
	assert.ErrorIs(t, err, ErrUnavailable)
	check()
	_, err = s.Return(ctx, student, r1.ID)
	require.NoError(t, err)
	check()
	_, err = s.ClearFine(ctx, admin, r2.ID)
	require.NoError(t, err)
	check()
	_, err = s.Return(ctx, faculty, r2.ID)
	require.NoError(t, err)
	check()
	assert.Equal(t, 2, s.BookByID(book.ID).AvailableCopies)
}

func TestBorrowsVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b1 := addTestBook(t, s, "Mine", 1)
	b2 := addTestBook(t, s, "Theirs", 1)

	_, err := s.Borrow(ctx, student, b1.ID)
	require.NoError(t, err)
	_, err = s.Borrow(ctx, faculty, b2.ID)
	require.NoError(t, err)

	own, err := s.Borrows(student)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := s.Borrows(admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.Borrows(Actor{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
