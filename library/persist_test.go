package library

import (
	"context"
	"testing"

	"github.com/shelfwise/library/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mutations must survive a reload from the snapshot backend.
func TestSnapshotRoundTrip(t *testing.T) {
	snaps := NewMemorySnapshots()
	ctx := context.Background()

	s, err := Open(ctx, snaps)
	require.NoError(t, err)

	book, err := s.AddBook(ctx, admin, models.Book{Title: "Persisted", TotalCopies: 2})
	require.NoError(t, err)
	rec, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	_, err = s.AddReview(ctx, faculty, book.ID, 4, "solid")
	require.NoError(t, err)
	require.NoError(t, s.RecordActivity(ctx, student, 30))
	_, err = s.AddFeedback(ctx, student, 5, "love it")
	require.NoError(t, err)
	u, err := s.CreateUser(ctx, "Asha", "+911234567890", "student")
	require.NoError(t, err)

	reloaded, err := Open(ctx, snaps)
	require.NoError(t, err)

	b := reloaded.BookByID(book.ID)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, 4.0, b.AverageRating)

	recs, err := reloaded.Borrows(admin)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)

	assert.Len(t, reloaded.ReviewsForBook(book.ID), 1)
	assert.Len(t, reloaded.ActivityFor(student.UserID), 1)

	all, err := reloaded.Feedback(admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NotNil(t, reloaded.UserByPhone("+911234567890"))
	assert.Equal(t, u.ID, reloaded.UserByPhone("+911234567890").ID)
}

func TestOpenEmptyBackend(t *testing.T) {
	s, err := Open(context.Background(), NewMemorySnapshots())
	require.NoError(t, err)
	assert.Empty(t, s.Search(""))
	recs, err := s.Borrows(admin)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
