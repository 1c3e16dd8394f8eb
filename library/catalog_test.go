package library

import (
	"context"
	"testing"

	"github.com/shelfwise/library/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	addTestBook(t, s, "The Go Programming Language", 1)
	b2, err := s.AddBook(context.Background(), admin, models.Book{
		Title: "Clean Architecture", Author: "Robert Martin", Genre: "Software",
		ISBN: "9780134494166", Description: "structure and boundaries", TotalCopies: 1,
	})
	require.NoError(t, err)
	addTestBook(t, s, "Dune", 1)

	// Empty query returns the full catalog in original order.
	all := s.Search("")
	require.Len(t, all, 3)
	assert.Equal(t, "The Go Programming Language", all[0].Title)
	assert.Equal(t, "Clean Architecture", all[1].Title)
	assert.Equal(t, "Dune", all[2].Title)
	assert.Len(t, s.Search("   "), 3)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"title substring, case-insensitive", "go program", 1},
		{"author", "martin", 1},
		{"genre", "software", 1},
		{"description", "boundaries", 1},
		{"isbn", "9780134494166", 1},
		{"isbn substring", "013449", 1},
		{"no match", "cooking", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, s.Search(tt.query), tt.want)
		})
	}
	assert.Equal(t, b2.ID, s.Search("martin")[0].ID)
}

func TestPopularBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rate := func(book *models.Book, userIDs []string, rating int) {
		for _, uid := range userIDs {
			_, err := s.AddReview(ctx, Actor{UserID: uid, Role: models.RoleStudent}, book.ID, rating, "")
			require.NoError(t, err)
		}
	}

	low := addTestBook(t, s, "Low", 1)
	high := addTestBook(t, s, "High", 1)
	tiedFew := addTestBook(t, s, "Tied Few", 1)
	tiedMany := addTestBook(t, s, "Tied Many", 1)
	unrated1 := addTestBook(t, s, "Unrated A", 1)
	unrated2 := addTestBook(t, s, "Unrated B", 1)

	rate(low, []string{"u1"}, 2)
	rate(high, []string{"u1", "u2"}, 5)
	rate(tiedFew, []string{"u1"}, 4)
	rate(tiedMany, []string{"u1", "u2", "u3"}, 4)

	popular := s.PopularBooks()
	require.Len(t, popular, 5)
	assert.Equal(t, high.ID, popular[0].ID)
	// Equal averages: more ratings wins.
	assert.Equal(t, tiedMany.ID, popular[1].ID)
	assert.Equal(t, tiedFew.ID, popular[2].ID)
	assert.Equal(t, low.ID, popular[3].ID)
	// Unrated books tie at 0/0; stable sort keeps catalog order.
	assert.Equal(t, unrated1.ID, popular[4].ID)
	_ = unrated2
}

func TestBooksByGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddBook(ctx, admin, models.Book{Title: "A", Genre: "Science Fiction", TotalCopies: 1})
	require.NoError(t, err)
	_, err = s.AddBook(ctx, admin, models.Book{Title: "B", Genre: "science fiction", TotalCopies: 1})
	require.NoError(t, err)
	_, err = s.AddBook(ctx, admin, models.Book{Title: "C", Genre: "Science", TotalCopies: 1})
	require.NoError(t, err)

	assert.Len(t, s.BooksByGenre("SCIENCE FICTION"), 2)
	assert.Len(t, s.BooksByGenre("science"), 1)
	assert.Empty(t, s.BooksByGenre("fiction"))
}

func TestAddBookValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddBook(ctx, student, models.Book{Title: "Nope", TotalCopies: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.AddBook(ctx, Actor{}, models.Book{Title: "Nope", TotalCopies: 1})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.AddBook(ctx, admin, models.Book{Title: "  ", TotalCopies: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddBook(ctx, admin, models.Book{Title: "Negative", TotalCopies: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	book, err := s.AddBook(ctx, admin, models.Book{Title: "Fresh", TotalCopies: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
	assert.Equal(t, 0.0, book.AverageRating)
}

func TestUpdateBookRederivesAvailability(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Shrinking", 3)

	_, err := s.Borrow(ctx, student, book.ID)
	require.NoError(t, err)
	_, err = s.Borrow(ctx, faculty, book.ID)
	require.NoError(t, err)

	// Two copies out; shrink the total below the active loan count.
	updated, err := s.UpdateBook(ctx, admin, book.ID, models.Book{Title: "Shrinking", TotalCopies: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalCopies)
	assert.Equal(t, 0, updated.AvailableCopies)

	// Grow it back: available = total - active.
	updated, err = s.UpdateBook(ctx, admin, book.ID, models.Book{Title: "Shrinking", TotalCopies: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.AvailableCopies)

	_, err = s.UpdateBook(ctx, admin, "missing-id", models.Book{Title: "X", TotalCopies: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateBook(ctx, student, book.ID, models.Book{Title: "X", TotalCopies: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := addTestBook(t, s, "Doomed", 1)
	_, err := s.AddReview(ctx, student, book.ID, 4, "")
	require.NoError(t, err)

	rec, err := s.Borrow(ctx, faculty, book.ID)
	require.NoError(t, err)

	// Active loan blocks deletion.
	_, err = s.DeleteBook(ctx, admin, book.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Return(ctx, faculty, rec.ID)
	require.NoError(t, err)

	_, err = s.DeleteBook(ctx, student, book.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	removed, err := s.DeleteBook(ctx, admin, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, removed.ID)
	assert.Nil(t, s.BookByID(book.ID))
	assert.Empty(t, s.ReviewsForBook(book.ID))

	_, err = s.DeleteBook(ctx, admin, book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
