package library

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shelfwise/library/backend/models"
)

// recomputeRating refreshes the book's aggregate from surviving reviews:
// arithmetic mean rounded to one decimal, 0 when none remain. Caller holds
// the mutex.
func (s *Store) recomputeRating(bookID string) {
	book := s.findBook(bookID)
	if book == nil {
		return
	}
	sum, count := 0, 0
	for _, rv := range s.reviews {
		if rv.BookID == bookID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		book.AverageRating = 0
		book.TotalRatings = 0
		return
	}
	book.AverageRating = math.Round(float64(sum)/float64(count)*10) / 10
	book.TotalRatings = count
}

// AddReview creates the acting user's review for a book. One review per
// (user, book).
func (s *Store) AddReview(ctx context.Context, actor Actor, bookID string, rating int, comment string) (*models.Review, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findBook(bookID) == nil {
		return nil, ErrNotFound
	}
	for _, rv := range s.reviews {
		if rv.BookID == bookID && rv.UserID == actor.UserID {
			return nil, ErrDuplicateReview
		}
	}
	rv := models.Review{
		ID:      uuid.NewString(),
		BookID:  bookID,
		UserID:  actor.UserID,
		Rating:  rating,
		Comment: comment,
		Date:    s.now(),
	}
	s.reviews = append(s.reviews, rv)
	s.recomputeRating(bookID)
	s.persist(ctx, keyReviews, keyBooks)
	return &rv, nil
}

// UpdateReview edits the acting user's own review.
func (s *Store) UpdateReview(ctx context.Context, actor Actor, reviewID string, rating int, comment string) (*models.Review, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reviews {
		rv := &s.reviews[i]
		if rv.ID != reviewID {
			continue
		}
		if rv.UserID != actor.UserID {
			return nil, ErrNotOwner
		}
		rv.Rating = rating
		rv.Comment = comment
		rv.Date = s.now()
		s.recomputeRating(rv.BookID)
		s.persist(ctx, keyReviews, keyBooks)
		out := *rv
		return &out, nil
	}
	return nil, ErrNotFound
}

// DeleteReview removes the acting user's own review.
func (s *Store) DeleteReview(ctx context.Context, actor Actor, reviewID string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reviews {
		if s.reviews[i].ID != reviewID {
			continue
		}
		if s.reviews[i].UserID != actor.UserID {
			return ErrNotOwner
		}
		bookID := s.reviews[i].BookID
		s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
		s.recomputeRating(bookID)
		s.persist(ctx, keyReviews, keyBooks)
		return nil
	}
	return ErrNotFound
}

// ReviewsForBook lists all reviews for a book.
func (s *Store) ReviewsForBook(bookID string) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Review
	for _, rv := range s.reviews {
		if rv.BookID == bookID {
			out = append(out, rv)
		}
	}
	return out
}
