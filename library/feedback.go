package library

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfwise/library/backend/models"
)

// AddFeedback records app feedback from the acting user.
func (s *Store) AddFeedback(ctx context.Context, actor Actor, rating int, comment string) (*models.Feedback, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fb := models.Feedback{
		ID:      uuid.NewString(),
		UserID:  actor.UserID,
		Rating:  rating,
		Comment: comment,
		Date:    s.now(),
	}
	s.feedback = append(s.feedback, fb)
	s.persist(ctx, keyFeedback)
	return &fb, nil
}

// UpdateFeedback edits the acting user's own feedback entry.
func (s *Store) UpdateFeedback(ctx context.Context, actor Actor, id string, rating int, comment string) (*models.Feedback, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.feedback {
		fb := &s.feedback[i]
		if fb.ID != id {
			continue
		}
		if fb.UserID != actor.UserID {
			return nil, ErrNotOwner
		}
		fb.Rating = rating
		fb.Comment = comment
		fb.Date = s.now()
		s.persist(ctx, keyFeedback)
		out := *fb
		return &out, nil
	}
	return nil, ErrNotFound
}

// DeleteFeedback removes the acting user's own feedback entry.
func (s *Store) DeleteFeedback(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.feedback {
		if s.feedback[i].ID != id {
			continue
		}
		if s.feedback[i].UserID != actor.UserID {
			return ErrNotOwner
		}
		s.feedback = append(s.feedback[:i], s.feedback[i+1:]...)
		s.persist(ctx, keyFeedback)
		return nil
	}
	return ErrNotFound
}

// Feedback lists entries visible to the actor: everything for admins, own
// entries otherwise.
func (s *Store) Feedback(actor Actor) ([]models.Feedback, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Feedback, 0, len(s.feedback))
	for _, fb := range s.feedback {
		if actor.can(capViewAllFeedback) || fb.UserID == actor.UserID {
			out = append(out, fb)
		}
	}
	return out, nil
}
