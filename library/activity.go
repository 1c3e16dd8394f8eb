package library

import (
	"context"

	"github.com/shelfwise/library/backend/models"
)

// RecordActivity adds reading minutes to the acting user's accumulator for
// the current local calendar day. Non-positive minutes are a no-op.
func (s *Store) RecordActivity(ctx context.Context, actor Actor, minutes int) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if minutes <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().Format("2006-01-02")
	for i := range s.activities {
		a := &s.activities[i]
		if a.UserID == actor.UserID && a.Date == day {
			a.TimeSpent += minutes
			s.persist(ctx, keyActivities)
			return nil
		}
	}
	s.activities = append(s.activities, models.UserActivity{
		UserID:    actor.UserID,
		Date:      day,
		TimeSpent: minutes,
	})
	s.persist(ctx, keyActivities)
	return nil
}

// ActivityFor returns the per-day reading history of a user.
func (s *Store) ActivityFor(userID string) []models.UserActivity {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.UserActivity
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}
