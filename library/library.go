// Package library implements the catalog and circulation engine: books,
// borrow records, reviews, feedback, reading activity and users, held in
// memory behind a single Store and mirrored to a durable snapshot backend
// on every mutation.
package library

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/shelfwise/library/backend/models"
)

// Snapshot keys, one per collection. Each collection is serialized as a full
// JSON array under its key and rewritten on every mutation.
const (
	keyBooks      = "books"
	keyBorrows    = "borrow_records"
	keyReviews    = "reviews"
	keyActivities = "activities"
	keyFeedback   = "feedback"
	keyUsers      = "users"
)

// Snapshots is the durable key-value backend the Store mirrors into.
// Load returns (nil, nil) when no snapshot exists for the key.
type Snapshots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Actor identifies the user performing an operation.
type Actor struct {
	UserID string
	Role   string
}

type capability int

const (
	capManageCatalog capability = iota
	capClearFine
	capManageUsers
	capViewAllBorrows
	capViewAllFeedback
)

// can is the single authorization check consulted at the top of every
// privileged operation.
func (a Actor) can(c capability) bool {
	switch c {
	case capManageCatalog, capClearFine, capManageUsers, capViewAllBorrows, capViewAllFeedback:
		return a.Role == models.RoleAdmin
	}
	return false
}

// Store owns the in-memory collections. All operations take the mutex, so
// every mutation is atomic with respect to the rest of the process and no
// operation partially commits.
type Store struct {
	mu    sync.Mutex
	snaps Snapshots
	now   func() time.Time

	books      []models.Book
	borrows    []models.BorrowRecord
	reviews    []models.Review
	activities []models.UserActivity
	feedback   []models.Feedback
	users      []models.User
}

// Open loads all collections from the snapshot backend. Missing snapshots
// start as empty collections.
func Open(ctx context.Context, snaps Snapshots) (*Store, error) {
	s := &Store{snaps: snaps, now: time.Now}
	for _, load := range []struct {
		key  string
		dest interface{}
	}{
		{keyBooks, &s.books},
		{keyBorrows, &s.borrows},
		{keyReviews, &s.reviews},
		{keyActivities, &s.activities},
		{keyFeedback, &s.feedback},
		{keyUsers, &s.users},
	} {
		data, err := snaps.Load(ctx, load.key)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, load.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// persist rewrites the named collections in full. The in-memory mutation has
// already been applied; a failed save is logged, not rolled back.
func (s *Store) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var v interface{}
		switch key {
		case keyBooks:
			v = s.books
		case keyBorrows:
			v = s.borrows
		case keyReviews:
			v = s.reviews
		case keyActivities:
			v = s.activities
		case keyFeedback:
			v = s.feedback
		case keyUsers:
			v = s.users
		}
		data, err := json.Marshal(v)
		if err != nil {
			log.Printf("library: marshal %s: %v", key, err)
			continue
		}
		if err := s.snaps.Save(ctx, key, data); err != nil {
			log.Printf("library: save %s: %v", key, err)
		}
	}
}

func (s *Store) findBook(id string) *models.Book {
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i]
		}
	}
	return nil
}
