package library

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shelfwise/library/backend/models"
)

// CreateUser registers a user with a verified phone number. Phone numbers
// are unique; the admin role cannot be claimed through registration.
func (s *Store) CreateUser(ctx context.Context, name, phone, role string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || phone == "" {
		return nil, ErrInvalidInput
	}
	if role == models.RoleAdmin || !models.RoleValid(role) {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Phone == phone {
			return nil, ErrConflict
		}
	}
	u := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Role:      role,
		CreatedAt: s.now(),
	}
	s.users = append(s.users, u)
	s.persist(ctx, keyUsers)
	return &u, nil
}

// EnsureAdmin returns the admin user with the given email, creating it with
// the supplied password hash when absent. Used to seed the configured admin
// account on first login.
func (s *Store) EnsureAdmin(ctx context.Context, email, passwordHash string) (*models.User, error) {
	if email == "" {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			out := s.users[i]
			return &out, nil
		}
	}
	for _, u := range s.users {
		if u.Role == models.RoleAdmin {
			return nil, ErrConflict
		}
	}
	u := models.User{
		ID:        uuid.NewString(),
		Name:      "Administrator",
		Email:     email,
		Role:      models.RoleAdmin,
		Password:  passwordHash,
		CreatedAt: s.now(),
	}
	s.users = append(s.users, u)
	s.persist(ctx, keyUsers)
	return &u, nil
}

// UserByPhone resolves a user by phone number. Returns nil when unknown.
func (s *Store) UserByPhone(phone string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Phone == phone {
			out := u
			return &out
		}
	}
	return nil
}

// UserByEmail resolves a user by email, case-insensitively. Returns nil when
// unknown.
func (s *Store) UserByEmail(email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			out := u
			return &out
		}
	}
	return nil
}

// UserByID resolves a user by id. Returns nil when unknown.
func (s *Store) UserByID(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			out := u
			return &out
		}
	}
	return nil
}

// UpdateUserRole changes a user's role (admin only). At most one admin may
// exist, so promoting a second user to admin fails with ErrConflict.
func (s *Store) UpdateUserRole(ctx context.Context, actor Actor, userID, role string) (*models.User, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageUsers) {
		return nil, ErrForbidden
	}
	if !models.RoleValid(role) {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if role == models.RoleAdmin {
		for _, u := range s.users {
			if u.Role == models.RoleAdmin && u.ID != userID {
				return nil, ErrConflict
			}
		}
	}
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].Role = role
			s.persist(ctx, keyUsers)
			out := s.users[i]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Users lists all registered users (admin only).
func (s *Store) Users(actor Actor) ([]models.User, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.can(capManageUsers) {
		return nil, ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}
