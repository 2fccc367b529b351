// Package memory holds the in-process user store backing the dashboard.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// Compile-time interface check.
var _ domain.UserStore = (*UserStore)(nil)

// UserStore implements domain.UserStore as an ordered slice guarded by a mutex.
type UserStore struct {
	mu    sync.RWMutex
	users []domain.User
	index map[int64]int // id -> position in users
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{index: make(map[int64]int)}
}

// Add appends a user. It fails with domain.ErrDuplicateID if the ID is taken.
func (s *UserStore) Add(user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[user.ID]; ok {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, user.ID)
	}
	s.index[user.ID] = len(s.users)
	s.users = append(s.users, user)
	return nil
}

// Replace overwrites the editable fields of the user with the given ID.
func (s *UserStore) Replace(id int64, fields domain.UserFields) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	u := &s.users[i]
	u.FirstName = fields.FirstName
	u.LastName = fields.LastName
	u.Email = fields.Email
	u.Department = fields.Department
	return *u, nil
}

// Remove deletes the user with the given ID, keeping the order of the rest.
func (s *UserStore) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}

	s.users = slices.Delete(s.users, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.users); j++ {
		s.index[s.users[j].ID] = j
	}
	return nil
}

// Get returns the user with the given ID.
func (s *UserStore) Get(id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[i], nil
}

// All returns a copy of every user in insertion order.
func (s *UserStore) All() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.users)
}

// Reset replaces the whole collection. The store is left untouched if users
// contains a duplicate ID.
func (s *UserStore) Reset(users []domain.User) error {
	index := make(map[int64]int, len(users))
	for i, u := range users {
		if _, ok := index[u.ID]; ok {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateID, u.ID)
		}
		index[u.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = slices.Clone(users)
	s.index = index
	return nil
}

// MaxID returns the largest ID in the store, or 0 when it is empty.
func (s *UserStore) MaxID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID int64
	for _, u := range s.users {
		maxID = max(maxID, u.ID)
	}
	return maxID
}
