package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quizdesk/internal/domain"
)

// CredentialStore is an in-memory implementation of app.CredentialRepository,
// used by tests and redis-less demo setups.
type CredentialStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{users: make(map[int64]domain.User)}
}

func (s *CredentialStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.User{}, domain.ErrDuplicateUser
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user, nil
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *CredentialStore) UpdateUsername(_ context.Context, id int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Username = username
	s.users[id] = user
	return nil
}

func (s *CredentialStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *CredentialStore) List(_ context.Context, filter string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter = strings.ToLower(filter)
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if filter == "" || strings.Contains(strings.ToLower(user.Username), filter) {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
