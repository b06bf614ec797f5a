package repository

import (
	"context"
	"sync"
	"time"

	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/errors"
)

// MemoryRepository is the in-process fallback store used when the remote
// database is unreachable. It holds typed maps keyed by user id with the same
// upsert semantics as the PostgreSQL implementation, and lives for the process
// lifetime. It is seeded with the default user and progress record so
// first-run behavior is well-defined with no network at all.
type MemoryRepository struct {
	mu       sync.RWMutex
	progress map[int]domain.ProgressRecord
	users    map[int]domain.User
}

// NewMemoryRepository creates a fallback store seeded with the default user.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		progress: make(map[int]domain.ProgressRecord),
		users:    make(map[int]domain.User),
	}
	r.users[domain.DefaultUserID] = domain.User{
		ID:       domain.DefaultUserID,
		Username: "player",
		Password: "password",
	}
	r.progress[domain.DefaultUserID] = domain.NewProgressRecord(domain.DefaultUserID)
	return r
}

// GetProgress retrieves a user's progress record, or nil if absent.
func (r *MemoryRepository) GetProgress(_ context.Context, userID int) (*domain.ProgressRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.progress[userID]
	if !ok {
		return nil, nil
	}
	out := rec.Clone()
	return &out, nil
}

// UpsertProgress creates or replaces the record for its user id.
func (r *MemoryRepository) UpsertProgress(_ context.Context, record domain.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	r.progress[record.UserID] = record.Clone()
	return nil
}

// GetUser retrieves a user by id, or nil if absent.
func (r *MemoryRepository) GetUser(_ context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, or nil if absent.
func (r *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

// CreateUser inserts a new user with the next sequential id and seeds its
// initial progress record, mirroring the remote store's behavior.
func (r *MemoryRepository) CreateUser(_ context.Context, username, password string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			return nil, errors.ErrUserExists(username)
		}
	}

	id := len(r.users) + 1
	for {
		if _, taken := r.users[id]; !taken {
			break
		}
		id++
	}
	user := domain.User{ID: id, Username: username, Password: password}
	r.users[id] = user
	r.progress[id] = domain.NewProgressRecord(id)
	return &user, nil
}
