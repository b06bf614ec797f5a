package repository

import (
	"context"

	"github.com/siddharth-behl/100cr/pkg/domain"
)

// ProgressRepository defines the interface for durable storage of game
// progress keyed by user id. This interface abstracts the remote store so the
// gateway can swap the PostgreSQL implementation for the in-process fallback.
type ProgressRepository interface {
	// GetProgress retrieves a user's progress record.
	// Returns nil if no record exists for the user.
	GetProgress(ctx context.Context, userID int) (*domain.ProgressRecord, error)

	// UpsertProgress creates or replaces the progress record for the record's
	// user id. Concurrent upserts on the same user resolve last-write-wins.
	UpsertProgress(ctx context.Context, record domain.ProgressRecord) error
}

// UserRepository defines the interface for player account storage.
type UserRepository interface {
	// GetUser retrieves a user by id. Returns nil if absent.
	GetUser(ctx context.Context, id int) (*domain.User, error)

	// GetUserByUsername retrieves a user by username. Returns nil if absent.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser inserts a new user with the next sequential id and returns it.
	CreateUser(ctx context.Context, username, password string) (*domain.User, error)
}
