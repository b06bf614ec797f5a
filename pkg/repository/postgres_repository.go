package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/errors"

	"github.com/lib/pq" // PostgreSQL driver and array support
)

// PostgresRepository implements ProgressRepository and UserRepository using
// PostgreSQL. Progress records are stored one row per user with the id lists
// in array columns; upserts use INSERT ... ON CONFLICT (last-write-wins).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL-backed repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// EnsureSchema creates the tables and seeds the default user and progress
// record if absent. Called once at startup.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_progress (
			user_id INTEGER PRIMARY KEY,
			unlocked_levels INTEGER[] NOT NULL,
			completed_levels INTEGER[] NOT NULL,
			completed_missions TEXT[] NOT NULL,
			unlocked_skills TEXT[] NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL
		)`,
		`INSERT INTO users (id, username, password)
			VALUES (1, 'player', 'password')
			ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO game_progress (
			user_id, unlocked_levels, completed_levels,
			completed_missions, unlocked_skills, last_updated
		) VALUES (1, '{1}', '{}', '{}', '{}', NOW())
			ON CONFLICT (user_id) DO NOTHING`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.ErrDatabaseError("ensure schema", err)
		}
	}
	return nil
}

// GetProgress retrieves a user's progress record, or nil if absent.
func (r *PostgresRepository) GetProgress(ctx context.Context, userID int) (*domain.ProgressRecord, error) {
	query := `
		SELECT user_id, unlocked_levels, completed_levels,
		       completed_missions, unlocked_skills, last_updated
		FROM game_progress
		WHERE user_id = $1
	`

	var rec domain.ProgressRecord
	var unlockedLevels, completedLevels pq.Int64Array
	var lastUpdated time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&unlockedLevels,
		&completedLevels,
		pq.Array(&rec.CompletedMissions),
		pq.Array(&rec.UnlockedSkills),
		&lastUpdated,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, errors.ErrDatabaseError("get progress", err)
	}

	rec.UnlockedLevels = int64sToInts(unlockedLevels)
	rec.CompletedLevels = int64sToInts(completedLevels)
	if rec.CompletedMissions == nil {
		rec.CompletedMissions = []string{}
	}
	if rec.UnlockedSkills == nil {
		rec.UnlockedSkills = []string{}
	}
	rec.LastUpdated = lastUpdated.UTC().Format(time.RFC3339)

	return &rec, nil
}

// UpsertProgress creates or replaces the progress record for its user id.
func (r *PostgresRepository) UpsertProgress(ctx context.Context, record domain.ProgressRecord) error {
	query := `
		INSERT INTO game_progress (
			user_id, unlocked_levels, completed_levels,
			completed_missions, unlocked_skills, last_updated
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		ON CONFLICT (user_id) DO UPDATE SET
			unlocked_levels = EXCLUDED.unlocked_levels,
			completed_levels = EXCLUDED.completed_levels,
			completed_missions = EXCLUDED.completed_missions,
			unlocked_skills = EXCLUDED.unlocked_skills,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		record.UserID,
		pq.Array(intsToInt64s(record.UnlockedLevels)),
		pq.Array(intsToInt64s(record.CompletedLevels)),
		pq.Array(record.CompletedMissions),
		pq.Array(record.UnlockedSkills),
	)

	if err != nil {
		return errors.ErrDatabaseError("upsert progress", err)
	}

	return nil
}

// GetUser retrieves a user by id, or nil if absent.
func (r *PostgresRepository) GetUser(ctx context.Context, id int) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, username, password FROM users WHERE id = $1`, id)
}

// GetUserByUsername retrieves a user by username, or nil if absent.
func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, username, password FROM users WHERE username = $1`, username)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Password)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, errors.ErrDatabaseError("get user", err)
	}

	return &user, nil
}

// CreateUser inserts a new user with the next sequential id and seeds its
// initial progress record.
func (r *PostgresRepository) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, username, password)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2 FROM users
		RETURNING id
	`

	var id int
	if err := r.db.QueryRowContext(ctx, query, username, password).Scan(&id); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, errors.ErrUserExists(username)
		}
		return nil, errors.ErrDatabaseError("create user", err)
	}

	if err := r.UpsertProgress(ctx, domain.NewProgressRecord(id)); err != nil {
		return nil, err
	}

	return &domain.User{ID: id, Username: username, Password: password}, nil
}

func intsToInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func int64sToInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
