// Package localcache persists the full local game state to a SQLite file.
// It is the write-through cache written synchronously on every mutation,
// independent of remote reachability, and is what allows instant reload
// without waiting on the network.
package localcache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/siddharth-behl/100cr/pkg/domain"
	gameerrors "github.com/siddharth-behl/100cr/pkg/errors"

	_ "modernc.org/sqlite" // SQLite driver
)

// Snapshot is the locally cached state. Unlike the remote record it carries
// money, experience, achievement unlocks and stats, which never cross the
// remote persistence boundary.
type Snapshot struct {
	Progress        domain.UserProgress `json:"progress"`
	Achievements    []string            `json:"achievements"`
	MissionProgress map[string]int      `json:"missionProgress,omitempty"`
	Stats           domain.GameStats    `json:"stats"`
	ShowLevelUp     bool                `json:"showLevelUp"`
}

// Store persists snapshots in SQLite, one row per user.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) a SQLite snapshot store at path.
// Use ":memory:" for an in-process store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS progress_snapshot (
		user_id INTEGER PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put writes the snapshot for its user, replacing any previous one.
func (s *Store) Put(snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return gameerrors.ErrCacheError("marshal snapshot", err)
	}

	query := `INSERT INTO progress_snapshot (user_id, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at`
	if _, err := s.sqlDB.Exec(query, snapshot.Progress.UserID, string(payload), time.Now().UTC().UnixMilli()); err != nil {
		return gameerrors.ErrCacheError("put snapshot", err)
	}
	return nil
}

// Get retrieves the snapshot for a user. Returns nil if none is cached.
func (s *Store) Get(userID int) (*Snapshot, error) {
	var payload string
	err := s.sqlDB.QueryRow(
		`SELECT payload FROM progress_snapshot WHERE user_id = ?`, userID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, gameerrors.ErrCacheError("get snapshot", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, gameerrors.ErrCacheError("unmarshal snapshot", err)
	}
	return &snapshot, nil
}

// Delete removes the cached snapshot for a user if present.
func (s *Store) Delete(userID int) error {
	if _, err := s.sqlDB.Exec(`DELETE FROM progress_snapshot WHERE user_id = ?`, userID); err != nil {
		return gameerrors.ErrCacheError("delete snapshot", err)
	}
	return nil
}
