// Package gateway bridges the remote store and the in-process fallback table,
// degrading transparently when the remote store is unreachable. Remote
// unavailability is never fatal and never surfaces to the presentation layer;
// it is logged and masked.
package gateway

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/errors"
	"github.com/siddharth-behl/100cr/pkg/repository"
)

// Remote is the full surface the gateway expects from the remote store.
type Remote interface {
	repository.ProgressRepository
	repository.UserRepository
}

// DefaultLoadTimeout bounds the initial remote load before the gateway
// commits to the in-memory fallback for the rest of the process lifetime.
const DefaultLoadTimeout = 5 * time.Second

// Gateway is the Persistence Gateway: durable storage and retrieval of
// progress records keyed by user id, with graceful degradation.
type Gateway struct {
	remote      Remote
	fallback    *repository.MemoryRepository
	inFallback  atomic.Bool
	loadTimeout time.Duration
	logger      *slog.Logger
}

// New creates a gateway over the given remote store. A nil remote starts the
// gateway directly in fallback mode (in-memory only operation).
func New(remote Remote, loadTimeout time.Duration, logger *slog.Logger) *Gateway {
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	g := &Gateway{
		remote:      remote,
		fallback:    repository.NewMemoryRepository(),
		loadTimeout: loadTimeout,
		logger:      logger,
	}
	if remote == nil {
		g.inFallback.Store(true)
		logger.Info("Remote store disabled, using in-memory fallback")
	}
	return g
}

// InFallback reports whether the gateway has committed to in-memory operation.
func (g *Gateway) InFallback() bool {
	return g.inFallback.Load()
}

// Load fetches the progress record for the user, bounded by the load timeout.
// On remote not-found it initializes default progress and pushes it upstream.
// On any other remote failure it commits to the fallback table for the
// remainder of the process lifetime and returns ErrRemoteUnavailable so the
// caller can keep its locally cached state in place.
func (g *Gateway) Load(ctx context.Context, userID int) (*domain.ProgressRecord, error) {
	if g.inFallback.Load() {
		return g.loadFallback(ctx, userID)
	}

	ctx, cancel := context.WithTimeout(ctx, g.loadTimeout)
	defer cancel()

	rec, err := g.remote.GetProgress(ctx, userID)
	if err != nil {
		g.commitFallback("load", userID, err)
		return nil, errors.ErrRemoteUnavailable("load", err)
	}

	if rec == nil {
		def := domain.NewProgressRecord(userID)
		if err := g.remote.UpsertProgress(ctx, def); err != nil {
			g.commitFallback("load", userID, err)
			return &def, nil
		}
		g.logger.Info("Created default game progress", "user_id", userID)
		return &def, nil
	}

	return rec, nil
}

// loadFallback reads from the memory table, seeding a default record when the
// user has none yet.
func (g *Gateway) loadFallback(ctx context.Context, userID int) (*domain.ProgressRecord, error) {
	rec, err := g.fallback.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		def := domain.NewProgressRecord(userID)
		if err := g.fallback.UpsertProgress(ctx, def); err != nil {
			return nil, err
		}
		return &def, nil
	}
	return rec, nil
}

// Save upserts the progress record. A remote failure is masked: it commits
// the gateway to the fallback table so later loads see the saved state, and
// the record is written there instead. The remote is not retried per call.
func (g *Gateway) Save(ctx context.Context, record domain.ProgressRecord) error {
	record.Touch()

	if !g.inFallback.Load() {
		err := g.remote.UpsertProgress(ctx, record)
		if err == nil {
			return nil
		}
		g.commitFallback("save", record.UserID, err)
	}

	return g.fallback.UpsertProgress(ctx, record)
}

// GetProgress retrieves a record for read-only use (HTTP handlers). Remote
// failures fall back to the memory table, returning nil when truly absent.
func (g *Gateway) GetProgress(ctx context.Context, userID int) (*domain.ProgressRecord, error) {
	if !g.inFallback.Load() {
		rec, err := g.remote.GetProgress(ctx, userID)
		if err == nil {
			return rec, nil
		}
		g.logger.Error("Remote read failed, reading in-memory fallback",
			"user_id", userID, "error", err)
	}
	return g.fallback.GetProgress(ctx, userID)
}

// GetUser retrieves a user by id, falling back to the memory table.
func (g *Gateway) GetUser(ctx context.Context, id int) (*domain.User, error) {
	if !g.inFallback.Load() {
		user, err := g.remote.GetUser(ctx, id)
		if err == nil {
			return user, nil
		}
		g.logger.Error("Remote user read failed, reading in-memory fallback",
			"user_id", id, "error", err)
	}
	return g.fallback.GetUser(ctx, id)
}

// GetUserByUsername retrieves a user by username, falling back to the memory
// table.
func (g *Gateway) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if !g.inFallback.Load() {
		user, err := g.remote.GetUserByUsername(ctx, username)
		if err == nil {
			return user, nil
		}
		g.logger.Error("Remote user read failed, reading in-memory fallback",
			"username", username, "error", err)
	}
	return g.fallback.GetUserByUsername(ctx, username)
}

// CreateUser creates a user with auto-created default progress, falling back
// to the memory table on remote connectivity failure. A username conflict is
// a rejection, not unavailability; it surfaces to the caller rather than
// minting an account the remote refused.
func (g *Gateway) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	if !g.inFallback.Load() {
		user, err := g.remote.CreateUser(ctx, username, password)
		if err == nil {
			return user, nil
		}
		if errors.HasCode(err, errors.ErrCodeUserExists) {
			return nil, err
		}
		g.logger.Error("Remote user create failed, writing to in-memory fallback",
			"username", username, "error", err)
	}
	return g.fallback.CreateUser(ctx, username, password)
}

// commitFallback flips the gateway into in-memory mode for the remainder of
// the process. The remote is only retried at next process start.
func (g *Gateway) commitFallback(operation string, userID int, err error) {
	if g.inFallback.CompareAndSwap(false, true) {
		g.logger.Error("Remote store unavailable, committing to in-memory fallback",
			"operation", operation, "user_id", userID, "error", err)
	}
}
