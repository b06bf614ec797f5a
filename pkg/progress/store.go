// Package progress implements the Progress Store: the single owner of mutable
// player state and of every state-transition rule. All mutations flow through
// here; the catalog flags exposed to callers are always recomputed projections
// of the id lists held in UserProgress.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/siddharth-behl/100cr/pkg/achievement"
	"github.com/siddharth-behl/100cr/pkg/catalog"
	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/localcache"
)

// PersistenceGateway is the slice of the gateway the store needs: a bounded
// initial load and an upsert save whose failures are masked.
type PersistenceGateway interface {
	Load(ctx context.Context, userID int) (*domain.ProgressRecord, error)
	Save(ctx context.Context, record domain.ProgressRecord) error
}

// Cache is the synchronous local snapshot store written on every mutation.
type Cache interface {
	Put(snapshot localcache.Snapshot) error
	Get(userID int) (*localcache.Snapshot, error)
}

// DefaultSyncTimeout bounds each background push to the remote store.
const DefaultSyncTimeout = 10 * time.Second

// Store owns the player's UserProgress and applies all transition rules.
// Mutations arrive from a single event-driven caller; the mutex only guards
// the snapshot read performed by the background sync goroutine.
type Store struct {
	catalog   *catalog.Catalog
	evaluator *achievement.Evaluator
	gateway   PersistenceGateway
	cache     Cache
	logger    *slog.Logger

	mu                   sync.Mutex
	progress             domain.UserProgress
	missionProgress      map[string]int // mission id -> 0..100 partial progress
	unlockedAchievements map[string]bool
	stats                domain.GameStats
	showLevelUp          bool
	lastAchievement      *domain.Achievement

	// At-most-one in-flight remote sync. The flag is set before a push begins
	// and cleared on every exit path; a push reads store state at push-time,
	// so a sync that starts after the flag clears always reflects the latest
	// state and no queue is needed.
	syncing     atomic.Bool
	syncWG      sync.WaitGroup
	syncTimeout time.Duration
}

// New creates a store for the given user with initial default progress
// (level 1 unlocked, everything else empty). cache may be nil to disable the
// local snapshot cache.
func New(cat *catalog.Catalog, gw PersistenceGateway, cache Cache, logger *slog.Logger, userID int) *Store {
	return &Store{
		catalog:              cat,
		evaluator:            achievement.NewEvaluator(),
		gateway:              gw,
		cache:                cache,
		logger:               logger,
		progress:             domain.NewUserProgress(userID),
		missionProgress:      make(map[string]int),
		unlockedAchievements: make(map[string]bool),
		stats:                domain.GameStats{LevelsCompleted: []int{}},
		syncTimeout:          DefaultSyncTimeout,
	}
}

// RestoreLocal hydrates the store from the local snapshot cache, if present.
// Reports whether a snapshot was found. Called before Load so the player sees
// state instantly while the remote fetch races its timeout.
func (s *Store) RestoreLocal() bool {
	if s.cache == nil {
		return false
	}
	snap, err := s.cache.Get(s.userID())
	if err != nil {
		s.logger.Error("Failed to read local cache", "user_id", s.userID(), "error", err)
		return false
	}
	if snap == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = snap.Progress.Clone()
	s.unlockedAchievements = make(map[string]bool, len(snap.Achievements))
	for _, id := range snap.Achievements {
		s.unlockedAchievements[id] = true
	}
	s.missionProgress = make(map[string]int, len(snap.MissionProgress))
	for id, pct := range snap.MissionProgress {
		s.missionProgress[id] = pct
	}
	s.stats = snap.Stats
	if s.stats.LevelsCompleted == nil {
		s.stats.LevelsCompleted = []int{}
	}
	s.showLevelUp = snap.ShowLevelUp
	return true
}

// Load hydrates the id lists from the persistence gateway. On remote failure
// the locally cached state stays in place; the failure is logged and masked,
// never surfaced to the caller.
func (s *Store) Load(ctx context.Context) {
	rec, err := s.gateway.Load(ctx, s.userID())
	if err != nil || rec == nil {
		s.logger.Warn("Remote load unavailable, keeping local state",
			"user_id", s.userID(), "error", err)
		return
	}

	s.mu.Lock()
	s.progress.ApplyRecord(*rec)
	s.mu.Unlock()

	s.writeCache()
}

// ToggleMission flips the completion state of a mission. Completing a mission
// grants its reward and runs the completion cascade; un-completing only
// removes set membership - rewards already granted are not clawed back, and
// completed levels, unlocked next levels and achievements are never reverted.
// Unknown mission ids are a no-op.
func (s *Store) ToggleMission(missionID string) {
	mission := s.catalog.MissionByID(missionID)
	if mission == nil {
		s.logger.Warn("ToggleMission ignored unknown mission", "mission_id", missionID)
		return
	}

	s.mu.Lock()
	if s.progress.HasCompletedMission(missionID) {
		s.progress.RemoveCompletedMission(missionID)
		delete(s.missionProgress, missionID)
		s.progress.LastUpdated = time.Now().UTC()
		s.mu.Unlock()
		s.persist()
		return
	}

	prev := achievement.Capture(s.progress)
	s.progress.AddCompletedMission(missionID)
	s.missionProgress[missionID] = 100
	s.progress.Money += mission.Reward
	s.progress.Experience += mission.Reward / 10
	s.stats.MoneyEarned += mission.Reward
	s.stats.MissionsCompleted++

	s.evaluateLocked(prev, achievement.Capture(s.progress))
	s.cascadeLocked()
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// UpdateMissionProgress records partial progress (0..100) on a mission.
// Reaching 100 auto-completes the mission through the normal toggle path.
// Unknown mission ids are a no-op.
func (s *Store) UpdateMissionProgress(missionID string, pct int) {
	mission := s.catalog.MissionByID(missionID)
	if mission == nil {
		s.logger.Warn("UpdateMissionProgress ignored unknown mission", "mission_id", missionID)
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	s.mu.Lock()
	if s.progress.HasCompletedMission(missionID) {
		s.mu.Unlock()
		return
	}
	if pct >= 100 {
		s.mu.Unlock()
		s.ToggleMission(missionID)
		return
	}
	s.missionProgress[missionID] = pct
	s.mu.Unlock()
	s.persist()
}

// UnlockSkill unlocks a skill if it is not already unlocked and every
// prerequisite is in the unlocked set at call time. Otherwise a no-op.
func (s *Store) UnlockSkill(skillID string) {
	skill := s.catalog.SkillByID(skillID)
	if skill == nil {
		s.logger.Warn("UnlockSkill ignored unknown skill", "skill_id", skillID)
		return
	}

	s.mu.Lock()
	if s.progress.HasUnlockedSkill(skillID) {
		s.mu.Unlock()
		return
	}
	if !s.catalog.PrerequisitesUnlocked(skillID, s.progress) {
		s.mu.Unlock()
		s.logger.Info("Skill prerequisites not met", "skill_id", skillID)
		return
	}

	prev := achievement.Capture(s.progress)
	s.progress.AddUnlockedSkill(skillID)
	s.stats.SkillsUnlocked++
	s.evaluateLocked(prev, achievement.Capture(s.progress))
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// RemoveSkill unconditionally removes a skill from the unlocked set if
// present. Dependents that listed it as a prerequisite stay unlocked: past
// unlocks are never retroactively invalidated.
func (s *Store) RemoveSkill(skillID string) {
	s.mu.Lock()
	if !s.progress.HasUnlockedSkill(skillID) {
		s.mu.Unlock()
		return
	}
	s.progress.RemoveUnlockedSkill(skillID)
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// UnlockLevel explicitly unlocks a level (e.g. from a mission reward).
// Unknown level ids are a no-op.
func (s *Store) UnlockLevel(levelID int) {
	if !s.catalog.HasLevel(levelID) {
		s.logger.Warn("UnlockLevel ignored unknown level", "level_id", levelID)
		return
	}

	s.mu.Lock()
	if s.progress.HasUnlockedLevel(levelID) {
		s.mu.Unlock()
		return
	}
	s.progress.AddUnlockedLevel(levelID)
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// CompleteLevel directly marks a level completed, unlocking the next
// sequential level and raising the level-up notification, exactly as the
// mission-driven cascade would.
func (s *Store) CompleteLevel(levelID int) {
	if !s.catalog.HasLevel(levelID) {
		s.logger.Warn("CompleteLevel ignored unknown level", "level_id", levelID)
		return
	}

	s.mu.Lock()
	if s.progress.HasCompletedLevel(levelID) {
		s.mu.Unlock()
		return
	}
	prev := achievement.Capture(s.progress)
	s.completeLevelLocked(levelID)
	next := achievement.Capture(s.progress)
	next.LeveledUp = true
	s.evaluateLocked(prev, next)
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// EarnMoney adds to the money accumulator and evaluates the wealth-threshold
// achievements. Negative amounts are ignored.
func (s *Store) EarnMoney(amount int) {
	if amount < 0 {
		return
	}

	s.mu.Lock()
	prev := achievement.Capture(s.progress)
	s.progress.Money += amount
	s.stats.MoneyEarned += amount
	s.evaluateLocked(prev, achievement.Capture(s.progress))
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// SpendMoney subtracts from the money accumulator. A spend exceeding the
// balance is silently refused with no state change; callers are expected to
// check the balance before offering the action.
func (s *Store) SpendMoney(amount int) {
	if amount < 0 {
		return
	}

	s.mu.Lock()
	if amount > s.progress.Money {
		balance := s.progress.Money
		s.mu.Unlock()
		s.logger.Info("Spend refused, insufficient funds",
			"user_id", s.userID(), "amount", amount, "balance", balance)
		return
	}
	s.progress.Money -= amount
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// GainExperience adds to the experience accumulator.
func (s *Store) GainExperience(amount int) {
	if amount < 0 {
		return
	}

	s.mu.Lock()
	s.progress.Experience += amount
	s.progress.LastUpdated = time.Now().UTC()
	s.mu.Unlock()
	s.persist()
}

// ResetProgress restores the initial state: level 1 unlocked, all lists
// empty, accumulators zeroed, achievements re-locked.
func (s *Store) ResetProgress() {
	s.mu.Lock()
	s.progress = domain.NewUserProgress(s.progress.UserID)
	s.missionProgress = make(map[string]int)
	s.unlockedAchievements = make(map[string]bool)
	s.stats = domain.GameStats{LevelsCompleted: []int{}}
	s.showLevelUp = false
	s.lastAchievement = nil
	s.mu.Unlock()
	s.persist()
}

// AcknowledgeLevelUp clears the level-up notification flag.
func (s *Store) AcknowledgeLevelUp() {
	s.mu.Lock()
	s.showLevelUp = false
	s.mu.Unlock()
	s.writeCache()
}

// AcknowledgeAchievement clears the last-achievement notification.
func (s *Store) AcknowledgeAchievement() {
	s.mu.Lock()
	s.lastAchievement = nil
	s.mu.Unlock()
	s.writeCache()
}

// cascadeLocked recomputes level completion for every level (not just the
// mutated mission's level - the contract re-evaluates the whole catalog after
// any mutation). A level transitioning to completed unlocks the next
// sequential level, raises the level-up notification and evaluates the
// level-up achievement.
func (s *Store) cascadeLocked() {
	leveledUp := false
	prev := achievement.Capture(s.progress)

	for _, level := range s.catalog.Levels() {
		if s.progress.HasCompletedLevel(level.ID) {
			continue
		}
		if !s.catalog.RequiredMissionsCompleted(level.ID, s.progress) {
			continue
		}
		s.completeLevelLocked(level.ID)
		leveledUp = true
	}

	if leveledUp {
		next := achievement.Capture(s.progress)
		next.LeveledUp = true
		s.evaluateLocked(prev, next)
	}
}

// completeLevelLocked marks a level completed and unlocks the next level if
// the catalog defines one. Caller holds the mutex.
func (s *Store) completeLevelLocked(levelID int) {
	s.progress.AddCompletedLevel(levelID)
	s.stats.LevelsCompleted = append(s.stats.LevelsCompleted, levelID)
	s.showLevelUp = true

	nextID := levelID + 1
	if s.catalog.HasLevel(nextID) && !s.progress.HasUnlockedLevel(nextID) {
		s.progress.AddUnlockedLevel(nextID)
		s.logger.Info("Level unlocked", "user_id", s.progress.UserID, "level_id", nextID)
	}
	s.logger.Info("Level completed", "user_id", s.progress.UserID, "level_id", levelID)
}

// evaluateLocked runs the achievement rules for one transition and grants at
// most one newly unlocked achievement. Caller holds the mutex.
func (s *Store) evaluateLocked(prev, next achievement.Snapshot) {
	unlocked := s.evaluator.Evaluate(prev, next, s.unlockedAchievements)
	if unlocked == nil {
		return
	}
	s.unlockedAchievements[unlocked.ID] = true
	s.progress.Money += unlocked.Reward
	s.lastAchievement = unlocked
	s.logger.Info("Achievement unlocked",
		"user_id", s.progress.UserID, "achievement_id", unlocked.ID, "reward", unlocked.Reward)
}

func (s *Store) userID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.UserID
}
