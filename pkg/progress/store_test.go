package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-behl/100cr/pkg/catalog"
	"github.com/siddharth-behl/100cr/pkg/config"
	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/localcache"
)

// fakeGateway records every save and serves a configurable load response.
type fakeGateway struct {
	mu      sync.Mutex
	loadRec *domain.ProgressRecord
	loadErr error
	saveErr error
	saves   []domain.ProgressRecord
}

func (f *fakeGateway) Load(_ context.Context, _ int) (*domain.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loadRec == nil {
		return nil, nil
	}
	rec := f.loadRec.Clone()
	return &rec, nil
}

func (f *fakeGateway) Save(_ context.Context, record domain.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, record.Clone())
	return nil
}

func (f *fakeGateway) lastSave() *domain.ProgressRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	rec := f.saves[len(f.saves)-1].Clone()
	return &rec
}

// fakeCache holds the last snapshot per user in memory.
type fakeCache struct {
	mu        sync.Mutex
	snapshots map[int]localcache.Snapshot
	putErr    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{snapshots: make(map[int]localcache.Snapshot)}
}

func (f *fakeCache) Put(snapshot localcache.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.snapshots[snapshot.Progress.UserID] = snapshot
	return nil
}

func (f *fakeCache) Get(userID int) (*localcache.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cfg, err := config.NewConfigLoader("", testLogger()).LoadConfig()
	require.NoError(t, err)
	return catalog.New(cfg, "", testLogger())
}

func newTestStore(t *testing.T) (*Store, *fakeGateway, *fakeCache) {
	t.Helper()
	gw := &fakeGateway{}
	cache := newFakeCache()
	s := New(testCatalog(t), gw, cache, testLogger(), domain.DefaultUserID)
	return s, gw, cache
}

func TestToggleMission_CompleteGrantsReward(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	p := s.Progress()
	assert.True(t, p.HasCompletedMission("rookie_mission_1"))
	// Mission reward 1000 plus the first-mission achievement reward 1000.
	assert.Equal(t, 2000, s.Money())
	assert.Equal(t, 100, s.Experience())

	stats := s.Stats()
	assert.Equal(t, 1, stats.MissionsCompleted)
	assert.Equal(t, 1000, stats.MoneyEarned)

	last := s.LastAchievement()
	require.NotNil(t, last)
	assert.Equal(t, catalog.AchievementFirstMission, last.ID)
}

func TestToggleMission_UncompleteKeepsRewards(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	moneyAfter := s.Money()
	expAfter := s.Experience()

	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	p := s.Progress()
	assert.False(t, p.HasCompletedMission("rookie_mission_1"),
		"toggling twice should remove set membership")
	assert.Equal(t, moneyAfter, s.Money(), "rewards are never clawed back")
	assert.Equal(t, expAfter, s.Experience())
	assert.Equal(t, 1, s.Stats().MissionsCompleted, "lifetime counters never decrease")
}

func TestToggleMission_RecompleteGrantsAgain(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.ToggleMission("rookie_mission_1")
	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	// Second completion pays the mission reward again, but the achievement
	// stays unlocked and its reward is granted exactly once.
	assert.Equal(t, 3000, s.Money())
	assert.Equal(t, 2, s.Stats().MissionsCompleted)
}

func TestToggleMission_UnknownIsNoOp(t *testing.T) {
	s, _, _ := newTestStore(t)

	before := s.Progress()
	s.ToggleMission("no_such_mission")
	s.WaitSync()

	after := s.Progress()
	assert.Equal(t, before.CompletedMissions, after.CompletedMissions)
	assert.Equal(t, 0, s.Money())
}

func TestCompletionCascade_LevelOne(t *testing.T) {
	s, _, _ := newTestStore(t)

	for _, id := range []string{"rookie_mission_1", "rookie_mission_2", "rookie_mission_3", "rookie_mission_4"} {
		s.ToggleMission(id)
	}
	s.WaitSync()

	p := s.Progress()
	assert.Equal(t, []int{1}, p.CompletedLevels)
	assert.Equal(t, []int{1, 2}, p.UnlockedLevels, "completing level 1 unlocks level 2")
	assert.True(t, s.ShowLevelUp())

	// Mission rewards 1000+2000+3000+10000, first-mission achievement 1000,
	// level-up achievement 5000.
	assert.Equal(t, 22000, s.Money())
	assert.Equal(t, 1600, s.Experience())
	assert.Equal(t, []int{1}, s.Stats().LevelsCompleted)
}

func TestCompletionCascade_ReversesNothing(t *testing.T) {
	s, _, _ := newTestStore(t)

	for _, id := range []string{"rookie_mission_1", "rookie_mission_2", "rookie_mission_3", "rookie_mission_4"} {
		s.ToggleMission(id)
	}
	moneyAfter := s.Money()

	// Un-completing a level 1 mission never reverts the completed level, the
	// unlocked next level, or granted rewards.
	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	p := s.Progress()
	assert.False(t, p.HasCompletedMission("rookie_mission_1"))
	assert.Equal(t, []int{1}, p.CompletedLevels)
	assert.Equal(t, []int{1, 2}, p.UnlockedLevels)
	assert.Equal(t, moneyAfter, s.Money())
}

func TestAcknowledgeLevelUp(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.CompleteLevel(1)
	require.True(t, s.ShowLevelUp())

	s.AcknowledgeLevelUp()
	s.WaitSync()
	assert.False(t, s.ShowLevelUp())
}

func TestCompleteLevel_Direct(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.CompleteLevel(1)
	s.WaitSync()

	p := s.Progress()
	assert.Equal(t, []int{1}, p.CompletedLevels)
	assert.Equal(t, []int{1, 2}, p.UnlockedLevels)
	assert.Equal(t, 5000, s.Money(), "level-up achievement reward")

	// Completing again is a no-op.
	s.CompleteLevel(1)
	s.WaitSync()
	assert.Equal(t, 5000, s.Money())
	assert.Equal(t, []int{1}, s.Stats().LevelsCompleted)
}

func TestCompleteLevel_LastLevelHasNoNext(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.CompleteLevel(5)
	s.WaitSync()

	p := s.Progress()
	assert.Equal(t, []int{5}, p.CompletedLevels)
	assert.Equal(t, []int{1}, p.UnlockedLevels, "no level 6 exists to unlock")
	assert.True(t, s.ShowLevelUp())
}

func TestUnlockSkill_PrerequisiteGate(t *testing.T) {
	s, _, _ := newTestStore(t)

	// skill_advanced_sales requires skill_outreach.
	s.UnlockSkill("skill_advanced_sales")
	assert.False(t, s.Progress().HasUnlockedSkill("skill_advanced_sales"),
		"unlock with missing prerequisite is a no-op")
	assert.False(t, s.IsSkillUnlockable("skill_advanced_sales"))

	s.UnlockSkill("skill_outreach")
	require.True(t, s.Progress().HasUnlockedSkill("skill_outreach"))
	assert.True(t, s.IsSkillUnlockable("skill_advanced_sales"))

	s.UnlockSkill("skill_advanced_sales")
	s.WaitSync()
	assert.True(t, s.Progress().HasUnlockedSkill("skill_advanced_sales"))

	// First skill unlock granted its achievement reward exactly once.
	assert.Equal(t, 2000, s.Money())
	assert.Equal(t, 2, s.Stats().SkillsUnlocked)
}

func TestUnlockSkill_AlreadyUnlockedIsNoOp(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.UnlockSkill("skill_meta_ads")
	s.UnlockSkill("skill_meta_ads")
	s.WaitSync()

	assert.Equal(t, 1, s.Stats().SkillsUnlocked)
	assert.Len(t, s.Progress().UnlockedSkills, 1)
}

func TestRemoveSkill_NeverCascades(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.UnlockSkill("skill_outreach")
	s.UnlockSkill("skill_advanced_sales")

	s.RemoveSkill("skill_outreach")
	s.WaitSync()

	p := s.Progress()
	assert.False(t, p.HasUnlockedSkill("skill_outreach"))
	assert.True(t, p.HasUnlockedSkill("skill_advanced_sales"),
		"dependents stay unlocked when a prerequisite is removed")

	// But a fresh unlock re-checks prerequisites at call time.
	s.RemoveSkill("skill_advanced_sales")
	s.UnlockSkill("skill_advanced_sales")
	assert.False(t, s.Progress().HasUnlockedSkill("skill_advanced_sales"))
}

func TestWealthAchievements_ExactlyOnce(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.EarnMoney(150_000)
	s.WaitSync()
	// 150000 earned plus the 10000 Lakhpati bonus.
	assert.Equal(t, 160_000, s.Money())

	s.SpendMoney(120_000)
	assert.Equal(t, 40_000, s.Money())

	// Re-crossing the threshold never re-grants.
	s.EarnMoney(110_000)
	s.WaitSync()
	assert.Equal(t, 150_000, s.Money())

	unlocked := 0
	for _, a := range s.Achievements() {
		if a.IsUnlocked {
			unlocked++
			assert.Equal(t, catalog.AchievementFirstLakh, a.ID)
		}
	}
	assert.Equal(t, 1, unlocked)
}

func TestSpendMoney_InsufficientFundsRefused(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.EarnMoney(500)
	s.SpendMoney(1000)
	s.WaitSync()

	assert.Equal(t, 500, s.Money(), "overdraw must leave the balance unchanged")
}

func TestUpdateMissionProgress(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.UpdateMissionProgress("rookie_mission_1", 40)
	s.WaitSync()

	pct := missionProgressFromLevels(t, s, "rookie_mission_1")
	assert.Equal(t, 40, pct)
	assert.False(t, s.Progress().HasCompletedMission("rookie_mission_1"))

	// Values are clamped to 0..100.
	s.UpdateMissionProgress("rookie_mission_1", -5)
	assert.Equal(t, 0, missionProgressFromLevels(t, s, "rookie_mission_1"))

	// Reaching 100 completes the mission through the normal path.
	s.UpdateMissionProgress("rookie_mission_1", 100)
	s.WaitSync()
	assert.True(t, s.Progress().HasCompletedMission("rookie_mission_1"))
	assert.Equal(t, 2000, s.Money())

	// Progress updates on a completed mission are ignored.
	s.UpdateMissionProgress("rookie_mission_1", 10)
	assert.Equal(t, 100, missionProgressFromLevels(t, s, "rookie_mission_1"))
}

func missionProgressFromLevels(t *testing.T, s *Store, missionID string) int {
	t.Helper()
	for _, level := range s.Levels() {
		for _, mission := range level.Missions {
			if mission.ID == missionID {
				return mission.Progress
			}
		}
	}
	t.Fatalf("mission %s not found in levels", missionID)
	return 0
}

func TestGainExperience(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.GainExperience(250)
	s.GainExperience(-10)
	s.WaitSync()

	assert.Equal(t, 250, s.Experience())
}

func TestResetProgress(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.UnlockSkill("skill_meta_ads")
	s.ResetProgress()
	s.WaitSync()

	p := s.Progress()
	assert.Equal(t, []int{1}, p.UnlockedLevels)
	assert.Empty(t, p.CompletedMissions)
	assert.Empty(t, p.UnlockedSkills)
	assert.Equal(t, 0, s.Money())
	assert.Equal(t, 0, s.Experience())
	assert.False(t, s.ShowLevelUp())
	assert.Nil(t, s.LastAchievement())

	for _, a := range s.Achievements() {
		assert.False(t, a.IsUnlocked, "reset must re-lock achievement %s", a.ID)
	}

	// Achievements can be earned again after a reset.
	s.ToggleMission("rookie_mission_1")
	s.WaitSync()
	assert.Equal(t, 2000, s.Money())
}

func TestLoad_AppliesRemoteRecord(t *testing.T) {
	s, gw, _ := newTestStore(t)

	rec := domain.NewProgressRecord(domain.DefaultUserID)
	rec.CompletedMissions = []string{"rookie_mission_1"}
	rec.UnlockedLevels = []int{1, 2}
	rec.CompletedLevels = []int{1}
	gw.loadRec = &rec

	s.EarnMoney(5000) // local-only state that the remote record does not carry
	s.WaitSync()
	s.Load(context.Background())

	p := s.Progress()
	assert.True(t, p.HasCompletedMission("rookie_mission_1"))
	assert.Equal(t, []int{1, 2}, p.UnlockedLevels)
	assert.Equal(t, 5000, s.Money(), "load must not clobber local money")
}

func TestLoad_RemoteFailureKeepsLocalState(t *testing.T) {
	s, gw, _ := newTestStore(t)
	gw.loadErr = errors.New("connection refused")

	s.ToggleMission("rookie_mission_1")
	s.WaitSync()
	s.Load(context.Background())

	assert.True(t, s.Progress().HasCompletedMission("rookie_mission_1"),
		"failed load must leave local state in place")
}

func TestSync_PushesCurrentRecord(t *testing.T) {
	s, gw, _ := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.UnlockSkill("skill_meta_ads")
	s.WaitSync()

	require.NoError(t, s.Sync(context.Background()))

	rec := gw.lastSave()
	require.NotNil(t, rec)
	assert.Equal(t, domain.DefaultUserID, rec.UserID)
	assert.Contains(t, rec.CompletedMissions, "rookie_mission_1")
	assert.Contains(t, rec.UnlockedSkills, "skill_meta_ads")
}

func TestTriggerSync_SaveFailureIsMasked(t *testing.T) {
	s, gw, _ := newTestStore(t)
	gw.saveErr = errors.New("remote down")

	// Mutations never fail on sync errors; they are logged and masked.
	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	assert.True(t, s.Progress().HasCompletedMission("rookie_mission_1"))
}

func TestWriteThroughCache(t *testing.T) {
	s, _, cache := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	snap, err := cache.Get(domain.DefaultUserID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.Progress.HasCompletedMission("rookie_mission_1"))
	assert.Equal(t, 2000, snap.Progress.Money)
	assert.Contains(t, snap.Achievements, catalog.AchievementFirstMission)
}

func TestWriteThroughCache_FailureIsMasked(t *testing.T) {
	s, _, cache := newTestStore(t)
	cache.putErr = errors.New("disk full")

	s.ToggleMission("rookie_mission_1")
	s.WaitSync()

	assert.True(t, s.Progress().HasCompletedMission("rookie_mission_1"),
		"cache failures never block mutations")
}

func TestRestoreLocal(t *testing.T) {
	s, _, cache := newTestStore(t)

	s.ToggleMission("rookie_mission_1")
	s.UnlockSkill("skill_meta_ads")
	s.UpdateMissionProgress("rookie_mission_2", 60)
	s.WaitSync()

	// A fresh store over the same cache picks up where the last one left off.
	restored := New(testCatalog(t), &fakeGateway{}, cache, testLogger(), domain.DefaultUserID)
	require.True(t, restored.RestoreLocal())

	p := restored.Progress()
	assert.True(t, p.HasCompletedMission("rookie_mission_1"))
	assert.True(t, p.HasUnlockedSkill("skill_meta_ads"))
	assert.Equal(t, s.Money(), restored.Money())
	assert.Equal(t, 60, missionProgressFromLevels(t, restored, "rookie_mission_2"))

	for _, a := range restored.Achievements() {
		if a.ID == catalog.AchievementFirstMission {
			assert.True(t, a.IsUnlocked, "achievement unlocks survive restore")
		}
	}

	// Restored achievements never re-grant.
	restored.ToggleMission("rookie_mission_3")
	restored.WaitSync()
	assert.Equal(t, s.Money()+3000, restored.Money())
}

func TestRestoreLocal_EmptyCache(t *testing.T) {
	s, _, _ := newTestStore(t)
	assert.False(t, s.RestoreLocal())
}

func TestRestoreLocal_NilCache(t *testing.T) {
	s := New(testCatalog(t), &fakeGateway{}, nil, testLogger(), domain.DefaultUserID)
	assert.False(t, s.RestoreLocal())

	// Mutations still work without a cache.
	s.ToggleMission("rookie_mission_1")
	s.WaitSync()
	assert.Equal(t, 2000, s.Money())
}

func TestIsLevelUnlockable(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.True(t, s.IsLevelUnlockable(1))
	assert.False(t, s.IsLevelUnlockable(2))
	assert.False(t, s.IsLevelUnlockable(99))

	for _, id := range []string{"rookie_mission_1", "rookie_mission_2", "rookie_mission_3", "rookie_mission_4"} {
		s.ToggleMission(id)
	}
	s.WaitSync()

	assert.True(t, s.IsLevelUnlockable(2))
	assert.False(t, s.IsLevelUnlockable(3))
}
