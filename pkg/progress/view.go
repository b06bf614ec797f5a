package progress

import (
	"sort"

	"github.com/siddharth-behl/100cr/pkg/catalog"
	"github.com/siddharth-behl/100cr/pkg/domain"
	"github.com/siddharth-behl/100cr/pkg/localcache"
)

// Progress returns a deep copy of the current UserProgress.
func (s *Store) Progress() domain.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// Record returns the current progress projected onto the wire shape.
func (s *Store) Record() domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.ToRecord()
}

// Levels returns all catalog levels with every derived flag (unlock,
// completion, mission progress, skill unlocks) computed from the current id
// lists. The returned levels are owned by the caller.
func (s *Store) Levels() []*domain.Level {
	s.mu.Lock()
	p := s.progress.Clone()
	partial := make(map[string]int, len(s.missionProgress))
	for id, pct := range s.missionProgress {
		partial[id] = pct
	}
	s.mu.Unlock()

	levels := s.catalog.Snapshot(p)
	for _, level := range levels {
		for _, mission := range level.Missions {
			if mission.IsCompleted {
				continue
			}
			if pct, ok := partial[mission.ID]; ok {
				mission.Progress = pct
			}
		}
	}
	return levels
}

// Achievements returns all achievement definitions with IsUnlocked projected
// from the player's unlocked set, in display order.
func (s *Store) Achievements() []domain.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := catalog.Achievements()
	for i := range out {
		out[i].IsUnlocked = s.unlockedAchievements[out[i].ID]
	}
	return out
}

// Stats returns a copy of the lifetime counters.
func (s *Store) Stats() domain.GameStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.LevelsCompleted = append([]int(nil), s.stats.LevelsCompleted...)
	return out
}

// Money returns the current balance.
func (s *Store) Money() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Money
}

// Experience returns the current experience total.
func (s *Store) Experience() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Experience
}

// ShowLevelUp reports whether a level-up notification is pending.
func (s *Store) ShowLevelUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showLevelUp
}

// LastAchievement returns the most recently unlocked achievement awaiting
// acknowledgement, or nil.
func (s *Store) LastAchievement() *domain.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAchievement == nil {
		return nil
	}
	out := *s.lastAchievement
	return &out
}

// IsSkillUnlockable reports whether the skill could be unlocked right now:
// known, not yet unlocked, and all prerequisites unlocked.
func (s *Store) IsSkillUnlockable(skillID string) bool {
	s.mu.Lock()
	p := s.progress.Clone()
	s.mu.Unlock()

	if s.catalog.SkillByID(skillID) == nil {
		return false
	}
	if p.HasUnlockedSkill(skillID) {
		return false
	}
	return s.catalog.PrerequisitesUnlocked(skillID, p)
}

// IsLevelUnlockable reports whether the level is reachable: level 1 always,
// otherwise the previous level must be completed.
func (s *Store) IsLevelUnlockable(levelID int) bool {
	if levelID == 1 {
		return s.catalog.HasLevel(1)
	}
	if !s.catalog.HasLevel(levelID) {
		return false
	}

	s.mu.Lock()
	p := s.progress.Clone()
	s.mu.Unlock()
	return s.catalog.RequiredMissionsCompleted(levelID-1, p)
}

// snapshotLocked builds the local cache snapshot. Caller holds the mutex.
func (s *Store) snapshotLocked() localcache.Snapshot {
	achievementIDs := make([]string, 0, len(s.unlockedAchievements))
	for id := range s.unlockedAchievements {
		achievementIDs = append(achievementIDs, id)
	}
	sort.Strings(achievementIDs)

	partial := make(map[string]int, len(s.missionProgress))
	for id, pct := range s.missionProgress {
		partial[id] = pct
	}

	stats := s.stats
	stats.LevelsCompleted = append([]int(nil), s.stats.LevelsCompleted...)

	return localcache.Snapshot{
		Progress:        s.progress.Clone(),
		Achievements:    achievementIDs,
		MissionProgress: partial,
		Stats:           stats,
		ShowLevelUp:     s.showLevelUp,
	}
}
