package domain

import (
	"sort"
	"time"
)

// Level represents one stage in the fixed five-stage progression.
// Levels are defined statically in the catalog; the boolean flags on a level
// (IsUnlocked, IsCompleted) are a derived view recomputed from UserProgress,
// never authoritative state on their own.
type Level struct {
	ID                 int        `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Timeframe          string     `json:"timeframe"`
	Goal               string     `json:"goal"`
	Missions           []*Mission `json:"missions"`
	Skills             []*Skill   `json:"skills"`
	UnlockRequirements []string   `json:"unlockRequirements,omitempty"`
	Rewards            []string   `json:"rewards,omitempty"`
	IsUnlocked         bool       `json:"isUnlocked"`
	IsCompleted        bool       `json:"isCompleted"`
}

// Mission represents a single objective within a level.
// Required missions gate level completion; optional missions never do.
type Mission struct {
	ID           string   `json:"id"`
	LevelID      int      `json:"levelId"` // Parent level ID (back-reference, set by the loader)
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Reward       int      `json:"reward"` // Currency units granted on completion
	Requirements []string `json:"requirements,omitempty"`
	IsOptional   bool     `json:"isOptional"`
	IsCompleted  bool     `json:"isCompleted"`
	Progress     int      `json:"progress"` // 0..100, reaching 100 implies completion
}

// Skill represents an unlockable capability gated by prerequisite skills.
// Prerequisites may reference skills from earlier levels.
type Skill struct {
	ID             string   `json:"id"`
	LevelID        int      `json:"levelId"` // Parent level ID (back-reference, set by the loader)
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Icon           string   `json:"icon,omitempty"`
	RequiredSkills []string `json:"requiredSkills"`
	IsUnlocked     bool     `json:"isUnlocked"`
}

// Achievement is a one-time milestone bonus. Each achievement is unlocked at
// most once per player and its reward is granted exactly once.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Reward      int    `json:"reward"`
	IsUnlocked  bool   `json:"isUnlocked"`
}

// UserProgress is the authoritative mutable player state. The four id lists
// are the source of truth for all unlock/completion state; every boolean flag
// on catalog objects is recomputed from them.
type UserProgress struct {
	UserID            int       `json:"userId"`
	UnlockedLevels    []int     `json:"unlockedLevels"`
	CompletedLevels   []int     `json:"completedLevels"`
	CompletedMissions []string  `json:"completedMissions"`
	UnlockedSkills    []string  `json:"unlockedSkills"`
	Money             int       `json:"money"`
	Experience        int       `json:"experience"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// GameStats tracks lifetime counters surfaced on the dashboard. Unlike
// UserProgress these are never used to derive unlock state.
type GameStats struct {
	MoneyEarned       int   `json:"moneyEarned"`
	MissionsCompleted int   `json:"missionsCompleted"`
	SkillsUnlocked    int   `json:"skillsUnlocked"`
	LevelsCompleted   []int `json:"levelsCompleted"`
}

// User is a player account. A single trusted local user is assumed; passwords
// are stored as-is and never verified beyond existence checks.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DefaultUserID identifies the single trusted local user seeded on first run.
const DefaultUserID = 1

// NewUserProgress returns the initial progress for a user: level 1 unlocked,
// everything else empty.
func NewUserProgress(userID int) UserProgress {
	return UserProgress{
		UserID:            userID,
		UnlockedLevels:    []int{1},
		CompletedLevels:   []int{},
		CompletedMissions: []string{},
		UnlockedSkills:    []string{},
		LastUpdated:       time.Now().UTC(),
	}
}

// Clone returns a deep copy of the progress. Mutating the copy never affects
// the original.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.UnlockedLevels = append([]int(nil), p.UnlockedLevels...)
	out.CompletedLevels = append([]int(nil), p.CompletedLevels...)
	out.CompletedMissions = append([]string(nil), p.CompletedMissions...)
	out.UnlockedSkills = append([]string(nil), p.UnlockedSkills...)
	return out
}

// HasCompletedMission reports whether the mission id is in the completed set.
func (p UserProgress) HasCompletedMission(missionID string) bool {
	return containsString(p.CompletedMissions, missionID)
}

// HasUnlockedSkill reports whether the skill id is in the unlocked set.
func (p UserProgress) HasUnlockedSkill(skillID string) bool {
	return containsString(p.UnlockedSkills, skillID)
}

// HasUnlockedLevel reports whether the level id is in the unlocked set.
func (p UserProgress) HasUnlockedLevel(levelID int) bool {
	return containsInt(p.UnlockedLevels, levelID)
}

// HasCompletedLevel reports whether the level id is in the completed set.
func (p UserProgress) HasCompletedLevel(levelID int) bool {
	return containsInt(p.CompletedLevels, levelID)
}

// AddUnlockedLevel adds the level id to the unlocked set, keeping the list
// sorted ascending. Adding an already-present id is a no-op.
func (p *UserProgress) AddUnlockedLevel(levelID int) {
	p.UnlockedLevels = addSortedInt(p.UnlockedLevels, levelID)
}

// AddCompletedLevel adds the level id to the completed set, keeping the list
// sorted ascending. Adding an already-present id is a no-op.
func (p *UserProgress) AddCompletedLevel(levelID int) {
	p.CompletedLevels = addSortedInt(p.CompletedLevels, levelID)
}

// RemoveCompletedLevel removes the level id from the completed set if present.
func (p *UserProgress) RemoveCompletedLevel(levelID int) {
	p.CompletedLevels = removeInt(p.CompletedLevels, levelID)
}

// AddCompletedMission appends the mission id to the completed set if absent.
func (p *UserProgress) AddCompletedMission(missionID string) {
	if !containsString(p.CompletedMissions, missionID) {
		p.CompletedMissions = append(p.CompletedMissions, missionID)
	}
}

// RemoveCompletedMission removes the mission id from the completed set.
func (p *UserProgress) RemoveCompletedMission(missionID string) {
	p.CompletedMissions = removeString(p.CompletedMissions, missionID)
}

// AddUnlockedSkill appends the skill id to the unlocked set if absent.
func (p *UserProgress) AddUnlockedSkill(skillID string) {
	if !containsString(p.UnlockedSkills, skillID) {
		p.UnlockedSkills = append(p.UnlockedSkills, skillID)
	}
}

// RemoveUnlockedSkill removes the skill id from the unlocked set.
func (p *UserProgress) RemoveUnlockedSkill(skillID string) {
	p.UnlockedSkills = removeString(p.UnlockedSkills, skillID)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func addSortedInt(list []int, v int) []int {
	if containsInt(list, v) {
		return list
	}
	list = append(list, v)
	sort.Ints(list)
	return list
}

func removeInt(list []int, v int) []int {
	out := make([]int, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func removeString(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
