package catalog

import (
	"log/slog"
	"sync"

	"github.com/siddharth-behl/100cr/pkg/config"
	"github.com/siddharth-behl/100cr/pkg/domain"
)

// Catalog provides O(1) in-memory lookups for the static level definitions.
// All maps are built at startup from the validated levels.json config.
// The catalog itself is immutable after construction; derived completion and
// unlock flags are never stored here - they are computed per call through
// Snapshot and RecomputeFlags so they can never diverge from the id lists.
type Catalog struct {
	levelsByID   map[int]*domain.Level
	missionsByID map[string]*domain.Mission
	skillsByID   map[string]*domain.Skill
	levels       []*domain.Level // All levels, ordered by id
	configPath   string          // Path to config file (for reload)
	mu           sync.RWMutex    // Protects all maps
	logger       *slog.Logger
}

// New creates a catalog from the provided validated configuration.
// The indexes are immediately built and ready for lookups.
func New(cfg *config.Config, configPath string, logger *slog.Logger) *Catalog {
	c := &Catalog{
		levelsByID:   make(map[int]*domain.Level),
		missionsByID: make(map[string]*domain.Mission),
		skillsByID:   make(map[string]*domain.Skill),
		levels:       make([]*domain.Level, 0, len(cfg.Levels)),
		configPath:   configPath,
		logger:       logger,
	}

	c.build(cfg)

	return c
}

// build constructs all indexes from the configuration.
func (c *Catalog) build(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.levelsByID = make(map[int]*domain.Level)
	c.missionsByID = make(map[string]*domain.Mission)
	c.skillsByID = make(map[string]*domain.Skill)
	c.levels = make([]*domain.Level, 0, len(cfg.Levels))

	for _, level := range cfg.Levels {
		c.levelsByID[level.ID] = level
		c.levels = append(c.levels, level)

		for _, mission := range level.Missions {
			c.missionsByID[mission.ID] = mission
		}
		for _, skill := range level.Skills {
			c.skillsByID[skill.ID] = skill
		}
	}

	c.logger.Info("Catalog built successfully",
		"levels", len(c.levels),
		"missions", len(c.missionsByID),
		"skills", len(c.skillsByID),
	)
}

// LevelByID retrieves a level definition by id. Returns nil if absent.
func (c *Catalog) LevelByID(levelID int) *domain.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.levelsByID[levelID]
}

// MissionByID retrieves a mission definition by id. Returns nil if absent.
func (c *Catalog) MissionByID(missionID string) *domain.Mission {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.missionsByID[missionID]
}

// SkillByID retrieves a skill definition by id. Returns nil if absent.
func (c *Catalog) SkillByID(skillID string) *domain.Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.skillsByID[skillID]
}

// Levels returns all level definitions ordered by id.
func (c *Catalog) Levels() []*domain.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.levels
}

// LevelCount returns the number of defined levels.
func (c *Catalog) LevelCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.levels)
}

// HasLevel reports whether a level with the given id is defined.
func (c *Catalog) HasLevel(levelID int) bool {
	return c.LevelByID(levelID) != nil
}

// RequiredMissionsCompleted reports whether every non-optional mission of the
// level is a member of the progress' completed-mission set. Optional missions
// never gate level completion.
func (c *Catalog) RequiredMissionsCompleted(levelID int, progress domain.UserProgress) bool {
	level := c.LevelByID(levelID)
	if level == nil {
		return false
	}
	for _, mission := range level.Missions {
		if mission.IsOptional {
			continue
		}
		if !progress.HasCompletedMission(mission.ID) {
			return false
		}
	}
	return true
}

// PrerequisitesUnlocked reports whether every prerequisite of the skill is a
// member of the progress' unlocked-skill set. Unknown skills report false.
func (c *Catalog) PrerequisitesUnlocked(skillID string, progress domain.UserProgress) bool {
	skill := c.SkillByID(skillID)
	if skill == nil {
		return false
	}
	for _, prereqID := range skill.RequiredSkills {
		if !progress.HasUnlockedSkill(prereqID) {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of all levels with every derived flag computed
// from the progress id lists. The returned levels are owned by the caller.
func (c *Catalog) Snapshot(progress domain.UserProgress) []*domain.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Level, 0, len(c.levels))
	for _, level := range c.levels {
		out = append(out, c.projectLevel(level, progress))
	}
	return out
}

// RecomputeFlags walks every level's missions and skills and computes each
// derived flag from membership in the progress id lists, per the invariants:
// level 1 is always unlocked, level N>1 is unlocked once listed or once level
// N-1 is completed, and a level is completed iff all its non-optional missions
// are. Idempotent and side-effect-free beyond flag assignment on the copy.
func (c *Catalog) RecomputeFlags(levels []*domain.Level, progress domain.UserProgress) {
	for _, level := range levels {
		for _, mission := range level.Missions {
			mission.IsCompleted = progress.HasCompletedMission(mission.ID)
			if mission.IsCompleted {
				mission.Progress = 100
			}
		}
		for _, skill := range level.Skills {
			skill.IsUnlocked = progress.HasUnlockedSkill(skill.ID)
		}
		level.IsCompleted = c.RequiredMissionsCompleted(level.ID, progress)
		level.IsUnlocked = c.levelUnlocked(level.ID, progress)
	}
}

// levelUnlocked applies the unlock invariant for a single level.
func (c *Catalog) levelUnlocked(levelID int, progress domain.UserProgress) bool {
	if levelID == 1 {
		return true
	}
	if progress.HasUnlockedLevel(levelID) {
		return true
	}
	return c.RequiredMissionsCompleted(levelID-1, progress)
}

// projectLevel deep-copies one level with flags derived from progress.
func (c *Catalog) projectLevel(level *domain.Level, progress domain.UserProgress) *domain.Level {
	out := *level
	out.Missions = make([]*domain.Mission, 0, len(level.Missions))
	out.Skills = make([]*domain.Skill, 0, len(level.Skills))

	for _, mission := range level.Missions {
		m := *mission
		m.IsCompleted = progress.HasCompletedMission(m.ID)
		if m.IsCompleted {
			m.Progress = 100
		}
		out.Missions = append(out.Missions, &m)
	}
	for _, skill := range level.Skills {
		s := *skill
		s.IsUnlocked = progress.HasUnlockedSkill(s.ID)
		out.Skills = append(out.Skills, &s)
	}

	out.IsCompleted = c.RequiredMissionsCompleted(level.ID, progress)
	out.IsUnlocked = c.levelUnlocked(level.ID, progress)

	return &out
}

// Reload reloads the catalog from the config file.
// Provided for future use when hot-reload is supported.
func (c *Catalog) Reload() error {
	loader := config.NewConfigLoader(c.configPath, c.logger)
	newConfig, err := loader.LoadConfig()
	if err != nil {
		return err
	}

	c.build(newConfig)

	c.logger.Info("Catalog reloaded successfully")

	return nil
}
