package catalog

import "github.com/siddharth-behl/100cr/pkg/domain"

// Achievement ids. Defined statically; each is unlocked at most once per player.
const (
	AchievementFirstMission = "achievement_first_mission"
	AchievementFirstSkill   = "achievement_first_skill"
	AchievementLevelUp      = "achievement_level_up"
	AchievementFirstLakh    = "achievement_first_lakh"
	AchievementFirstCrore   = "achievement_first_crore"
)

// Wealth thresholds for the money achievements, in currency units.
const (
	LakhThreshold  = 100_000
	CroreThreshold = 10_000_000
)

var achievements = []domain.Achievement{
	{
		ID:          AchievementFirstMission,
		Name:        "First Steps",
		Description: "Complete your first mission",
		Icon:        "award",
		Reward:      1000,
	},
	{
		ID:          AchievementFirstSkill,
		Name:        "Skill Unlocked",
		Description: "Unlock your first skill",
		Icon:        "key",
		Reward:      2000,
	},
	{
		ID:          AchievementLevelUp,
		Name:        "Level Up",
		Description: "Advance to the next level",
		Icon:        "arrow-up",
		Reward:      5000,
	},
	{
		ID:          AchievementFirstLakh,
		Name:        "Lakhpati",
		Description: "Earn your first ₹1L",
		Icon:        "dollar-sign",
		Reward:      10000,
	},
	{
		ID:          AchievementFirstCrore,
		Name:        "Crorepati",
		Description: "Reach ₹1Cr net worth",
		Icon:        "diamond",
		Reward:      100000,
	},
}

// Achievements returns copies of all achievement definitions in display order.
func Achievements() []domain.Achievement {
	out := make([]domain.Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// AchievementByID returns a copy of the achievement definition, or nil.
func AchievementByID(id string) *domain.Achievement {
	for _, a := range achievements {
		if a.ID == id {
			out := a
			return &out
		}
	}
	return nil
}
