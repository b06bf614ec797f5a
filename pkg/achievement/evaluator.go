// Package achievement implements the pure rule set that turns progress
// transitions into one-time achievement unlocks.
package achievement

import (
	"github.com/siddharth-behl/100cr/pkg/catalog"
	"github.com/siddharth-behl/100cr/pkg/domain"
)

// Snapshot captures the progress values the rules observe. Callers build one
// before and one after a mutation; the evaluator never reads live state.
type Snapshot struct {
	CompletedMissions int
	UnlockedSkills    int
	Money             int
	LeveledUp         bool // true when this transition produced a level-up event
}

// Capture builds a Snapshot from a progress value.
func Capture(p domain.UserProgress) Snapshot {
	return Snapshot{
		CompletedMissions: len(p.CompletedMissions),
		UnlockedSkills:    len(p.UnlockedSkills),
		Money:             p.Money,
	}
}

type rule struct {
	id    string
	fires func(prev, next Snapshot) bool
}

// Evaluator evaluates the achievement rules against a state transition.
// Rules are evaluated as threshold crossings; an achievement already in the
// unlocked set never fires again, so re-crossing a threshold after a decrease
// cannot re-grant a reward.
type Evaluator struct {
	rules []rule
}

// NewEvaluator returns an evaluator with the standard rule set.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		rules: []rule{
			{
				id: catalog.AchievementFirstMission,
				fires: func(prev, next Snapshot) bool {
					return prev.CompletedMissions == 0 && next.CompletedMissions >= 1
				},
			},
			{
				id: catalog.AchievementFirstSkill,
				fires: func(prev, next Snapshot) bool {
					return prev.UnlockedSkills == 0 && next.UnlockedSkills >= 1
				},
			},
			{
				id: catalog.AchievementLevelUp,
				fires: func(prev, next Snapshot) bool {
					return next.LeveledUp
				},
			},
			{
				id: catalog.AchievementFirstLakh,
				fires: func(prev, next Snapshot) bool {
					return prev.Money < catalog.LakhThreshold && next.Money >= catalog.LakhThreshold
				},
			},
			{
				id: catalog.AchievementFirstCrore,
				fires: func(prev, next Snapshot) bool {
					return prev.Money < catalog.CroreThreshold && next.Money >= catalog.CroreThreshold
				},
			},
		},
	}
}

// Evaluate returns the first rule that fires for the transition and is not in
// the unlocked set, or nil. At most one achievement is produced per call; a
// second threshold crossed in the same transition is not granted then, it
// fires on a later transition that crosses it again.
func (e *Evaluator) Evaluate(prev, next Snapshot, unlocked map[string]bool) *domain.Achievement {
	for _, r := range e.rules {
		if unlocked[r.id] {
			continue
		}
		if r.fires(prev, next) {
			a := catalog.AchievementByID(r.id)
			if a == nil {
				continue
			}
			a.IsUnlocked = true
			return a
		}
	}
	return nil
}
