package config

import (
	"errors"
	"fmt"

	"github.com/siddharth-behl/100cr/pkg/domain"
)

// Validator validates level catalog files.
// It ensures all business rules are met before the application starts.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate performs comprehensive validation of the catalog.
// It checks for:
// - At least one level exists
// - Level ids form the contiguous ascending sequence 1..N
// - All mission IDs are globally unique
// - All skill IDs are globally unique
// - Mission rewards are non-negative
// - All skill prerequisites reference defined skills
//
// Returns an error describing the first validation failure encountered.
func (v *Validator) Validate(config *Config) error {
	if len(config.Levels) == 0 {
		return errors.New("config must have at least one level")
	}

	missionIDs := make(map[string]bool)
	skillIDs := make(map[string]bool)
	allSkills := make(map[string]*domain.Skill)

	// First pass: collect all IDs, validate each entry
	for i, level := range config.Levels {
		if err := v.validateLevel(level); err != nil {
			return fmt.Errorf("invalid level %d: %w", level.ID, err)
		}

		// Levels are a fixed ordered sequence starting at 1.
		if level.ID != i+1 {
			return fmt.Errorf("level ids must be contiguous from 1: position %d has id %d", i+1, level.ID)
		}

		for _, mission := range level.Missions {
			if err := v.validateMission(mission); err != nil {
				return fmt.Errorf("invalid mission '%s' in level %d: %w", mission.ID, level.ID, err)
			}
			if missionIDs[mission.ID] {
				return fmt.Errorf("duplicate mission ID: %s", mission.ID)
			}
			missionIDs[mission.ID] = true
		}

		for _, skill := range level.Skills {
			if err := v.validateSkill(skill); err != nil {
				return fmt.Errorf("invalid skill '%s' in level %d: %w", skill.ID, level.ID, err)
			}
			if skillIDs[skill.ID] {
				return fmt.Errorf("duplicate skill ID: %s", skill.ID)
			}
			skillIDs[skill.ID] = true
			allSkills[skill.ID] = skill
		}
	}

	// Second pass: validate skill prerequisites
	for _, skill := range allSkills {
		for _, prereqID := range skill.RequiredSkills {
			if _, exists := allSkills[prereqID]; !exists {
				return fmt.Errorf("skill '%s' has invalid prerequisite: '%s' does not exist", skill.ID, prereqID)
			}
			if prereqID == skill.ID {
				return fmt.Errorf("skill '%s' cannot require itself", skill.ID)
			}
		}
	}

	return nil
}

// validateLevel validates a single level.
func (v *Validator) validateLevel(level *domain.Level) error {
	if level.ID <= 0 {
		return errors.New("level ID must be positive")
	}
	if level.Name == "" {
		return errors.New("level name cannot be empty")
	}
	if len(level.Missions) == 0 {
		return errors.New("level must have at least one mission")
	}
	return nil
}

// validateMission validates a single mission.
func (v *Validator) validateMission(mission *domain.Mission) error {
	if mission.ID == "" {
		return errors.New("mission ID cannot be empty")
	}
	if mission.Name == "" {
		return errors.New("mission name cannot be empty")
	}
	if mission.Reward < 0 {
		return errors.New("mission reward cannot be negative")
	}
	return nil
}

// validateSkill validates a single skill.
func (v *Validator) validateSkill(skill *domain.Skill) error {
	if skill.ID == "" {
		return errors.New("skill ID cannot be empty")
	}
	if skill.Name == "" {
		return errors.New("skill name cannot be empty")
	}
	return nil
}
