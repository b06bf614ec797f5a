package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

//go:embed levels.json
var defaultLevels []byte

// ConfigLoader loads and validates the level catalog from a JSON file.
// It performs file reading, JSON parsing, and comprehensive validation.
type ConfigLoader struct {
	configPath string
	validator  *Validator
	logger     *slog.Logger
}

// NewConfigLoader creates a new ConfigLoader instance.
//
// Parameters:
//   - configPath: Path to the levels.json file. Empty path loads the embedded
//     default catalog (the five-level business progression).
//   - logger: Structured logger for operational logging
func NewConfigLoader(configPath string, logger *slog.Logger) *ConfigLoader {
	return &ConfigLoader{
		configPath: configPath,
		validator:  NewValidator(),
		logger:     logger,
	}
}

// LoadConfig loads the catalog and returns a validated Config.
// This is a "fail fast" operation - an invalid catalog prevents startup.
func (l *ConfigLoader) LoadConfig() (*Config, error) {
	data := defaultLevels
	if l.configPath != "" {
		fileData, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		data = fileData
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Link each mission and skill back to its parent level for easier lookups.
	for _, level := range config.Levels {
		for _, mission := range level.Missions {
			mission.LevelID = level.ID
		}
		for _, skill := range level.Skills {
			skill.LevelID = level.ID
		}
	}

	if err := l.validator.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	missions, skills := l.countEntries(&config)
	l.logger.Info("Catalog loaded successfully",
		"levels", len(config.Levels),
		"missions", missions,
		"skills", skills,
		"config_path", l.configPath,
	)

	return &config, nil
}

// countEntries counts missions and skills across all levels.
func (l *ConfigLoader) countEntries(config *Config) (int, int) {
	missions, skills := 0, 0
	for _, level := range config.Levels {
		missions += len(level.Missions)
		skills += len(level.Skills)
	}
	return missions, skills
}
