package config

import "github.com/siddharth-behl/100cr/pkg/domain"

// Config represents the level catalog loaded from levels.json.
// This structure is parsed from JSON and validated during application startup.
type Config struct {
	Levels []*domain.Level `json:"levels"`
}
