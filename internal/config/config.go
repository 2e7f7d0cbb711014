package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything loaded at startup: server settings and the
// gameplay constants that used to live as scattered literals.
type Config struct {
	Port     string `env:"QUESTKEEP_PORT" envDefault:"8080"`
	DBPath   string `env:"QUESTKEEP_DB_PATH" envDefault:"questkeep.db"`
	LogLevel string `env:"QUESTKEEP_LOG_LEVEL" envDefault:"info"`

	// LevelCurve is the k in level(xp) = floor(sqrt(xp)/k) + 1.
	LevelCurve float64 `env:"QUESTKEEP_LEVEL_CURVE" envDefault:"2.0"`

	// Streak multiplier tiers. A streak at or above TopStreak pays
	// TopFactor, at or above MidStreak pays MidFactor, else 1.0.
	MidStreak int     `env:"QUESTKEEP_MULTIPLIER_MID_STREAK" envDefault:"3"`
	MidFactor float64 `env:"QUESTKEEP_MULTIPLIER_MID_FACTOR" envDefault:"1.2"`
	TopStreak int     `env:"QUESTKEEP_MULTIPLIER_TOP_STREAK" envDefault:"7"`
	TopFactor float64 `env:"QUESTKEEP_MULTIPLIER_TOP_FACTOR" envDefault:"1.5"`

	// Mystery box economy.
	BoxCost   float64   `env:"QUESTKEEP_BOX_COST" envDefault:"15"`
	BoxPrizes []float64 `env:"QUESTKEEP_BOX_PRIZES" envDefault:"5,10,10,15,20,25,50"`

	// Hour (0-23) at which the twice-daily PM window opens.
	PMCutoverHour int `env:"QUESTKEEP_PM_CUTOVER_HOUR" envDefault:"16"`
}

// Load parses configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.LevelCurve <= 0 {
		return fmt.Errorf("level curve must be positive, got %g", c.LevelCurve)
	}
	if c.MidStreak < 1 || c.TopStreak < c.MidStreak {
		return fmt.Errorf("multiplier streak tiers out of order: mid=%d top=%d", c.MidStreak, c.TopStreak)
	}
	if c.MidFactor < 1 || c.TopFactor < c.MidFactor {
		return fmt.Errorf("multiplier factors out of order: mid=%g top=%g", c.MidFactor, c.TopFactor)
	}
	if c.BoxCost <= 0 {
		return fmt.Errorf("box cost must be positive, got %g", c.BoxCost)
	}
	if len(c.BoxPrizes) == 0 {
		return fmt.Errorf("box prize table is empty")
	}
	for _, p := range c.BoxPrizes {
		if p < 0 {
			return fmt.Errorf("box prize must be non-negative, got %g", p)
		}
	}
	if c.PMCutoverHour < 0 || c.PMCutoverHour > 23 {
		return fmt.Errorf("pm cutover hour must be 0-23, got %d", c.PMCutoverHour)
	}
	return nil
}
