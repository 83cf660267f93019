package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"trading-advisor/internal/advisor"
	"trading-advisor/internal/levels"
	"trading-advisor/internal/logging"
	"trading-advisor/internal/risk"
)

// Config is the full advisor configuration
type Config struct {
	AccountCapital float64            `json:"account_capital"`
	Consensus      advisor.Config     `json:"consensus"`
	RiskProfiles   RiskProfilesConfig `json:"risk_profiles"`
	Levels         levels.Config      `json:"levels"`
	Logging        logging.Config     `json:"logging"`
}

// RiskProfilesConfig is the closed set of risk profile presets. Named fields
// instead of a free-form map so a typo in a profile name cannot silently
// create a new one.
type RiskProfilesConfig struct {
	DayTrading risk.ProfileConfig `json:"day_trading"`
	Swing      risk.ProfileConfig `json:"swing"`
	Balanced   risk.ProfileConfig `json:"balanced"`
	LongTerm   risk.ProfileConfig `json:"long_term"`
}

// Default returns the standard configuration
func Default() *Config {
	profiles := risk.DefaultProfiles()
	return &Config{
		AccountCapital: risk.DefaultAccountCapital,
		Consensus:      advisor.DefaultConfig(),
		RiskProfiles: RiskProfilesConfig{
			DayTrading: profiles[risk.ProfileDayTrading],
			Swing:      profiles[risk.ProfileSwing],
			Balanced:   profiles[risk.ProfileBalanced],
			LongTerm:   profiles[risk.ProfileLongTerm],
		},
		Levels: levels.DefaultConfig(),
		Logging: logging.Config{
			Level:  "info",
			Output: "stdout",
			Pretty: false,
		},
	}
}

// Load reads configuration from a JSON file, then applies environment
// overrides. A missing file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.AccountCapital <= 0 {
		cfg.AccountCapital = risk.DefaultAccountCapital
	}
	cfg.Consensus.AccountCapital = cfg.AccountCapital

	return cfg, nil
}

// ProfileTable converts the named presets back to the lookup table the risk
// package consumes
func (c *Config) ProfileTable() map[risk.Profile]risk.ProfileConfig {
	return map[risk.Profile]risk.ProfileConfig{
		risk.ProfileDayTrading: c.RiskProfiles.DayTrading,
		risk.ProfileSwing:      c.RiskProfiles.Swing,
		risk.ProfileBalanced:   c.RiskProfiles.Balanced,
		risk.ProfileLongTerm:   c.RiskProfiles.LongTerm,
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.AccountCapital = getEnvFloatOrDefault("ADVISOR_ACCOUNT_CAPITAL", cfg.AccountCapital)

	cfg.Consensus.MinActionRatio = getEnvFloatOrDefault("ADVISOR_MIN_ACTION_RATIO", cfg.Consensus.MinActionRatio)
	cfg.Consensus.NeutralDamping = getEnvFloatOrDefault("ADVISOR_NEUTRAL_DAMPING", cfg.Consensus.NeutralDamping)
	cfg.Consensus.NeutralWeightCap = getEnvFloatOrDefault("ADVISOR_NEUTRAL_WEIGHT_CAP", cfg.Consensus.NeutralWeightCap)

	cfg.Levels.Tolerance = getEnvFloatOrDefault("ADVISOR_LEVEL_TOLERANCE", cfg.Levels.Tolerance)
	cfg.Levels.MinTouches = getEnvIntOrDefault("ADVISOR_LEVEL_MIN_TOUCHES", cfg.Levels.MinTouches)
	cfg.Levels.StrengthThreshold = getEnvFloatOrDefault("ADVISOR_LEVEL_STRENGTH_THRESHOLD", cfg.Levels.StrengthThreshold)

	cfg.Logging.Level = getEnvOrDefault("ADVISOR_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Output = getEnvOrDefault("ADVISOR_LOG_OUTPUT", cfg.Logging.Output)
	cfg.Logging.Pretty = getEnvOrDefault("ADVISOR_LOG_PRETTY", boolString(cfg.Logging.Pretty)) == "true"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
