// Package config loads the server configuration from file, environment
// and defaults. Priority: environment > config file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/warp/attendance-engine/engine"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Recompute RecomputeConfig `mapstructure:"recompute"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// EngineConfig holds the system-wide schedule fallbacks the resolver
// bottoms out at.
type EngineConfig struct {
	ToleranceMinutes int    `mapstructure:"tolerance_minutes"`
	RoundingMinutes  int    `mapstructure:"rounding_minutes"`
	LunchMinutes     int    `mapstructure:"lunch_minutes"`
	DayStartHour     int    `mapstructure:"day_start_hour"`
	NightStartHour   int    `mapstructure:"night_start_hour"`
	Timezone         string `mapstructure:"timezone"`
}

// RecomputeConfig holds the background recompute worker settings.
type RecomputeConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

// Load reads configuration from the given path (or ./config.yaml when
// empty), applying ATTENDANCE_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("db.path", "./data/attendance.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("engine.tolerance_minutes", 5)
	v.SetDefault("engine.rounding_minutes", 1)
	v.SetDefault("engine.lunch_minutes", 60)
	v.SetDefault("engine.day_start_hour", 6)
	v.SetDefault("engine.night_start_hour", 21)
	v.SetDefault("engine.timezone", "Local")

	v.SetDefault("recompute.interval", "1m")
	v.SetDefault("recompute.batch_size", 100)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults plus environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config validation failed: server.port must be in 1-65535")
	}
	if c.Engine.ToleranceMinutes < 0 {
		return fmt.Errorf("config validation failed: engine.tolerance_minutes must not be negative")
	}
	if c.Engine.RoundingMinutes < 0 {
		return fmt.Errorf("config validation failed: engine.rounding_minutes must not be negative")
	}
	if c.Engine.DayStartHour < 0 || c.Engine.DayStartHour > 23 ||
		c.Engine.NightStartHour < 0 || c.Engine.NightStartHour > 23 {
		return fmt.Errorf("config validation failed: day/night window hours must be in 0-23")
	}
	if c.Recompute.BatchSize <= 0 {
		return fmt.Errorf("config validation failed: recompute.batch_size must be positive")
	}
	return nil
}

// EngineDefaults converts the engine section into the resolver's
// Defaults value.
func (c *Config) EngineDefaults() (engine.Defaults, error) {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return engine.Defaults{}, fmt.Errorf("invalid engine.timezone %q: %w", c.Engine.Timezone, err)
	}

	return engine.Defaults{
		ToleranceMinutes: c.Engine.ToleranceMinutes,
		RoundingMinutes:  c.Engine.RoundingMinutes,
		LunchMinutes:     c.Engine.LunchMinutes,
		Window: engine.DayNightWindow{
			DayStart:   engine.NewClockTime(c.Engine.DayStartHour, 0),
			NightStart: engine.NewClockTime(c.Engine.NightStartHour, 0),
		},
		Location: loc,
	}, nil
}
