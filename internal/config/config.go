package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"availcal/internal/calendar"
	"availcal/internal/schedule"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// SeedConfig describes the weekly template new editing sessions start from.
// If Preset is set it wins over Days.
type SeedConfig struct {
	// Preset is a preset name such as "Weekdays Only".
	Preset string `yaml:"preset,omitempty" json:"preset,omitempty"`
	// Days keys a DaySchedule by weekday key ("Mon".."Sun"). Missing
	// keys are filled with a disabled day.
	Days map[string]schedule.DaySchedule `yaml:"days,omitempty" json:"days,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone in which dates and clocks are read
	// (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the week
	// in calendar views. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// SweepCron is a cron-style schedule string (e.g. "@every 10m") for the
	// idle-session sweep.
	SweepCron string `yaml:"sweep" json:"sweep"`

	// SessionIdleMinutes is how long an untouched editing session lives.
	SessionIdleMinutes int `yaml:"session_idle_minutes" json:"session_idle_minutes"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Seed SeedConfig `yaml:"seed" json:"seed"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		Timezone:           "UTC",
		WeekStart:          "monday",
		SweepCron:          "@every 10m",
		SessionIdleMinutes: 120,
		LogLevel:           "info",
		Seed:               SeedConfig{Preset: schedule.PresetWeekdaysOnly},
		BasicAuth:          nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	// Unknown week starts fall back to monday to avoid surprising layouts.
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if _, err := calendar.ParseWeekStart(c.WeekStart); err != nil || c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	if c.SweepCron == "" {
		c.SweepCron = "@every 10m"
	}
	if c.SessionIdleMinutes <= 0 {
		c.SessionIdleMinutes = 120
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay converts WeekStart for calendar navigation.
func (c *Config) WeekStartDay() time.Weekday {
	ws, _ := calendar.ParseWeekStart(c.WeekStart)
	return ws
}

// SessionIdle returns SessionIdleMinutes as a duration.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// SeedWeek builds the initial template: the named preset, else Days, else
// an empty week.
func (c *Config) SeedWeek() (schedule.WeekSchedule, error) {
	if c.Seed.Preset != "" {
		p, err := schedule.PresetByName(c.Seed.Preset)
		if err != nil {
			return schedule.NewWeekSchedule(), err
		}
		return schedule.ApplyPreset(p), nil
	}

	week := schedule.NewWeekSchedule()
	for key, ds := range c.Seed.Days {
		d, err := schedule.ParseWeekday(key)
		if err != nil {
			return schedule.NewWeekSchedule(), fmt.Errorf("seed: %w", err)
		}
		if ds.Ranges == nil {
			ds.Ranges = []schedule.TimeRange{}
		}
		week = schedule.SetDay(week, d, ds)
	}
	return week, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".availcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
