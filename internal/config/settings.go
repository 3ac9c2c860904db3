package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	EnvConfirmationFrames = "MEDKIT_SCANNER_CONFIRMATION_FRAMES"
	EnvMinAreaRatio       = "MEDKIT_SCANNER_MIN_AREA_RATIO"
	EnvBackupSalt         = "MEDKIT_BACKUP_SALT"
	EnvCacheMaxAge        = "MEDKIT_BACKUP_CACHE_MAX_AGE"
	EnvJobsInterval       = "MEDKIT_JOBS_INTERVAL"
	EnvLogLevel           = "MEDKIT_LOG_LEVEL"
	EnvLogFormat          = "MEDKIT_LOG_FORMAT"
)

// DefaultBackupSalt is prepended to every backup body before hashing. Changing it
// invalidates all previously written backups.
const DefaultBackupSalt = "medkit-backup-v1"

// Settings is the root of config.toml.
type Settings struct {
	Scanner ScannerSettings `toml:"scanner"`
	Backup  BackupSettings  `toml:"backup"`
	Jobs    JobsSettings    `toml:"jobs"`
	Log     LogSettings     `toml:"log"`
}

type ScannerSettings struct {
	ConfirmationFrames int     `toml:"confirmation_frames"`
	MinAreaRatio       float64 `toml:"min_area_ratio"`
}

type BackupSettings struct {
	Salt        string `toml:"salt"`
	CacheMaxAge string `toml:"cache_max_age"`
}

// CacheMaxAgeDuration returns CacheMaxAge as a time.Duration.
func (b *BackupSettings) CacheMaxAgeDuration() time.Duration {
	d, _ := time.ParseDuration(b.CacheMaxAge)
	return d
}

type JobsSettings struct {
	Interval string `toml:"interval"`
}

// IntervalDuration returns Interval as a time.Duration.
func (j *JobsSettings) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(j.Interval)
	return d
}

type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel maps the configured level name onto a slog.Level.
func (l *LogSettings) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config.toml if it exists and finalizes defaults, environment
// overrides and validation. A missing file yields a fully defaulted Settings.
func Load() (*Settings, error) {
	return LoadFile(GetConfigPath())
}

// LoadFile is Load against an explicit path.
func LoadFile(path string) (*Settings, error) {
	s := &Settings{}

	//nolint:gosec // G304: path is the user's own config location
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := s.finalize(); err != nil {
		return nil, fmt.Errorf("failed to finalize config: %w", err)
	}
	return s, nil
}

func (s *Settings) finalize() error {
	s.loadDefaults()
	if err := s.loadEnv(); err != nil {
		return err
	}
	return s.validate()
}

func (s *Settings) loadDefaults() {
	if s.Scanner.ConfirmationFrames == 0 {
		s.Scanner.ConfirmationFrames = 6
	}
	if s.Scanner.MinAreaRatio == 0 {
		s.Scanner.MinAreaRatio = 0.05
	}
	if s.Backup.Salt == "" {
		s.Backup.Salt = DefaultBackupSalt
	}
	if s.Backup.CacheMaxAge == "" {
		s.Backup.CacheMaxAge = "24h"
	}
	if s.Jobs.Interval == "" {
		s.Jobs.Interval = "24h"
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.Log.Format == "" {
		s.Log.Format = "text"
	}
}

func (s *Settings) loadEnv() error {
	if v := os.Getenv(EnvConfirmationFrames); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConfirmationFrames, err)
		}
		s.Scanner.ConfirmationFrames = n
	}
	if v := os.Getenv(EnvMinAreaRatio); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinAreaRatio, err)
		}
		s.Scanner.MinAreaRatio = f
	}
	if v := os.Getenv(EnvBackupSalt); v != "" {
		s.Backup.Salt = v
	}
	if v := os.Getenv(EnvCacheMaxAge); v != "" {
		s.Backup.CacheMaxAge = v
	}
	if v := os.Getenv(EnvJobsInterval); v != "" {
		s.Jobs.Interval = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		s.Log.Format = v
	}
	return nil
}

func (s *Settings) validate() error {
	if s.Scanner.ConfirmationFrames < 1 {
		return fmt.Errorf("scanner.confirmation_frames must be at least 1, got %d", s.Scanner.ConfirmationFrames)
	}
	if s.Scanner.MinAreaRatio <= 0 || s.Scanner.MinAreaRatio >= 1 {
		return fmt.Errorf("scanner.min_area_ratio must be in (0, 1), got %v", s.Scanner.MinAreaRatio)
	}
	if _, err := time.ParseDuration(s.Backup.CacheMaxAge); err != nil {
		return fmt.Errorf("backup.cache_max_age: %w", err)
	}
	if _, err := time.ParseDuration(s.Jobs.Interval); err != nil {
		return fmt.Errorf("jobs.interval: %w", err)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	return nil
}
