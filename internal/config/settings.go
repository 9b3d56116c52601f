package config

import (
	"errors"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LogSettings configuration for the rotating log file.
type LogSettings struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Settings application settings.
type Settings struct {
	Host    string      `mapstructure:"host"`
	Port    int         `mapstructure:"port"`
	DBPath  string      `mapstructure:"db_path"`
	Workers int         `mapstructure:"workers"`
	Log     LogSettings `mapstructure:"log"`
}

// Addr returns the host:port pair the HTTP server binds to.
func (s *Settings) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// LoadSettings loads settings from environment variables and defaults.
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8315)
	v.SetDefault("db_path", "")
	v.SetDefault("workers", 0) // 0 means one per CPU
	v.SetDefault("log.file", "vigil.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 10) // megabytes
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28) // days
	v.SetDefault("log.compress", false)

	// Environment variables
	v.SetEnvPrefix("VIGIL")
	v.AutomaticEnv()

	_ = v.BindEnv("host", "VIGIL_HOST")
	_ = v.BindEnv("port", "VIGIL_PORT")
	_ = v.BindEnv("db_path", "VIGIL_DB_PATH")
	_ = v.BindEnv("workers", "VIGIL_WORKERS")
	_ = v.BindEnv("log.file", "VIGIL_LOG_FILE")
	_ = v.BindEnv("log.level", "VIGIL_LOG_LEVEL")
	_ = v.BindEnv("log.max_size", "VIGIL_LOG_MAX_SIZE")
	_ = v.BindEnv("log.max_backups", "VIGIL_LOG_MAX_BACKUPS")
	_ = v.BindEnv("log.max_age", "VIGIL_LOG_MAX_AGE")
	_ = v.BindEnv("log.compress", "VIGIL_LOG_COMPRESS")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("db_path", flags.Lookup("db"))
		_ = v.BindPFlag("workers", flags.Lookup("workers"))
		_ = v.BindPFlag("log.file", flags.Lookup("log-file"))
		_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ValidateSettings checks for out-of-range or inconsistent values.
func ValidateSettings(s *Settings) error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.New("port must be between 1 and 65535, got: " + strconv.Itoa(s.Port))
	}
	if s.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		if _, err := strconv.Atoi(s.Log.Level); err != nil {
			return errors.New("unknown log level: " + s.Log.Level)
		}
	}
	if s.Log.MaxSize <= 0 {
		return errors.New("log max_size must be positive")
	}
	return nil
}
