// Package settings loads server settings from defaults, an optional settings
// file and GNOMES_ environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GNOMES_PORT
const EnvPrefix = "GNOMES"

// Store names a session storage backend
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds everything the server needs to start
type Settings struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ConfigDir          string        `mapstructure:"config_dir"`
	SessionsDir        string        `mapstructure:"sessions_dir"`
	Store              string        `mapstructure:"store"`
	RedisURL           string        `mapstructure:"redis_url"`
	RedisPrefix        string        `mapstructure:"redis_prefix"`
	MaxExhaustiveSteps int           `mapstructure:"max_exhaustive_steps"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	Debug              bool          `mapstructure:"debug"`
	NgrokEnabled       bool          `mapstructure:"ngrok_enabled"`
	NgrokDomain        string        `mapstructure:"ngrok_domain"`
}

var defaults = map[string]any{
	"host":                 "localhost",
	"port":                 8080,
	"config_dir":           "configs",
	"sessions_dir":         "sessions",
	"store":                StoreFile,
	"redis_url":            "redis://localhost:6379/0",
	"redis_prefix":         "gnomes:session:",
	"max_exhaustive_steps": 20,
	"session_ttl":          "24h",
	"debug":                false,
	"ngrok_enabled":        false,
	"ngrok_domain":         "",
}

// Load reads settings. path may be empty, in which case only defaults and
// the environment are used. Any format viper understands is accepted.
func Load(path string) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks ranges and enumerations
func (s *Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Port)
	}
	switch s.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store %q (want memory, file or redis)", ErrInvalidSettings, s.Store)
	}
	if s.Store == StoreRedis && s.RedisURL == "" {
		return fmt.Errorf("%w: redis store requires redis_url", ErrInvalidSettings)
	}
	// The exhaustive search enumerates 2^steps bitstrings in a uint64 counter
	if s.MaxExhaustiveSteps < 0 || s.MaxExhaustiveSteps > 63 {
		return fmt.Errorf("%w: max_exhaustive_steps must be within 0..63, got %d", ErrInvalidSettings, s.MaxExhaustiveSteps)
	}
	if s.SessionTTL < 0 {
		return fmt.Errorf("%w: session_ttl must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
