// Package settings loads server settings from an optional jackaroo.yaml and
// JACKAROO_* environment variables. Command-line flags are applied on top by
// the caller.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Persistence backends
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Settings is the full server configuration
type Settings struct {
	Server      ServerSettings      `mapstructure:"server"`
	Configs     ConfigsSettings     `mapstructure:"configs"`
	Log         LogSettings         `mapstructure:"log"`
	Persistence PersistenceSettings `mapstructure:"persistence"`
	Session     SessionSettings     `mapstructure:"session"`
	Ngrok       NgrokSettings       `mapstructure:"ngrok"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr is the host:port the HTTP server listens on
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ConfigsSettings struct {
	Dir string `mapstructure:"dir"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PersistenceSettings struct {
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	RedisAddr string `mapstructure:"redis_addr"`
	DSN       string `mapstructure:"dsn"`
}

type SessionSettings struct {
	// MaxAge is how long an untouched session stays in memory
	MaxAge          time.Duration `mapstructure:"max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	SyncInterval    time.Duration `mapstructure:"sync_interval"`
}

type NgrokSettings struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"authtoken"`
	Domain    string `mapstructure:"domain"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("configs.dir", "configs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("persistence.backend", BackendFile)
	v.SetDefault("persistence.dir", "sessions")
	v.SetDefault("persistence.redis_addr", "localhost:6379")
	v.SetDefault("persistence.dsn", "")
	v.SetDefault("session.max_age", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", time.Hour)
	v.SetDefault("session.sync_interval", 5*time.Second)
	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.authtoken", "")
	v.SetDefault("ngrok.domain", "")
}

// Load reads settings. When path is empty, jackaroo.yaml is looked up in the
// working directory and its absence is not an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JACKAROO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ngrok's own variable names are honoured too
	_ = v.BindEnv("ngrok.authtoken", "JACKAROO_NGROK_AUTHTOKEN", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")
	_ = v.BindEnv("ngrok.domain", "JACKAROO_NGROK_DOMAIN", "NGROK_DOMAIN")
	_ = v.BindEnv("configs.dir", "JACKAROO_CONFIGS_DIR", "CONFIG_DIR")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jackaroo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values a flag or environment variable could have broken
func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("settings: invalid server.port %d", s.Server.Port)
	}
	switch s.Persistence.Backend {
	case BackendFile, BackendNone, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if s.Persistence.DSN == "" {
			return fmt.Errorf("settings: persistence.dsn is required for the %s backend", s.Persistence.Backend)
		}
	default:
		return fmt.Errorf("settings: unknown persistence.backend %q", s.Persistence.Backend)
	}
	if s.Session.MaxAge <= 0 {
		return fmt.Errorf("settings: session.max_age must be positive")
	}
	if s.Session.CleanupInterval <= 0 || s.Session.SyncInterval <= 0 {
		return fmt.Errorf("settings: session intervals must be positive")
	}
	return nil
}
