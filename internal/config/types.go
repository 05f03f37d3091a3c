// Package config manages application configuration from a YAML file,
// TASKFLOW_* environment variables, an optional .env file and default values.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`

	// Timezone is an IANA zone name deadlines are interpreted in. Empty
	// means the host's local time zone.
	Timezone string `mapstructure:"timezone"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// AllowedUserIDs restricts the bot to these users. Empty allows everyone.
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" validate:"dive,gt=0"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SessionConfig selects where wizard sessions live.
type SessionConfig struct {
	Backend   string        `mapstructure:"backend"    validate:"oneof=memory redis"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"        validate:"min=0"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"     validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       validate:"min=0,max=15"`
}

// LoggerConfig holds slog settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds the configurable reply texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Help          string `mapstructure:"help"           validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	Settings      string `mapstructure:"settings"       validate:"required"`
}
