// Package config loads the daemon configuration from the environment.
package config

import (
	"log/slog"
	"strings"

	env "github.com/Netflix/go-env"
)

type Config struct {
	Addr     string `env:"ADDR,default=:3503"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Empty disables the AMQP relay.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	// Capacity used when create_lobby omits maxPlayers.
	DefaultMaxPlayers int `env:"DEFAULT_MAX_PLAYERS,default=4"`
	// Chat entries kept per lobby; oldest are evicted first.
	ChatHistoryLimit int `env:"CHAT_HISTORY_LIMIT,default=100"`
}

func Load() (Config, error) {
	var c Config
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
