package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process environment, parsed once at startup.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	DBPath       string `env:"DB_PATH" envDefault:"./data/carto.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret    string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	CookieName   string `env:"COOKIE_NAME" envDefault:"carto_token"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
