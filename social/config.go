// social/config.go
package social

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, read from the environment.
type Config struct {
	Addr        string        `env:"SOCIALITE_ADDR" envDefault:":8080"`
	DatabaseURL string        `env:"SOCIALITE_DATABASE_URL"`
	JWTSecret   string        `env:"SOCIALITE_JWT_SECRET"`
	TokenTTL    time.Duration `env:"SOCIALITE_TOKEN_TTL" envDefault:"24h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
