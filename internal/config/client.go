package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ClientConfig configures shopctl.
type ClientConfig struct {
	APIURL    string        `env:"SHOP_API_URL"    env-default:"http://localhost:8080"`
	StatePath string        `env:"SHOP_STATE_PATH" env-default:"shopctl.db"`
	Timeout   time.Duration `env:"SHOP_TIMEOUT"    env-default:"10s"`
	LogLevel  string        `env:"SHOP_LOG_LEVEL"  env-default:"warn"`
}

// LoadClient is Load for the CLI. A missing .env is not reported.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load(".env")

	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := NonEmpty(cfg.APIURL, "SHOP_API_URL"); err != nil {
		return nil, err
	}
	if err := NonEmpty(cfg.StatePath, "SHOP_STATE_PATH"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
