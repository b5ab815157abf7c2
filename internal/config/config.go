package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	LogLevel   string `env:"LOG_LEVEL"   env-default:"info"`

	StoreDriver string `env:"STORE_DRIVER" env-default:"mongo"`
	MongoURL    string `env:"MONGO_URL"    env-default:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB"     env-default:"storefront"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"  env-default:"storefront.db"`

	JWTSecret      string        `env:"JWT_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     env-default:"24h"`
	CookieName     string        `env:"COOKIE_NAME"     env-default:"token"`
	CookieSecure   bool          `env:"COOKIE_SECURE"   env-default:"false"`
	CookieSameSite string        `env:"COOKIE_SAMESITE" env-default:"lax"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"    env-default:"http://localhost:5173" env-separator:","`
	CSRFEnabled    bool          `env:"CSRF_ENABLED"    env-default:"false"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" env-default:"products"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"  env-default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"5m"`

	LoginRate  float64 `env:"LOGIN_RATE"  env-default:"1"`
	LoginBurst int     `env:"LOGIN_BURST" env-default:"5"`

	SignupAllowRole     bool `env:"SIGNUP_ALLOW_ROLE"      env-default:"true"`
	LoginStrictPassword bool `env:"LOGIN_STRICT_PASSWORD"  env-default:"false"`
	ProductWriteAnyUser bool `env:"PRODUCT_WRITE_ANY_USER" env-default:"false"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.CORSOrigins = compact(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := NonEmpty(c.JWTSecret, "JWT_SECRET"); err != nil {
		return err
	}
	switch c.StoreDriver {
	case DriverMongo:
		return NonEmpty(c.MongoURL, "MONGO_URL")
	case DriverPostgres:
		return NonEmpty(c.DatabaseURL, "DATABASE_URL")
	case DriverSQLite:
		return NonEmpty(c.SQLitePath, "SQLITE_PATH")
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
}

func NonEmpty(value, envName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

func compact(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
