package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"3333"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone    string `env:"TIMEZONE" envDefault:"Local"`

	StoreBackend        string `env:"STORE_BACKEND" envDefault:"postgres"`
	DatabaseURL         string `env:"DATABASE_URL"`
	RedisAddr           string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	StoreConnectRetries uint64 `env:"STORE_CONNECT_RETRIES" envDefault:"5"`

	AuthMode           string `env:"AUTH_MODE" envDefault:"clerk"`
	ClerkSecretKey     string `env:"CLERK_SECRET_KEY"`
	ClerkWebhookSecret string `env:"CLERK_WEBHOOK_SECRET"`
	DevJWTSecret       string `env:"DEV_JWT_SECRET"`

	FCMCredentialsFile  string `env:"FCM_CREDENTIALS_FILE" envDefault:"./serviceAccountKey.json"`
	NotificationWorkers int    `env:"NOTIFICATION_WORKERS" envDefault:"4"`

	MetricsUser string `env:"METRICS_USER"`
	MetricsPass string `env:"METRICS_PASS"`
	PprofSecret string `env:"PPROF_SECRET"`

	MissionCatalogPath         string        `env:"MISSION_CATALOG_PATH"`
	WaypointOrder              string        `env:"WAYPOINT_ORDER" envDefault:"trust"`
	LeaderboardSize            int           `env:"LEADERBOARD_SIZE" envDefault:"100"`
	LeaderboardRefreshInterval time.Duration `env:"LEADERBOARD_REFRESH_INTERVAL" envDefault:"15m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`
}

// Load reads a .env file when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d (must be 1-65535)", c.Port)
	}

	switch c.StoreBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q (must be postgres or redis)", c.StoreBackend)
	}

	switch c.AuthMode {
	case "clerk":
		if c.ClerkSecretKey == "" {
			return fmt.Errorf("CLERK_SECRET_KEY is required when AUTH_MODE=clerk")
		}
	case "dev":
		if c.DevJWTSecret == "" {
			return fmt.Errorf("DEV_JWT_SECRET is required when AUTH_MODE=dev")
		}
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=dev is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE: %q (must be clerk or dev)", c.AuthMode)
	}

	if c.WaypointOrder != "trust" && c.WaypointOrder != "sort" {
		return fmt.Errorf("invalid WAYPOINT_ORDER: %q (must be trust or sort)", c.WaypointOrder)
	}
	if c.LeaderboardSize < 1 {
		return fmt.Errorf("invalid LEADERBOARD_SIZE: %d", c.LeaderboardSize)
	}
	if c.LeaderboardRefreshInterval < 0 {
		return fmt.Errorf("invalid LEADERBOARD_REFRESH_INTERVAL: %v", c.LeaderboardRefreshInterval)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit: %v rps, burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.NotificationWorkers < 1 {
		return fmt.Errorf("invalid NOTIFICATION_WORKERS: %d", c.NotificationWorkers)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SetupLogging configures the global logrus logger: JSON in production,
// text otherwise.
func (c *Config) SetupLogging() {
	if c.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
