// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting of the gatherly process.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	Database Database
	Log      Log
	Services Services
	Cache    Cache
	Jobs     Jobs

	SeedFile    string `env:"SEED_FILE"`
	OTelEnabled bool   `env:"OTEL_ENABLED" envDefault:"false"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	Path   string `env:"DATABASE_PATH" envDefault:"gatherly.db"`
	URL    string `env:"DATABASE_URL"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Services points at the remote user and event directories. When both URLs
// are empty the local SQLite directory is used.
type Services struct {
	UserURL        string        `env:"USER_SERVICE_URL"`
	EventURL       string        `env:"EVENT_SERVICE_URL"`
	Timeout        time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"2s"`
	MaxAttempts    uint          `env:"DIRECTORY_MAX_ATTEMPTS" envDefault:"10"`
	InitialBackoff time.Duration `env:"DIRECTORY_INITIAL_BACKOFF" envDefault:"200ms"`
	MaxBackoff     time.Duration `env:"DIRECTORY_MAX_BACKOFF" envDefault:"2s"`
}

// Remote reports whether directories are served by remote services.
func (s Services) Remote() bool {
	return s.UserURL != "" || s.EventURL != ""
}

type Cache struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

type Jobs struct {
	Enabled    bool          `env:"JOBS_ENABLED" envDefault:"true"`
	MaxWorkers int           `env:"JOBS_MAX_WORKERS" envDefault:"2"`
	Timeout    time.Duration `env:"JOBS_TIMEOUT" envDefault:"1m"`
}

// Load reads an optional dotenv file, then parses and validates the
// environment. Variables already set take precedence over the file.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations the parser cannot express.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required with the postgres driver"))
		}
		if c.Services.UserURL == "" || c.Services.EventURL == "" {
			errs = append(errs, errors.New("USER_SERVICE_URL and EVENT_SERVICE_URL are required with the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver))
	}

	if c.Services.Remote() && (c.Services.UserURL == "" || c.Services.EventURL == "") {
		errs = append(errs, errors.New("USER_SERVICE_URL and EVENT_SERVICE_URL must be set together"))
	}
	if c.Services.MaxAttempts == 0 {
		errs = append(errs, errors.New("DIRECTORY_MAX_ATTEMPTS must be positive"))
	}
	if c.Jobs.MaxWorkers <= 0 {
		errs = append(errs, errors.New("JOBS_MAX_WORKERS must be positive"))
	}
	if c.Jobs.Timeout <= 0 {
		errs = append(errs, errors.New("JOBS_TIMEOUT must be positive"))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
