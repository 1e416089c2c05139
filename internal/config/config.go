// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StoreTarantool = "tarantool"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

type HTTP struct {
	Addr      string
	ReusePort bool
	RateLimit int
}

type Slack struct {
	BotToken      string
	SigningSecret string
	SkipVerify    bool
}

type Tarantool struct {
	Address  string
	User     string
	Password string
}

type Store struct {
	Driver      string
	Tarantool   Tarantool
	DatabaseURL string
}

type Lock struct {
	Attempts       int
	AttemptTimeout time.Duration
	IdleTTL        time.Duration
}

type Log struct {
	Level      zerolog.Level
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Config struct {
	HTTP          HTTP
	Slack         Slack
	Store         Store
	Lock          Lock
	Log           Log
	LimitBoundary domain.LimitBoundary
	PurgeOnDelete bool
	HelpCommand   string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// LoadDotEnv copies .env into the environment if the file exists.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}
	return nil
}

// FromEnv builds the config from getenv, applying defaults to optional values.
func FromEnv(getenv func(string) string) (Config, error) {
	var (
		cfg Config
		err error
	)
	r := reader{getenv: getenv}

	cfg.HTTP.Addr = r.str("HTTP_ADDR", ":5000")
	cfg.HTTP.ReusePort = r.boolean("HTTP_REUSEPORT", false)
	cfg.HTTP.RateLimit = r.integer("HTTP_RATE_LIMIT", 120)

	cfg.Slack.BotToken = getenv("SLACK_BOT_TOKEN")
	cfg.Slack.SigningSecret = getenv("SLACK_SIGNING_SECRET")
	cfg.Slack.SkipVerify = r.boolean("SLACK_SKIP_VERIFY", false)

	cfg.Store.Driver = r.str("STORE_DRIVER", StoreTarantool)
	cfg.Store.Tarantool.Address = r.str("TT_ADDRESS", "127.0.0.1:3301")
	cfg.Store.Tarantool.User = getenv("TT_USER")
	cfg.Store.Tarantool.Password = getenv("TT_PASSWORD")
	cfg.Store.DatabaseURL = getenv("DATABASE_URL")

	cfg.Lock.Attempts = r.integer("LOCK_ATTEMPTS", 3)
	cfg.Lock.AttemptTimeout = r.duration("LOCK_ATTEMPT_TIMEOUT", 2*time.Second)
	cfg.Lock.IdleTTL = r.duration("LOCK_IDLE_TTL", time.Hour)

	cfg.PurgeOnDelete = r.boolean("PURGE_ON_DELETE", true)
	cfg.HelpCommand = r.str("HELP_COMMAND", "/openpoll")

	cfg.Log.File = r.str("LOG_FILE", "openpoll.log")
	cfg.Log.MaxSizeMB = r.integer("LOG_MAX_SIZE_MB", 10)
	cfg.Log.MaxBackups = r.integer("LOG_MAX_BACKUPS", 3)
	cfg.Log.MaxAgeDays = r.integer("LOG_MAX_AGE_DAYS", 28)

	if r.err != nil {
		return Config{}, r.err
	}

	boundary := getenv("VOTE_LIMIT_BOUNDARY")
	var ok bool
	if cfg.LimitBoundary, ok = domain.ParseLimitBoundary(boundary); !ok {
		return Config{}, fmt.Errorf("invalid VOTE_LIMIT_BOUNDARY: %q", boundary)
	}
	if cfg.Log.Level, err = parseLevel(getenv("LOG_LEVEL")); err != nil {
		return Config{}, err
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Slack.BotToken == "" {
		return errors.New("slack bot token is not set")
	}
	if c.Slack.SigningSecret == "" && !c.Slack.SkipVerify {
		return errors.New("slack signing secret is not set")
	}
	if c.Lock.Attempts < 1 {
		return fmt.Errorf("LOCK_ATTEMPTS must be positive, got %d", c.Lock.Attempts)
	}
	if c.Lock.AttemptTimeout <= 0 {
		return fmt.Errorf("LOCK_ATTEMPT_TIMEOUT must be positive, got %s", c.Lock.AttemptTimeout)
	}

	switch c.Store.Driver {
	case StoreTarantool:
		if c.Store.Tarantool.User == "" {
			return errors.New("tarantool user is not set")
		}
		if c.Store.Tarantool.Password == "" {
			return errors.New("tarantool password is not set")
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s store", c.Store.Driver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	return nil
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

// reader keeps the first parse error so values can be read in one pass.
type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) str(key, def string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
