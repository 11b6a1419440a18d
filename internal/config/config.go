// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        // e.g. "8080"
	Env             string        // "development" | "production"
	ReadTimeout     time.Duration // default 10s
	WriteTimeout    time.Duration // default 10s
	BetRateLimitRPS int           // per-IP POST /api/bets limit, default 30
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// BusConfig holds the kafka-go bus settings for bet-event ingestion.
type BusConfig struct {
	Brokers    []string // comma-separated in BUS_BROKERS
	Topic      string   // default "bet-events"
	GroupID    string   // consumer group id, default "jackpot-engine"
	Partitions int      // topic provisioning hint, default 3 (>=3 per contract)
}

// EvalConfig controls the evaluation request's ingestion-await loop.
type EvalConfig struct {
	AwaitInitialBackoff time.Duration // default 50ms
	AwaitMaxBackoff     time.Duration // default 250ms
	AwaitDeadline       time.Duration // default 3000ms, cumulative
}

// MetricsConfig holds the Prometheus exposition server settings.
type MetricsConfig struct {
	ListenAddr string // default ":9090"
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Bus     BusConfig
	Eval    EvalConfig
	Metrics MetricsConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns every violation joined together, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}
	if len(c.Bus.Brokers) == 0 {
		errs = append(errs, errors.New("BUS_BROKERS must name at least one broker"))
	}
	if c.Bus.Partitions < 3 {
		errs = append(errs, fmt.Errorf("BUS_PARTITIONS must be >= 3, got %d", c.Bus.Partitions))
	}
	if c.Eval.AwaitInitialBackoff <= 0 || c.Eval.AwaitMaxBackoff < c.Eval.AwaitInitialBackoff {
		errs = append(errs, errors.New("EVAL_AWAIT_INITIAL_BACKOFF must be positive and <= EVAL_AWAIT_MAX_BACKOFF"))
	}
	if c.Eval.AwaitDeadline <= 0 {
		errs = append(errs, errors.New("EVAL_AWAIT_DEADLINE must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	betRateLimitRPS, err := getInt("BET_RATE_LIMIT_RPS", 30)
	if err != nil {
		return nil, fmt.Errorf("BET_RATE_LIMIT_RPS: %w", err)
	}
	cfg.Server = ServerConfig{
		Port:            getEnv("SERVER_PORT", "8080"),
		Env:             getEnv("ENVIRONMENT", "development"),
		ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		BetRateLimitRPS: betRateLimitRPS,
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "jackpot"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── Bus ───────────────────────────────────────────────────────────────────
	partitions, err := getInt("BUS_PARTITIONS", 3)
	if err != nil {
		return nil, fmt.Errorf("BUS_PARTITIONS: %w", err)
	}
	cfg.Bus = BusConfig{
		Brokers:    getList("BUS_BROKERS", []string{"localhost:9092"}),
		Topic:      getEnv("BUS_TOPIC", "bet-events"),
		GroupID:    getEnv("BUS_GROUP_ID", "jackpot-engine"),
		Partitions: partitions,
	}

	// ── Evaluation await loop ─────────────────────────────────────────────────
	cfg.Eval = EvalConfig{
		AwaitInitialBackoff: getDuration("EVAL_AWAIT_INITIAL_BACKOFF", 50*time.Millisecond),
		AwaitMaxBackoff:     getDuration("EVAL_AWAIT_MAX_BACKOFF", 250*time.Millisecond),
		AwaitDeadline:       getDuration("EVAL_AWAIT_DEADLINE", 3000*time.Millisecond),
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	cfg.Metrics = MetricsConfig{
		ListenAddr: getEnv("METRICS_LISTEN_ADDR", ":9090"),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
