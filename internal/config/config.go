// Package config defines service configuration and its loading.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory simulation job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of simulation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the request_id idempotency index.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreBackend selects where matches live: memory or redis.
	StoreBackend string `koanf:"store_backend"`

	// StoreCapacity bounds the memory backend.
	StoreCapacity int `koanf:"store_capacity"`

	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	RedisPrefix     string `koanf:"redis_prefix"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`

	// SimulationSteps is the number of events per match.
	SimulationSteps int `koanf:"simulation_steps"`

	// GoalCap bounds the goals kept per match.
	GoalCap int `koanf:"goal_cap"`

	// CardProbability is the per-step chance of a yellow card.
	CardProbability float64 `koanf:"card_probability"`

	// PlaybackDurationMS and PlaybackTickMS pace live playback.
	PlaybackDurationMS int `koanf:"playback_duration_ms"`
	PlaybackTickMS     int `koanf:"playback_tick_ms"`

	// CORSAllowedOrigins lists origins allowed by the API. "*" allows all.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config with defaults. The context is reserved for future
// use and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         50_000,
		StoreBackend:       BackendMemory,
		StoreCapacity:      10_000,
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "dreamxi:",
		RedisTTLSeconds:    86_400,
		SimulationSteps:    30,
		GoalCap:            5,
		CardProbability:    0.05,
		PlaybackDurationMS: 120_000,
		PlaybackTickMS:     2_000,
		CORSAllowedOrigins: []string{"*"},
	}
}

// PlaybackDuration returns the real time a full match takes to play back.
func (c *Config) PlaybackDuration() time.Duration {
	return time.Duration(c.PlaybackDurationMS) * time.Millisecond
}

// PlaybackTick returns the interval between playback frames.
func (c *Config) PlaybackTick() time.Duration {
	return time.Duration(c.PlaybackTickMS) * time.Millisecond
}

// RedisTTL returns how long the redis backend keeps a match.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate(_ context.Context) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive, got %d", c.QueueSize)
	case c.SimulationSteps <= 0:
		return invalid("simulation_steps must be positive, got %d", c.SimulationSteps)
	case c.GoalCap < 0:
		return invalid("goal_cap must not be negative, got %d", c.GoalCap)
	case c.CardProbability < 0 || c.CardProbability > 1:
		return invalid("card_probability must be within [0,1], got %v", c.CardProbability)
	case c.PlaybackDurationMS <= 0 || c.PlaybackTickMS <= 0:
		return invalid("playback durations must be positive")
	case c.PlaybackTickMS > c.PlaybackDurationMS:
		return invalid("playback_tick_ms must not exceed playback_duration_ms")
	case c.RedisTTLSeconds < 0:
		return invalid("redis_ttl_seconds must not be negative, got %d", c.RedisTTLSeconds)
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return invalid("redis_addr is required for the redis store")
		}
	default:
		return invalid("store_backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.StoreBackend)
	}
	return nil
}
