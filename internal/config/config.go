package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config is the process configuration
type Config struct {
	Engine EngineConfig
	Replay ReplayConfig
	Log    LogConfig
}

// EngineConfig holds the minting and verification policy
type EngineConfig struct {
	Algorithm string // sha3-256|sha1
	Bits      uint
	MaxBits   uint // 0 means the digest size
	SaltLen   int
	Extension string
	Expiry    time.Duration
}

// ReplayConfig selects the replay cache backend. An empty RedisAddr keeps
// seen stamps in memory.
type ReplayConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	MaxKeys       int
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string // debug|info|warn|error
	Debug bool
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Algorithm: "sha3-256",
			Bits:      20,
			SaltLen:   12,
			Extension: "",
			Expiry:    5 * time.Minute,
		},
		Replay: ReplayConfig{
			TTL:     10 * time.Minute,
			MaxKeys: 100000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromEnv overlays HASHCASH_* environment variables on Default
func FromEnv() Config {
	cfg := Default()

	cfg.Engine.Algorithm = envOr("HASHCASH_ALGORITHM", cfg.Engine.Algorithm)
	cfg.Engine.Bits = envOrUint("HASHCASH_BITS", cfg.Engine.Bits)
	cfg.Engine.MaxBits = envOrUint("HASHCASH_MAX_BITS", cfg.Engine.MaxBits)
	cfg.Engine.SaltLen = envOrInt("HASHCASH_SALT_LEN", cfg.Engine.SaltLen)
	cfg.Engine.Extension = envOr("HASHCASH_EXTENSION", cfg.Engine.Extension)
	cfg.Engine.Expiry = envOrDuration("HASHCASH_EXPIRY", cfg.Engine.Expiry)

	cfg.Replay.RedisAddr = envOr("HASHCASH_REDIS_ADDR", cfg.Replay.RedisAddr)
	cfg.Replay.RedisPassword = envOr("HASHCASH_REDIS_PASSWORD", cfg.Replay.RedisPassword)
	cfg.Replay.RedisDB = envOrInt("HASHCASH_REDIS_DB", cfg.Replay.RedisDB)
	cfg.Replay.TTL = envOrDuration("HASHCASH_REPLAY_TTL", cfg.Replay.TTL)
	cfg.Replay.MaxKeys = envOrInt("HASHCASH_REPLAY_MAX_KEYS", cfg.Replay.MaxKeys)

	cfg.Log.Level = envOr("HASHCASH_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Debug = envOrBool("HASHCASH_DEBUG", cfg.Log.Debug)

	return cfg
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var err error
	if c.Engine.MaxBits != 0 && c.Engine.Bits > c.Engine.MaxBits {
		err = multierr.Append(err, fmt.Errorf("engine bits %d exceeds max bits %d", c.Engine.Bits, c.Engine.MaxBits))
	}
	if c.Engine.SaltLen <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine salt length must be positive, got %d", c.Engine.SaltLen))
	}
	if c.Engine.Expiry < 0 {
		err = multierr.Append(err, errors.New("engine expiry must not be negative"))
	}
	if c.Replay.TTL <= 0 {
		err = multierr.Append(err, errors.New("replay ttl must be positive"))
	}
	if c.Replay.RedisAddr == "" && c.Replay.MaxKeys <= 0 {
		err = multierr.Append(err, errors.New("replay max keys must be positive"))
	}
	return err
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envOrInt(key string, def int) int {
	v := envOr(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrUint(key string, def uint) uint {
	v := envOr(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}

func envOrBool(key string, def bool) bool {
	v := envOr(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDuration(key string, def time.Duration) time.Duration {
	v := envOr(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
