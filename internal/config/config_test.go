package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/instill-ai/hashcash-client/internal/config"
)

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HASHCASH_ALGORITHM", "sha1")
	t.Setenv("HASHCASH_BITS", "16")
	t.Setenv("HASHCASH_EXPIRY", "2m")
	t.Setenv("HASHCASH_REDIS_ADDR", "localhost:6379")
	t.Setenv("HASHCASH_DEBUG", "true")
	t.Setenv("HASHCASH_SALT_LEN", "not-a-number")

	cfg := config.FromEnv()
	require.Equal(t, "sha1", cfg.Engine.Algorithm)
	require.Equal(t, uint(16), cfg.Engine.Bits)
	require.Equal(t, 2*time.Minute, cfg.Engine.Expiry)
	require.Equal(t, "localhost:6379", cfg.Replay.RedisAddr)
	require.True(t, cfg.Log.Debug)
	require.Equal(t, config.Default().Engine.SaltLen, cfg.Engine.SaltLen)
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Bits = 40
	cfg.Engine.MaxBits = 32
	cfg.Engine.SaltLen = 0
	cfg.Replay.TTL = 0

	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
}
