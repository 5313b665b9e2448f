package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/instill-ai/hashcash-client/client"
	"github.com/instill-ai/hashcash-client/stamp"
)

func TestNewEngine_FromEnv(t *testing.T) {
	t.Setenv("HASHCASH_ALGORITHM", "sha1")
	t.Setenv("HASHCASH_BITS", "6")

	engine, cfg, err := client.NewEngine()
	require.NoError(t, err)
	require.Equal(t, stamp.SHA1, engine.Algorithm())
	require.Equal(t, uint(6), cfg.Engine.Bits)

	wire, err := engine.Bind(cfg.Engine.Bits).Mint(context.Background(), "alice")
	require.NoError(t, err)
	ok, err := engine.Verify(wire, 6, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Setenv("HASHCASH_BITS", "40")
	t.Setenv("HASHCASH_MAX_BITS", "32")

	_, _, err := client.NewEngine()
	require.Error(t, err)
}

func TestInitVerifier_Memory(t *testing.T) {
	v, closer, err := client.InitVerifier()
	require.NoError(t, err)
	require.NotNil(t, v)
	require.NoError(t, closer.Close())
}
