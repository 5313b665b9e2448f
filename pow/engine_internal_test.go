package pow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/stamp"
)

func TestMint_ExtendsSaltWhenCounterExhausted(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = zap.NewNop()
	e, err := New(opts)
	require.NoError(t, err)
	e.counterWidth = 1

	baseLen := saltEncoding.EncodedLen(opts.SaltLen)
	extended := false
	// a one-byte counter covers 256 candidates, about a quarter of the work
	// for 10 bits, so most mints need at least one fresh salt
	for i := 0; i < 20 && !extended; i++ {
		s, err := e.Mint(context.Background(), "alice@example.com", 10, time.Time{})
		require.NoError(t, err)
		require.Len(t, s.Counter, 2)

		parsed, err := stamp.Parse(s.Format())
		require.NoError(t, err)
		require.Equal(t, s, parsed)

		ok, err := e.Verify(s.Format(), 10, time.Time{})
		require.NoError(t, err)
		require.True(t, ok)

		extended = len(s.Rand) > baseLen
	}
	require.True(t, extended, "salt was never extended")
}
