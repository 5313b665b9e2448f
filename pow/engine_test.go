package pow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/pow"
	"github.com/instill-ai/hashcash-client/stamp"
)

func newEngine(t *testing.T, mutate func(*pow.Options)) *pow.Engine {
	t.Helper()
	opts := pow.DefaultOptions()
	opts.Logger = zap.NewNop()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := pow.New(opts)
	require.NoError(t, err)
	return e
}

func TestMint_VerifiesAtRequestedBits(t *testing.T) {
	for _, alg := range []stamp.Algorithm{stamp.SHA3_256, stamp.SHA1} {
		e := newEngine(t, func(o *pow.Options) { o.Algorithm = alg })
		for bits := uint(0); bits <= 12; bits++ {
			s, err := e.Mint(context.Background(), "alice@example.com", bits, time.Time{})
			require.NoError(t, err)
			require.Equal(t, bits, s.Bits)
			require.GreaterOrEqual(t, s.ZeroBits(alg), bits)

			ok, err := e.Verify(s.Format(), bits, time.Time{})
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
}

func TestMint_Example(t *testing.T) {
	e := newEngine(t, nil)
	s, err := e.Mint(context.Background(), "alice@example.com", 20, time.Time{})
	require.NoError(t, err)
	wire := s.Format()
	require.GreaterOrEqual(t, stamp.LeadingZeroBits(stamp.SHA3_256.Sum(wire)), uint(20))

	ok, err := e.Verify(wire, 20, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Verify(wire, 21, time.Time{})
	require.ErrorIs(t, err, stamp.ErrInsufficientWork)
	require.False(t, ok)
}

func TestMint_RoundTrip(t *testing.T) {
	e := newEngine(t, func(o *pow.Options) { o.Extension = "note:x" })
	s, err := e.Mint(context.Background(), "urn:a b%c", 4, time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "20261019083000", s.Date)

	parsed, err := stamp.Parse(s.Format())
	require.NoError(t, err)
	require.Equal(t, s, parsed)
	require.Equal(t, s.Format(), parsed.Format())

	ok, err := e.VerifyFor("urn:a b%c", s.Format(), 4, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMint_InvalidInput(t *testing.T) {
	e := newEngine(t, func(o *pow.Options) { o.MaxBits = 32 })

	_, err := e.Mint(context.Background(), "", 8, time.Time{})
	require.ErrorIs(t, err, stamp.ErrInvalidInput)

	_, err = e.Mint(context.Background(), "alice", 33, time.Time{})
	require.ErrorIs(t, err, stamp.ErrInvalidInput)

	_, err = e.Verify("1:8:20261019083000:alice::abc:AA", 33, time.Time{})
	require.ErrorIs(t, err, stamp.ErrInvalidInput)
}

func TestMint_Cancelled(t *testing.T) {
	e := newEngine(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, err := e.Mint(ctx, "alice@example.com", 200, time.Time{})
	require.Nil(t, s)
	require.ErrorIs(t, err, stamp.ErrCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestVerify_ParseError(t *testing.T) {
	e := newEngine(t, nil)
	for _, w := range []string{"", "1:20:alice", "1:20:20261019083000:alice::abc:AA:extra"} {
		ok, err := e.Verify(w, 0, time.Time{})
		require.False(t, ok)
		require.ErrorIs(t, err, stamp.ErrParse)
	}
}

func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestVerify_Tampered(t *testing.T) {
	e := newEngine(t, nil)
	s, err := e.Mint(context.Background(), "alice@example.com", 18, time.Time{})
	require.NoError(t, err)

	resource := *s
	resource.Resource = flipChar(s.Resource, 0)
	ok, err := e.Verify(resource.Format(), 18, time.Time{})
	require.False(t, ok)
	require.ErrorIs(t, err, stamp.ErrInsufficientWork)

	counter := *s
	counter.Counter = flipChar(s.Counter, len(s.Counter)-1)
	ok, err = e.Verify(counter.Format(), 18, time.Time{})
	require.False(t, ok)
	require.ErrorIs(t, err, stamp.ErrInsufficientWork)

	ok, err = e.VerifyFor("mallory@example.com", s.Format(), 18, time.Time{})
	require.False(t, ok)
	require.ErrorIs(t, err, stamp.ErrResourceMismatch)
}

func TestVerify_DeclaredBitsTooLow(t *testing.T) {
	e := newEngine(t, nil)
	s, err := e.Mint(context.Background(), "alice@example.com", 12, time.Time{})
	require.NoError(t, err)

	under := *s
	under.Bits = 4
	// the digest changes with the declared bits, so only the declared
	// check is deterministic here
	ok, err := e.Verify(under.Format(), 8, time.Time{})
	require.False(t, ok)
	require.ErrorIs(t, err, stamp.ErrInsufficientWork)
}

func TestVerify_Expired(t *testing.T) {
	e := newEngine(t, func(o *pow.Options) { o.Expiry = 5 * time.Minute })
	minted := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	s, err := e.Mint(context.Background(), "alice@example.com", 4, minted)
	require.NoError(t, err)

	ok, err := e.Verify(s.Format(), 4, minted.Add(4*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Verify(s.Format(), 4, minted.Add(6*time.Minute))
	require.False(t, ok)
	require.ErrorIs(t, err, stamp.ErrExpired)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := pow.New(pow.Options{Algorithm: "md5", SaltLen: 0, Expiry: -time.Second, Logger: zap.NewNop()})
	require.ErrorIs(t, err, stamp.ErrInvalidInput)
	require.True(t, strings.Contains(err.Error(), "salt length"))
	require.True(t, strings.Contains(err.Error(), "negative expiry"))

	_, err = pow.New(pow.Options{Algorithm: stamp.SHA1, SaltLen: 8, MaxBits: 161, Logger: zap.NewNop()})
	require.ErrorIs(t, err, stamp.ErrInvalidInput)

	e := newEngine(t, func(o *pow.Options) { o.Algorithm = stamp.SHA1 })
	require.Equal(t, uint(160), e.MaxBits())
}

func TestMint_Concurrent(t *testing.T) {
	e := newEngine(t, nil)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			w, err := e.MintString(context.Background(), strings.Repeat("r", i+1), 10)
			if err == nil {
				_, err = e.Verify(w, 10, time.Time{})
			}
			errs <- err
		}(i)
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
}
