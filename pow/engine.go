package pow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/internal/logger"
	"github.com/instill-ai/hashcash-client/stamp"
)

// pollInterval is how many attempts pass between cancellation checks
const pollInterval = 1 << 12

var saltEncoding = base64.RawURLEncoding

// Engine mints and verifies hashcash stamps. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	opts   Options
	logger *zap.Logger
	// counterWidth caps the counter in bytes; zero means the full 8
	counterWidth int
}

// New creates an engine from the given options
func New(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	l := opts.Logger
	if l == nil {
		var err error
		if l, err = logger.GetZapLogger(); err != nil {
			return nil, err
		}
	}
	return &Engine{
		opts:   opts,
		logger: l.With(zap.String("algorithm", string(opts.Algorithm))),
	}, nil
}

// NewDefault creates an engine with DefaultOptions
func NewDefault() (*Engine, error) {
	return New(DefaultOptions())
}

// Algorithm is the digest the engine uses
func (e *Engine) Algorithm() stamp.Algorithm {
	return e.opts.Algorithm
}

// MaxBits is the largest difficulty the engine accepts
func (e *Engine) MaxBits() uint {
	return e.opts.MaxBits
}

// Mint searches for a stamp over resource whose digest has at least bits
// leading zero bits. A zero now means the current time. The search runs
// until it succeeds or ctx is done.
func (e *Engine) Mint(ctx context.Context, resource string, bits uint, now time.Time) (*stamp.Stamp, error) {
	if resource == "" {
		return nil, fmt.Errorf("%w: empty resource", stamp.ErrInvalidInput)
	}
	if bits > e.opts.MaxBits {
		return nil, fmt.Errorf("%w: %d bits exceeds maximum %d", stamp.ErrInvalidInput, bits, e.opts.MaxBits)
	}
	if now.IsZero() {
		now = time.Now()
	}

	salt := make([]byte, e.opts.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	s := &stamp.Stamp{
		Version:   stamp.Version,
		Bits:      bits,
		Date:      now.UTC().Format(stamp.DateLayout),
		Resource:  resource,
		Extension: e.opts.Extension,
		Rand:      saltEncoding.EncodeToString(salt),
	}

	start := time.Now()
	h := e.opts.Algorithm.New()
	sum := make([]byte, 0, h.Size())
	ctr := newCounter(e.counterWidth)
	prefix := []byte(s.Prefix())
	candidate := make([]byte, 0, len(prefix)+16)
	var attempts uint64

	for {
		candidate = ctr.appendTo(append(candidate[:0], prefix...))
		h.Reset()
		h.Write(candidate)
		sum = h.Sum(sum[:0])
		attempts++

		if stamp.LeadingZeroBits(sum) >= bits {
			s.Counter = string(candidate[len(prefix):])
			e.logger.Debug("stamp minted",
				zap.Uint("bits", bits),
				zap.Uint64("attempts", attempts),
				zap.Duration("elapsed", time.Since(start)))
			return s, nil
		}

		if attempts%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				e.logger.Debug("stamp mint cancelled",
					zap.Uint("bits", bits),
					zap.Uint64("attempts", attempts),
					zap.Error(err))
				return nil, fmt.Errorf("%w: %w", stamp.ErrCancelled, err)
			}
		}

		if !ctr.next() {
			more := make([]byte, e.opts.SaltLen)
			if _, err := rand.Read(more); err != nil {
				return nil, fmt.Errorf("extend salt: %w", err)
			}
			salt = append(salt, more...)
			s.Rand = saltEncoding.EncodeToString(salt)
			prefix = []byte(s.Prefix())
			ctr.reset()
			e.logger.Warn("counter space exhausted, salt extended", zap.Int("salt_len", len(salt)))
		}
	}
}

// MintString mints a stamp and returns its wire form
func (e *Engine) MintString(ctx context.Context, resource string, bits uint) (string, error) {
	s, err := e.Mint(ctx, resource, bits, time.Time{})
	if err != nil {
		return "", err
	}
	return s.Format(), nil
}

// Verify checks a wire string against the required difficulty. Both the
// declared bits and the digest of the exact input must meet it. When the
// engine has an expiry window, stamps older than now minus the window fail
// with stamp.ErrExpired. A zero now means the current time.
func (e *Engine) Verify(wire string, requiredBits uint, now time.Time) (bool, error) {
	_, err := e.check(wire, requiredBits, now)
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyFor is Verify plus a check that the stamp is bound to resource
func (e *Engine) VerifyFor(resource, wire string, requiredBits uint, now time.Time) (bool, error) {
	s, err := e.check(wire, requiredBits, now)
	if err != nil {
		return false, err
	}
	if s.Resource != resource {
		return false, fmt.Errorf("%w: stamp is for %q", stamp.ErrResourceMismatch, s.Resource)
	}
	return true, nil
}

func (e *Engine) check(wire string, requiredBits uint, now time.Time) (*stamp.Stamp, error) {
	if requiredBits > e.opts.MaxBits {
		return nil, fmt.Errorf("%w: %d bits exceeds maximum %d", stamp.ErrInvalidInput, requiredBits, e.opts.MaxBits)
	}
	s, err := stamp.Parse(wire)
	if err != nil {
		return nil, err
	}
	if s.Bits < requiredBits {
		return nil, fmt.Errorf("%w: declared %d bits, need %d", stamp.ErrInsufficientWork, s.Bits, requiredBits)
	}
	if got := stamp.LeadingZeroBits(e.opts.Algorithm.Sum(wire)); got < requiredBits {
		return nil, fmt.Errorf("%w: digest has %d zero bits, need %d", stamp.ErrInsufficientWork, got, requiredBits)
	}

	if e.opts.Expiry > 0 {
		if now.IsZero() {
			now = time.Now()
		}
		ts, err := s.Time()
		if err != nil {
			return nil, err
		}
		if ts.Before(now.Add(-e.opts.Expiry)) {
			return nil, fmt.Errorf("%w: minted at %s", stamp.ErrExpired, ts.Format(time.RFC3339))
		}
	}
	return s, nil
}
