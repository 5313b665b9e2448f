package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/internal/logger"
	"github.com/instill-ai/hashcash-client/pow"
	"github.com/instill-ai/hashcash-client/replay"
	"github.com/instill-ai/hashcash-client/session"

	usagePB "github.com/instill-ai/protogen-go/vdp/usage/v1alpha"
)

const (
	// HashBits is Number of zero bits a report stamp must carry
	HashBits = pow.DefaultBits
	// sessionWindow is how old a reported session may be
	sessionWindow = time.Minute
	// replayTTL covers the session window plus clock skew
	replayTTL = 10 * time.Minute
)

var (
	// ErrMissingSession is returned for a report without session data
	ErrMissingSession = errors.New("report has no session")
	// ErrStaleSession is returned when the reported session is too old
	ErrStaleSession = errors.New("report session expired")
)

// Verifier admits session reports whose proof of work is valid and unused
type Verifier struct {
	engine *pow.Engine
	cache  replay.Cache
	bits   uint
	window time.Duration
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option customises a Verifier
type Option func(*Verifier)

// WithBits overrides the required difficulty
func WithBits(bits uint) Option {
	return func(v *Verifier) { v.bits = bits }
}

// WithSessionWindow overrides how old a session report may be
func WithSessionWindow(d time.Duration) Option {
	return func(v *Verifier) { v.window = d }
}

// WithReplayTTL overrides how long accepted stamps are remembered
func WithReplayTTL(d time.Duration) Option {
	return func(v *Verifier) { v.ttl = d }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// WithLogger overrides the shared zap logger
func WithLogger(l *zap.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// NewVerifier creates a report verifier
func NewVerifier(engine *pow.Engine, cache replay.Cache, opts ...Option) (*Verifier, error) {
	if engine == nil || cache == nil {
		return nil, errors.New("engine and replay cache are required")
	}
	v := &Verifier{
		engine: engine,
		cache:  cache,
		bits:   HashBits,
		window: sessionWindow,
		ttl:    replayTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		var err error
		if v.logger, err = logger.GetZapLogger(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Verify checks the stamp of a report against the token and session it
// carries, then records it so the same stamp is refused next time
func (v *Verifier) Verify(ctx context.Context, report *usagePB.SessionReport) error {
	if report.GetSession() == nil {
		return ErrMissingSession
	}
	now := v.now()
	s := (*session.Session)(report.GetSession())
	if s.Expired(now, v.window) {
		return ErrStaleSession
	}

	resource, err := s.Resource(report.GetToken())
	if err != nil {
		return err
	}
	if _, err := v.engine.VerifyFor(resource, report.GetPow(), v.bits, now); err != nil {
		v.logger.Info("report stamp rejected",
			zap.String("session_uid", report.GetSessionUid()),
			zap.Error(err))
		return err
	}

	seen, err := v.cache.Seen(ctx, replay.Key(report.GetPow()), v.ttl)
	if err != nil {
		return fmt.Errorf("replay cache: %w", err)
	}
	if seen {
		v.logger.Warn("report stamp replayed", zap.String("session_uid", report.GetSessionUid()))
		return replay.ErrReplayed
	}
	return nil
}
