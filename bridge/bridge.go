package bridge

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/internal/logger"
	"github.com/instill-ai/hashcash-client/pow"
)

// ErrUnknownHandle is returned for a handle that was never issued, already
// freed, or issued by another registry
var ErrUnknownHandle = errors.New("unknown handle")

// Handle refers to a stamp owned by the caller
type Handle uint64

func (h Handle) tag() uint32 { return uint32(h >> 32) }

// Registry owns the stamps handed out across the boundary. Mint transfers
// ownership of one wire string to the caller as a Handle, which must be
// given back exactly once with Free. Handles carry the registry tag in their
// high 32 bits and are never zero.
type Registry struct {
	engine *pow.Engine
	tag    uint32
	logger *zap.Logger

	mu     sync.Mutex
	next   uint32
	stamps map[Handle]string
}

// NewRegistry creates a registry minting with engine
func NewRegistry(engine *pow.Engine) (*Registry, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("generate registry tag: %w", err)
	}
	tag := binary.BigEndian.Uint32(b[:])
	if tag == 0 {
		tag = 1
	}
	l, err := logger.GetZapLogger()
	if err != nil {
		return nil, err
	}
	return &Registry{
		engine: engine,
		tag:    tag,
		logger: l,
		stamps: make(map[Handle]string),
	}, nil
}

// Mint mints a stamp over resource and returns the handle owning it
func (r *Registry) Mint(ctx context.Context, resource []byte, bits uint32) (Handle, error) {
	wire, err := r.engine.MintString(ctx, string(resource), uint(bits))
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < 1<<16; i++ {
		r.next++
		if r.next == 0 {
			continue
		}
		h := Handle(uint64(r.tag)<<32 | uint64(r.next))
		if _, taken := r.stamps[h]; taken {
			continue
		}
		r.stamps[h] = wire
		return h, nil
	}
	return 0, errors.New("no free handles")
}

// String returns the stamp owned by h without releasing it
func (r *Registry) String(h Handle) (string, error) {
	if h == 0 || h.tag() != r.tag {
		return "", ErrUnknownHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	wire, ok := r.stamps[h]
	if !ok {
		return "", ErrUnknownHandle
	}
	return wire, nil
}

// Bytes returns a NUL-terminated copy of the stamp owned by h
func (r *Registry) Bytes(h Handle) ([]byte, error) {
	wire, err := r.String(h)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(wire)+1)
	copy(b, wire)
	return b, nil
}

// Free releases h. Releasing a handle twice is an error.
func (r *Registry) Free(h Handle) error {
	if h == 0 || h.tag() != r.tag {
		return ErrUnknownHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stamps[h]; !ok {
		r.logger.Warn("free of unknown handle", zap.Uint64("handle", uint64(h)))
		return ErrUnknownHandle
	}
	delete(r.stamps, h)
	return nil
}

// Outstanding is the number of handles not yet freed
func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stamps)
}
