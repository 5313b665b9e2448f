package pow

import (
	"context"
	"fmt"

	"github.com/catalinc/hashcash"

	"github.com/instill-ai/hashcash-client/stamp"
)

// Minter a interface that creates Hashcash stamp in wire form
type Minter interface {
	Mint(ctx context.Context, resource string) (string, error)
}

type boundMinter struct {
	engine *Engine
	bits   uint
}

// Bind returns a Minter that mints with the engine at a fixed difficulty
func (e *Engine) Bind(bits uint) Minter {
	return &boundMinter{engine: e, bits: bits}
}

func (m *boundMinter) Mint(ctx context.Context, resource string) (string, error) {
	return m.engine.MintString(ctx, resource, m.bits)
}

// legacyMinter mints classic SHA-1 hashcash stamps. The underlying search
// cannot be interrupted, so the context is only checked before it starts.
// The catalinc hasher reuses one digest across attempts, so every Mint call
// gets its own.
type legacyMinter struct {
	bits      uint
	saltLen   uint
	extension string
}

// NewLegacyMinter creates a Minter for classic SHA-1 stamps, verifiable by an
// Engine configured with stamp.SHA1. The classic format has no escaping, so
// the extension and every resource must be printable ASCII without ':' or '%'.
func NewLegacyMinter(bits, saltLen uint, extension string) (Minter, error) {
	if bits == 0 || bits > stamp.SHA1.Size() {
		return nil, fmt.Errorf("%w: legacy bits must be in [1, %d], got %d", stamp.ErrInvalidInput, stamp.SHA1.Size(), bits)
	}
	if !stamp.IsLiteral(extension) {
		return nil, fmt.Errorf("%w: legacy extension %q needs escaping", stamp.ErrInvalidInput, extension)
	}
	return &legacyMinter{bits: bits, saltLen: saltLen, extension: extension}, nil
}

func (m *legacyMinter) Mint(ctx context.Context, resource string) (string, error) {
	if resource == "" {
		return "", fmt.Errorf("%w: empty resource", stamp.ErrInvalidInput)
	}
	if !stamp.IsLiteral(resource) {
		return "", fmt.Errorf("%w: legacy resource %q needs escaping", stamp.ErrInvalidInput, resource)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", stamp.ErrCancelled, err)
	}
	return hashcash.New(m.bits, m.saltLen, m.extension).Mint(resource)
}
