package pow

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/internal/config"
	"github.com/instill-ai/hashcash-client/stamp"
)

const (
	// DefaultBits is the difficulty used when a caller does not choose one
	DefaultBits = 20
	// DefaultSaltLen is the number of random salt bytes
	DefaultSaltLen = 12
	// DefaultExtension is the extension written into minted stamps
	DefaultExtension = ""
)

// Options configures an Engine
type Options struct {
	// Algorithm is the digest stamps are minted and checked with
	Algorithm stamp.Algorithm
	// SaltLen is the number of random bytes in a fresh salt
	SaltLen int
	// MaxBits bounds the difficulty; zero means the digest size
	MaxBits uint
	// Expiry rejects older stamps on verification; zero disables the check
	Expiry time.Duration
	// Extension is copied into every minted stamp
	Extension string
	// Logger defaults to the shared zap logger
	Logger *zap.Logger
}

// DefaultOptions returns the options used by New when none are given
func DefaultOptions() Options {
	return Options{
		Algorithm: stamp.SHA3_256,
		SaltLen:   DefaultSaltLen,
		Extension: DefaultExtension,
	}
}

func (o *Options) validate() error {
	var err error
	if alg, algErr := stamp.ParseAlgorithm(string(o.Algorithm)); algErr != nil {
		err = multierr.Append(err, algErr)
	} else {
		o.Algorithm = alg
	}
	if o.SaltLen <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: salt length must be positive, got %d", stamp.ErrInvalidInput, o.SaltLen))
	}
	if o.MaxBits == 0 {
		o.MaxBits = o.Algorithm.Size()
	}
	if o.MaxBits > o.Algorithm.Size() {
		err = multierr.Append(err, fmt.Errorf("%w: max bits %d exceeds %s digest size %d", stamp.ErrInvalidInput, o.MaxBits, o.Algorithm, o.Algorithm.Size()))
	}
	if o.Expiry < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: negative expiry %s", stamp.ErrInvalidInput, o.Expiry))
	}
	return err
}

// OptionsFromConfig maps the engine section of the process configuration
func OptionsFromConfig(cfg config.EngineConfig) (Options, error) {
	alg, err := stamp.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Algorithm: alg,
		SaltLen:   cfg.SaltLen,
		MaxBits:   cfg.MaxBits,
		Expiry:    cfg.Expiry,
		Extension: cfg.Extension,
	}, nil
}
