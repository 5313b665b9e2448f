package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/instill-ai/hashcash-client/internal/config"
	"github.com/instill-ai/hashcash-client/internal/logger"
	"github.com/instill-ai/hashcash-client/pow"
	"github.com/instill-ai/hashcash-client/stamp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "mint":
		err = runMint(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "parse":
		err = runParse(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Print(`hashcash

Usage:
  hashcash mint   --resource <text> [--bits N] [--alg sha3-256|sha1] [--timeout 30s]
  hashcash verify --stamp <wire> [--bits N] [--resource <text>] [--alg sha3-256|sha1] [--expiry 5m]
  hashcash parse  --stamp <wire>

Environment:
  HASHCASH_BITS, HASHCASH_ALGORITHM, HASHCASH_SALT_LEN, HASHCASH_EXPIRY, HASHCASH_LOG_LEVEL
`)
}

func engineFlags(fs *flag.FlagSet, cfg *config.EngineConfig) {
	fs.UintVar(&cfg.Bits, "bits", cfg.Bits, "Difficulty in leading zero bits")
	fs.StringVar(&cfg.Algorithm, "alg", cfg.Algorithm, "Digest algorithm: sha3-256|sha1")
	fs.DurationVar(&cfg.Expiry, "expiry", cfg.Expiry, "Reject stamps older than this; 0 disables")
}

func newEngine(cfg config.EngineConfig) (*pow.Engine, error) {
	opts, err := pow.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return pow.New(opts)
}

func runMint(args []string) error {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	engineFlags(fs, &cfg.Engine)
	resource := fs.String("resource", "", "Resource the stamp is bound to")
	timeout := fs.Duration("timeout", 0, "Give up after this long; 0 waits until interrupted")
	_ = fs.Parse(args)

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	s, err := engine.Mint(ctx, *resource, cfg.Engine.Bits, time.Time{})
	if err != nil {
		return err
	}
	fmt.Println(s.Format())
	return nil
}

func runVerify(args []string) error {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	engineFlags(fs, &cfg.Engine)
	wire := fs.String("stamp", "", "Stamp in wire form")
	resource := fs.String("resource", "", "Require the stamp to be bound to this resource")
	_ = fs.Parse(args)

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}

	if *resource != "" {
		_, err = engine.VerifyFor(*resource, *wire, cfg.Engine.Bits, time.Time{})
	} else {
		_, err = engine.Verify(*wire, cfg.Engine.Bits, time.Time{})
	}
	if err != nil {
		return err
	}
	fmt.Println("valid")
	return nil
}

func runParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	wire := fs.String("stamp", "", "Stamp in wire form")
	_ = fs.Parse(args)

	s, err := stamp.Parse(*wire)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*stamp.Stamp
		ZeroBitsSHA3 uint `json:"zero_bits_sha3_256"`
		ZeroBitsSHA1 uint `json:"zero_bits_sha1"`
	}{s, s.ZeroBits(stamp.SHA3_256), s.ZeroBits(stamp.SHA1)})
}

func fatal(err error) {
	if l, lerr := logger.GetZapLogger(); lerr == nil {
		l.Debug("command failed", zap.Error(err))
		_ = l.Sync()
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	switch {
	case errors.Is(err, stamp.ErrInvalidInput), errors.Is(err, stamp.ErrParse):
		os.Exit(2)
	case errors.Is(err, stamp.ErrCancelled):
		os.Exit(130)
	default:
		os.Exit(1)
	}
}
