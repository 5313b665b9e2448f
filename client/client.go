package client

import (
	"context"
	"io"

	"github.com/instill-ai/hashcash-client/internal/config"
	"github.com/instill-ai/hashcash-client/pow"
	"github.com/instill-ai/hashcash-client/replay"
	"github.com/instill-ai/hashcash-client/reporter"
	"github.com/instill-ai/hashcash-client/usage"

	usagePB "github.com/instill-ai/protogen-go/vdp/usage/v1alpha"
)

// NewEngine creates a hashcash engine from the environment configuration
func NewEngine() (*pow.Engine, config.Config, error) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	opts, err := pow.OptionsFromConfig(cfg.Engine)
	if err != nil {
		return nil, cfg, err
	}
	e, err := pow.New(opts)
	return e, cfg, err
}

// InitReporter creates a usage reporter minting stamps at the configured difficulty
func InitReporter(ctx context.Context, usageClient usagePB.UsageServiceClient, sessionService usagePB.Session_Service, edition, version string) (reporter.Reporter, error) {
	engine, cfg, err := NewEngine()
	if err != nil {
		return nil, err
	}
	reporter, err := reporter.NewReporter(ctx, usageClient, engine.Bind(cfg.Engine.Bits), sessionService, edition, version)
	if err != nil {
		return nil, err
	}
	return reporter, nil
}

// StartReporter uses a usage reporter to start sending usage data to server regularly
// retrieveUsageData is a function that outputs any of the type:
//
//	*usagePB.SessionReport_MgmtUsageData
//	*usagePB.SessionReport_ConnectorUsageData
//	*usagePB.SessionReport_ModelUsageData
//	*usagePB.SessionReport_PipelineUsageData
func StartReporter(ctx context.Context, reporter reporter.Reporter, sessionService usagePB.Session_Service, edition, version string, retrieveUsageData func() interface{}) error {
	go reporter.Report(ctx, sessionService, edition, version, retrieveUsageData)

	return nil
}

// SingleReporter uses a usage reporter and sends one-time usage data to server
func SingleReporter(ctx context.Context, reporter reporter.Reporter, sessionService usagePB.Session_Service, edition, version string, usageData interface{}) error {
	err := reporter.SingleReport(ctx, sessionService, edition, version, usageData)
	if err != nil {
		return err
	}
	return nil
}

// InitVerifier creates a report verifier backed by the configured replay
// cache. The returned closer releases the cache connection, if any.
func InitVerifier() (*usage.Verifier, io.Closer, error) {
	engine, cfg, err := NewEngine()
	if err != nil {
		return nil, nil, err
	}
	cache, err := replay.FromConfig(cfg.Replay)
	if err != nil {
		return nil, nil, err
	}
	closer, ok := cache.(io.Closer)
	if !ok {
		closer = io.NopCloser(nil)
	}
	v, err := usage.NewVerifier(engine, cache,
		usage.WithBits(cfg.Engine.Bits),
		usage.WithReplayTTL(cfg.Replay.TTL))
	if err != nil {
		closer.Close() //nolint
		return nil, nil, err
	}
	return v, closer, nil
}
