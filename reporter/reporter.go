package reporter

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/instill-ai/hashcash-client/internal/logger"
	"github.com/instill-ai/hashcash-client/pow"
	"github.com/instill-ai/hashcash-client/session"

	usagePB "github.com/instill-ai/protogen-go/vdp/usage/v1alpha"
)

const (
	// timeout bounds one report, minting included
	timeout = 30 * time.Second
	// Report frequency
	reportFrequency = 1 * time.Hour
)

// ErrInvalidUsageData is returned when the usage data does not match the service
var ErrInvalidUsageData = errors.New("invalid usage data type")

// Reporter interface
type Reporter interface {
	// SingleReport represents send one report to the usage server
	// Types that are assignable to usageData:
	//	*usagePB.SessionReport_MgmtUsageData
	//	*usagePB.SessionReport_ConnectorUsageData
	//	*usagePB.SessionReport_ModelUsageData
	//	*usagePB.SessionReport_PipelineUsageData
	SingleReport(ctx context.Context, service usagePB.Session_Service, edition, version string, usageData interface{}) error
	// Report sends report to the server regularly based on the report frequency
	// retrieveUsageData is a function that outputs any of the type:
	//	*usagePB.SessionReport_MgmtUsageData
	//	*usagePB.SessionReport_ConnectorUsageData
	//	*usagePB.SessionReport_ModelUsageData
	//	*usagePB.SessionReport_PipelineUsageData
	Report(ctx context.Context, service usagePB.Session_Service, edition, version string, retrieveUsageData func() interface{})
}

// reporter represents a reporter that sends usage data to the server on a regular basis
type reporter struct {
	client     usagePB.UsageServiceClient
	sessionUID string
	start      time.Time
	minter     pow.Minter
	token      string
	frequency  time.Duration
	logger     *zap.Logger
}

// Option customises a reporter
type Option func(*reporter)

// WithFrequency overrides the report frequency
func WithFrequency(d time.Duration) Option {
	return func(r *reporter) {
		if d > 0 {
			r.frequency = d
		}
	}
}

// WithLogger overrides the shared zap logger
func WithLogger(l *zap.Logger) Option {
	return func(r *reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReporter creates a new usage reporter. Every report carries a stamp
// minted by minter over the session token and the hash of the session data.
func NewReporter(ctx context.Context, client usagePB.UsageServiceClient, minter pow.Minter, service usagePB.Session_Service, edition, version string, opts ...Option) (Reporter, error) {

	if minter == nil {
		return nil, errors.New("a minter is required")
	}

	// Create the session
	resp, err := client.CreateSession(ctx,
		&usagePB.CreateSessionRequest{
			Session: &usagePB.Session{
				Service:    service,
				Edition:    edition,
				Version:    version,
				Arch:       runtime.GOARCH,
				Os:         runtime.GOOS,
				Uptime:     0,
				ReportTime: timestamppb.New(time.Now()),
			},
		})
	if err != nil {
		return nil, err
	}

	// Validation: token
	token := resp.GetSession().GetToken()
	if token == "" {
		return nil, errors.New("invalid empty token. New session creation failed, no token")
	}

	r := &reporter{
		client:     client,
		sessionUID: resp.GetSession().GetUid(),
		start:      time.Now(),
		minter:     minter,
		token:      token,
		frequency:  reportFrequency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		if r.logger, err = logger.GetZapLogger(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SingleReport represents send one report to the usage server
func (r *reporter) SingleReport(ctx context.Context, service usagePB.Session_Service, edition, version string, usageData interface{}) error {
	pbSession := &usagePB.Session{
		Service: service,
		Edition: edition,
		Version: version,
		Arch:    runtime.GOARCH,
		Os:      runtime.GOOS,
		// Note: the Uptime may not accurately reflect the actual time when the computer goes to sleep.
		// See https://github.com/golang/go/blob/47f806ce81aac555946144f112b9f8733e2ed871/src/time/time.go#L54-L56
		Uptime:     int64(time.Since(r.start).Truncate(time.Second).Seconds()),
		ReportTime: timestamppb.New(time.Now()),
	}

	report := usagePB.SessionReport{
		SessionUid: r.sessionUID,
		Token:      r.token,
		Session:    pbSession,
	}
	if err := attachUsageData(&report, service, usageData); err != nil {
		return err
	}

	// Generate Proof-of-Work (PoW) with token + hash of session data
	resource, err := (*session.Session)(pbSession).Resource(r.token)
	if err != nil {
		return err
	}
	wire, err := r.minter.Mint(ctx, resource)
	if err != nil {
		return fmt.Errorf("mint report stamp: %w", err)
	}
	report.Pow = wire

	if _, err = r.client.SendSessionReport(ctx, &usagePB.SendSessionReportRequest{
		Report: &report,
	}); err != nil {
		return err
	}

	return nil
}

func attachUsageData(report *usagePB.SessionReport, service usagePB.Session_Service, usageData interface{}) error {
	switch service {
	case usagePB.Session_SERVICE_MGMT:
		if ud, ok := usageData.(*usagePB.SessionReport_MgmtUsageData); ok {
			report.UsageData = ud
			return nil
		}
		return fmt.Errorf("[mgmt-backend] %w", ErrInvalidUsageData)
	case usagePB.Session_SERVICE_CONNECTOR:
		if ud, ok := usageData.(*usagePB.SessionReport_ConnectorUsageData); ok {
			report.UsageData = ud
			return nil
		}
		return fmt.Errorf("[connector-backend] %w", ErrInvalidUsageData)
	case usagePB.Session_SERVICE_MODEL:
		if ud, ok := usageData.(*usagePB.SessionReport_ModelUsageData); ok {
			report.UsageData = ud
			return nil
		}
		return fmt.Errorf("[model-backend] %w", ErrInvalidUsageData)
	case usagePB.Session_SERVICE_PIPELINE:
		if ud, ok := usageData.(*usagePB.SessionReport_PipelineUsageData); ok {
			report.UsageData = ud
			return nil
		}
		return fmt.Errorf("[pipeline-backend] %w", ErrInvalidUsageData)
	default:
		return ErrInvalidUsageData
	}
}

// Report sends report to the server regularly based on the report frequency
// retrieveUsageData is a function that outputs any of the type:
//	*usagePB.SessionReport_MgmtUsageData
//	*usagePB.SessionReport_ConnectorUsageData
//	*usagePB.SessionReport_ModelUsageData
//	*usagePB.SessionReport_PipelineUsageData
func (r *reporter) Report(ctx context.Context, service usagePB.Session_Service, edition, version string, retrieveUsageData func() interface{}) {

	defer r.logger.Sync() //nolint

	for {
		localCtx, cancel := context.WithTimeout(ctx, timeout)
		if err := r.SingleReport(localCtx, service, edition, version, retrieveUsageData()); err != nil {
			r.logger.Error("usage report failed",
				zap.String("session_uid", r.sessionUID),
				zap.String("service", service.String()),
				zap.Error(err))
		}
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.frequency):
		}
	}
}
