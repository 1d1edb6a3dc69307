package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dialer opens a client connection to addr.
type Dialer interface {
	DialContext(ctx context.Context, addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)
}

// DialerFunc adapts a dial function to the Dialer interface.
type DialerFunc func(ctx context.Context, addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)

// DialContext implements Dialer for DialerFunc.
func (fn DialerFunc) DialContext(ctx context.Context, addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	return fn(ctx, addr, opts...)
}

// DialStage describes where a dial attempt failed.
type DialStage string

const (
	// DialStageConnect indicates a dial connection failure.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the health check failed.
	DialStageHealth DialStage = "health"
)

// DialError wraps dial and health check failures with a stage indicator.
type DialError struct {
	Addr  string
	Stage DialStage
	Err   error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial error"
	}
	if e.Addr == "" {
		return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("gRPC %s error (%s): %v", e.Stage, e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DialConfig controls DialWithHealth.
type DialConfig struct {
	// Timeout bounds both the connect and the health wait. Zero means the
	// caller context alone bounds them.
	Timeout time.Duration
	// HealthService is the grpc.health.v1 service name to wait for; empty
	// checks overall server health.
	HealthService string
	// Dialer defaults to a blocking grpc.DialContext.
	Dialer Dialer
	// Logf receives health wait progress; nil disables it.
	Logf func(string, ...any)
	// Options defaults to DefaultClientDialOptions.
	Options []gogrpc.DialOption
}

// DefaultClientDialOptions returns insecure, blocking dial options with the
// otelgrpc client handler so outbound calls propagate trace context.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithBlock(),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// DialWithHealth dials addr and waits until the health check reports
// SERVING. The connection is closed when the health wait fails.
func DialWithHealth(ctx context.Context, addr string, cfg DialConfig) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = DialerFunc(gogrpc.DialContext)
	}
	opts := cfg.Options
	if opts == nil {
		opts = DefaultClientDialOptions()
	}

	dialCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	conn, err := dialer.DialContext(dialCtx, addr, opts...)
	if err != nil {
		return nil, &DialError{Addr: addr, Stage: DialStageConnect, Err: err}
	}
	if err := WaitForHealth(dialCtx, conn, cfg.HealthService, cfg.Logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Addr: addr, Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
