// Package app wires the booking gRPC server: store, providers, orchestrator,
// fact publisher, and outbox relay.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	bookingv1 "github.com/hotelio/bookings/api/booking/v1"
	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/hotelio/bookings/internal/platform/broker/transport"
	platformgrpc "github.com/hotelio/bookings/internal/platform/grpc"
	"github.com/hotelio/bookings/internal/services/booking/api/grpc/booking"
	"github.com/hotelio/bookings/internal/services/booking/domain"
	"github.com/hotelio/bookings/internal/services/booking/providers"
	"github.com/hotelio/bookings/internal/services/booking/relay"
	bookingsqlite "github.com/hotelio/bookings/internal/services/booking/storage/sqlite"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const clientID = "booking-service"

// Config controls the booking server.
type Config struct {
	Addr            string
	DBPath          string
	MonolithURL     string
	ProviderTimeout time.Duration
	FactDelivery    string
	SerializeHotel  bool
	Broker          transport.Config
	Relay           relay.Config
}

// Option customizes server construction.
type Option func(*options)

type options struct {
	publisher broker.Publisher
}

// WithPublisher replaces the broker publisher built from Config.Broker.
// The server does not close an injected publisher.
func WithPublisher(publisher broker.Publisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

// Server hosts the booking service.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *bookingsqlite.Store
	publisher    broker.Publisher
	ownPublisher bool
	relay        *relay.Relay
}

// New opens dependencies and binds the listener.
func New(cfg Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	delivery, err := domain.ParseFactDelivery(cfg.FactDelivery)
	if err != nil {
		return nil, err
	}
	clients, err := providers.New(providers.Config{BaseURL: cfg.MonolithURL, Timeout: cfg.ProviderTimeout})
	if err != nil {
		return nil, fmt.Errorf("configure providers: %w", err)
	}

	store, err := bookingsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open booking sqlite store: %w", err)
	}
	cleanup := []func(){func() { _ = store.Close() }}
	fail := func(err error) (*Server, error) {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
		return nil, err
	}

	publisher := o.publisher
	ownPublisher := false
	if publisher == nil {
		publisher, err = transport.NewPublisher(cfg.Broker, bookingfact.Topic, clientID)
		if err != nil {
			return fail(err)
		}
		ownPublisher = true
		cleanup = append(cleanup, func() { _ = publisher.Close() })
	}

	orchestrator, err := domain.NewOrchestrator(domain.Deps{
		Users:     clients.Users,
		Hotels:    clients.Hotels,
		Reviews:   clients.Reviews,
		Promos:    clients.Promos,
		Store:     store,
		Publisher: publisher,
	}, domain.Config{Delivery: delivery, SerializeHotel: cfg.SerializeHotel})
	if err != nil {
		return fail(err)
	}
	service, err := booking.NewService(orchestrator)
	if err != nil {
		return fail(err)
	}

	var outboxRelay *relay.Relay
	if delivery == domain.DeliveryOutbox {
		outboxRelay, err = relay.New(store, publisher, cfg.Relay)
		if err != nil {
			return fail(err)
		}
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = ":8082"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fail(fmt.Errorf("listen on %s: %w", addr, err))
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(booking.LoggingInterceptor()),
	)
	bookingv1.RegisterBookingServiceServer(grpcServer, service)
	healthServer := platformgrpc.RegisterHealth(grpcServer, bookingv1.BookingService_ServiceDesc.ServiceName)

	log.Printf("booking server: fact delivery %s, serialize hotel %t", delivery, cfg.SerializeHotel)
	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		publisher:    publisher,
		ownPublisher: ownPublisher,
		relay:        outboxRelay,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a booking server until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the gRPC server and, in outbox mode, the relay until ctx ends
// or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.close()

	var wg sync.WaitGroup
	if s.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.relay.Run(serverCtx)
		}()
	}
	defer wg.Wait()

	log.Printf("booking server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		cancel()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		cancel()
		return handleErr(err)
	}
}

// close runs after the relay stops.
func (s *Server) close() {
	if s.ownPublisher && s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Printf("close publisher: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close booking store: %v", err)
		}
	}
}
