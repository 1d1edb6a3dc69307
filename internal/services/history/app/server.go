// Package app wires the booking history service: store, fact consumer,
// and HTTP query surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/hotelio/bookings/internal/platform/broker/transport"
	"github.com/hotelio/bookings/internal/platform/timeouts"
	historyhttp "github.com/hotelio/bookings/internal/services/history/api/http"
	"github.com/hotelio/bookings/internal/services/history/consumer"
	"github.com/hotelio/bookings/internal/services/history/storage"
	"github.com/hotelio/bookings/internal/services/history/storage/sqlstore"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
)

const clientID = "booking-history-service"

// Config controls the history server.
type Config struct {
	HTTPAddr       string
	DBDriver       string
	DBDSN          string
	Broker         transport.Config
	PollErrorDelay time.Duration
}

// Option customizes server construction.
type Option func(*options)

type options struct {
	subscriber broker.Subscriber
	store      storage.Store
}

// WithSubscriber replaces the subscriber built from Config.Broker. The
// consumer closes it when it stops.
func WithSubscriber(sub broker.Subscriber) Option {
	return func(o *options) {
		o.subscriber = sub
	}
}

// WithStore replaces the SQL store built from Config. The server does not
// close an injected store.
func WithStore(store storage.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// Server hosts the history service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	consumer   *consumer.Consumer
	store      storage.Store
	closeStore func() error
}

// New opens dependencies and binds the HTTP listener.
func New(ctx context.Context, cfg Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	closeStore := func() error { return nil }
	if store == nil {
		driver := cfg.DBDriver
		if strings.TrimSpace(driver) == "" {
			driver = sqlstore.DriverSQLite
		}
		sqlStore, err := sqlstore.Open(ctx, driver, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		store = sqlStore
		closeStore = sqlStore.Close
	}
	fail := func(err error) (*Server, error) {
		if closeErr := closeStore(); closeErr != nil {
			log.Printf("close history store: %v", closeErr)
		}
		return nil, err
	}

	sub := o.subscriber
	if sub == nil {
		var err error
		sub, err = transport.NewSubscriber(cfg.Broker, bookingfact.Topic, bookingfact.ConsumerGroup, clientID)
		if err != nil {
			return fail(err)
		}
	}
	factConsumer, err := consumer.New(sub, store, consumer.Config{PollErrorDelay: cfg.PollErrorDelay})
	if err != nil {
		_ = sub.Close()
		return fail(err)
	}

	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8083"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = sub.Close()
		return fail(fmt.Errorf("listen on %s: %w", addr, err))
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           historyhttp.NewRouter(store),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		consumer:   factConsumer,
		store:      store,
		closeStore: closeStore,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Consumer exposes the fact consumer for state and counters.
func (s *Server) Consumer() *consumer.Consumer {
	return s.consumer
}

// Run creates and serves a history server until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the consumer and the HTTP server until ctx ends or the HTTP
// server fails. The consumer drains before the store closes.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("history consumer stopped: %v", err)
		}
	}()
	defer wg.Wait()

	log.Printf("history server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer stop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown history HTTP server: %v", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		cancel()
		return handleErr(err)
	}
}

// close runs after the consumer stops.
func (s *Server) close() {
	if s.closeStore == nil {
		return
	}
	if err := s.closeStore(); err != nil {
		log.Printf("close history store: %v", err)
	}
}
