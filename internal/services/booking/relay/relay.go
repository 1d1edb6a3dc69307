// Package relay publishes pending BookingCreated outbox rows to the fact log.
//
// The relay leases due rows under its consumer name, publishes each one,
// and settles it as succeeded, scheduled for retry, or dead. Leases expire,
// so a crashed relay's rows are picked up again by the next one.
package relay

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/hotelio/bookings/internal/platform/otel"
	"github.com/hotelio/bookings/internal/services/booking/storage"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultConsumerPrefix = "booking-relay"
	defaultPollInterval   = time.Second
	defaultLeaseTTL       = 30 * time.Second
	defaultBatchSize      = 32
	defaultMaxAttempts    = 8
	defaultRetryBackoff   = time.Second
	defaultRetryMaxDelay  = 5 * time.Minute
)

// Config controls relay loop behavior. Zero values take defaults.
type Config struct {
	Consumer      string
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	BatchSize     int
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

func (c Config) normalized() Config {
	c.Consumer = strings.TrimSpace(c.Consumer)
	if c.Consumer == "" {
		c.Consumer = defaultConsumerPrefix + "-" + uuid.NewString()
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaultLeaseTTL
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	return c
}

// Result counts the outcomes of one pass.
type Result struct {
	Leased    int
	Published int
	Retried   int
	Dead      int
}

// Relay moves outbox rows to a publisher.
type Relay struct {
	store     storage.OutboxStore
	publisher broker.Publisher
	cfg       Config
	clock     func() time.Time
}

// New builds a relay over store and publisher.
func New(store storage.OutboxStore, publisher broker.Publisher, cfg Config) (*Relay, error) {
	if store == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		cfg:       cfg.normalized(),
		clock:     time.Now,
	}, nil
}

// Consumer returns the lease owner name.
func (r *Relay) Consumer() string {
	return r.cfg.Consumer
}

// Run relays until ctx is cancelled. Pass errors are logged and the loop
// continues on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	log.Printf("outbox relay %s started (poll %s, batch %d)", r.cfg.Consumer, r.cfg.PollInterval, r.cfg.BatchSize)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("outbox relay pass: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Printf("outbox relay %s stopped", r.cfg.Consumer)
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce leases one batch and settles every row in it.
func (r *Relay) RunOnce(ctx context.Context) (Result, error) {
	var result Result
	ctx, span := otel.Tracer().Start(ctx, "booking.outbox.relay")
	defer span.End()

	events, err := r.store.LeaseOutboxEvents(ctx, r.cfg.Consumer, r.cfg.BatchSize, r.clock().UTC(), r.cfg.LeaseTTL)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("lease outbox events: %w", err)
	}
	result.Leased = len(events)
	span.SetAttributes(attribute.Int("outbox.leased", len(events)))

	for _, event := range events {
		if err := r.relay(ctx, event, &result); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
	}
	return result, nil
}

func (r *Relay) relay(ctx context.Context, event storage.OutboxEvent, result *Result) error {
	publishErr := r.publish(ctx, event)
	now := r.clock().UTC()
	if publishErr == nil {
		if err := r.store.MarkOutboxSucceeded(ctx, event.ID, r.cfg.Consumer, now); err != nil {
			return fmt.Errorf("mark outbox event %s succeeded: %w", event.ID, err)
		}
		result.Published++
		return nil
	}

	attempt := event.AttemptCount + 1
	if attempt >= r.cfg.MaxAttempts {
		log.Printf("outbox event %s dead after %d attempts: %v", event.ID, attempt, publishErr)
		if err := r.store.MarkOutboxDead(ctx, event.ID, r.cfg.Consumer, publishErr.Error(), now); err != nil {
			return fmt.Errorf("mark outbox event %s dead: %w", event.ID, err)
		}
		result.Dead++
		return nil
	}

	next := now.Add(r.backoff(attempt))
	log.Printf("outbox event %s attempt %d failed, retry at %s: %v", event.ID, attempt, next.Format(time.RFC3339), publishErr)
	if err := r.store.MarkOutboxRetry(ctx, event.ID, r.cfg.Consumer, next, publishErr.Error()); err != nil {
		return fmt.Errorf("mark outbox event %s retry: %w", event.ID, err)
	}
	result.Retried++
	return nil
}

func (r *Relay) publish(ctx context.Context, event storage.OutboxEvent) error {
	if event.EventType != bookingfact.EventType {
		return fmt.Errorf("unsupported outbox event type %q", event.EventType)
	}
	fact, err := bookingfact.Decode(event.PayloadJSON)
	if err != nil {
		return err
	}
	msg, err := bookingfact.Message(fact)
	if err != nil {
		return err
	}
	return r.publisher.Publish(ctx, msg)
}

// backoff doubles from RetryBackoff per attempt, capped at RetryMaxDelay.
func (r *Relay) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	delay := r.cfg.RetryBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.cfg.RetryMaxDelay {
			return r.cfg.RetryMaxDelay
		}
	}
	return min(delay, r.cfg.RetryMaxDelay)
}
