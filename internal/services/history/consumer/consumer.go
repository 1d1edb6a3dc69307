// Package consumer projects BookingCreated facts into the history store.
//
// Messages are handled one at a time. A message is committed only after
// its record is stored, so a crash between the write and the commit
// replays the message and the store's booking id uniqueness absorbs it.
// Malformed messages and store failures are logged and left uncommitted.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/hotelio/bookings/internal/platform/otel"
	"github.com/hotelio/bookings/internal/services/history/storage"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultPollErrorDelay = time.Second

// ErrAlreadyStarted is returned by Run on a consumer that has run before.
var ErrAlreadyStarted = errors.New("consumer already started")

// State is the lifecycle position of a consumer.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config tunes the consumer.
type Config struct {
	// PollErrorDelay is the pause after a failed poll.
	PollErrorDelay time.Duration
}

// Counts tallies handled deliveries.
type Counts struct {
	Ingested   int64
	Duplicates int64
	Malformed  int64
	Failed     int64
}

// Consumer reads facts from a subscriber and appends history records.
type Consumer struct {
	sub   broker.Subscriber
	store storage.Store
	cfg   Config
	clock func() time.Time

	state      atomic.Int32
	ingested   atomic.Int64
	duplicates atomic.Int64
	malformed  atomic.Int64
	failed     atomic.Int64
}

// New builds an idle consumer.
func New(sub broker.Subscriber, store storage.Store, cfg Config) (*Consumer, error) {
	if sub == nil {
		return nil, errors.New("subscriber is required")
	}
	if store == nil {
		return nil, errors.New("history store is required")
	}
	if cfg.PollErrorDelay <= 0 {
		cfg.PollErrorDelay = defaultPollErrorDelay
	}
	return &Consumer{sub: sub, store: store, cfg: cfg, clock: time.Now}, nil
}

// State reports the current lifecycle state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Counts returns a snapshot of the delivery tallies.
func (c *Consumer) Counts() Counts {
	return Counts{
		Ingested:   c.ingested.Load(),
		Duplicates: c.duplicates.Load(),
		Malformed:  c.malformed.Load(),
		Failed:     c.failed.Load(),
	}
}

// Run consumes until ctx is cancelled or the subscriber closes, then
// closes the subscriber. A delivery already being handled finishes its
// write and commit first.
func (c *Consumer) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	log.Printf("history consumer running")
	defer c.stop()

	for ctx.Err() == nil {
		delivery, err := c.sub.Poll(ctx)
		if err != nil {
			if errors.Is(err, broker.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			log.Printf("poll booking facts: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.cfg.PollErrorDelay):
			}
			continue
		}
		c.handle(context.WithoutCancel(ctx), delivery)
	}
	return nil
}

func (c *Consumer) stop() {
	c.state.Store(int32(StateDraining))
	if err := c.sub.Close(); err != nil {
		log.Printf("close subscriber: %v", err)
	}
	c.state.Store(int32(StateStopped))
	counts := c.Counts()
	log.Printf("history consumer stopped (ingested %d, duplicates %d, malformed %d, failed %d)",
		counts.Ingested, counts.Duplicates, counts.Malformed, counts.Failed)
}

// handle stores one delivery and commits it on success.
func (c *Consumer) handle(ctx context.Context, delivery broker.Delivery) {
	ctx, span := otel.Tracer().Start(ctx, "booking.history.ingest")
	defer span.End()
	span.SetAttributes(attribute.String("broker.delivery", delivery.String()))

	fact, err := bookingfact.Decode(delivery.Value)
	if err != nil {
		c.malformed.Add(1)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("skip %s: %v", delivery, err)
		return
	}
	record, err := RecordFromFact(fact, c.clock())
	if err != nil {
		c.malformed.Add(1)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("skip %s: %v", delivery, err)
		return
	}

	inserted, err := c.store.AppendRecord(ctx, record)
	if err != nil {
		c.failed.Add(1)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("store booking %s from %s: %v", fact.ID, delivery, err)
		return
	}
	if inserted {
		c.ingested.Add(1)
	} else {
		c.duplicates.Add(1)
	}
	span.SetAttributes(attribute.String("booking.id", fact.ID), attribute.Bool("history.inserted", inserted))

	if err := delivery.Commit(ctx); err != nil {
		log.Printf("commit %s: %v", delivery, err)
	}
}

// RecordFromFact maps a fact to a history record processed at now.
func RecordFromFact(fact bookingfact.Fact, now time.Time) (storage.Record, error) {
	createdAt, err := fact.CreatedTime()
	if err != nil {
		return storage.Record{}, err
	}
	return storage.Record{
		BookingID:        fact.ID,
		UserID:           fact.UserID,
		HotelID:          fact.HotelID,
		PromoCode:        fact.PromoCode,
		Discount:         decimal.NewFromFloat(fact.DiscountPercent).Round(2),
		Price:            decimal.NewFromFloat(fact.Price).Round(2),
		CreatedAt:        createdAt,
		EventProcessedAt: now.UTC(),
	}, nil
}
