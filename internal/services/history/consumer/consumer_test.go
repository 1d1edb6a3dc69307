package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/hotelio/bookings/internal/platform/broker/brokertest"
	"github.com/hotelio/bookings/internal/services/history/storage"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]storage.Record
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]storage.Record)}
}

func (s *memoryStore) AppendRecord(_ context.Context, record storage.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.records[record.BookingID]; ok {
		return false, nil
	}
	record.ID = int64(len(s.records) + 1)
	s.records[record.BookingID] = record
	return true, nil
}

func (s *memoryStore) ListRecords(context.Context) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

func (s *memoryStore) ListRecordsByUser(ctx context.Context, userID string) ([]storage.Record, error) {
	all, _ := s.ListRecords(ctx)
	var out []storage.Record
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) GetStats(context.Context) (storage.Stats, error) {
	return storage.Stats{}, nil
}

func (s *memoryStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func publishFact(t *testing.T, log *brokertest.Log, fact bookingfact.Fact) {
	t.Helper()
	msg, err := bookingfact.Message(fact)
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	if err := log.Publisher().Publish(context.Background(), msg); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func publishRaw(t *testing.T, log *brokertest.Log, value string) {
	t.Helper()
	if err := log.Publisher().Publish(context.Background(), broker.Message{Topic: bookingfact.Topic, Value: []byte(value)}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func sampleFact(id string) bookingfact.Fact {
	return bookingfact.Fact{
		ID:              id,
		UserID:          "u1",
		HotelID:         "h1",
		PromoCode:       "PROMO1",
		DiscountPercent: 15,
		Price:           65,
		CreatedAt:       "2026-03-01T12:00:00Z",
	}
}

type running struct {
	consumer *Consumer
	cancel   context.CancelFunc
	done     chan error
}

func start(t *testing.T, log *brokertest.Log, store storage.Store) *running {
	t.Helper()
	c, err := New(log.NewSubscriber(bookingfact.ConsumerGroup, bookingfact.Topic), store, Config{PollErrorDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &running{consumer: c, cancel: cancel, done: make(chan error, 1)}
	go func() { r.done <- c.Run(ctx) }()
	t.Cleanup(func() { r.stop(t) })
	return r
}

func (r *running) stop(t *testing.T) {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		r.done <- nil
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	log := brokertest.NewLog()
	if _, err := New(nil, newMemoryStore(), Config{}); err == nil {
		t.Fatal("expected error for nil subscriber")
	}
	if _, err := New(log.NewSubscriber("g", "t"), nil, Config{}); err == nil {
		t.Fatal("expected error for nil store")
	}
	c, err := New(log.NewSubscriber("g", "t"), newMemoryStore(), Config{})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	if c.cfg.PollErrorDelay != time.Second {
		t.Fatalf("poll error delay = %s, want 1s", c.cfg.PollErrorDelay)
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %s, want idle", c.State())
	}
}

func TestConsumerIngestsAndCommits(t *testing.T) {
	log := brokertest.NewLog()
	store := newMemoryStore()
	publishFact(t, log, sampleFact("1"))
	r := start(t, log, store)

	waitFor(t, "commit", func() bool { return log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic) == 1 })
	if r.consumer.State() != StateRunning {
		t.Fatalf("state = %s, want running", r.consumer.State())
	}
	records, _ := store.ListRecords(context.Background())
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	got := records[0]
	if got.BookingID != "1" || got.UserID != "u1" || got.HotelID != "h1" || got.PromoCode != "PROMO1" {
		t.Fatalf("record = %+v", got)
	}
	if got.Price.String() != "65" || got.Discount.String() != "15" {
		t.Fatalf("price/discount = %s/%s, want 65/15", got.Price, got.Discount)
	}
	if !got.CreatedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("created at = %v", got.CreatedAt)
	}
	if got.EventProcessedAt.IsZero() {
		t.Fatal("expected event processed at")
	}
}

func TestConsumerReplayProducesOneRecord(t *testing.T) {
	log := brokertest.NewLog()
	store := newMemoryStore()
	publishFact(t, log, sampleFact("1"))
	publishFact(t, log, sampleFact("1"))
	r := start(t, log, store)

	waitFor(t, "both commits", func() bool { return log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic) == 2 })
	if got := store.count(); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
	counts := r.consumer.Counts()
	if counts.Ingested != 1 || counts.Duplicates != 1 {
		t.Fatalf("counts = %+v, want one ingested and one duplicate", counts)
	}
}

func TestConsumerSkipsMalformedWithoutCommit(t *testing.T) {
	log := brokertest.NewLog()
	store := newMemoryStore()
	publishRaw(t, log, "{not json")
	publishRaw(t, log, `{"id":"9","userId":"u1","hotelId":"h1","createdAt":"yesterday"}`)
	r := start(t, log, store)

	waitFor(t, "malformed handled", func() bool { return r.consumer.Counts().Malformed == 2 })
	if got := log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic); got != 0 {
		t.Fatalf("committed = %d, want 0", got)
	}
	if got := store.count(); got != 0 {
		t.Fatalf("records = %d, want 0", got)
	}

	publishFact(t, log, sampleFact("2"))
	waitFor(t, "valid fact committed", func() bool { return log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic) == 3 })
}

func TestConsumerStoreFailureIsNotCommitted(t *testing.T) {
	log := brokertest.NewLog()
	store := newMemoryStore()
	store.setErr(errors.New("history db down"))
	publishFact(t, log, sampleFact("1"))
	r := start(t, log, store)

	waitFor(t, "failure handled", func() bool { return r.consumer.Counts().Failed == 1 })
	if got := log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic); got != 0 {
		t.Fatalf("committed = %d, want 0", got)
	}
	r.stop(t)

	store.setErr(nil)
	start(t, log, store)
	waitFor(t, "redelivered fact committed", func() bool { return log.Committed(bookingfact.ConsumerGroup, bookingfact.Topic) == 1 })
	if got := store.count(); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
}

func TestConsumerStopsOnCancel(t *testing.T) {
	log := brokertest.NewLog()
	r := start(t, log, newMemoryStore())
	waitFor(t, "running", func() bool { return r.consumer.State() == StateRunning })

	r.stop(t)
	if r.consumer.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", r.consumer.State())
	}
	if err := r.consumer.Run(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second run err = %v, want ErrAlreadyStarted", err)
	}
}

type flakySubscriber struct {
	mu    sync.Mutex
	polls int
	inner broker.Subscriber
}

func (s *flakySubscriber) Poll(ctx context.Context) (broker.Delivery, error) {
	s.mu.Lock()
	s.polls++
	first := s.polls == 1
	s.mu.Unlock()
	if first {
		return broker.Delivery{}, errors.New("fetch failed")
	}
	return s.inner.Poll(ctx)
}

func (s *flakySubscriber) Close() error { return s.inner.Close() }

func TestConsumerRecoversFromPollError(t *testing.T) {
	log := brokertest.NewLog()
	store := newMemoryStore()
	publishFact(t, log, sampleFact("1"))
	sub := &flakySubscriber{inner: log.NewSubscriber(bookingfact.ConsumerGroup, bookingfact.Topic)}
	c, err := New(sub, store, Config{PollErrorDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitFor(t, "ingest after poll error", func() bool { return store.count() == 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRecordFromFact(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.FixedZone("X", 3600))
	fact := sampleFact("5")
	fact.Price = 64.999
	record, err := RecordFromFact(fact, now)
	if err != nil {
		t.Fatalf("record from fact: %v", err)
	}
	if record.Price.String() != "65" {
		t.Fatalf("price = %s, want rounded 65", record.Price)
	}
	if record.EventProcessedAt.Location() != time.UTC {
		t.Fatalf("processed at location = %v, want UTC", record.EventProcessedAt.Location())
	}

	fact.CreatedAt = "not a time"
	if _, err := RecordFromFact(fact, now); !errors.Is(err, bookingfact.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{StateIdle: "idle", StateRunning: "running", StateDraining: "draining", StateStopped: "stopped", State(9): "state(9)"}
	for state, name := range want {
		if state.String() != name {
			t.Fatalf("String(%d) = %q, want %q", state, state.String(), name)
		}
	}
}
