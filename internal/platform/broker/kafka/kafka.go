// Package kafka implements the broker contracts on Apache Kafka using
// franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hotelio/bookings/internal/platform/broker"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig configures a Producer.
type ProducerConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Producer publishes with all-in-sync-replica acknowledgments and
// idempotent writes, so retries inside one producer session never
// duplicate a record.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer builds a producer. Extra options are appended after the
// defaults and may override them.
func NewProducer(cfg ProducerConfig, opts ...kgo.Opt) (*Producer, error) {
	brokers, err := validate(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if id := strings.TrimSpace(cfg.ClientID); id != "" {
		base = append(base, kgo.ClientID(id))
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("new kafka producer: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic}, nil
}

// Publish produces msg and waits for the broker acknowledgment. A nil key
// leaves partition choice to the client partitioner.
func (p *Producer) Publish(ctx context.Context, msg broker.Message) error {
	if p == nil || p.client == nil {
		return errors.New("kafka producer is not configured")
	}
	topic := msg.Topic
	if topic == "" {
		topic = p.topic
	}
	record := &kgo.Record{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: toRecordHeaders(msg.Headers),
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Close flushes nothing; Publish is synchronous.
func (p *Producer) Close() error {
	if p != nil && p.client != nil {
		p.client.Close()
	}
	return nil
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	Group    string
	ClientID string
}

// Consumer reads one topic as a member of a consumer group. Auto-commit is
// disabled; offsets move only through Delivery.Commit. A group without a
// committed offset starts at the earliest record.
type Consumer struct {
	client *kgo.Client
}

// NewConsumer joins cfg.Group on cfg.Topic.
func NewConsumer(cfg ConsumerConfig, opts ...kgo.Opt) (*Consumer, error) {
	brokers, err := validate(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Group) == "" {
		return nil, errors.New("kafka consumer group is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	}
	if id := strings.TrimSpace(cfg.ClientID); id != "" {
		base = append(base, kgo.ClientID(id))
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("new kafka consumer: %w", err)
	}
	return &Consumer{client: client}, nil
}

// Poll returns exactly one record. Fetch errors are returned to the caller.
func (c *Consumer) Poll(ctx context.Context) (broker.Delivery, error) {
	for {
		fetches := c.client.PollRecords(ctx, 1)
		if fetches.IsClientClosed() {
			return broker.Delivery{}, broker.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return broker.Delivery{}, err
		}
		var fetchErr error
		fetches.EachError(func(topic string, partition int32, err error) {
			if fetchErr == nil {
				fetchErr = fmt.Errorf("fetch %s/%d: %w", topic, partition, err)
			}
		})
		if fetchErr != nil {
			return broker.Delivery{}, fetchErr
		}
		iter := fetches.RecordIter()
		if iter.Done() {
			continue
		}
		record := iter.Next()
		return broker.NewDelivery(
			record.Topic,
			record.Partition,
			record.Offset,
			record.Value,
			fromRecordHeaders(record.Headers),
			func(ctx context.Context) error {
				if err := c.client.CommitRecords(ctx, record); err != nil {
					return fmt.Errorf("commit %s/%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
				}
				return nil
			},
		), nil
	}
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() error {
	if c != nil && c.client != nil {
		c.client.Close()
	}
	return nil
}

func validate(brokers []string, topic string) ([]string, error) {
	seeds := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			seeds = append(seeds, b)
		}
	}
	if len(seeds) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka topic is required")
	}
	return seeds, nil
}

func toRecordHeaders(headers map[string]string) []kgo.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]kgo.RecordHeader, 0, len(keys))
	for _, k := range keys {
		out = append(out, kgo.RecordHeader{Key: k, Value: []byte(headers[k])})
	}
	return out
}

func fromRecordHeaders(headers []kgo.RecordHeader) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

var (
	_ broker.Publisher  = (*Producer)(nil)
	_ broker.Subscriber = (*Consumer)(nil)
)
