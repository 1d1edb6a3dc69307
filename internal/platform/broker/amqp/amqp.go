// Package amqp implements the broker contracts on RabbitMQ. Topics map to
// routing keys on one durable topic exchange; a consumer group maps to one
// durable queue.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hotelio/bookings/internal/platform/broker"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the exchange fact topics are routed through.
const DefaultExchange = "hotelio.facts"

// DefaultPrefetch bounds unacknowledged deliveries per consumer. A message
// skipped without commit holds one slot until the channel closes.
const DefaultPrefetch = 32

// ErrNacked is returned when the broker negatively confirms a publish.
var ErrNacked = errors.New("amqp: publish not confirmed by broker")

type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func open(url, exchange string) (*session, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is required")
	}
	if strings.TrimSpace(exchange) == "" {
		return nil, errors.New("amqp exchange is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &session{conn: conn, ch: ch}, nil
}

func (s *session) close() error {
	if s == nil {
		return nil
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	URL      string
	Exchange string
}

// Publisher publishes persistent messages in confirm mode and waits for
// the broker ack of each one.
type Publisher struct {
	mu       sync.Mutex
	session  *session
	exchange string
}

// NewPublisher dials the broker and enables publisher confirms.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	s, err := open(cfg.URL, exchange)
	if err != nil {
		return nil, err
	}
	if err := s.ch.Confirm(false); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &Publisher{session: s, exchange: exchange}, nil
}

// Publish routes msg by its topic and blocks until confirmed.
func (p *Publisher) Publish(ctx context.Context, msg broker.Message) error {
	if msg.Topic == "" {
		return errors.New("amqp publish: topic is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	confirm, err := p.session.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, msg.Topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.Headers[broker.HeaderFactID],
		Type:         msg.Headers[broker.HeaderEventType],
		Headers:      toTable(msg.Headers),
		Body:         msg.Value,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm %s: %w", msg.Topic, err)
	}
	if !acked {
		return ErrNacked
	}
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.close()
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Topic    string
	Group    string
	Prefetch int
}

// Consumer reads the group queue with manual acknowledgments.
type Consumer struct {
	session    *session
	queue      string
	deliveries <-chan amqp.Delivery
	stop       context.CancelFunc
	closeOnce  sync.Once
	closeErr   error
}

// NewConsumer declares the group queue, binds it to the topic, and starts
// consuming.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if strings.TrimSpace(cfg.Topic) == "" || strings.TrimSpace(cfg.Group) == "" {
		return nil, errors.New("amqp consumer topic and group are required")
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	s, err := open(cfg.URL, exchange)
	if err != nil {
		return nil, err
	}
	fail := func(format string, err error) (*Consumer, error) {
		_ = s.close()
		return nil, fmt.Errorf(format, err)
	}
	if err := s.ch.Qos(prefetch, 0, false); err != nil {
		return fail("set qos: %w", err)
	}
	q, err := s.ch.QueueDeclare(cfg.Group, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue: %w", err)
	}
	if err := s.ch.QueueBind(q.Name, cfg.Topic, exchange, false, nil); err != nil {
		return fail("bind queue: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	deliveries, err := s.ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		cancel()
		return fail("consume: %w", err)
	}
	return &Consumer{session: s, queue: q.Name, deliveries: deliveries, stop: cancel}, nil
}

// Poll waits for the next delivery. Commit acks it.
func (c *Consumer) Poll(ctx context.Context) (broker.Delivery, error) {
	select {
	case <-ctx.Done():
		return broker.Delivery{}, ctx.Err()
	case d, ok := <-c.deliveries:
		if !ok {
			return broker.Delivery{}, broker.ErrClosed
		}
		return broker.NewDelivery(d.RoutingKey, 0, int64(d.DeliveryTag), d.Body, fromTable(d.Headers), func(context.Context) error {
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("ack %d: %w", d.DeliveryTag, err)
			}
			return nil
		}), nil
	}
}

// Close cancels the consumer; unacked deliveries return to the queue.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.stop()
		c.closeErr = c.session.close()
	})
	return c.closeErr
}

func toTable(headers map[string]string) amqp.Table {
	if len(headers) == 0 {
		return nil
	}
	table := make(amqp.Table, len(headers))
	for k, v := range headers {
		table[k] = v
	}
	return table
}

func fromTable(table amqp.Table) map[string]string {
	if len(table) == 0 {
		return nil
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		switch value := v.(type) {
		case string:
			out[k] = value
		case []byte:
			out[k] = string(value)
		default:
			out[k] = fmt.Sprint(value)
		}
	}
	return out
}

var (
	_ broker.Publisher  = (*Publisher)(nil)
	_ broker.Subscriber = (*Consumer)(nil)
)
