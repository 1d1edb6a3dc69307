// Package broker defines the publish/subscribe contracts the booking
// pipeline uses against its fact log, independent of the transport.
package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Supported transports.
const (
	KindKafka = "kafka"
	KindAMQP  = "amqp"
)

// Well-known header names carried on every fact message.
const (
	HeaderEventType = "event-type"
	HeaderFactID    = "fact-id"
)

// ErrClosed is returned by Poll after the subscriber has been closed.
var ErrClosed = errors.New("broker: subscriber closed")

// Message is one record handed to a Publisher. Key may be nil, in which
// case the transport chooses placement.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Publisher durably hands messages to the log. A nil error means the
// broker acknowledged the message.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber yields deliveries one at a time in log order per partition.
type Subscriber interface {
	// Poll blocks until a delivery is available or ctx ends.
	Poll(ctx context.Context) (Delivery, error)
	Close() error
}

// Delivery is a received message plus the means to acknowledge it.
type Delivery struct {
	Topic     string
	Partition int32
	Offset    int64
	Value     []byte
	Headers   map[string]string

	commit func(context.Context) error
}

// NewDelivery builds a delivery whose Commit invokes commit.
func NewDelivery(topic string, partition int32, offset int64, value []byte, headers map[string]string, commit func(context.Context) error) Delivery {
	return Delivery{
		Topic:     topic,
		Partition: partition,
		Offset:    offset,
		Value:     value,
		Headers:   headers,
		commit:    commit,
	}
}

// Commit acknowledges the delivery so it is not redelivered after restart.
func (d Delivery) Commit(ctx context.Context) error {
	if d.commit == nil {
		return fmt.Errorf("commit %s/%d@%d: delivery is not committable", d.Topic, d.Partition, d.Offset)
	}
	return d.commit(ctx)
}

// String identifies the delivery for logs.
func (d Delivery) String() string {
	return fmt.Sprintf("%s/%d@%d", d.Topic, d.Partition, d.Offset)
}

// ParseKind normalizes a transport name.
func ParseKind(value string) (string, error) {
	switch kind := strings.ToLower(strings.TrimSpace(value)); kind {
	case "", KindKafka:
		return KindKafka, nil
	case KindAMQP, "rabbitmq":
		return KindAMQP, nil
	default:
		return "", fmt.Errorf("unsupported broker %q", value)
	}
}
