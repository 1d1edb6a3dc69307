// Package brokertest provides an in-memory, single-partition fact log that
// satisfies broker.Publisher and broker.Subscriber for tests.
package brokertest

import (
	"context"
	"maps"
	"sync"

	"github.com/hotelio/bookings/internal/platform/broker"
)

type groupTopic struct {
	group string
	topic string
}

// Log is an append-only in-memory log with consumer-group offsets.
// Offsets committed by a group survive NewSubscriber, mirroring a restart.
type Log struct {
	mu         sync.Mutex
	topics     map[string][]broker.Message
	committed  map[groupTopic]int64
	publishErr error
	appended   chan struct{}
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{
		topics:    make(map[string][]broker.Message),
		committed: make(map[groupTopic]int64),
		appended:  make(chan struct{}),
	}
}

// FailPublish makes every following Publish return err until called with nil.
func (l *Log) FailPublish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.publishErr = err
}

// Messages returns a copy of everything published to topic.
func (l *Log) Messages(topic string) []broker.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]broker.Message, len(l.topics[topic]))
	copy(out, l.topics[topic])
	return out
}

// Committed returns the next offset group will read from topic after a restart.
func (l *Log) Committed(group, topic string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed[groupTopic{group, topic}]
}

// Publisher returns a broker.Publisher appending to the log.
func (l *Log) Publisher() broker.Publisher {
	return publisher{log: l}
}

// NewSubscriber starts reading topic for group from its committed offset.
func (l *Log) NewSubscriber(group, topic string) *Subscriber {
	return &Subscriber{
		log:   l,
		group: group,
		topic: topic,
		next:  l.Committed(group, topic),
		done:  make(chan struct{}),
	}
}

func (l *Log) append(msg broker.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.publishErr != nil {
		return l.publishErr
	}
	msg.Value = append([]byte(nil), msg.Value...)
	msg.Headers = maps.Clone(msg.Headers)
	l.topics[msg.Topic] = append(l.topics[msg.Topic], msg)
	close(l.appended)
	l.appended = make(chan struct{})
	return nil
}

func (l *Log) commit(key groupTopic, next int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if next > l.committed[key] {
		l.committed[key] = next
	}
}

type publisher struct {
	log *Log
}

func (p publisher) Publish(ctx context.Context, msg broker.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.log.append(msg)
}

func (p publisher) Close() error { return nil }

// Subscriber reads one topic for one group.
type Subscriber struct {
	log   *Log
	group string
	topic string
	next  int64

	closeOnce sync.Once
	done      chan struct{}
}

// Poll returns the next message after the in-session position.
func (s *Subscriber) Poll(ctx context.Context) (broker.Delivery, error) {
	for {
		select {
		case <-s.done:
			return broker.Delivery{}, broker.ErrClosed
		default:
		}

		s.log.mu.Lock()
		records := s.log.topics[s.topic]
		if s.next < int64(len(records)) {
			offset := s.next
			msg := records[offset]
			s.next++
			s.log.mu.Unlock()
			key := groupTopic{s.group, s.topic}
			return broker.NewDelivery(s.topic, 0, offset, msg.Value, msg.Headers, func(context.Context) error {
				s.log.commit(key, offset+1)
				return nil
			}), nil
		}
		wait := s.log.appended
		s.log.mu.Unlock()

		select {
		case <-ctx.Done():
			return broker.Delivery{}, ctx.Err()
		case <-s.done:
			return broker.Delivery{}, broker.ErrClosed
		case <-wait:
		}
	}
}

// Close stops the subscriber; pending Polls return broker.ErrClosed.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

var (
	_ broker.Publisher  = publisher{}
	_ broker.Subscriber = (*Subscriber)(nil)
)
