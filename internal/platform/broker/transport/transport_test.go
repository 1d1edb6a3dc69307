package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaBrokersDefaultToDiscovery(t *testing.T) {
	assert.Equal(t, []string{"kafka:9092"}, Config{}.kafkaBrokers())
	assert.Equal(t, []string{"a:1", "b:2"}, Config{KafkaBrokers: []string{" a:1", "", "b:2 "}}.kafkaBrokers())
}

func TestUnknownKindIsRejected(t *testing.T) {
	cfg := Config{Kind: "carrier-pigeon"}
	_, err := NewPublisher(cfg, "BookingCreated", "test")
	require.Error(t, err)
	_, err = NewSubscriber(cfg, "BookingCreated", "group", "test")
	require.Error(t, err)
}

func TestKafkaPublisherOpensLazily(t *testing.T) {
	pub, err := NewPublisher(Config{Kind: "kafka", KafkaBrokers: []string{"127.0.0.1:1"}}, "BookingCreated", "test")
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestAMQPSubscriberValidatesBeforeDialing(t *testing.T) {
	_, err := NewSubscriber(Config{Kind: "amqp", AMQPURL: "amqp://127.0.0.1:1/"}, "", "group", "test")
	require.Error(t, err)
}
