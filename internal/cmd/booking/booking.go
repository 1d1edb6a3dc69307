// Package booking parses booking command flags and launches the booking
// gRPC server.
package booking

import (
	"context"
	"flag"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker/transport"
	entrypoint "github.com/hotelio/bookings/internal/platform/cmd"
	"github.com/hotelio/bookings/internal/platform/discovery"
	bookingserver "github.com/hotelio/bookings/internal/services/booking/app"
	"github.com/hotelio/bookings/internal/services/booking/relay"
)

// Config holds booking command configuration.
type Config struct {
	Addr               string        `env:"HOTELIO_BOOKING_ADDR" envDefault:":8082"`
	DBPath             string        `env:"HOTELIO_BOOKING_DB_PATH" envDefault:"data/booking.db"`
	MonolithURL        string        `env:"HOTELIO_MONOLITH_URL"`
	ProviderTimeout    time.Duration `env:"HOTELIO_BOOKING_PROVIDER_TIMEOUT" envDefault:"5s"`
	FactDelivery       string        `env:"HOTELIO_BOOKING_FACT_DELIVERY" envDefault:"outbox"`
	SerializeHotel     bool          `env:"HOTELIO_BOOKING_SERIALIZE_HOTEL"`
	RelayConsumer      string        `env:"HOTELIO_BOOKING_RELAY_CONSUMER"`
	RelayPollInterval  time.Duration `env:"HOTELIO_BOOKING_RELAY_POLL_INTERVAL" envDefault:"1s"`
	RelayLeaseTTL      time.Duration `env:"HOTELIO_BOOKING_RELAY_LEASE_TTL" envDefault:"30s"`
	RelayBatchSize     int           `env:"HOTELIO_BOOKING_RELAY_BATCH_SIZE" envDefault:"32"`
	RelayMaxAttempts   int           `env:"HOTELIO_BOOKING_RELAY_MAX_ATTEMPTS" envDefault:"8"`
	RelayRetryBackoff  time.Duration `env:"HOTELIO_BOOKING_RELAY_RETRY_BACKOFF" envDefault:"1s"`
	RelayRetryMaxDelay time.Duration `env:"HOTELIO_BOOKING_RELAY_RETRY_MAX_DELAY" envDefault:"5m"`

	transport.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.MonolithURL = discovery.OrDefaultHTTPBaseURL(cfg.MonolithURL, discovery.ServiceMonolith)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The booking gRPC listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The booking SQLite database path")
	fs.StringVar(&cfg.MonolithURL, "monolith-url", cfg.MonolithURL, "Base URL of the fact provider monolith")
	fs.DurationVar(&cfg.ProviderTimeout, "provider-timeout", cfg.ProviderTimeout, "Timeout for one provider lookup")
	fs.StringVar(&cfg.FactDelivery, "fact-delivery", cfg.FactDelivery, "Fact delivery mode: outbox or direct")
	fs.BoolVar(&cfg.SerializeHotel, "serialize-hotel", cfg.SerializeHotel, "Serialize bookings per hotel")
	fs.StringVar(&cfg.Kind, "broker", cfg.Kind, "Fact broker: kafka or amqp")
	fs.StringVar(&cfg.RelayConsumer, "relay-consumer", cfg.RelayConsumer, "Outbox relay lease owner name")
	fs.DurationVar(&cfg.RelayPollInterval, "relay-poll-interval", cfg.RelayPollInterval, "Outbox relay poll interval")
	fs.IntVar(&cfg.RelayMaxAttempts, "relay-max-attempts", cfg.RelayMaxAttempts, "Publish attempts before an outbox row is dead")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the booking server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBooking, func(ctx context.Context) error {
		return bookingserver.Run(ctx, bookingserver.Config{
			Addr:            cfg.Addr,
			DBPath:          cfg.DBPath,
			MonolithURL:     cfg.MonolithURL,
			ProviderTimeout: cfg.ProviderTimeout,
			FactDelivery:    cfg.FactDelivery,
			SerializeHotel:  cfg.SerializeHotel,
			Broker:          cfg.Config,
			Relay: relay.Config{
				Consumer:      cfg.RelayConsumer,
				PollInterval:  cfg.RelayPollInterval,
				LeaseTTL:      cfg.RelayLeaseTTL,
				BatchSize:     cfg.RelayBatchSize,
				MaxAttempts:   cfg.RelayMaxAttempts,
				RetryBackoff:  cfg.RelayRetryBackoff,
				RetryMaxDelay: cfg.RelayRetryMaxDelay,
			},
		})
	})
}
