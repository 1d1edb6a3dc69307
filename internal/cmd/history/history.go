// Package history parses history command flags and launches the booking
// history service.
package history

import (
	"context"
	"flag"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker/transport"
	entrypoint "github.com/hotelio/bookings/internal/platform/cmd"
	historyserver "github.com/hotelio/bookings/internal/services/history/app"
)

// Config holds history command configuration.
type Config struct {
	HTTPAddr       string        `env:"HOTELIO_HISTORY_HTTP_ADDR" envDefault:":8083"`
	DBDriver       string        `env:"HOTELIO_HISTORY_DB_DRIVER" envDefault:"sqlite"`
	DBDSN          string        `env:"HOTELIO_HISTORY_DB_DSN" envDefault:"data/history.db"`
	PollErrorDelay time.Duration `env:"HOTELIO_HISTORY_POLL_ERROR_DELAY" envDefault:"1s"`

	transport.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The history HTTP listen address")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "History database driver: postgres or sqlite")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "History database DSN or SQLite path")
	fs.StringVar(&cfg.Kind, "broker", cfg.Kind, "Fact broker: kafka or amqp")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the history service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHistory, func(ctx context.Context) error {
		return historyserver.Run(ctx, historyserver.Config{
			HTTPAddr:       cfg.HTTPAddr,
			DBDriver:       cfg.DBDriver,
			DBDSN:          cfg.DBDSN,
			Broker:         cfg.Config,
			PollErrorDelay: cfg.PollErrorDelay,
		})
	})
}
