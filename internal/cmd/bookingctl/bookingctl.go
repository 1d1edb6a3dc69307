// Package bookingctl implements a small client for the booking gRPC
// service.
package bookingctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	bookingv1 "github.com/hotelio/bookings/api/booking/v1"
	entrypoint "github.com/hotelio/bookings/internal/platform/cmd"
	"github.com/hotelio/bookings/internal/platform/discovery"
	platformgrpc "github.com/hotelio/bookings/internal/platform/grpc"
	"github.com/hotelio/bookings/internal/platform/timeouts"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Config holds bookingctl configuration.
type Config struct {
	Addr        string        `env:"HOTELIO_BOOKING_CLIENT_ADDR"`
	DialTimeout time.Duration `env:"HOTELIO_BOOKING_CLIENT_DIAL_TIMEOUT" envDefault:"2s"`
	Timeout     time.Duration `env:"HOTELIO_BOOKING_CLIENT_TIMEOUT" envDefault:"10s"`

	// Args are the subcommand and its flags.
	Args []string
}

// ParseConfig parses environment and global flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Addr = discovery.OrDefaultGRPCAddr(cfg.Addr, discovery.ServiceBooking)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The booking gRPC server address")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "gRPC dial and health timeout")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run dials the booking service and executes the subcommand in cfg.Args,
// writing the response as indented protojson to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if len(cfg.Args) == 0 {
		return errors.New("usage: bookingctl [flags] create|list [subcommand flags]")
	}
	command, err := parseCommand(cfg.Args[0], cfg.Args[1:])
	if err != nil {
		return err
	}

	conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, platformgrpc.DialConfig{
		Timeout:       cfg.DialTimeout,
		HealthService: bookingv1.BookingService_ServiceDesc.ServiceName,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.GRPCRequest
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := command(callCtx, bookingv1.NewBookingServiceClient(conn))
	if err != nil {
		return err
	}
	data, err := marshalOptions.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// Unset fields are printed so that an empty list renders as [].
var marshalOptions = protojson.MarshalOptions{Multiline: true, Indent: "  ", EmitUnpopulated: true}

type command func(context.Context, bookingv1.BookingServiceClient) (proto.Message, error)

func parseCommand(name string, args []string) (command, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	switch name {
	case "create":
		req := &bookingv1.CreateBookingRequest{}
		fs.StringVar(&req.UserId, "user", "", "User id")
		fs.StringVar(&req.HotelId, "hotel", "", "Hotel id")
		fs.StringVar(&req.PromoCode, "promo", "", "Optional promo code")
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		return func(ctx context.Context, client bookingv1.BookingServiceClient) (proto.Message, error) {
			return client.CreateBooking(ctx, req)
		}, nil
	case "list":
		req := &bookingv1.ListBookingsRequest{}
		fs.StringVar(&req.UserId, "user", "", "User id")
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		return func(ctx context.Context, client bookingv1.BookingServiceClient) (proto.Message, error) {
			return client.ListBookings(ctx, req)
		}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}
