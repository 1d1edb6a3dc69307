// Package main runs the bookingctl client.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	bookingctl "github.com/hotelio/bookings/internal/cmd/bookingctl"
	entrypoint "github.com/hotelio/bookings/internal/platform/cmd"
	"github.com/hotelio/bookings/internal/platform/config"
)

func main() {
	cfg, err := bookingctl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBookingCtl, func(ctx context.Context) error {
		return bookingctl.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		config.Exitf("bookingctl: %v", err)
	}
}
