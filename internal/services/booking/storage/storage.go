// Package storage defines persistence contracts for the booking service.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a requested booking or outbox record is missing, or
// that a guarded outbox update matched no leased row.
var ErrNotFound = errors.New("record not found")

// Booking is one persisted booking. Discount is the absolute amount taken
// off the base price; Price may be negative.
type Booking struct {
	ID        int64
	UserID    string
	HotelID   string
	PromoCode string
	Discount  decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutboxBuilder derives the outbox event for a booking once its id is known.
type OutboxBuilder func(Booking) (OutboxEvent, error)

// BookingStore persists bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	// CreateBookingWithOutbox writes the booking and the event returned by
	// build in one transaction; neither is stored when either fails.
	CreateBookingWithOutbox(ctx context.Context, booking Booking, build OutboxBuilder) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	// ListBookingsByUser returns the user's bookings newest first.
	ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// OutboxStatus is the delivery state of one outbox event.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusLeased    OutboxStatus = "leased"
	OutboxStatusSucceeded OutboxStatus = "succeeded"
	OutboxStatusDead      OutboxStatus = "dead"
)

// OutboxEvent is one fact waiting to be relayed to the log.
type OutboxEvent struct {
	ID             string
	EventType      string
	PayloadJSON    []byte
	DedupeKey      string
	Status         OutboxStatus
	AttemptCount   int
	NextAttemptAt  time.Time
	LeaseOwner     string
	LeaseExpiresAt *time.Time
	LastError      string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutboxStore leases and settles outbox events. Mark operations only
// affect rows leased by consumer and return ErrNotFound otherwise.
type OutboxStore interface {
	GetOutboxEvent(ctx context.Context, id string) (OutboxEvent, error)
	LeaseOutboxEvents(ctx context.Context, consumer string, limit int, now time.Time, leaseTTL time.Duration) ([]OutboxEvent, error)
	MarkOutboxSucceeded(ctx context.Context, id string, consumer string, processedAt time.Time) error
	MarkOutboxRetry(ctx context.Context, id string, consumer string, nextAttemptAt time.Time, lastError string) error
	MarkOutboxDead(ctx context.Context, id string, consumer string, lastError string, processedAt time.Time) error
}
