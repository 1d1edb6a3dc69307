// Package storage defines persistence contracts for the booking history
// projection.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one ingested BookingCreated fact. BookingID is unique, so a
// replayed fact never produces a second record.
type Record struct {
	ID               int64
	BookingID        string
	UserID           string
	HotelID          string
	PromoCode        string
	Discount         decimal.Decimal
	Price            decimal.Decimal
	CreatedAt        time.Time
	EventProcessedAt time.Time
}

// Stats aggregates every record. Zero values when the store is empty.
type Stats struct {
	TotalBookings int64
	TotalRevenue  decimal.Decimal
	AveragePrice  decimal.Decimal
}

// Store persists and queries history records.
type Store interface {
	// AppendRecord inserts record unless its booking id is already stored.
	// inserted reports whether a row was written.
	AppendRecord(ctx context.Context, record Record) (inserted bool, err error)
	// ListRecords returns every record, newest booking first.
	ListRecords(ctx context.Context) ([]Record, error)
	// ListRecordsByUser returns the user's records, newest booking first.
	ListRecordsByUser(ctx context.Context, userID string) ([]Record, error)
	GetStats(ctx context.Context) (Stats, error)
}
