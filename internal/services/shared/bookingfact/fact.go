// Package bookingfact defines the BookingCreated fact exchanged between the
// booking service and the history service.
package bookingfact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker"
)

const (
	// Topic is the log topic facts are published to.
	Topic = "BookingCreated"
	// EventType labels outbox rows and message headers.
	EventType = "booking.created"
	// ConsumerGroup is the fixed group of the history projection so
	// restarts resume from the committed position.
	ConsumerGroup = "booking-history-service"
	// CreatedAtLayout is the UTC second-precision timestamp on the wire.
	CreatedAtLayout = "2006-01-02T15:04:05Z"
)

// ErrMalformed marks a message that cannot be decoded into a Fact.
var ErrMalformed = errors.New("malformed booking fact")

// Fact is the immutable BookingCreated record. DiscountPercent is an
// absolute currency amount subtracted from the base price.
type Fact struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	HotelID         string  `json:"hotelId"`
	PromoCode       string  `json:"promoCode"`
	DiscountPercent float64 `json:"discountPercent"`
	Price           float64 `json:"price"`
	CreatedAt       string  `json:"createdAt"`
}

// BookingID formats a store-assigned booking id as a fact id.
func BookingID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FormatCreatedAt renders t in the wire layout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// CreatedTime parses CreatedAt. RFC 3339 with offsets or fractional
// seconds is accepted as well as the canonical layout.
func (f Fact) CreatedTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(f.CreatedAt))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: createdAt %q: %v", ErrMalformed, f.CreatedAt, err)
	}
	return t.UTC(), nil
}

// DedupeKey is the key outbox rows and history records are unique on.
func (f Fact) DedupeKey() string {
	return "booking:" + f.ID
}

// Encode serializes the fact as JSON.
func Encode(f Fact) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode booking fact: %w", err)
	}
	return data, nil
}

// Decode parses and validates a fact. Errors wrap ErrMalformed.
func Decode(data []byte) (Fact, error) {
	var f Fact
	if err := json.Unmarshal(data, &f); err != nil {
		return Fact{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case strings.TrimSpace(f.ID) == "":
		return Fact{}, fmt.Errorf("%w: id is required", ErrMalformed)
	case strings.TrimSpace(f.UserID) == "":
		return Fact{}, fmt.Errorf("%w: userId is required", ErrMalformed)
	case strings.TrimSpace(f.HotelID) == "":
		return Fact{}, fmt.Errorf("%w: hotelId is required", ErrMalformed)
	}
	if _, err := f.CreatedTime(); err != nil {
		return Fact{}, err
	}
	return f, nil
}

// Message wraps an encoded fact for publication. The message has no key.
func Message(f Fact) (broker.Message, error) {
	data, err := Encode(f)
	if err != nil {
		return broker.Message{}, err
	}
	return broker.Message{
		Topic: Topic,
		Value: data,
		Headers: map[string]string{
			broker.HeaderEventType: EventType,
			broker.HeaderFactID:    f.ID,
		},
	}, nil
}
