// Package domain orchestrates booking creation: it gathers user and hotel
// facts from providers, applies the check policy, prices the booking, and
// persists it together with its BookingCreated fact.
package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hotelio/bookings/internal/platform/broker"
	apperrors "github.com/hotelio/bookings/internal/platform/errors"
	"github.com/hotelio/bookings/internal/platform/otel"
	"github.com/hotelio/bookings/internal/platform/timeouts"
	"github.com/hotelio/bookings/internal/services/booking/storage"
	"github.com/hotelio/bookings/internal/services/shared/bookingfact"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Limits count characters, not bytes, to match the store's CHECK constraints.
const (
	maxUserIDLength    = 100
	maxHotelIDLength   = 100
	maxPromoCodeLength = 50
)

// UserDirectory answers user lookups.
type UserDirectory interface {
	IsActive(ctx context.Context, userID string) (bool, error)
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
	Status(ctx context.Context, userID string) (string, error)
}

// HotelDirectory answers hotel lookups.
type HotelDirectory interface {
	IsOperational(ctx context.Context, hotelID string) (bool, error)
	IsFullyBooked(ctx context.Context, hotelID string) (bool, error)
}

// ReviewAggregator answers whether a hotel's reviews make it trusted.
type ReviewAggregator interface {
	IsTrusted(ctx context.Context, hotelID string) (bool, error)
}

// PromoRegistry resolves a promo code for a user into an absolute discount.
type PromoRegistry interface {
	Discount(ctx context.Context, code, userID string) (decimal.Decimal, error)
}

// FactDelivery selects how BookingCreated facts leave the service.
type FactDelivery string

const (
	// DeliveryOutbox stores the fact with the booking for the relay.
	DeliveryOutbox FactDelivery = "outbox"
	// DeliveryDirect publishes after the booking commits; failures are
	// logged and dropped.
	DeliveryDirect FactDelivery = "direct"
)

// ParseFactDelivery parses a delivery mode. Empty means outbox.
func ParseFactDelivery(value string) (FactDelivery, error) {
	switch FactDelivery(strings.ToLower(strings.TrimSpace(value))) {
	case "", DeliveryOutbox:
		return DeliveryOutbox, nil
	case DeliveryDirect:
		return DeliveryDirect, nil
	default:
		return "", fmt.Errorf("unknown fact delivery %q", value)
	}
}

// Deps are the collaborators of the orchestrator. Publisher is required
// only for direct delivery.
type Deps struct {
	Users     UserDirectory
	Hotels    HotelDirectory
	Reviews   ReviewAggregator
	Promos    PromoRegistry
	Store     storage.BookingStore
	Publisher broker.Publisher
}

// Config tunes the orchestrator.
type Config struct {
	Delivery FactDelivery
	// SerializeHotel holds a per-hotel lock from the fully-booked check
	// until the booking is stored.
	SerializeHotel bool
}

// CreateBookingInput is a booking request.
type CreateBookingInput struct {
	UserID    string
	HotelID   string
	PromoCode string
}

// Orchestrator creates and lists bookings.
type Orchestrator struct {
	deps       Deps
	cfg        Config
	hotelLocks *keyedLock
	clock      func() time.Time
	newEventID func() string
}

// NewOrchestrator validates deps for the configured delivery mode.
func NewOrchestrator(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Users == nil || deps.Hotels == nil || deps.Reviews == nil || deps.Promos == nil {
		return nil, fmt.Errorf("user, hotel, review, and promo providers are required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("booking store is required")
	}
	if cfg.Delivery == "" {
		cfg.Delivery = DeliveryOutbox
	}
	if cfg.Delivery == DeliveryDirect && deps.Publisher == nil {
		return nil, fmt.Errorf("direct fact delivery requires a publisher")
	}
	return &Orchestrator{
		deps:       deps,
		cfg:        cfg,
		hotelLocks: newKeyedLock(),
		clock:      time.Now,
		newEventID: uuid.NewString,
	}, nil
}

func normalizeInput(in CreateBookingInput) (CreateBookingInput, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.HotelID = strings.TrimSpace(in.HotelID)
	in.PromoCode = strings.TrimSpace(in.PromoCode)
	switch {
	case in.UserID == "":
		return in, apperrors.New(apperrors.CodeBookingInvalidRequest, "user id is required")
	case utf8.RuneCountInString(in.UserID) > maxUserIDLength:
		return in, apperrors.New(apperrors.CodeBookingInvalidRequest, fmt.Sprintf("user id exceeds %d characters", maxUserIDLength))
	case in.HotelID == "":
		return in, apperrors.New(apperrors.CodeBookingInvalidRequest, "hotel id is required")
	case utf8.RuneCountInString(in.HotelID) > maxHotelIDLength:
		return in, apperrors.New(apperrors.CodeBookingInvalidRequest, fmt.Sprintf("hotel id exceeds %d characters", maxHotelIDLength))
	case utf8.RuneCountInString(in.PromoCode) > maxPromoCodeLength:
		return in, apperrors.New(apperrors.CodeBookingInvalidRequest, fmt.Sprintf("promo code exceeds %d characters", maxPromoCodeLength))
	}
	return in, nil
}

// CreateBooking validates the user and hotel, prices the booking, and
// stores it. Precondition failures return validation errors and store
// nothing.
func (o *Orchestrator) CreateBooking(ctx context.Context, in CreateBookingInput) (storage.Booking, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return storage.Booking{}, err
	}

	ctx, span := otel.Tracer().Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.user_id", in.UserID),
		attribute.String("booking.hotel_id", in.HotelID),
	)

	if o.cfg.SerializeHotel {
		unlock, err := o.hotelLocks.Lock(ctx, in.HotelID)
		if err != nil {
			return storage.Booking{}, apperrors.Wrap(apperrors.CodeInternal, providerFailureMessage, err)
		}
		defer unlock()
	}

	facts := o.gather(ctx, in)
	if err := evaluate(facts.answers); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storage.Booking{}, err
	}

	now := o.clock().UTC()
	base := BasePrice(facts.status)
	// The stored discount and the price must agree to the cent.
	discount := facts.discount.Round(2)
	booking := storage.Booking{
		UserID:    in.UserID,
		HotelID:   in.HotelID,
		PromoCode: in.PromoCode,
		Discount:  discount,
		Price:     FinalPrice(base, discount),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := o.persist(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return storage.Booking{}, apperrors.Wrap(apperrors.CodeInternal, providerFailureMessage, err)
	}
	span.SetAttributes(attribute.Int64("booking.id", created.ID))
	return created, nil
}

// gathered holds the answers of one fan-out.
type gathered struct {
	answers  map[Check]lookup
	status   string
	discount decimal.Decimal
}

// gather runs every lookup concurrently. Lookups never cancel each other;
// the policy decides afterwards which failures matter.
func (o *Orchestrator) gather(ctx context.Context, in CreateBookingInput) gathered {
	boolChecks := map[Check]func(context.Context) (bool, error){
		CheckUserActive:       func(ctx context.Context) (bool, error) { return o.deps.Users.IsActive(ctx, in.UserID) },
		CheckUserBlacklisted:  func(ctx context.Context) (bool, error) { return o.deps.Users.IsBlacklisted(ctx, in.UserID) },
		CheckHotelOperational: func(ctx context.Context) (bool, error) { return o.deps.Hotels.IsOperational(ctx, in.HotelID) },
		CheckHotelTrusted:     func(ctx context.Context) (bool, error) { return o.deps.Reviews.IsTrusted(ctx, in.HotelID) },
		CheckHotelFullyBooked: func(ctx context.Context) (bool, error) { return o.deps.Hotels.IsFullyBooked(ctx, in.HotelID) },
	}

	results := make([]lookup, len(preconditions))
	var status string
	discount := decimal.Zero

	var g errgroup.Group
	for i, rule := range preconditions {
		run := boolChecks[rule.Check]
		g.Go(func() error {
			value, err := run(ctx)
			results[i] = lookup{value: value, err: err}
			return nil
		})
	}
	g.Go(func() error {
		value, err := o.deps.Users.Status(ctx, in.UserID)
		if err != nil {
			log.Printf("%s lookup for user %s failed (%s), using standard price: %v", CheckUserStatus, in.UserID, Policy(CheckUserStatus), err)
			return nil
		}
		status = value
		return nil
	})
	if in.PromoCode != "" {
		g.Go(func() error {
			value, err := o.deps.Promos.Discount(ctx, in.PromoCode, in.UserID)
			if err != nil {
				log.Printf("%s %q for user %s not applied (%s): %v", CheckPromo, in.PromoCode, in.UserID, Policy(CheckPromo), err)
				return nil
			}
			if value.IsNegative() {
				log.Printf("%s %q for user %s not applied: negative discount %s", CheckPromo, in.PromoCode, in.UserID, value)
				return nil
			}
			discount = value
			return nil
		})
	}
	_ = g.Wait()

	answers := make(map[Check]lookup, len(preconditions))
	for i, rule := range preconditions {
		answers[rule.Check] = results[i]
	}
	return gathered{answers: answers, status: status, discount: discount}
}

func (o *Orchestrator) persist(ctx context.Context, booking storage.Booking) (storage.Booking, error) {
	if o.cfg.Delivery == DeliveryOutbox {
		return o.deps.Store.CreateBookingWithOutbox(ctx, booking, o.outboxEvent)
	}

	created, err := o.deps.Store.CreateBooking(ctx, booking)
	if err != nil {
		return storage.Booking{}, err
	}
	o.publishDirect(ctx, created)
	return created, nil
}

// outboxEvent builds the pending fact row for a stored booking.
func (o *Orchestrator) outboxEvent(booking storage.Booking) (storage.OutboxEvent, error) {
	fact := FactFromBooking(booking)
	payload, err := bookingfact.Encode(fact)
	if err != nil {
		return storage.OutboxEvent{}, err
	}
	return storage.OutboxEvent{
		ID:          o.newEventID(),
		EventType:   bookingfact.EventType,
		PayloadJSON: payload,
		DedupeKey:   fact.DedupeKey(),
		Status:      storage.OutboxStatusPending,
	}, nil
}

// publishDirect announces a stored booking. The booking stays
// authoritative when the publish fails.
func (o *Orchestrator) publishDirect(ctx context.Context, booking storage.Booking) {
	msg, err := bookingfact.Message(FactFromBooking(booking))
	if err != nil {
		log.Printf("build booking fact %d: %v", booking.ID, err)
		return
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.BrokerPublish)
	defer cancel()
	if err := o.deps.Publisher.Publish(publishCtx, msg); err != nil {
		log.Printf("publish booking fact %d: %v", booking.ID, err)
	}
}

// ListBookings returns the user's bookings, newest first.
func (o *Orchestrator) ListBookings(ctx context.Context, userID string) ([]storage.Booking, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeBookingInvalidRequest, "user id is required")
	}
	bookings, err := o.deps.Store.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list bookings", err)
	}
	return bookings, nil
}

// FactFromBooking maps a stored booking to its BookingCreated fact.
func FactFromBooking(booking storage.Booking) bookingfact.Fact {
	return bookingfact.Fact{
		ID:              bookingfact.BookingID(booking.ID),
		UserID:          booking.UserID,
		HotelID:         booking.HotelID,
		PromoCode:       booking.PromoCode,
		DiscountPercent: booking.Discount.InexactFloat64(),
		Price:           booking.Price.InexactFloat64(),
		CreatedAt:       bookingfact.FormatCreatedAt(booking.CreatedAt),
	}
}
