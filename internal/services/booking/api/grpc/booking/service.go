// Package booking exposes the booking orchestrator as booking.v1.BookingService.
package booking

import (
	"context"
	"fmt"
	"log"

	bookingv1 "github.com/hotelio/bookings/api/booking/v1"
	apperrors "github.com/hotelio/bookings/internal/platform/errors"
	"github.com/hotelio/bookings/internal/services/booking/domain"
	"github.com/hotelio/bookings/internal/services/booking/storage"
)

const (
	createFailedMessage = "failed to create booking"
	listFailedMessage   = "failed to list bookings"
)

// Orchestrator is the domain surface the service delegates to.
type Orchestrator interface {
	CreateBooking(ctx context.Context, in domain.CreateBookingInput) (storage.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]storage.Booking, error)
}

// Service implements the booking.v1.BookingService gRPC API.
type Service struct {
	bookingv1.UnimplementedBookingServiceServer
	orchestrator Orchestrator
}

// NewService builds a service over orchestrator.
func NewService(orchestrator Orchestrator) (*Service, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("booking orchestrator is required")
	}
	return &Service{orchestrator: orchestrator}, nil
}

// CreateBooking validates, prices, and stores a booking. Precondition
// failures return InvalidArgument; everything else returns Internal.
func (s *Service) CreateBooking(ctx context.Context, in *bookingv1.CreateBookingRequest) (*bookingv1.Booking, error) {
	if in == nil {
		return nil, apperrors.New(apperrors.CodeBookingInvalidRequest, "create booking request is required").ToGRPCStatus()
	}
	created, err := s.orchestrator.CreateBooking(ctx, domain.CreateBookingInput{
		UserID:    in.GetUserId(),
		HotelID:   in.GetHotelId(),
		PromoCode: in.GetPromoCode(),
	})
	if err != nil {
		logFailure("create booking", err)
		return nil, apperrors.ToGRPC(err, createFailedMessage)
	}
	return bookingToProto(created), nil
}

// ListBookings returns the user's bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, in *bookingv1.ListBookingsRequest) (*bookingv1.ListBookingsResponse, error) {
	if in == nil {
		return nil, apperrors.New(apperrors.CodeBookingInvalidRequest, "list bookings request is required").ToGRPCStatus()
	}
	bookings, err := s.orchestrator.ListBookings(ctx, in.GetUserId())
	if err != nil {
		logFailure("list bookings", err)
		return nil, apperrors.ToGRPC(err, listFailedMessage)
	}
	resp := &bookingv1.ListBookingsResponse{Bookings: make([]*bookingv1.Booking, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, bookingToProto(b))
	}
	return resp, nil
}

// logFailure records causes that never reach the caller.
func logFailure(op string, err error) {
	if apperrors.IsValidation(err) {
		return
	}
	log.Printf("%s: %v", op, err)
}

func bookingToProto(b storage.Booking) *bookingv1.Booking {
	fact := domain.FactFromBooking(b)
	return &bookingv1.Booking{
		Id:              fact.ID,
		UserId:          fact.UserID,
		HotelId:         fact.HotelID,
		PromoCode:       fact.PromoCode,
		DiscountPercent: fact.DiscountPercent,
		Price:           fact.Price,
		CreatedAt:       fact.CreatedAt,
	}
}
