// Package errors provides structured domain errors and their gRPC mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInternal represents an unexpected failure (store, broker, bug).
	CodeInternal Code = "INTERNAL"

	// Request shape errors
	CodeBookingInvalidRequest Code = "BOOKING_INVALID_REQUEST"

	// User precondition errors
	CodeUserInactive    Code = "USER_INACTIVE"
	CodeUserBlacklisted Code = "USER_BLACKLISTED"

	// Hotel precondition errors
	CodeHotelNotOperational Code = "HOTEL_NOT_OPERATIONAL"
	CodeHotelNotTrusted     Code = "HOTEL_NOT_TRUSTED"
	CodeHotelFullyBooked    Code = "HOTEL_FULLY_BOOKED"

	// Dependency errors
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// IsValidation reports whether the code is a caller-correctable
// precondition failure.
func (c Code) IsValidation() bool {
	return c.GRPCCode() == codes.InvalidArgument
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeBookingInvalidRequest,
		CodeUserInactive,
		CodeUserBlacklisted,
		CodeHotelNotOperational,
		CodeHotelNotTrusted,
		CodeHotelFullyBooked:
		return codes.InvalidArgument

	case CodeNotFound:
		return codes.NotFound

	// Provider transport failures on fail-closed checks surface as internal
	// errors alongside store failures.
	default:
		return codes.Internal
	}
}
