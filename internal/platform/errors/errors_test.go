package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeBookingInvalidRequest, codes.InvalidArgument},
		{CodeUserInactive, codes.InvalidArgument},
		{CodeUserBlacklisted, codes.InvalidArgument},
		{CodeHotelNotOperational, codes.InvalidArgument},
		{CodeHotelNotTrusted, codes.InvalidArgument},
		{CodeHotelFullyBooked, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeProviderUnavailable, codes.Internal},
		{CodeInternal, codes.Internal},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsValidationFollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("create booking: %w", New(CodeUserBlacklisted, "user is blacklisted"))
	if !IsValidation(err) {
		t.Fatal("expected wrapped blacklist error to be a validation error")
	}
	if IsValidation(stderrors.New("boom")) {
		t.Fatal("plain errors are not validation errors")
	}
	if CodeOf(err) != CodeUserBlacklisted {
		t.Fatalf("CodeOf = %s, want %s", CodeOf(err), CodeUserBlacklisted)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeProviderUnavailable, "user provider unavailable", stderrors.New("dial tcp"))
	if !stderrors.Is(err, New(CodeProviderUnavailable, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeInternal, "")) {
		t.Fatal("expected errors.Is to reject a different code")
	}
}

func TestToGRPCStatusAttachesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeHotelFullyBooked, "hotel is fully booked", map[string]string{"hotel_id": "h1"}).ToGRPCStatus()

	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected status error, got %T", err)
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", st.Code(), codes.InvalidArgument)
	}
	if st.Message() != "hotel is fully booked" {
		t.Fatalf("message = %q", st.Message())
	}
	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.GetReason() != string(CodeHotelFullyBooked) || info.GetDomain() != Domain {
		t.Fatalf("unexpected error info: %+v", info)
	}
	if info.GetMetadata()["hotel_id"] != "h1" {
		t.Fatalf("metadata = %v", info.GetMetadata())
	}
}

func TestToGRPCHidesUnexpectedCause(t *testing.T) {
	err := ToGRPC(stderrors.New("database is locked"), "failed to create booking")
	st, _ := status.FromError(err)
	if st.Code() != codes.Internal {
		t.Fatalf("code = %v, want %v", st.Code(), codes.Internal)
	}
	if st.Message() != "failed to create booking" {
		t.Fatalf("message = %q, want fallback", st.Message())
	}
	if ToGRPC(nil, "unused") != nil {
		t.Fatal("expected nil for nil error")
	}
}
