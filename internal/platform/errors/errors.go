package errors

import (
	stderrors "errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain reported in gRPC ErrorInfo details.
const Domain = "bookings.hotelio"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Caller-visible message
	Metadata map[string]string // Additional context (check name, ids)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first domain error in err's chain, or
// CodeUnknown.
func CodeOf(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// IsValidation reports whether err carries a validation-category code.
func IsValidation(err error) bool {
	return CodeOf(err).IsValidation()
}

// ToGRPCStatus converts the error to a gRPC status carrying an ErrorInfo
// detail. The status message never includes the wrapped cause.
func (e *Error) ToGRPCStatus() error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)

	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// ToGRPC maps any error to a gRPC status error. Domain errors keep their
// code; anything else becomes Internal with fallbackMessage.
func ToGRPC(err error, fallbackMessage string) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.ToGRPCStatus()
	}
	return Wrap(CodeInternal, fallbackMessage, err).ToGRPCStatus()
}
