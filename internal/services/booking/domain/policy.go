package domain

import (
	apperrors "github.com/hotelio/bookings/internal/platform/errors"
)

// Check names one provider lookup consulted while creating a booking.
type Check string

const (
	CheckUserActive       Check = "user.active"
	CheckUserBlacklisted  Check = "user.blacklisted"
	CheckHotelOperational Check = "hotel.operational"
	CheckHotelTrusted     Check = "hotel.trusted"
	CheckHotelFullyBooked Check = "hotel.fully_booked"
	CheckUserStatus       Check = "user.status"
	CheckPromo            Check = "promo"
)

const (
	checkMetadataKey       = "check"
	providerFailureMessage = "failed to create booking"
)

// FailureMode says what a provider failure on a check does to the booking.
type FailureMode int

const (
	// FailClosed aborts the booking when the provider cannot answer.
	FailClosed FailureMode = iota
	// FailOpen substitutes a default and lets the booking proceed.
	FailOpen
)

func (m FailureMode) String() string {
	if m == FailOpen {
		return "fail-open"
	}
	return "fail-closed"
}

// Rule describes one precondition: the answer that blocks the booking and
// the code reported when it does.
type Rule struct {
	Check   Check
	Mode    FailureMode
	Blocks  bool
	Code    apperrors.Code
	Message string
}

// preconditions are evaluated in this order after every lookup returns, so
// the reported rejection does not depend on provider latency.
var preconditions = []Rule{
	{Check: CheckUserActive, Mode: FailClosed, Blocks: false, Code: apperrors.CodeUserInactive, Message: "user is not active"},
	{Check: CheckUserBlacklisted, Mode: FailClosed, Blocks: true, Code: apperrors.CodeUserBlacklisted, Message: "user is blacklisted"},
	{Check: CheckHotelOperational, Mode: FailClosed, Blocks: false, Code: apperrors.CodeHotelNotOperational, Message: "hotel is not operational"},
	{Check: CheckHotelTrusted, Mode: FailClosed, Blocks: false, Code: apperrors.CodeHotelNotTrusted, Message: "hotel is not trusted"},
	{Check: CheckHotelFullyBooked, Mode: FailClosed, Blocks: true, Code: apperrors.CodeHotelFullyBooked, Message: "hotel is fully booked"},
}

// pricingChecks degrade to defaults: standard base price and no discount.
var pricingChecks = map[Check]FailureMode{
	CheckUserStatus: FailOpen,
	CheckPromo:      FailOpen,
}

// Policy returns the failure mode of a named check.
func Policy(check Check) FailureMode {
	for _, rule := range preconditions {
		if rule.Check == check {
			return rule.Mode
		}
	}
	if mode, ok := pricingChecks[check]; ok {
		return mode
	}
	return FailClosed
}

// Preconditions returns the ordered precondition rules.
func Preconditions() []Rule {
	return append([]Rule(nil), preconditions...)
}

// lookup is one answered boolean check.
type lookup struct {
	value bool
	err   error
}

// evaluate applies the rules in order to the gathered answers.
func evaluate(answers map[Check]lookup) error {
	for _, rule := range preconditions {
		answer := answers[rule.Check]
		if answer.err != nil {
			if rule.Mode == FailOpen {
				continue
			}
			return &apperrors.Error{
				Code:     apperrors.CodeProviderUnavailable,
				Message:  providerFailureMessage,
				Metadata: map[string]string{checkMetadataKey: string(rule.Check)},
				Cause:    answer.err,
			}
		}
		if answer.value == rule.Blocks {
			return apperrors.WithMetadata(rule.Code, rule.Message, map[string]string{checkMetadataKey: string(rule.Check)})
		}
	}
	return nil
}
