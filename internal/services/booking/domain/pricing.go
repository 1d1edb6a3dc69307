package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VIPStatus is the user status that earns the reduced base price.
const VIPStatus = "VIP"

var (
	// StandardBasePrice applies to every user without VIP status.
	StandardBasePrice = decimal.NewFromInt(100)
	// VIPBasePrice applies to VIP users.
	VIPBasePrice = decimal.NewFromInt(80)
)

// BasePrice maps a user status to its base price.
func BasePrice(status string) decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(status), VIPStatus) {
		return VIPBasePrice
	}
	return StandardBasePrice
}

// FinalPrice subtracts an absolute discount from base. The result is not
// floored at zero.
func FinalPrice(base, discount decimal.Decimal) decimal.Decimal {
	return base.Sub(discount).Round(2)
}
