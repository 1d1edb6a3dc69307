package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const promoValidatePath = "/api/promos/validate"

// ErrPromoNotApplicable means the registry rejected the code for the user,
// or the code has expired.
var ErrPromoNotApplicable = errors.New("promo code not applicable")

// Promo is the registry's view of a validated promo code. Discount is an
// absolute currency amount.
type Promo struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	VIPOnly     bool            `json:"vipOnly"`
	Expired     bool            `json:"expired"`
	ValidUntil  string          `json:"validUntil"`
	Description string          `json:"description"`
}

// PromoClient queries the promo registry.
type PromoClient struct {
	c *client
}

// Validate asks the registry whether code applies to userID.
func (p *PromoClient) Validate(ctx context.Context, code, userID string) (Promo, error) {
	form := url.Values{}
	form.Set("code", strings.TrimSpace(code))
	form.Set("userId", strings.TrimSpace(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.c.baseURL+promoValidatePath, strings.NewReader(form.Encode()))
	if err != nil {
		return Promo{}, fmt.Errorf("build POST %s: %w", promoValidatePath, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := p.c.do(req)
	if err != nil {
		return Promo{}, err
	}
	switch {
	case status >= 400 && status < 500:
		return Promo{}, fmt.Errorf("%w: status %d", ErrPromoNotApplicable, status)
	case status < 200 || status > 299:
		return Promo{}, &StatusError{Method: http.MethodPost, Path: promoValidatePath, StatusCode: status}
	}

	var promo Promo
	if err := json.Unmarshal(body, &promo); err != nil {
		return Promo{}, fmt.Errorf("decode promo: %w", err)
	}
	if promo.Expired {
		return Promo{}, fmt.Errorf("%w: %s expired", ErrPromoNotApplicable, promo.Code)
	}
	if promo.Discount.IsNegative() {
		return Promo{}, fmt.Errorf("%w: %s has negative discount %s", ErrPromoNotApplicable, promo.Code, promo.Discount)
	}
	return promo, nil
}

// Discount returns the discount amount of a valid code.
func (p *PromoClient) Discount(ctx context.Context, code, userID string) (decimal.Decimal, error) {
	promo, err := p.Validate(ctx, code, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return promo.Discount, nil
}
