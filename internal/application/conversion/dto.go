package conversion

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// SettlementResult is the outcome of processing an order conversion,
// consumed by the HTTP layer and the notification collaborator.
type SettlementResult struct {
	Success          bool                        `json:"success"`
	AlreadyProcessed bool                        `json:"already_processed,omitempty"`
	CommissionAmount decimal.Decimal             `json:"commission_amount"`
	AffiliateID      *uuid.UUID                  `json:"affiliate_id,omitempty"`
	Method           affiliate.AttributionMethod `json:"attribution_method,omitempty"`
	Message          string                      `json:"message,omitempty"`
}

// RecordClickRequest carries one referral-link visit from storefront
// page-view instrumentation
type RecordClickRequest struct {
	Code        string
	IPAddress   string
	UserAgent   string
	LandingPage string
}

// RecordClickResponse returns the recorded click's identifier so the
// checkout flow can pass it back as the order's click reference
type RecordClickResponse struct {
	ClickID     uuid.UUID `json:"click_id"`
	AffiliateID uuid.UUID `json:"affiliate_id"`
}

// OrderPayload is the raw order shape accepted at the intake boundary.
// Checkout builds have never agreed on field names: the amount arrives as
// subtotal, total or totalAmount, and the affiliate code arrives flat or
// nested under an affiliate object. Normalize maps any accepted combination
// onto the canonical order record; nothing downstream sees the variants.
type OrderPayload struct {
	Number        string `json:"number" binding:"required"`
	Channel       string `json:"channel" binding:"required,oneof=b2b b2c"`
	CustomerEmail string `json:"customer_email"`
	Currency      string `json:"currency"`

	Subtotal    *decimal.Decimal `json:"subtotal"`
	Total       *decimal.Decimal `json:"total"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`

	AffiliateCode string `json:"affiliateCode"`
	Affiliate     *struct {
		Code string `json:"code"`
	} `json:"affiliate"`

	ClickID          *uuid.UUID `json:"click_id"`
	DiscountCode     string     `json:"discount_code"`
	PaymentReference string     `json:"payment_reference"`
}

// Normalize converts the payload into a canonical order. The commission
// base prefers subtotal, falling back to total, falling back to totalAmount.
func (p *OrderPayload) Normalize() (*order.Order, error) {
	var base decimal.Decimal
	switch {
	case p.Subtotal != nil:
		base = *p.Subtotal
	case p.Total != nil:
		base = *p.Total
	case p.TotalAmount != nil:
		base = *p.TotalAmount
	default:
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order payload carries no amount field")
	}

	total := base
	if p.Total != nil {
		total = *p.Total
	} else if p.TotalAmount != nil {
		total = *p.TotalAmount
	}

	o, err := order.New(p.Number, order.Channel(p.Channel), base, total)
	if err != nil {
		return nil, err
	}

	code := p.AffiliateCode
	if code == "" && p.Affiliate != nil {
		code = p.Affiliate.Code
	}
	o.AffiliateCode = strings.ToUpper(strings.TrimSpace(code))
	o.ClickID = p.ClickID
	o.DiscountCode = strings.ToUpper(strings.TrimSpace(p.DiscountCode))
	o.PaymentReference = p.PaymentReference
	o.CustomerEmail = p.CustomerEmail
	o.Currency = p.Currency
	return o, nil
}

// PaymentEvent is a payment-webhook delivery carrying a recovered order.
// Transport-level verification happens before this core is invoked.
type PaymentEvent struct {
	EventID          string        `json:"event_id" binding:"required"`
	TransactionID    string        `json:"transaction_id" binding:"required"`
	Order            *OrderPayload `json:"order"`
}
