package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
)

// Channel identifies which storefront channel produced an order
type Channel string

const (
	ChannelB2B Channel = "b2b"
	ChannelB2C Channel = "b2c"
)

// IsValid returns true if the channel is valid
func (c Channel) IsValid() bool {
	return c == ChannelB2B || c == ChannelB2C
}

// Order is the canonical internal order record. Checkout payloads arrive in
// several shapes (subtotal vs total vs totalAmount, flat vs nested affiliate
// code); normalization at the application boundary maps every accepted shape
// onto this one record before anything downstream sees it.
//
// The order is created by the checkout flow and read-only for the conversion
// core except for the settlement fields the ledger writes back.
type Order struct {
	shared.BaseEntity
	Number        string
	Channel       Channel
	CustomerEmail string
	Currency      string

	// Subtotal is the pre-discount, pre-shipping commission base
	Subtotal decimal.Decimal
	// Total is the grand total the customer paid
	Total decimal.Decimal

	// Referral signals supplied at order-creation time
	AffiliateCode    string
	ClickID          *uuid.UUID
	DiscountCode     string
	PaymentReference string // upstream payment/transaction identifier

	// Settlement fields, written back by the commission ledger
	AffiliateCommission   decimal.Decimal
	AffiliateID           *uuid.UUID
	AttributionMethod     affiliate.AttributionMethod
	ConversionProcessed   bool
	ConversionProcessedAt *time.Time
}

// New creates a canonical order record
func New(number string, channel Channel, subtotal, total decimal.Decimal) (*Order, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Order channel must be b2b or b2c")
	}
	if subtotal.IsNegative() || total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order amounts cannot be negative")
	}

	return &Order{
		BaseEntity:          shared.NewBaseEntity(),
		Number:              number,
		Channel:             channel,
		Subtotal:            subtotal,
		Total:               total,
		AffiliateCommission: decimal.Zero,
	}, nil
}

// CommissionBase returns the amount the business commissions on
func (o *Order) CommissionBase() decimal.Decimal {
	return o.Subtotal
}

// HasReferralSignal reports whether the order carries any attribution input
func (o *Order) HasReferralSignal() bool {
	return o.ClickID != nil || o.AffiliateCode != "" || o.DiscountCode != ""
}

// MarkConversionProcessed records the settlement outcome on the order.
// The transition happens at most once per order.
func (o *Order) MarkConversionProcessed(affiliateID *uuid.UUID, commission decimal.Decimal, method affiliate.AttributionMethod) error {
	if o.ConversionProcessed {
		return shared.ErrAlreadySettled
	}
	now := time.Now()
	o.AffiliateID = affiliateID
	o.AffiliateCommission = commission
	o.AttributionMethod = method
	o.ConversionProcessed = true
	o.ConversionProcessedAt = &now
	o.UpdatedAt = now
	return nil
}
