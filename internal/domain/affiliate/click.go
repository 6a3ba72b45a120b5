package affiliate

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AffiliateClick is an immutable referral-click event. It is created when a
// visitor lands through a referral link and mutated exactly once, when the
// ledger marks it converted during settlement. Clicks are never deleted in
// normal operation.
type AffiliateClick struct {
	shared.BaseEntity
	AffiliateID uuid.UUID
	Code        string
	IPAddress   string
	UserAgent   string
	LandingPage string

	// Conversion fields, written once by click reconciliation
	Converted        bool
	OrderID          *uuid.UUID
	CommissionAmount *decimal.Decimal
}

// NewClick records a referral-link visit for an affiliate
func NewClick(affiliateID uuid.UUID, code, ipAddress, userAgent, landingPage string) (*AffiliateClick, error) {
	if affiliateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AFFILIATE", "Affiliate ID cannot be empty")
	}
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Affiliate code cannot be empty")
	}

	return &AffiliateClick{
		BaseEntity:  shared.NewBaseEntity(),
		AffiliateID: affiliateID,
		Code:        strings.ToUpper(strings.TrimSpace(code)),
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		LandingPage: landingPage,
	}, nil
}

// MarkConverted transitions the click to converted. The transition happens
// at most once; a second call is a conflict.
func (c *AffiliateClick) MarkConverted(orderID uuid.UUID, commission decimal.Decimal) error {
	if c.Converted {
		return shared.ErrConcurrencyConflict
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	now := time.Now()
	c.Converted = true
	c.OrderID = &orderID
	c.CommissionAmount = &commission
	c.UpdatedAt = now
	return nil
}
