package affiliate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the lifecycle state of an affiliate account
type Status string

const (
	// StatusActive means the affiliate earns commissions on attributed orders
	StatusActive Status = "active"
	// StatusPending means the application has not been approved yet
	StatusPending Status = "pending"
	// StatusSuspended means the account was deactivated; live referral links
	// for a suspended affiliate attribute as "no affiliate"
	StatusSuspended Status = "suspended"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// codePattern matches public affiliate codes such as "ERIK-482":
// an upper-case name prefix, a dash, and a three digit suffix.
var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d{3}$`)

// ValidCode reports whether code is a well-formed public affiliate code
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Stats holds the aggregate counters for an affiliate. The counters are the
// durable record; there is no event log to re-derive them from. Conversions,
// TotalEarnings and Balance must only ever move together in one atomic
// settlement (the clicks counter may drift independently).
type Stats struct {
	Clicks        int64
	Conversions   int64
	TotalEarnings decimal.Decimal
	Balance       decimal.Decimal
}

// Affiliate represents a referral partner of the storefront
type Affiliate struct {
	shared.BaseEntity
	Code           string // public code, unique, e.g. "ERIK-482"
	Name           string
	Email          string
	Status         Status
	CommissionRate decimal.Decimal // percentage, 15 means 15%
	DiscountCode   string          // optional storefront promotion code mapped to this affiliate
	Stats          Stats
}

// NewAffiliate creates a new affiliate in pending status
func NewAffiliate(name, email, code string, commissionRate decimal.Decimal) (*Affiliate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Affiliate name cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Affiliate code must look like NAME-123")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_RATE", "Commission rate must be between 0 and 100")
	}

	return &Affiliate{
		BaseEntity:     shared.NewBaseEntity(),
		Code:           code,
		Name:           name,
		Email:          email,
		Status:         StatusPending,
		CommissionRate: commissionRate,
		Stats: Stats{
			TotalEarnings: decimal.Zero,
			Balance:       decimal.Zero,
		},
	}, nil
}

// IsActive returns true if the affiliate can earn commissions
func (a *Affiliate) IsActive() bool {
	return a.Status == StatusActive
}

// Activate approves the affiliate
func (a *Affiliate) Activate() error {
	if a.Status == StatusActive {
		return shared.ErrInvalidState
	}
	a.Status = StatusActive
	return nil
}

// Suspend deactivates the affiliate. Existing referral links stay live;
// orders attributed to a suspended affiliate settle without commission.
func (a *Affiliate) Suspend() error {
	if a.Status == StatusSuspended {
		return shared.ErrInvalidState
	}
	a.Status = StatusSuspended
	return nil
}

// SetDiscountCode maps a storefront promotion code to this affiliate for
// lowest-confidence discount attribution
func (a *Affiliate) SetDiscountCode(code string) {
	a.DiscountCode = strings.ToUpper(strings.TrimSpace(code))
}

// RecordConversion applies a settled commission to the aggregate stats.
// All three ledger counters move by the same amount in the same call (the
// persistence layer mirrors this as a single atomic update).
func (a *Affiliate) RecordConversion(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Commission amount cannot be negative")
	}
	a.Stats.Conversions++
	a.Stats.TotalEarnings = a.Stats.TotalEarnings.Add(amount)
	a.Stats.Balance = a.Stats.Balance.Add(amount)
	return nil
}

// RecordClick increments the click counter
func (a *Affiliate) RecordClick() {
	a.Stats.Clicks++
}
