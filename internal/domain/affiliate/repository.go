package affiliate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AttributionMethod records which signal attributed an order to an affiliate,
// from highest to lowest confidence.
type AttributionMethod string

const (
	// AttributionMethodServer means the order carried a click id captured
	// server-side at click time
	AttributionMethodServer AttributionMethod = "server"
	// AttributionMethodCookie means the order carried an affiliate code read
	// from a client-persisted referral cookie at checkout
	AttributionMethodCookie AttributionMethod = "cookie"
	// AttributionMethodDiscount means the order's discount code mapped to an
	// affiliate promotion
	AttributionMethodDiscount AttributionMethod = "discount"
)

// String returns the string representation of AttributionMethod
func (m AttributionMethod) String() string {
	return string(m)
}

// Repository provides access to affiliate records
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Affiliate, error)

	// FindActiveByCode looks up an affiliate by public code, filtered to
	// active status. Suspended and pending affiliates behave as absent.
	FindActiveByCode(ctx context.Context, code string) (*Affiliate, error)

	// FindActiveByDiscountCode looks up an active affiliate whose mapped
	// promotion code matches
	FindActiveByDiscountCode(ctx context.Context, code string) (*Affiliate, error)

	Save(ctx context.Context, a *Affiliate) error
	List(ctx context.Context, filter shared.Filter) ([]Affiliate, int64, error)

	// IncrementClicks bumps the click counter by one with a single SQL
	// increment. It deliberately runs outside the click insert's transaction;
	// click counts are reporting data, not ledger amounts.
	IncrementClicks(ctx context.Context, id uuid.UUID) error
}

// ClickRepository provides access to referral click events
type ClickRepository interface {
	Create(ctx context.Context, click *AffiliateClick) error
	FindByID(ctx context.Context, id uuid.UUID) (*AffiliateClick, error)

	// FindLatestUnconverted returns the most recent unconverted click for a
	// code recorded after the given cutoff, used for heuristic reconciliation
	// when an order carries a code but no click id.
	FindLatestUnconverted(ctx context.Context, code string, after time.Time) (*AffiliateClick, error)

	// MarkConverted sets the converted flag with a guarded update so the
	// false->true transition happens at most once.
	MarkConverted(ctx context.Context, id, orderID uuid.UUID, commission decimal.Decimal) error

	ListByAffiliate(ctx context.Context, affiliateID uuid.UUID, filter shared.Filter) ([]AffiliateClick, int64, error)
}

// Settlement describes one commission credit to apply for an order
type Settlement struct {
	OrderID     uuid.UUID
	AffiliateID uuid.UUID // uuid.Nil when the order settles without attribution
	Amount      decimal.Decimal
	Method      AttributionMethod
}

// Ledger applies settlements with exactly-once semantics per order. The
// implementation must perform the idempotency check and the stats mutation
// as one serializable read-modify-write: a concurrent duplicate attempt for
// the same order yields shared.ErrAlreadySettled, never a double credit.
type Ledger interface {
	Settle(ctx context.Context, s Settlement) error
}
