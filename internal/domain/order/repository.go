package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository provides access to order records. Orders are created by the
// checkout flow (or the payment-webhook recovery path) and read by the
// conversion core; settlement writes go through the commission ledger.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// FindByPaymentReference looks up an order by its upstream payment
	// transaction identifier, used by the webhook recovery path to detect
	// orders it has already seen.
	FindByPaymentReference(ctx context.Context, ref string) (*Order, error)

	List(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
}
