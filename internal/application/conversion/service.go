package conversion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultClickLookback bounds the heuristic click reconciliation window
const DefaultClickLookback = 30 * 24 * time.Hour

// ConversionService is the single order-conversion orchestrator. Every entry
// point (direct call, HTTP endpoint, payment webhook) is a thin adapter over
// ProcessOrder; the settlement logic itself is never duplicated.
type ConversionService struct {
	orders        order.Repository
	affiliates    affiliate.Repository
	clicks        affiliate.ClickRepository
	ledger        affiliate.Ledger
	resolver      *AttributionResolver
	clickLookback time.Duration
	logger        *zap.Logger
}

// NewConversionService creates a new ConversionService
func NewConversionService(
	orders order.Repository,
	affiliates affiliate.Repository,
	clicks affiliate.ClickRepository,
	ledger affiliate.Ledger,
	logger *zap.Logger,
) *ConversionService {
	return &ConversionService{
		orders:        orders,
		affiliates:    affiliates,
		clicks:        clicks,
		ledger:        ledger,
		resolver:      NewAttributionResolver(affiliates, clicks),
		clickLookback: DefaultClickLookback,
		logger:        logger,
	}
}

// SetClickLookback overrides the reconciliation lookback window
func (s *ConversionService) SetClickLookback(d time.Duration) {
	if d > 0 {
		s.clickLookback = d
	}
}

// ProcessOrder settles the commission for a completed order. It resolves
// attribution, computes the commission at the affiliate's current rate, and
// applies it through the ledger exactly once per order. Callers may safely
// invoke it again after a failure; a repeated call short-circuits on the
// ledger's idempotency guard and returns the prior outcome.
//
// A missing order is an explicit failure. An order with no attributable
// affiliate settles as a soft success with no credit.
func (s *ConversionService) ProcessOrder(ctx context.Context, orderID uuid.UUID) (*SettlementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "conversion", "process_order",
		telemetry.WithAttribute("order_id", orderID.String()))
	defer span.End()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if o.ConversionProcessed {
		return priorResult(o), nil
	}

	attr, err := s.resolver.Resolve(ctx, o)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if attr == nil {
		return s.settleWithoutAttribution(ctx, o)
	}

	amount := affiliate.ComputeCommission(o.CommissionBase(), attr.Affiliate.CommissionRate)

	err = s.ledger.Settle(ctx, affiliate.Settlement{
		OrderID:     o.ID,
		AffiliateID: attr.Affiliate.ID,
		Amount:      amount,
		Method:      attr.Method,
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadySettled) {
			return s.reloadPriorResult(ctx, orderID)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.reconcileClick(ctx, o, attr, amount)

	affiliateID := attr.Affiliate.ID
	return &SettlementResult{
		Success:          true,
		CommissionAmount: amount,
		AffiliateID:      &affiliateID,
		Method:           attr.Method,
		Message:          "commission settled",
	}, nil
}

// RegisterOrder normalizes an accepted checkout payload into the canonical
// order record and persists it
func (s *ConversionService) RegisterOrder(ctx context.Context, payload OrderPayload) (*order.Order, error) {
	o, err := payload.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ProcessPaymentEvent handles a payment-webhook delivery. If the referenced
// transaction does not map to a known order, the event's embedded order
// payload (recovered from upstream payment metadata) is registered first;
// from there the event follows the same settlement path as any other order.
func (s *ConversionService) ProcessPaymentEvent(ctx context.Context, evt PaymentEvent) (*SettlementResult, error) {
	o, err := s.orders.FindByPaymentReference(ctx, evt.TransactionID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if evt.Order == nil {
			return nil, shared.ErrNotFound
		}
		evt.Order.PaymentReference = evt.TransactionID
		o, err = s.RegisterOrder(ctx, *evt.Order)
		if err != nil {
			return nil, err
		}
		s.logger.Info("registered webhook-recovered order",
			zap.String("order_id", o.ID.String()),
			zap.String("transaction_id", evt.TransactionID),
		)
	}
	return s.ProcessOrder(ctx, o.ID)
}

// GetOrder loads an order by id
func (s *ConversionService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// settleWithoutAttribution marks the order processed with no credit. The
// soft success keeps webhook retries quiet for orders that legitimately
// carry no resolvable affiliate.
func (s *ConversionService) settleWithoutAttribution(ctx context.Context, o *order.Order) (*SettlementResult, error) {
	err := s.ledger.Settle(ctx, affiliate.Settlement{OrderID: o.ID, Amount: decimal.Zero})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadySettled) {
			return s.reloadPriorResult(ctx, o.ID)
		}
		return nil, err
	}
	return &SettlementResult{
		Success:          true,
		CommissionAmount: decimal.Zero,
		Message:          "no affiliate attribution",
	}, nil
}

// reconcileClick marks the originating click converted. This is analytics
// enrichment, not ledger truth: any failure here is logged and the
// settlement stands.
func (s *ConversionService) reconcileClick(ctx context.Context, o *order.Order, attr *Attribution, amount decimal.Decimal) {
	var clickID uuid.UUID

	switch {
	case attr.Click != nil:
		clickID = attr.Click.ID
	case o.AffiliateCode != "":
		// Heuristic: the most recent unconverted click for this code within
		// the lookback window. Under concurrent orders for the same code this
		// can pick the wrong click; that is a data-quality issue, not a
		// billing bug.
		click, err := s.clicks.FindLatestUnconverted(ctx, o.AffiliateCode, time.Now().Add(-s.clickLookback))
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("click reconciliation lookup failed",
					zap.String("order_id", o.ID.String()),
					zap.String("code", o.AffiliateCode),
					zap.Error(err),
				)
			}
			return
		}
		clickID = click.ID
	default:
		return
	}

	if err := s.clicks.MarkConverted(ctx, clickID, o.ID, amount); err != nil {
		s.logger.Warn("click reconciliation failed",
			zap.String("order_id", o.ID.String()),
			zap.String("click_id", clickID.String()),
			zap.Error(err),
		)
	}
}

// reloadPriorResult builds the idempotent response for an order another
// attempt has already settled
func (s *ConversionService) reloadPriorResult(ctx context.Context, orderID uuid.UUID) (*SettlementResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return priorResult(o), nil
}

func priorResult(o *order.Order) *SettlementResult {
	return &SettlementResult{
		Success:          true,
		AlreadyProcessed: true,
		CommissionAmount: o.AffiliateCommission,
		AffiliateID:      o.AffiliateID,
		Method:           o.AttributionMethod,
		Message:          "conversion already processed",
	}
}
