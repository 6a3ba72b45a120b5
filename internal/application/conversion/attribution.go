package conversion

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Attribution is a resolved order-to-affiliate link
type Attribution struct {
	Affiliate *affiliate.Affiliate
	Method    affiliate.AttributionMethod
	// Click is set only for server attribution, where the order carried the
	// click id captured at click time
	Click *affiliate.AffiliateClick
}

// AttributionResolver decides which affiliate, if any, produced an order.
// Resolution is read-only and safely repeatable; the exactly-once guarantee
// lives in the ledger, not here.
type AttributionResolver struct {
	affiliates affiliate.Repository
	clicks     affiliate.ClickRepository
}

// NewAttributionResolver creates a new AttributionResolver
func NewAttributionResolver(affiliates affiliate.Repository, clicks affiliate.ClickRepository) *AttributionResolver {
	return &AttributionResolver{
		affiliates: affiliates,
		clicks:     clicks,
	}
}

// Resolve evaluates attribution signals in confidence order, first match
// wins: server-recorded click id, then referral-cookie affiliate code, then
// a discount code mapped to an affiliate promotion. A nil result means the
// order settles with no commission; that is an outcome, not an error.
// An inactive affiliate behaves exactly like no attribution, because a
// storefront referral link may stay live after the affiliate is suspended.
func (r *AttributionResolver) Resolve(ctx context.Context, o *order.Order) (*Attribution, error) {
	if o.ClickID != nil {
		attr, err := r.resolveByClick(ctx, o)
		if err != nil {
			return nil, err
		}
		if attr != nil {
			return attr, nil
		}
	}

	if o.AffiliateCode != "" {
		a, err := r.affiliates.FindActiveByCode(ctx, o.AffiliateCode)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if a != nil {
			return &Attribution{Affiliate: a, Method: affiliate.AttributionMethodCookie}, nil
		}
	}

	if o.DiscountCode != "" && o.DiscountCode != o.AffiliateCode {
		a, err := r.affiliates.FindActiveByDiscountCode(ctx, o.DiscountCode)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if a != nil {
			return &Attribution{Affiliate: a, Method: affiliate.AttributionMethodDiscount}, nil
		}
	}

	return nil, nil
}

// resolveByClick loads the order's click and its affiliate. A missing click
// or inactive affiliate falls through to the lower-confidence signals.
func (r *AttributionResolver) resolveByClick(ctx context.Context, o *order.Order) (*Attribution, error) {
	click, err := r.clicks.FindByID(ctx, *o.ClickID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	a, err := r.affiliates.FindByID(ctx, click.AffiliateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !a.IsActive() {
		return nil, nil
	}

	return &Attribution{Affiliate: a, Method: affiliate.AttributionMethodServer, Click: click}, nil
}
