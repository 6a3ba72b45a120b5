package conversion

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestResolve_NoSignals(t *testing.T) {
	o, _ := order.New("SO-1", order.ChannelB2C, decimal.NewFromInt(100), decimal.NewFromInt(100))
	resolver := NewAttributionResolver(new(MockAffiliateRepository), new(MockClickRepository))

	attr, err := resolver.Resolve(context.Background(), o)

	assert.NoError(t, err)
	assert.Nil(t, attr)
}

func TestResolve_MissingClickFallsThroughToCookie(t *testing.T) {
	ctx := context.Background()
	aff := activeAffiliate(t, "ERIK-482", 15)
	o := testOrder(t, 100)
	click, _ := affiliate.NewClick(aff.ID, "ERIK-482", "ip", "ua", "/")
	o.ClickID = &click.ID
	o.AffiliateCode = "ERIK-482"

	affiliates := new(MockAffiliateRepository)
	clicks := new(MockClickRepository)
	resolver := NewAttributionResolver(affiliates, clicks)

	clicks.On("FindByID", ctx, click.ID).Return(nil, shared.ErrNotFound)
	affiliates.On("FindActiveByCode", ctx, "ERIK-482").Return(aff, nil)

	attr, err := resolver.Resolve(ctx, o)

	assert.NoError(t, err)
	assert.NotNil(t, attr)
	assert.Equal(t, affiliate.AttributionMethodCookie, attr.Method)
}

func TestResolve_InactiveClickAffiliateFallsThrough(t *testing.T) {
	ctx := context.Background()
	suspended, _ := affiliate.NewAffiliate("Erik", "erik@example.com", "ERIK-482", decimal.NewFromInt(15))
	click, _ := affiliate.NewClick(suspended.ID, "ERIK-482", "ip", "ua", "/")
	o := testOrder(t, 100)
	o.ClickID = &click.ID

	affiliates := new(MockAffiliateRepository)
	clicks := new(MockClickRepository)
	resolver := NewAttributionResolver(affiliates, clicks)

	clicks.On("FindByID", ctx, click.ID).Return(click, nil)
	affiliates.On("FindByID", ctx, suspended.ID).Return(suspended, nil)

	attr, err := resolver.Resolve(ctx, o)

	assert.NoError(t, err)
	assert.Nil(t, attr)
}

func TestResolve_DiscountCodeSameAsAffiliateCodeIsSkipped(t *testing.T) {
	ctx := context.Background()
	o := testOrder(t, 100)
	o.AffiliateCode = "ERIK-482"
	o.DiscountCode = "ERIK-482"

	affiliates := new(MockAffiliateRepository)
	resolver := NewAttributionResolver(affiliates, new(MockClickRepository))

	affiliates.On("FindActiveByCode", ctx, "ERIK-482").Return(nil, shared.ErrNotFound)

	attr, err := resolver.Resolve(ctx, o)

	assert.NoError(t, err)
	assert.Nil(t, attr)
	affiliates.AssertNotCalled(t, "FindActiveByDiscountCode", ctx, "ERIK-482")
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	o := testOrder(t, 100)
	o.AffiliateCode = "ERIK-482"

	affiliates := new(MockAffiliateRepository)
	resolver := NewAttributionResolver(affiliates, new(MockClickRepository))

	storeErr := errors.New("connection refused")
	affiliates.On("FindActiveByCode", ctx, "ERIK-482").Return(nil, storeErr)

	_, err := resolver.Resolve(ctx, o)

	assert.ErrorIs(t, err, storeErr)
}
