package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestNewOrder(t *testing.T) {
	t.Run("valid order", func(t *testing.T) {
		o, err := New("SO-20260831-001", ChannelB2C, decimal.NewFromInt(1000), decimal.NewFromInt(1080))

		assert.NoError(t, err)
		assert.Equal(t, "SO-20260831-001", o.Number)
		assert.False(t, o.ConversionProcessed)
		assert.True(t, o.AffiliateCommission.IsZero())
	})

	t.Run("empty number rejected", func(t *testing.T) {
		_, err := New("", ChannelB2C, decimal.NewFromInt(10), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("unknown channel rejected", func(t *testing.T) {
		_, err := New("SO-1", Channel("wholesale"), decimal.NewFromInt(10), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("negative amounts rejected", func(t *testing.T) {
		_, err := New("SO-1", ChannelB2B, decimal.NewFromInt(-10), decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

func TestCommissionBase(t *testing.T) {
	o, _ := New("SO-1", ChannelB2C, decimal.NewFromInt(1000), decimal.NewFromInt(1080))

	assert.True(t, o.CommissionBase().Equal(decimal.NewFromInt(1000)))
}

func TestHasReferralSignal(t *testing.T) {
	o, _ := New("SO-1", ChannelB2C, decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.False(t, o.HasReferralSignal())

	o.AffiliateCode = "ERIK-482"
	assert.True(t, o.HasReferralSignal())

	o.AffiliateCode = ""
	clickID := uuid.New()
	o.ClickID = &clickID
	assert.True(t, o.HasReferralSignal())

	o.ClickID = nil
	o.DiscountCode = "SUMMER20"
	assert.True(t, o.HasReferralSignal())
}

func TestMarkConversionProcessed(t *testing.T) {
	affiliateID := uuid.New()

	t.Run("records the settlement outcome", func(t *testing.T) {
		o, _ := New("SO-1", ChannelB2C, decimal.NewFromInt(1000), decimal.NewFromInt(1000))

		err := o.MarkConversionProcessed(&affiliateID, decimal.NewFromInt(150), affiliate.AttributionMethodServer)

		assert.NoError(t, err)
		assert.True(t, o.ConversionProcessed)
		assert.NotNil(t, o.ConversionProcessedAt)
		assert.Equal(t, affiliateID, *o.AffiliateID)
		assert.Equal(t, affiliate.AttributionMethodServer, o.AttributionMethod)
		assert.True(t, o.AffiliateCommission.Equal(decimal.NewFromInt(150)))
	})

	t.Run("second settlement is rejected", func(t *testing.T) {
		o, _ := New("SO-1", ChannelB2C, decimal.NewFromInt(1000), decimal.NewFromInt(1000))
		_ = o.MarkConversionProcessed(&affiliateID, decimal.NewFromInt(150), affiliate.AttributionMethodServer)

		err := o.MarkConversionProcessed(&affiliateID, decimal.NewFromInt(150), affiliate.AttributionMethodServer)

		assert.ErrorIs(t, err, shared.ErrAlreadySettled)
	})

	t.Run("no-attribution settlement keeps nil affiliate", func(t *testing.T) {
		o, _ := New("SO-1", ChannelB2C, decimal.NewFromInt(1000), decimal.NewFromInt(1000))

		err := o.MarkConversionProcessed(nil, decimal.Zero, "")

		assert.NoError(t, err)
		assert.True(t, o.ConversionProcessed)
		assert.Nil(t, o.AffiliateID)
	})
}
