package conversion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockAffiliateRepository is a mock implementation of affiliate.Repository
type MockAffiliateRepository struct {
	mock.Mock
}

func (m *MockAffiliateRepository) FindByID(ctx context.Context, id uuid.UUID) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) FindActiveByCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) FindActiveByDiscountCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) Save(ctx context.Context, a *affiliate.Affiliate) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAffiliateRepository) List(ctx context.Context, filter shared.Filter) ([]affiliate.Affiliate, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]affiliate.Affiliate), args.Get(1).(int64), args.Error(2)
}

func (m *MockAffiliateRepository) IncrementClicks(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClickRepository is a mock implementation of affiliate.ClickRepository
type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) Create(ctx context.Context, click *affiliate.AffiliateClick) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockClickRepository) FindByID(ctx context.Context, id uuid.UUID) (*affiliate.AffiliateClick, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.AffiliateClick), args.Error(1)
}

func (m *MockClickRepository) FindLatestUnconverted(ctx context.Context, code string, after time.Time) (*affiliate.AffiliateClick, error) {
	args := m.Called(ctx, code, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.AffiliateClick), args.Error(1)
}

func (m *MockClickRepository) MarkConverted(ctx context.Context, id, orderID uuid.UUID, commission decimal.Decimal) error {
	args := m.Called(ctx, id, orderID, commission)
	return args.Error(0)
}

func (m *MockClickRepository) ListByAffiliate(ctx context.Context, affiliateID uuid.UUID, filter shared.Filter) ([]affiliate.AffiliateClick, int64, error) {
	args := m.Called(ctx, affiliateID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]affiliate.AffiliateClick), args.Get(1).(int64), args.Error(2)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentReference(ctx context.Context, ref string) (*order.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

// MockLedger is a mock implementation of affiliate.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Settle(ctx context.Context, s affiliate.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
