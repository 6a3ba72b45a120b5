package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClickRepository implements affiliate.ClickRepository using GORM
type GormClickRepository struct {
	db *gorm.DB
}

var _ affiliate.ClickRepository = (*GormClickRepository)(nil)

// NewGormClickRepository creates a new GormClickRepository
func NewGormClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// Create inserts a new referral click event
func (r *GormClickRepository) Create(ctx context.Context, click *affiliate.AffiliateClick) error {
	model := models.AffiliateClickModelFromDomain(click)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a click by its ID
func (r *GormClickRepository) FindByID(ctx context.Context, id uuid.UUID) (*affiliate.AffiliateClick, error) {
	var model models.AffiliateClickModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestUnconverted returns the most recent unconverted click for a code
// recorded after the given cutoff
func (r *GormClickRepository) FindLatestUnconverted(ctx context.Context, code string, after time.Time) (*affiliate.AffiliateClick, error) {
	var model models.AffiliateClickModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND converted = ? AND created_at > ?", strings.ToUpper(code), false, after).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// MarkConverted sets the converted flag with a guarded update. The WHERE
// clause only matches unconverted rows, so the false->true transition
// happens at most once even under concurrent callers.
func (r *GormClickRepository) MarkConverted(ctx context.Context, id, orderID uuid.UUID, commission decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.AffiliateClickModel{}).
		Where("id = ? AND converted = ?", id, false).
		Updates(map[string]interface{}{
			"converted":         true,
			"order_id":          orderID,
			"commission_amount": commission,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ListByAffiliate lists clicks for one affiliate with pagination
func (r *GormClickRepository) ListByAffiliate(ctx context.Context, affiliateID uuid.UUID, filter shared.Filter) ([]affiliate.AffiliateClick, int64, error) {
	var clickModels []models.AffiliateClickModel
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.AffiliateClickModel{}).
		Where("affiliate_id = ?", affiliateID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	if err := query.Find(&clickModels).Error; err != nil {
		return nil, 0, err
	}

	clicks := make([]affiliate.AffiliateClick, len(clickModels))
	for i := range clickModels {
		clicks[i] = *clickModels[i].ToDomain()
	}
	return clicks, total, nil
}
