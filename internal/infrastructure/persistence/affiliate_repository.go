package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAffiliateRepository implements affiliate.Repository using GORM
type GormAffiliateRepository struct {
	db *gorm.DB
}

var _ affiliate.Repository = (*GormAffiliateRepository)(nil)

// NewGormAffiliateRepository creates a new GormAffiliateRepository
func NewGormAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// FindByID finds an affiliate by its ID
func (r *GormAffiliateRepository) FindByID(ctx context.Context, id uuid.UUID) (*affiliate.Affiliate, error) {
	var model models.AffiliateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByCode finds an active affiliate by its public code.
// Pending and suspended affiliates behave as absent.
func (r *GormAffiliateRepository) FindActiveByCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	var model models.AffiliateModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND status = ?", strings.ToUpper(code), affiliate.StatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByDiscountCode finds an active affiliate whose mapped promotion code matches
func (r *GormAffiliateRepository) FindActiveByDiscountCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	if code == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AffiliateModel
	if err := r.db.WithContext(ctx).
		Where("discount_code = ? AND status = ?", strings.ToUpper(code), affiliate.StatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an affiliate
func (r *GormAffiliateRepository) Save(ctx context.Context, a *affiliate.Affiliate) error {
	model := models.AffiliateModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// List lists affiliates with pagination
func (r *GormAffiliateRepository) List(ctx context.Context, filter shared.Filter) ([]affiliate.Affiliate, int64, error) {
	var affiliateModels []models.AffiliateModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AffiliateModel{})
	if filter.Search != "" {
		pattern := "%" + strings.ToUpper(filter.Search) + "%"
		query = query.Where("code LIKE ? OR UPPER(name) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	if err := query.Find(&affiliateModels).Error; err != nil {
		return nil, 0, err
	}

	affiliates := make([]affiliate.Affiliate, len(affiliateModels))
	for i := range affiliateModels {
		affiliates[i] = *affiliateModels[i].ToDomain()
	}
	return affiliates, total, nil
}

// IncrementClicks bumps the click counter with a single SQL increment.
// Click counts are reporting data; a lost increment is tolerable and the
// caller only logs failures.
func (r *GormAffiliateRepository) IncrementClicks(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.AffiliateModel{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// sortableColumns is the allowlist for user-supplied ordering. Anything not
// listed falls back to created_at to keep ORDER BY injection-proof.
var sortableColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"status":         true,
	"clicks":         true,
	"conversions":    true,
	"total_earnings": true,
	"balance":        true,
	"number":         true,
}

// applyPagination applies ordering and pagination from a shared.Filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !sortableColumns[orderBy] {
		orderBy = "created_at"
	}
	orderDir := strings.ToLower(filter.OrderDir)
	if orderDir != "asc" {
		orderDir = "desc"
	}
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
