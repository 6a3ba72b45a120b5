package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommissionLedger implements affiliate.Ledger using GORM.
//
// Settle runs the idempotency check and the stats mutation inside one
// database transaction. The order row is claimed with a guarded update on
// conversion_processed, so of two concurrent settlement attempts for the
// same order exactly one claim succeeds; the loser observes zero affected
// rows and returns shared.ErrAlreadySettled without touching the affiliate
// counters.
type GormCommissionLedger struct {
	db *gorm.DB
}

var _ affiliate.Ledger = (*GormCommissionLedger)(nil)

// NewGormCommissionLedger creates a new GormCommissionLedger
func NewGormCommissionLedger(db *gorm.DB) *GormCommissionLedger {
	return &GormCommissionLedger{db: db}
}

// Settle applies one settlement with exactly-once semantics per order
func (l *GormCommissionLedger) Settle(ctx context.Context, s affiliate.Settlement) error {
	if s.OrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if s.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount cannot be negative")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		annotation := map[string]interface{}{
			"affiliate_commission":    s.Amount,
			"attribution_method":      s.Method,
			"conversion_processed":    true,
			"conversion_processed_at": now,
			"updated_at":              now,
		}
		if s.AffiliateID != uuid.Nil {
			annotation["affiliate_id"] = s.AffiliateID
		}

		claim := tx.Model(&models.OrderModel{}).
			Where("id = ? AND conversion_processed = ?", s.OrderID, false).
			Updates(annotation)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			// Either already settled or the order does not exist;
			// disambiguate so callers get the right error.
			var count int64
			if err := tx.Model(&models.OrderModel{}).
				Where("id = ?", s.OrderID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrAlreadySettled
		}

		// Orders without attribution or with a zero commission settle
		// without crediting anyone.
		if s.AffiliateID == uuid.Nil || !s.Amount.IsPositive() {
			return nil
		}

		credit := tx.Model(&models.AffiliateModel{}).
			Where("id = ?", s.AffiliateID).
			Updates(map[string]interface{}{
				"conversions":    gorm.Expr("conversions + ?", 1),
				"total_earnings": gorm.Expr("total_earnings + ?", s.Amount),
				"balance":        gorm.Expr("balance + ?", s.Amount),
				"updated_at":     now,
			})
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			// Rolls back the order claim too; a settlement against a
			// missing affiliate must not leave the order annotated.
			return shared.ErrNotFound
		}
		return nil
	})
}
