package conversion

import (
	"context"
	"strings"

	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClickRecorder persists inbound referral clicks. It is the write half of
// the attribution pipeline; the conversion service reads what it records.
type ClickRecorder struct {
	affiliates affiliate.Repository
	clicks     affiliate.ClickRepository
	logger     *zap.Logger
}

// NewClickRecorder creates a new ClickRecorder
func NewClickRecorder(affiliates affiliate.Repository, clicks affiliate.ClickRepository, logger *zap.Logger) *ClickRecorder {
	return &ClickRecorder{
		affiliates: affiliates,
		clicks:     clicks,
		logger:     logger,
	}
}

// Record stores a referral-link visit. Unknown or inactive codes fail with
// NotFound: click logging is first-party storefront instrumentation, so a
// dead code is a configuration bug worth surfacing, unlike settlement where
// an unresolvable code must never fail the order.
func (r *ClickRecorder) Record(ctx context.Context, req RecordClickRequest) (*RecordClickResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, shared.ErrInvalidInput
	}

	aff, err := r.affiliates.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	click, err := affiliate.NewClick(aff.ID, code, req.IPAddress, req.UserAgent, req.LandingPage)
	if err != nil {
		return nil, err
	}

	if err := r.clicks.Create(ctx, click); err != nil {
		return nil, err
	}

	// The click counter is a vanity metric: a failed increment must not fail
	// the recorded click, and drift is tolerable.
	if err := r.affiliates.IncrementClicks(ctx, aff.ID); err != nil {
		r.logger.Warn("click counter increment failed",
			zap.String("affiliate_id", aff.ID.String()),
			zap.String("code", code),
			zap.Error(err),
		)
	}

	return &RecordClickResponse{
		ClickID:     click.ID,
		AffiliateID: aff.ID,
	}, nil
}
