package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/conversion"
	"github.com/storefront/backend/internal/domain/shared"
)

// WebhookHandler receives payment-provider webhook deliveries. Providers
// redeliver events aggressively, so the handler dedups on event ID before
// invoking the conversion core; the ledger's per-order guard backstops any
// delivery the store misses.
type WebhookHandler struct {
	BaseHandler
	service     *conversion.ConversionService
	idempotency shared.IdempotencyStore
	dedupTTL    time.Duration
	logger      *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	service *conversion.ConversionService,
	idempotency shared.IdempotencyStore,
	dedupTTL time.Duration,
	logger *zap.Logger,
) *WebhookHandler {
	if dedupTTL <= 0 {
		dedupTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &WebhookHandler{
		service:     service,
		idempotency: idempotency,
		dedupTTL:    dedupTTL,
		logger:      logger,
	}
}

// HandlePaymentEvent handles POST /webhooks/payment
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	var evt conversion.PaymentEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		h.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()

	processed, err := h.idempotency.IsProcessed(ctx, evt.EventID)
	if err != nil {
		// Dedup is best effort. With the store down the ledger guard still
		// prevents double credits, so process rather than reject.
		h.logger.Warn("webhook dedup store unavailable",
			zap.String("event_id", evt.EventID),
			zap.Error(err),
		)
	} else if processed {
		h.Success(c, gin.H{"status": "duplicate", "event_id": evt.EventID})
		return
	}

	result, err := h.service.ProcessPaymentEvent(ctx, evt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Marked only after a successful settlement so a failed delivery stays
	// retryable.
	if _, err := h.idempotency.MarkProcessed(ctx, evt.EventID, h.dedupTTL); err != nil {
		h.logger.Warn("failed to mark webhook event processed",
			zap.String("event_id", evt.EventID),
			zap.Error(err),
		)
	}

	h.Success(c, result)
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/payment", h.HandlePaymentEvent)
	}
}
