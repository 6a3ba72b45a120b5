package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/application/conversion"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes order intake and conversion settlement endpoints
type OrderHandler struct {
	BaseHandler
	service *conversion.ConversionService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *conversion.ConversionService) *OrderHandler {
	return &OrderHandler{service: service}
}

// OrderResponse is the canonical order wire shape
type OrderResponse struct {
	ID                    uuid.UUID       `json:"id"`
	Number                string          `json:"number"`
	Channel               string          `json:"channel"`
	CustomerEmail         string          `json:"customer_email,omitempty"`
	Currency              string          `json:"currency,omitempty"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Total                 decimal.Decimal `json:"total"`
	AffiliateCode         string          `json:"affiliate_code,omitempty"`
	ClickID               *uuid.UUID      `json:"click_id,omitempty"`
	DiscountCode          string          `json:"discount_code,omitempty"`
	PaymentReference      string          `json:"payment_reference,omitempty"`
	AffiliateCommission   decimal.Decimal `json:"affiliate_commission"`
	AffiliateID           *uuid.UUID      `json:"affiliate_id,omitempty"`
	AttributionMethod     string          `json:"attribution_method,omitempty"`
	ConversionProcessed   bool            `json:"conversion_processed"`
	ConversionProcessedAt *time.Time      `json:"conversion_processed_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:                    o.ID,
		Number:                o.Number,
		Channel:               string(o.Channel),
		CustomerEmail:         o.CustomerEmail,
		Currency:              o.Currency,
		Subtotal:              o.Subtotal,
		Total:                 o.Total,
		AffiliateCode:         o.AffiliateCode,
		ClickID:               o.ClickID,
		DiscountCode:          o.DiscountCode,
		PaymentReference:      o.PaymentReference,
		AffiliateCommission:   o.AffiliateCommission,
		AffiliateID:           o.AffiliateID,
		AttributionMethod:     o.AttributionMethod.String(),
		ConversionProcessed:   o.ConversionProcessed,
		ConversionProcessedAt: o.ConversionProcessedAt,
		CreatedAt:             o.CreatedAt,
	}
}

// CreateOrder handles POST /orders. The payload is the raw checkout shape;
// normalization happens in the application layer.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var payload conversion.OrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.ValidationError(c, err)
		return
	}

	o, err := h.service.RegisterOrder(c.Request.Context(), payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toOrderResponse(o))
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	o, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// ProcessConversion handles POST /orders/:id/conversion. The endpoint is
// idempotent: a replay for a settled order returns the prior outcome with
// already_processed set.
func (h *OrderHandler) ProcessConversion(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	result, err := h.service.ProcessOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/conversion", h.ProcessConversion)
	}
}
