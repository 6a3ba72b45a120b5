package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/conversion"
)

// ClickHandler ingests referral-link clicks from storefront instrumentation
type ClickHandler struct {
	BaseHandler
	recorder   *conversion.ClickRecorder
	middleware []gin.HandlerFunc
}

// NewClickHandler creates a new ClickHandler. Extra middleware, such as a
// stricter rate limiter for the click ingestion route, is applied to the
// click group only.
func NewClickHandler(recorder *conversion.ClickRecorder, middleware ...gin.HandlerFunc) *ClickHandler {
	return &ClickHandler{recorder: recorder, middleware: middleware}
}

// RecordClickRequest is the click ingestion payload. IP and user agent come
// from the request itself, not the body.
type RecordClickRequest struct {
	Code        string `json:"code" binding:"required,affiliate_code"`
	LandingPage string `json:"landing_page" binding:"omitempty,max=2048"`
}

// RecordClick handles POST /affiliate/clicks
func (h *ClickHandler) RecordClick(c *gin.Context) {
	var req RecordClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.recorder.Record(c.Request.Context(), conversion.RecordClickRequest{
		Code:        req.Code,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		LandingPage: req.LandingPage,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// RegisterRoutes registers click ingestion routes
func (h *ClickHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clicks := rg.Group("/affiliate/clicks")
	clicks.Use(h.middleware...)
	{
		clicks.POST("", h.RecordClick)
	}
}
