package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// AffiliateHandler exposes the affiliate directory. The public surface is a
// single code lookup used by storefront pages; everything else sits behind
// admin authentication.
type AffiliateHandler struct {
	BaseHandler
	affiliates affiliate.Repository
	clicks     affiliate.ClickRepository
	adminAuth  gin.HandlerFunc
}

// NewAffiliateHandler creates a new AffiliateHandler
func NewAffiliateHandler(
	affiliates affiliate.Repository,
	clicks affiliate.ClickRepository,
	adminAuth gin.HandlerFunc,
) *AffiliateHandler {
	return &AffiliateHandler{
		affiliates: affiliates,
		clicks:     clicks,
		adminAuth:  adminAuth,
	}
}

// PublicAffiliateResponse is the storefront-facing affiliate shape. It
// exposes nothing an affiliate's visitors should not see.
type PublicAffiliateResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AffiliateResponse is the admin-facing affiliate shape
type AffiliateResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Status         string          `json:"status"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	Clicks         int64           `json:"clicks"`
	Conversions    int64           `json:"conversions"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toAffiliateResponse(a *affiliate.Affiliate) AffiliateResponse {
	return AffiliateResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Email:          a.Email,
		Status:         a.Status.String(),
		CommissionRate: a.CommissionRate,
		DiscountCode:   a.DiscountCode,
		Clicks:         a.Stats.Clicks,
		Conversions:    a.Stats.Conversions,
		TotalEarnings:  a.Stats.TotalEarnings,
		Balance:        a.Stats.Balance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ClickResponse is the admin-facing click shape
type ClickResponse struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	IPAddress        string           `json:"ip_address,omitempty"`
	LandingPage      string           `json:"landing_page,omitempty"`
	Converted        bool             `json:"converted"`
	OrderID          *uuid.UUID       `json:"order_id,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toClickResponse(click *affiliate.AffiliateClick) ClickResponse {
	return ClickResponse{
		ID:               click.ID,
		Code:             click.Code,
		IPAddress:        click.IPAddress,
		LandingPage:      click.LandingPage,
		Converted:        click.Converted,
		OrderID:          click.OrderID,
		CommissionAmount: click.CommissionAmount,
		CreatedAt:        click.CreatedAt,
	}
}

// LookupByCode handles GET /affiliate/affiliates/:code. Only active
// affiliates resolve; suspended and pending codes look absent.
func (h *AffiliateHandler) LookupByCode(c *gin.Context) {
	code := c.Param("code")

	a, err := h.affiliates.FindActiveByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PublicAffiliateResponse{Code: a.Code, Name: a.Name})
}

// CreateAffiliateRequest is the admin affiliate creation payload
type CreateAffiliateRequest struct {
	Name           string          `json:"name" binding:"required,max=200"`
	Email          string          `json:"email" binding:"omitempty,email"`
	Code           string          `json:"code" binding:"required,affiliate_code"`
	CommissionRate decimal.Decimal `json:"commission_rate" binding:"required"`
	DiscountCode   string          `json:"discount_code"`
}

// Create handles POST /admin/affiliates. New affiliates start pending.
func (h *AffiliateHandler) Create(c *gin.Context) {
	var req CreateAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	a, err := affiliate.NewAffiliate(req.Name, req.Email, req.Code, req.CommissionRate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.DiscountCode != "" {
		a.SetDiscountCode(req.DiscountCode)
	}

	if err := h.affiliates.Save(c.Request.Context(), a); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAffiliateResponse(a))
}

// Get handles GET /admin/affiliates/:id
func (h *AffiliateHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	a, err := h.affiliates.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAffiliateResponse(a))
}

// List handles GET /admin/affiliates
func (h *AffiliateHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	affiliates, total, err := h.affiliates.List(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]AffiliateResponse, 0, len(affiliates))
	for i := range affiliates {
		items = append(items, toAffiliateResponse(&affiliates[i]))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Activate handles POST /admin/affiliates/:id/activate
func (h *AffiliateHandler) Activate(c *gin.Context) {
	h.transition(c, func(a *affiliate.Affiliate) error { return a.Activate() })
}

// Suspend handles POST /admin/affiliates/:id/suspend. Suspension does not
// touch the affiliate's links; future orders simply settle without credit.
func (h *AffiliateHandler) Suspend(c *gin.Context) {
	h.transition(c, func(a *affiliate.Affiliate) error { return a.Suspend() })
}

// SetDiscountCodeRequest maps a storefront promotion code to the affiliate
type SetDiscountCodeRequest struct {
	DiscountCode string `json:"discount_code" binding:"required,max=50"`
}

// SetDiscountCode handles PUT /admin/affiliates/:id/discount-code
func (h *AffiliateHandler) SetDiscountCode(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req SetDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	a, err := h.affiliates.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	a.SetDiscountCode(req.DiscountCode)

	if err := h.affiliates.Save(c.Request.Context(), a); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAffiliateResponse(a))
}

// ListClicks handles GET /admin/affiliates/:id/clicks
func (h *AffiliateHandler) ListClicks(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	clicks, total, err := h.clicks.ListByAffiliate(c.Request.Context(), id, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ClickResponse, 0, len(clicks))
	for i := range clicks {
		items = append(items, toClickResponse(&clicks[i]))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

func (h *AffiliateHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid affiliate id")
		return uuid.Nil, false
	}
	return id, true
}

// transition loads the affiliate, applies a state change and saves it
func (h *AffiliateHandler) transition(c *gin.Context, apply func(*affiliate.Affiliate) error) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	a, err := h.affiliates.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := apply(a); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.affiliates.Save(c.Request.Context(), a); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAffiliateResponse(a))
}

// RegisterRoutes registers public and admin affiliate routes
func (h *AffiliateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/affiliate/affiliates")
	{
		public.GET("/:code", h.LookupByCode)
	}

	admin := rg.Group("/admin/affiliates")
	if h.adminAuth != nil {
		admin.Use(h.adminAuth)
	}
	{
		admin.POST("", h.Create)
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.POST("/:id/activate", h.Activate)
		admin.POST("/:id/suspend", h.Suspend)
		admin.PUT("/:id/discount-code", h.SetDiscountCode)
		admin.GET("/:id/clicks", h.ListClicks)
	}
}
