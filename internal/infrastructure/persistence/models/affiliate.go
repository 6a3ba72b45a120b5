package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
)

// AffiliateModel is the persistence model for the Affiliate domain entity.
// The conversions, total_earnings and balance columns form the commission
// ledger; they are only written by the ledger's atomic settlement update.
type AffiliateModel struct {
	BaseModel
	Code           string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string           `gorm:"type:varchar(200);not null"`
	Email          string           `gorm:"type:varchar(200);index"`
	Status         affiliate.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	CommissionRate decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountCode   string           `gorm:"type:varchar(50);index"`
	Clicks         int64            `gorm:"not null;default:0"`
	Conversions    int64            `gorm:"not null;default:0"`
	TotalEarnings  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Balance        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AffiliateModel) TableName() string {
	return "affiliates"
}

// ToDomain converts the persistence model to a domain Affiliate entity.
func (m *AffiliateModel) ToDomain() *affiliate.Affiliate {
	return &affiliate.Affiliate{
		BaseEntity:     m.BaseModel.ToDomain(),
		Code:           m.Code,
		Name:           m.Name,
		Email:          m.Email,
		Status:         m.Status,
		CommissionRate: m.CommissionRate,
		DiscountCode:   m.DiscountCode,
		Stats: affiliate.Stats{
			Clicks:        m.Clicks,
			Conversions:   m.Conversions,
			TotalEarnings: m.TotalEarnings,
			Balance:       m.Balance,
		},
	}
}

// FromDomain populates the persistence model from a domain Affiliate entity.
func (m *AffiliateModel) FromDomain(a *affiliate.Affiliate) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Code = a.Code
	m.Name = a.Name
	m.Email = a.Email
	m.Status = a.Status
	m.CommissionRate = a.CommissionRate
	m.DiscountCode = a.DiscountCode
	m.Clicks = a.Stats.Clicks
	m.Conversions = a.Stats.Conversions
	m.TotalEarnings = a.Stats.TotalEarnings
	m.Balance = a.Stats.Balance
}

// AffiliateModelFromDomain creates a new persistence model from a domain Affiliate entity.
func AffiliateModelFromDomain(a *affiliate.Affiliate) *AffiliateModel {
	m := &AffiliateModel{}
	m.FromDomain(a)
	return m
}

// AffiliateClickModel is the persistence model for the AffiliateClick domain entity.
type AffiliateClickModel struct {
	BaseModel
	AffiliateID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Code             string           `gorm:"type:varchar(50);not null;index:idx_clicks_code_created"`
	IPAddress        string           `gorm:"type:varchar(45)"`
	UserAgent        string           `gorm:"type:varchar(500)"`
	LandingPage      string           `gorm:"type:varchar(500)"`
	Converted        bool             `gorm:"not null;default:false"`
	OrderID          *uuid.UUID       `gorm:"type:uuid;index"`
	CommissionAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (AffiliateClickModel) TableName() string {
	return "affiliate_clicks"
}

// ToDomain converts the persistence model to a domain AffiliateClick entity.
func (m *AffiliateClickModel) ToDomain() *affiliate.AffiliateClick {
	return &affiliate.AffiliateClick{
		BaseEntity:       m.BaseModel.ToDomain(),
		AffiliateID:      m.AffiliateID,
		Code:             m.Code,
		IPAddress:        m.IPAddress,
		UserAgent:        m.UserAgent,
		LandingPage:      m.LandingPage,
		Converted:        m.Converted,
		OrderID:          m.OrderID,
		CommissionAmount: m.CommissionAmount,
	}
}

// FromDomain populates the persistence model from a domain AffiliateClick entity.
func (m *AffiliateClickModel) FromDomain(c *affiliate.AffiliateClick) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.AffiliateID = c.AffiliateID
	m.Code = c.Code
	m.IPAddress = c.IPAddress
	m.UserAgent = c.UserAgent
	m.LandingPage = c.LandingPage
	m.Converted = c.Converted
	m.OrderID = c.OrderID
	m.CommissionAmount = c.CommissionAmount
}

// AffiliateClickModelFromDomain creates a new persistence model from a domain AffiliateClick entity.
func AffiliateClickModelFromDomain(c *affiliate.AffiliateClick) *AffiliateClickModel {
	m := &AffiliateClickModel{}
	m.FromDomain(c)
	return m
}
