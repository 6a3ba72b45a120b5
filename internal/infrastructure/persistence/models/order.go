package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order domain entity.
// The conversion_processed flag is the settlement idempotency guard; the
// ledger claims an order with a guarded update on it.
type OrderModel struct {
	BaseModel
	Number        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Channel       order.Channel   `gorm:"type:varchar(10);not null"`
	CustomerEmail string          `gorm:"type:varchar(200);index"`
	Currency      string          `gorm:"type:varchar(3)"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	AffiliateCode    string     `gorm:"type:varchar(50)"`
	ClickID          *uuid.UUID `gorm:"type:uuid"`
	DiscountCode     string     `gorm:"type:varchar(50)"`
	PaymentReference string     `gorm:"type:varchar(100);index"`

	AffiliateCommission   decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	AffiliateID           *uuid.UUID                  `gorm:"type:uuid;index"`
	AttributionMethod     affiliate.AttributionMethod `gorm:"type:varchar(20)"`
	ConversionProcessed   bool                        `gorm:"not null;default:false"`
	ConversionProcessedAt *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseEntity:            m.BaseModel.ToDomain(),
		Number:                m.Number,
		Channel:               m.Channel,
		CustomerEmail:         m.CustomerEmail,
		Currency:              m.Currency,
		Subtotal:              m.Subtotal,
		Total:                 m.Total,
		AffiliateCode:         m.AffiliateCode,
		ClickID:               m.ClickID,
		DiscountCode:          m.DiscountCode,
		PaymentReference:      m.PaymentReference,
		AffiliateCommission:   m.AffiliateCommission,
		AffiliateID:           m.AffiliateID,
		AttributionMethod:     m.AttributionMethod,
		ConversionProcessed:   m.ConversionProcessed,
		ConversionProcessedAt: m.ConversionProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Number = o.Number
	m.Channel = o.Channel
	m.CustomerEmail = o.CustomerEmail
	m.Currency = o.Currency
	m.Subtotal = o.Subtotal
	m.Total = o.Total
	m.AffiliateCode = o.AffiliateCode
	m.ClickID = o.ClickID
	m.DiscountCode = o.DiscountCode
	m.PaymentReference = o.PaymentReference
	m.AffiliateCommission = o.AffiliateCommission
	m.AffiliateID = o.AffiliateID
	m.AttributionMethod = o.AttributionMethod
	m.ConversionProcessed = o.ConversionProcessed
	m.ConversionProcessedAt = o.ConversionProcessedAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
