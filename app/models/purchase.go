package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodPaypal    PaymentMethod = "paypal"
	PaymentMethodGooglePay PaymentMethod = "google_pay"
	PaymentMethodApplePay  PaymentMethod = "apple_pay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodGooglePay, PaymentMethodApplePay:
		return true
	}
	return false
}

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

type Purchase struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement"`
	OrderCode        string          `gorm:"size:32;not null;uniqueIndex"`
	UserID           uint64          `gorm:"not null;index"`
	User             *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentReference *string         `gorm:"size:255;uniqueIndex"`
	PaymentMethod    PaymentMethod   `gorm:"size:50;not null"`
	Status           PurchaseStatus  `gorm:"size:20;not null;default:'pending'"`
	Items            []PurchaseItem  `gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt        time.Time       `gorm:"index"`
	UpdatedAt        time.Time
}

func NewOrderCode(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.OrderCode == "" {
		p.OrderCode = NewOrderCode(time.Now())
	}
	if p.Status == "" {
		p.Status = PurchaseStatusPending
	}
	return
}
