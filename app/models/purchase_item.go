package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseItem is a snapshot: later product edits never touch it.
type PurchaseItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	PurchaseID  uint64          `gorm:"not null;index"`
	ProductName string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (pi *PurchaseItem) CalculateSubtotal() {
	pi.Subtotal = pi.Price.Mul(decimal.NewFromInt(int64(pi.Quantity)))
}

func (pi *PurchaseItem) BeforeSave(tx *gorm.DB) (err error) {
	pi.CalculateSubtotal()
	return
}
