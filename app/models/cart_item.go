package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement"`
	CartID    uint64   `gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID uint64   `gorm:"not null;uniqueIndex:idx_cart_product;index"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;"`
	Quantity  int      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal uses the product's current final price, so it is never stored.
func (ci *CartItem) Subtotal() decimal.Decimal {
	if ci.Product == nil {
		return decimal.Zero
	}
	return ci.Product.FinalPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
