package models

import (
	"time"

	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint64              `gorm:"primaryKey;autoIncrement"`
	Name          string              `gorm:"size:255;not null;index"`
	Slug          string              `gorm:"size:255;not null;uniqueIndex"`
	Description   string              `gorm:"type:text"`
	Price         decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	DiscountPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	ImageURL      *string             `gorm:"size:500"`
	Stock         int                 `gorm:"not null"`
	CategoryID    *uint64             `gorm:"index"`
	Category      *Category           `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	SellerID      *uint64             `gorm:"index"`
	Seller        *User               `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE;"`
	IsFeatured    bool                `gorm:"not null;index"`
	IsActive      bool                `gorm:"not null;index"`
	CreatedAt     time.Time           `gorm:"index"`
	UpdatedAt     time.Time
}

func (p *Product) BeforeSave(tx *gorm.DB) (err error) {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return
}

// HasDiscount is true only when a discount price is set and lower than the price.
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice.Valid && p.DiscountPrice.Decimal.LessThan(p.Price)
}

// FinalPrice is the price a buyer pays for one unit.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.HasDiscount() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// DiscountPercentage truncates toward zero, so 100 -> 80 gives 20 and 30 -> 20 gives 33.
func (p *Product) DiscountPercentage() int {
	if !p.HasDiscount() {
		return 0
	}
	return calc.DiscountPercentage(p.Price, p.DiscountPrice.Decimal)
}

func (p *Product) IsAvailable(quantity int) bool {
	return p.IsActive && p.Stock >= quantity
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
