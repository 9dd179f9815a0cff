package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every store so a transaction can hand all of them to a callback.
type Repository struct {
	DB            *gorm.DB
	Users         UserRepositoryImpl
	Categories    CategoryRepositoryImpl
	Products      ProductRepositoryImpl
	Carts         CartRepository
	CartItems     CartItemRepositoryImpl
	Purchases     PurchaseRepository
	PurchaseItems PurchaseItemRepository
}

// Transactor runs fn with repositories bound to one database transaction.
// A non-nil error from fn rolls the transaction back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *Repository) error) error
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		Users:         NewUserRepository(db),
		Categories:    NewCategoryRepository(db),
		Products:      NewProductRepository(db),
		Carts:         NewCartRepository(db),
		CartItems:     NewCartItemRepository(db),
		Purchases:     NewPurchaseRepository(db),
		PurchaseItems: NewPurchaseItemRepository(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
