package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID uint64) (*models.Cart, error)
	GetWithItems(ctx context.Context, cartID uint64) (*models.Cart, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db}
}

// GetOrCreateByUserID is safe under concurrent first calls: the unique
// user_id index lets the loser of the race re-read the winner's row.
func (r *cartRepository) GetOrCreateByUserID(ctx context.Context, userID uint64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !IsDuplicateKey(err) {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetWithItems(ctx context.Context, cartID uint64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Category").
		First(&cart, "id = ?", cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}
