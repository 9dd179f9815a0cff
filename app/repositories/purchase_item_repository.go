package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type PurchaseItemRepository interface {
	Create(ctx context.Context, item *models.PurchaseItem) error
	ListByPurchase(ctx context.Context, purchaseID uint64) ([]models.PurchaseItem, error)
}

type purchaseItemRepository struct {
	db *gorm.DB
}

func NewPurchaseItemRepository(db *gorm.DB) PurchaseItemRepository {
	return &purchaseItemRepository{db}
}

func (r *purchaseItemRepository) Create(ctx context.Context, item *models.PurchaseItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *purchaseItemRepository) ListByPurchase(ctx context.Context, purchaseID uint64) ([]models.PurchaseItem, error) {
	var items []models.PurchaseItem
	err := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).Order("id ASC").Find(&items).Error
	return items, err
}
