package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	ExistsByPaymentReference(ctx context.Context, reference string) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]models.Purchase, error)
	GetByIDForUser(ctx context.Context, id, userID uint64) (*models.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if err := r.db.WithContext(ctx).Omit("Items", "User").Create(purchase).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *purchaseRepository) ExistsByPaymentReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("purchase_items.id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) GetByIDForUser(ctx context.Context, id, userID uint64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("purchase_items.id ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}
