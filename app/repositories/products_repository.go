package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// finalPriceSQL mirrors models.Product.FinalPrice.
const finalPriceSQL = "CASE WHEN products.discount_price IS NOT NULL AND products.discount_price < products.price THEN products.discount_price ELSE products.price END"

var productOrderings = map[string]string{
	"price":       "products.price ASC",
	"-price":      "products.price DESC",
	"created_at":  "products.created_at ASC",
	"-created_at": "products.created_at DESC",
	"name":        "products.name ASC",
	"-name":       "products.name DESC",
}

const DefaultProductOrdering = "-created_at"

// ValidProductOrdering reports whether ordering is one of the accepted sort keys.
func ValidProductOrdering(ordering string) bool {
	_, ok := productOrderings[ordering]
	return ok
}

// ProductFilter narrows the active catalog. Zero values disable a filter.
type ProductFilter struct {
	Search       string
	Ordering     string
	CategorySlug string
	Featured     bool
	InStock      bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Limit        int
	Offset       int
}

type ProductRepositoryImpl interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product, columns ...string) error
	GetActiveByID(ctx context.Context, id uint64) (*models.Product, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindActiveByName(ctx context.Context, name string) (*models.Product, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*models.Product, error)
	GetBySeller(ctx context.Context, id, sellerID uint64) (*models.Product, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetFeatured(ctx context.Context, limit int) ([]models.Product, error)
	GetRecommended(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	DecrementStock(ctx context.Context, id uint64, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

func (p *productRepository) first(query *gorm.DB) (*models.Product, error) {
	var product models.Product
	if err := query.Preload("Category").First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := p.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// Update writes only the named columns plus updated_at. Stock moves under
// concurrent orders, so it is never written back unless asked for.
func (p *productRepository) Update(ctx context.Context, product *models.Product, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	selected := append([]string{"updated_at"}, columns...)
	err := p.db.WithContext(ctx).
		Model(product).
		Select(selected).
		Updates(product).Error
	if err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (p *productRepository) GetActiveByID(ctx context.Context, id uint64) (*models.Product, error) {
	return p.first(p.db.WithContext(ctx).Where("products.id = ? AND products.is_active = ?", id, true))
}

func (p *productRepository) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return p.first(p.db.WithContext(ctx).Where("products.slug = ? AND products.is_active = ?", slug, true))
}

// FindActiveByName resolves an exact name; duplicates resolve to the lowest id.
func (p *productRepository) FindActiveByName(ctx context.Context, name string) (*models.Product, error) {
	return p.first(p.db.WithContext(ctx).
		Where("products.name = ? AND products.is_active = ?", name, true).
		Order("products.id ASC"))
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (p *productRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) GetBySeller(ctx context.Context, id, sellerID uint64) (*models.Product, error) {
	return p.first(p.db.WithContext(ctx).Where("products.id = ? AND products.seller_id = ?", id, sellerID))
}

func (p *productRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Preload("Category").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (p *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_active = ?", true)

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}
	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Featured {
		query = query.Where("products.is_featured = ?", true)
	}
	if filter.InStock {
		query = query.Where("products.stock > 0")
	}
	if filter.MinPrice != nil {
		query = query.Where(finalPriceSQL+" >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where(finalPriceSQL+" <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productOrderings[filter.Ordering]
	if !ok {
		order = productOrderings[DefaultProductOrdering]
	}
	query = query.Order(order).Order("products.id DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []models.Product
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (p *productRepository) GetFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Preload("Category").
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// GetRecommended returns active products sharing the category, or featured ones, excluding product itself.
func (p *productRepository) GetRecommended(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	query := p.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ? AND id <> ?", true, product.ID)

	if product.CategoryID != nil {
		query = query.Where("(category_id = ? OR is_featured = ?)", *product.CategoryID, true)
	} else {
		query = query.Where("is_featured = ?", true)
	}

	var products []models.Product
	err := query.Order("is_featured DESC").Order("created_at DESC").Limit(limit).Find(&products).Error
	return products, err
}

func (p *productRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// DecrementStock never lets stock drop below zero.
func (p *productRepository) DecrementStock(ctx context.Context, id uint64, quantity int) error {
	return p.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("GREATEST(stock - ?, 0)", quantity)).Error
}
