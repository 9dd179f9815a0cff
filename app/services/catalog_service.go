package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPageSize    = 20
	MaxPageSize        = 100
	FeaturedLimit      = 8
	RecommendedLimit   = 6
	slugSuffixAttempts = 5
)

type CategoryWithCount struct {
	models.Category
	ProductsCount int64
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"omitempty,max=100"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=500"`
}

type ProductInput struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Slug          string           `json:"slug" validate:"omitempty,max=255"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ImageURL      *string          `json:"image_url" validate:"omitempty,url,max=500"`
	Stock         int              `json:"stock" validate:"gte=0"`
	CategoryID    *uint64          `json:"category_id"`
	IsFeatured    bool             `json:"is_featured"`
}

// ProductPatch carries partial owner updates; nil fields are left alone.
type ProductPatch struct {
	Name          *string          `json:"name" validate:"omitempty,max=255"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ClearDiscount bool             `json:"-"`
	ImageURL      *string          `json:"image_url" validate:"omitempty,url,max=500"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryID    *uint64          `json:"category_id"`
}

type ProductPage struct {
	Count   int64
	Results []models.Product
}

type CatalogService struct {
	categories repositories.CategoryRepositoryImpl
	products   repositories.ProductRepositoryImpl
	validate   *validator.Validate
	log        *zap.Logger
}

func NewCatalogService(categories repositories.CategoryRepositoryImpl, products repositories.ProductRepositoryImpl, validate *validator.Validate, log *zap.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		validate:   validate,
		log:        log,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	counts, err := s.categories.CountActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count category products: %w", err)
	}

	out := make([]CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryWithCount{Category: c, ProductsCount: counts[c.ID]})
	}
	return out, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, isStaff bool, in CategoryInput) (*models.Category, error) {
	if !isStaff {
		return nil, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	categorySlug := slug.Make(in.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(in.Name)
	}

	exists, err := s.categories.ExistsByNameOrSlug(ctx, in.Name, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if exists {
		return nil, NewConflictError("name", "A category with this name or slug already exists.")
	}

	category := &models.Category{
		Name:        in.Name,
		Slug:        categorySlug,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if conflict, ok := conflictFromDuplicate(err, map[string]string{"name": "name", "slug": "slug"}); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// DeleteCategory keeps the products and clears their category.
func (s *CatalogService) DeleteCategory(ctx context.Context, isStaff bool, categorySlug string) error {
	if !isStaff {
		return ErrForbidden
	}
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return notFound("category")
	}
	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.log.Info("category deleted", zap.Uint64("category_id", category.ID), zap.String("slug", category.Slug))
	return nil
}

// NormalizeFilter clamps paging and rejects unknown orderings or an inverted price range.
func NormalizeFilter(f repositories.ProductFilter) (repositories.ProductFilter, error) {
	fields := map[string]string{}

	if f.Ordering == "" {
		f.Ordering = repositories.DefaultProductOrdering
	} else if !repositories.ValidProductOrdering(f.Ordering) {
		fields["ordering"] = fmt.Sprintf("%q is not a valid ordering.", f.Ordering)
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		fields["min_price"] = "Ensure this value is greater than or equal to 0."
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		fields["max_price"] = "Ensure this value is greater than or equal to 0."
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		fields["min_price"] = "min_price cannot exceed max_price."
	}
	if len(fields) > 0 {
		return f, &ValidationError{Fields: fields}
	}

	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repositories.ProductFilter) (*ProductPage, error) {
	f, err := NormalizeFilter(f)
	if err != nil {
		return nil, err
	}
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &ProductPage{Count: total, Results: products}, nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categorySlug string, f repositories.ProductFilter) (*ProductPage, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, notFound("category")
	}
	f.CategorySlug = category.Slug
	return s.ListProducts(ctx, f)
}

func (s *CatalogService) ProductBySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	product, err := s.products.GetActiveBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, notFound("product")
	}
	return product, nil
}

func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Recommended(ctx context.Context, productID uint64) ([]models.Product, error) {
	product, err := s.products.GetActiveByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, notFound("product")
	}
	products, err := s.products.GetRecommended(ctx, product, RecommendedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	return products, nil
}

func validatePricing(price decimal.Decimal, discount *decimal.Decimal) map[string]string {
	fields := map[string]string{}
	if !price.IsPositive() {
		fields["price"] = "Ensure this value is greater than 0."
	}
	if discount != nil {
		if discount.IsNegative() {
			fields["discount_price"] = "Ensure this value is greater than or equal to 0."
		} else if !discount.LessThan(price) {
			fields["discount_price"] = "Discount price must be lower than the price."
		}
	}
	return fields
}

// CreateProduct lists a product for the seller. Non-staff listings start
// inactive until reviewed, and only staff may feature a product.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uint64, isStaff bool, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if fields := validatePricing(in.Price, in.DiscountPrice); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	productSlug, err := s.resolveSlug(ctx, in.Slug, in.Name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Slug:        productSlug,
		Description: in.Description,
		Price:       in.Price.Round(2),
		ImageURL:    in.ImageURL,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		SellerID:    &sellerID,
		IsFeatured:  isStaff && in.IsFeatured,
		IsActive:    isStaff,
	}
	if in.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(in.DiscountPrice.Round(2))
	}

	if err := s.products.Create(ctx, product); err != nil {
		if conflict, ok := conflictFromDuplicate(err, map[string]string{"slug": "slug"}); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.Info("product created",
		zap.Uint64("product_id", product.ID),
		zap.Uint64("seller_id", sellerID),
		zap.Bool("active", product.IsActive),
	)
	return product, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uint64) error {
	if id == nil {
		return nil
	}
	category, err := s.categories.GetByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return NewValidationError("category_id", fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(*id)))
	}
	return nil
}

// resolveSlug honours an explicit slug strictly and de-duplicates derived ones.
func (s *CatalogService) resolveSlug(ctx context.Context, explicit, name string) (string, error) {
	if explicit != "" {
		candidate := slug.Make(explicit)
		if candidate == "" {
			return "", NewValidationError("slug", "Enter a valid slug.")
		}
		exists, err := s.products.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if exists {
			return "", NewConflictError("slug", "A product with this slug already exists.")
		}
		return candidate, nil
	}

	base := slug.Make(name)
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 0; i < slugSuffixAttempts; i++ {
		exists, err := s.products.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", NewConflictError("slug", "Could not derive a unique slug, provide one explicitly.")
}

func (s *CatalogService) MyProducts(ctx context.Context, sellerID uint64) ([]models.Product, error) {
	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) MyProduct(ctx context.Context, sellerID, productID uint64) (*models.Product, error) {
	product, err := s.products.GetBySeller(ctx, productID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, notFound("product")
	}
	return product, nil
}

// UpdateMyProduct applies an owner edit. Activation stays a staff decision.
func (s *CatalogService) UpdateMyProduct(ctx context.Context, sellerID, productID uint64, patch ProductPatch) (*models.Product, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}

	product, err := s.MyProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, NewValidationError("name", "This field may not be blank.")
		}
		product.Name = name
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		product.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Price != nil {
		product.Price = patch.Price.Round(2)
		columns = append(columns, "price")
	}
	if patch.ClearDiscount {
		product.DiscountPrice = decimal.NullDecimal{}
		columns = append(columns, "discount_price")
	} else if patch.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(patch.DiscountPrice.Round(2))
		columns = append(columns, "discount_price")
	}
	if patch.ImageURL != nil {
		product.ImageURL = patch.ImageURL
		columns = append(columns, "image_url")
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
		columns = append(columns, "stock")
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = patch.CategoryID
		product.Category = nil
		columns = append(columns, "category_id")
	}

	var discount *decimal.Decimal
	if product.DiscountPrice.Valid {
		discount = &product.DiscountPrice.Decimal
	}
	if fields := validatePricing(product.Price, discount); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if len(columns) == 0 {
		return product, nil
	}
	if err := s.products.Update(ctx, product, columns...); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.MyProduct(ctx, sellerID, productID)
}
