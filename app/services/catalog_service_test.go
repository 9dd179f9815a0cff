package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateProductActivationFollowsStaffFlag(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")

	p, err := f.catalog.CreateProduct(ctx, seller.ID, false, services.ProductInput{
		Name:       "Hand-made Bowl",
		Price:      dec("45"),
		Stock:      3,
		IsFeatured: true,
	})
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, "hand-made-bowl", p.Slug)
	require.NotNil(t, p.SellerID)
	assert.Equal(t, seller.ID, *p.SellerID)

	staff, err := f.catalog.CreateProduct(ctx, seller.ID, true, services.ProductInput{
		Name:       "Hand-made Bowl",
		Price:      dec("45"),
		IsFeatured: true,
	})
	require.NoError(t, err)
	assert.True(t, staff.IsActive)
	assert.True(t, staff.IsFeatured)
	assert.NotEqual(t, p.Slug, staff.Slug)
	assert.Contains(t, staff.Slug, "hand-made-bowl-")
}

func TestCreateProductValidatesPricing(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")

	_, err := f.catalog.CreateProduct(ctx, seller.ID, true, services.ProductInput{
		Name:          "Vase",
		Price:         dec("20"),
		DiscountPrice: ptr(dec("25")),
	})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "discount_price")

	_, err = f.catalog.CreateProduct(ctx, seller.ID, true, services.ProductInput{Name: "Free", Price: dec("0")})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "price")
}

func TestCreateProductExplicitSlugConflict(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")
	f.store.AddProduct(models.Product{Name: "Existing", Slug: "taken", Price: dec("1"), IsActive: true})

	_, err := f.catalog.CreateProduct(ctx, seller.ID, true, services.ProductInput{Name: "New", Slug: "taken", Price: dec("1")})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestListProductsFilters(t *testing.T) {
	f := newFixture(t)
	kitchen := f.store.AddCategory(models.Category{Name: "Kitchen", Slug: "kitchen"})

	f.store.AddProduct(models.Product{Name: "Cheap Spoon", Price: dec("5"), Stock: 10, IsActive: true, CategoryID: &kitchen.ID})
	f.store.AddProduct(models.Product{Name: "Fancy Knife", Description: "sharp", Price: dec("100"), DiscountPrice: decimalNull("40"), Stock: 0, IsActive: true, CategoryID: &kitchen.ID, IsFeatured: true})
	f.store.AddProduct(models.Product{Name: "Garden Hose", Price: dec("60"), Stock: 2, IsActive: true})
	f.store.AddProduct(models.Product{Name: "Secret", Price: dec("50"), Stock: 2, IsActive: false})

	names := func(page *services.ProductPage) []string {
		out := make([]string, 0, len(page.Results))
		for _, p := range page.Results {
			out = append(out, p.Name)
		}
		return out
	}

	all, err := f.catalog.ListProducts(ctx, repositories.ProductFilter{Ordering: "name"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Count)
	assert.Equal(t, []string{"Cheap Spoon", "Fancy Knife", "Garden Hose"}, names(all))

	byPrice, err := f.catalog.ListProducts(ctx, repositories.ProductFilter{MinPrice: ptr(dec("30")), MaxPrice: ptr(dec("50")), Ordering: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fancy Knife"}, names(byPrice))

	inStock, err := f.catalog.ListProducts(ctx, repositories.ProductFilter{InStock: true, CategorySlug: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheap Spoon"}, names(inStock))

	search, err := f.catalog.ListProducts(ctx, repositories.ProductFilter{Search: "SHARP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fancy Knife"}, names(search))

	_, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{Ordering: "stock"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCategoriesCountActiveProductsAndDeleteDetaches(t *testing.T) {
	f := newFixture(t)
	c := f.store.AddCategory(models.Category{Name: "Books", Slug: "books"})
	active := f.store.AddProduct(models.Product{Name: "Novel", Price: dec("9"), IsActive: true, CategoryID: &c.ID})
	f.store.AddProduct(models.Product{Name: "Draft", Price: dec("9"), IsActive: false, CategoryID: &c.ID})

	cats, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, int64(1), cats[0].ProductsCount)

	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, false, "books"), services.ErrForbidden)
	require.NoError(t, f.catalog.DeleteCategory(ctx, true, "books"))
	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, true, "books"), services.ErrNotFound)

	stored, ok := f.store.Product(active.ID)
	require.True(t, ok)
	assert.Nil(t, stored.CategoryID)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateCategory(ctx, false, services.CategoryInput{Name: "Toys"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	c, err := f.catalog.CreateCategory(ctx, true, services.CategoryInput{Name: "Board Games"})
	require.NoError(t, err)
	assert.Equal(t, "board-games", c.Slug)

	_, err = f.catalog.CreateCategory(ctx, true, services.CategoryInput{Name: "Board Games"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestFeaturedAndRecommended(t *testing.T) {
	f := newFixture(t)
	c := f.store.AddCategory(models.Category{Name: "Audio", Slug: "audio"})
	base := f.store.AddProduct(models.Product{Name: "Speaker", Price: dec("80"), IsActive: true, CategoryID: &c.ID})
	sibling := f.store.AddProduct(models.Product{Name: "Amp", Price: dec("120"), IsActive: true, CategoryID: &c.ID})
	featured := f.store.AddProduct(models.Product{Name: "Lamp", Price: dec("30"), IsActive: true, IsFeatured: true})
	f.store.AddProduct(models.Product{Name: "Unrelated", Price: dec("10"), IsActive: true})

	rec, err := f.catalog.Recommended(ctx, base.ID)
	require.NoError(t, err)
	ids := []uint64{}
	for _, p := range rec {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uint64{sibling.ID, featured.ID}, ids)

	feat, err := f.catalog.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, feat, 1)
	assert.Equal(t, featured.ID, feat[0].ID)

	_, err = f.catalog.Recommended(ctx, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOwnerProductsIncludeInactive(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")
	stranger := f.user(t, "stranger@example.com")

	p, err := f.catalog.CreateProduct(ctx, seller.ID, false, services.ProductInput{Name: "Quilt", Price: dec("150"), Stock: 1})
	require.NoError(t, err)

	mine, err := f.catalog.MyProducts(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].IsActive)

	_, err = f.catalog.ProductBySlug(ctx, p.Slug)
	assert.ErrorIs(t, err, services.ErrNotFound)

	updated, err := f.catalog.UpdateMyProduct(ctx, seller.ID, p.ID, services.ProductPatch{
		Price:         ptr(dec("140")),
		DiscountPrice: ptr(dec("99.99")),
		Stock:         ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, 28, updated.DiscountPercentage())
	assert.False(t, updated.IsActive)

	_, err = f.catalog.UpdateMyProduct(ctx, stranger.ID, p.ID, services.ProductPatch{Stock: ptr(1)})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = f.catalog.UpdateMyProduct(ctx, seller.ID, p.ID, services.ProductPatch{DiscountPrice: ptr(dec("500"))})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")

	_, err := f.catalog.CreateProduct(ctx, seller.ID, true, services.ProductInput{
		Name:       "Orphan",
		Price:      dec("3"),
		CategoryID: ptr(uint64(404)),
	})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "category_id")
}

// sellerReadHook runs fn once, right after an owner's product has been read.
type sellerReadHook struct {
	repositories.ProductRepositoryImpl
	fn func()
}

func (h *sellerReadHook) GetBySeller(ctx context.Context, id, sellerID uint64) (*models.Product, error) {
	p, err := h.ProductRepositoryImpl.GetBySeller(ctx, id, sellerID)
	if h.fn != nil {
		fn := h.fn
		h.fn = nil
		fn()
	}
	return p, err
}

func TestUpdateMyProductKeepsStockSoldDuringEdit(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")
	buyer := f.user(t, "buyer@example.com")
	p := f.store.AddProduct(models.Product{
		Name:     "Lantern",
		Price:    dec("20.00"),
		Stock:    5,
		IsActive: true,
		SellerID: ptr(seller.ID),
	})

	products := &sellerReadHook{ProductRepositoryImpl: f.store.Repository().Products}
	products.fn = func() {
		_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
			TotalAmount:   dec("60.00"),
			PaymentMethod: models.PaymentMethodCard,
			Items:         []services.OrderLineInput{{ProductID: ptr(p.ID), Quantity: 3, Price: dec("20.00")}},
		})
		require.NoError(t, err)
	}
	catalog := services.NewCatalogService(f.store.Repository().Categories, products, helpers.NewValidator(), zap.NewNop())

	updated, err := catalog.UpdateMyProduct(ctx, seller.ID, p.ID, services.ProductPatch{Description: ptr("Brass, battery powered")})
	require.NoError(t, err)
	assert.Equal(t, "Brass, battery powered", updated.Description)
	assert.Equal(t, 2, updated.Stock)

	stored, _ := f.store.Product(p.ID)
	assert.Equal(t, 2, stored.Stock)
	assert.Equal(t, "Brass, battery powered", stored.Description)
}
