package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == normalizeEmail(user.Email) {
			return duplicate("users.idx_users_email")
		}
		if u.Username == strings.TrimSpace(user.Username) {
			return duplicate("users.idx_users_username")
		}
	}
	user.ID = r.s.id()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == normalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.FindByEmail(ctx, email)
	return u != nil, err
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string, excludeID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Username == strings.TrimSpace(username) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.ID != user.ID && u.Username == user.Username {
			return duplicate("users.idx_users_username")
		}
	}
	user.UpdatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil
	}
	u.LastLogin = &at
	r.s.data.users[id] = u
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.categories {
		if c.Name == category.Name || c.Slug == category.Slug {
			return duplicate("categories.idx_categories_slug")
		}
	}
	category.ID = r.s.id()
	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Category, 0, len(r.s.data.categories))
	for _, id := range sortedIDs(r.s.data.categories) {
		out = append(out, r.s.data.categories[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uint64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.data.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *categoryRepo) ExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.categories {
		if c.Name == name || c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *categoryRepo) CountActiveProducts(ctx context.Context) (map[uint64]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[uint64]int64{}
	for _, p := range r.s.data.products {
		if p.IsActive && p.CategoryID != nil {
			counts[*p.CategoryID]++
		}
	}
	return counts, nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for pid, p := range r.s.data.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.s.data.products[pid] = p
		}
	}
	delete(r.s.data.categories, id)
	return nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.products {
		if p.Slug == product.Slug {
			return duplicate("products.idx_products_slug")
		}
	}
	product.ID = r.s.id()
	product.CreatedAt = r.s.now()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	stored.Category = nil
	stored.Seller = nil
	r.s.data.products[product.ID] = stored
	return nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.products[product.ID]
	if !ok {
		return nil
	}
	for _, column := range columns {
		switch column {
		case "name":
			stored.Name = product.Name
		case "slug":
			for _, p := range r.s.data.products {
				if p.ID != product.ID && p.Slug == product.Slug {
					return duplicate("products.idx_products_slug")
				}
			}
			stored.Slug = product.Slug
		case "description":
			stored.Description = product.Description
		case "price":
			stored.Price = product.Price
		case "discount_price":
			stored.DiscountPrice = product.DiscountPrice
		case "image_url":
			stored.ImageURL = product.ImageURL
		case "stock":
			stored.Stock = product.Stock
		case "category_id":
			stored.CategoryID = product.CategoryID
		case "is_active":
			stored.IsActive = product.IsActive
		case "is_featured":
			stored.IsFeatured = product.IsFeatured
		default:
			return fmt.Errorf("repotest: unsupported product column %q", column)
		}
	}
	stored.UpdatedAt = r.s.now()
	product.UpdatedAt = stored.UpdatedAt
	r.s.data.products[product.ID] = stored
	return nil
}

func (r *productRepo) find(match func(p models.Product) bool) *models.Product {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.data.products) {
		if match(r.s.data.products[id]) {
			return r.s.withProduct(id)
		}
	}
	return nil
}

func (r *productRepo) GetActiveByID(ctx context.Context, id uint64) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id && p.IsActive }), nil
}

func (r *productRepo) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Slug == slug && p.IsActive }), nil
}

func (r *productRepo) FindActiveByName(ctx context.Context, name string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Name == name && p.IsActive }), nil
}

func (r *productRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id }), nil
}

func (r *productRepo) GetBySeller(ctx context.Context, id, sellerID uint64) (*models.Product, error) {
	return r.find(func(p models.Product) bool {
		return p.ID == id && p.SellerID != nil && *p.SellerID == sellerID
	}), nil
}

func (r *productRepo) collect(match func(p models.Product) bool) []models.Product {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Product
	for _, id := range sortedIDs(r.s.data.products) {
		if match(r.s.data.products[id]) {
			out = append(out, *r.s.withProduct(id))
		}
	}
	return out
}

func newestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID > products[j].ID
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

func (r *productRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]models.Product, error) {
	out := r.collect(func(p models.Product) bool { return p.SellerID != nil && *p.SellerID == sellerID })
	newestFirst(out)
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := r.collect(func(p models.Product) bool {
		if !p.IsActive {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			return false
		}
		if f.Featured && !p.IsFeatured {
			return false
		}
		if f.InStock && p.Stock <= 0 {
			return false
		}
		if f.MinPrice != nil && p.FinalPrice().LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && p.FinalPrice().GreaterThan(*f.MaxPrice) {
			return false
		}
		return true
	})

	if f.CategorySlug != "" {
		filtered := out[:0]
		for _, p := range out {
			if p.Category != nil && p.Category.Slug == f.CategorySlug {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}

	ordering := f.Ordering
	if !repositories.ValidProductOrdering(ordering) {
		ordering = repositories.DefaultProductOrdering
	}
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less, equal bool
		switch key {
		case "price":
			less, equal = a.Price.LessThan(b.Price), a.Price.Equal(b.Price)
		case "name":
			less, equal = a.Name < b.Name, a.Name == b.Name
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			return a.ID > b.ID
		}
		if desc {
			return !less
		}
		return less
	})

	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *productRepo) GetFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	out := r.collect(func(p models.Product) bool { return p.IsActive && p.IsFeatured })
	newestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) GetRecommended(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	out := r.collect(func(p models.Product) bool {
		if !p.IsActive || p.ID == product.ID {
			return false
		}
		sameCategory := product.CategoryID != nil && p.CategoryID != nil && *p.CategoryID == *product.CategoryID
		return sameCategory || p.IsFeatured
	})
	newestFirst(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsFeatured && !out[j].IsFeatured })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.find(func(p models.Product) bool { return p.Slug == slug }) != nil, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uint64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.s.data.products[id] = p
	return nil
}

type cartRepo struct{ s *Store }

func (r *cartRepo) GetOrCreateByUserID(ctx context.Context, userID uint64) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.carts {
		if c.UserID == userID {
			return &c, nil
		}
	}
	c := models.Cart{ID: r.s.id(), UserID: userID, CreatedAt: r.s.now()}
	r.s.data.carts[c.ID] = c
	return &c, nil
}

func (r *cartRepo) GetWithItems(ctx context.Context, cartID uint64) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.carts[cartID]
	if !ok {
		return nil, nil
	}
	c.Items = nil
	for _, id := range sortedIDs(r.s.data.cartItems) {
		item := r.s.data.cartItems[id]
		if item.CartID == cartID {
			item.Product = r.s.withProduct(item.ProductID)
			c.Items = append(c.Items, item)
		}
	}
	return &c, nil
}

type cartItemRepo struct{ s *Store }

func (r *cartItemRepo) GetByCartAndProduct(ctx context.Context, cartID, productID uint64) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.data.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, nil
}

func (r *cartItemRepo) GetByIDForCart(ctx context.Context, id, cartID uint64) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.data.cartItems[id]
	if !ok || item.CartID != cartID {
		return nil, nil
	}
	item.Product = r.s.withProduct(item.ProductID)
	return &item, nil
}

func (r *cartItemRepo) Create(ctx context.Context, item *models.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.cartItems {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			return duplicate("cart_items.idx_cart_product")
		}
	}
	item.ID = r.s.id()
	item.CreatedAt = r.s.now()
	stored := *item
	stored.Product = nil
	r.s.data.cartItems[item.ID] = stored
	return nil
}

func (r *cartItemRepo) UpdateQuantity(ctx context.Context, id uint64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.data.cartItems[id]
	if !ok {
		return nil
	}
	item.Quantity = quantity
	r.s.data.cartItems[id] = item
	return nil
}

func (r *cartItemRepo) IncrementQuantity(ctx context.Context, id uint64, delta, limit int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.data.cartItems[id]
	if !ok || item.Quantity+delta > limit {
		return false, nil
	}
	item.Quantity += delta
	r.s.data.cartItems[id] = item
	return true, nil
}

func (r *cartItemRepo) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.cartItems, id)
	return nil
}

func (r *cartItemRepo) ClearCart(ctx context.Context, cartID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.data.cartItems {
		if item.CartID == cartID {
			delete(r.s.data.cartItems, id)
		}
	}
	return nil
}

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) Create(ctx context.Context, purchase *models.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if purchase.PaymentReference != nil {
		for _, p := range r.s.data.purchases {
			if p.PaymentReference != nil && *p.PaymentReference == *purchase.PaymentReference {
				return duplicate("purchases.idx_purchases_payment_reference")
			}
		}
	}
	purchase.ID = r.s.id()
	purchase.CreatedAt = r.s.now()
	purchase.UpdatedAt = purchase.CreatedAt
	if purchase.OrderCode == "" {
		purchase.OrderCode = models.NewOrderCode(purchase.CreatedAt)
	}
	if purchase.Status == "" {
		purchase.Status = models.PurchaseStatusPending
	}
	stored := *purchase
	stored.Items = nil
	stored.User = nil
	r.s.data.purchases[purchase.ID] = stored
	return nil
}

func (r *purchaseRepo) ExistsByPaymentReference(ctx context.Context, reference string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.purchases {
		if p.PaymentReference != nil && *p.PaymentReference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *purchaseRepo) withItems(p models.Purchase) models.Purchase {
	p.Items = nil
	for _, id := range sortedIDs(r.s.data.purchaseItems) {
		item := r.s.data.purchaseItems[id]
		if item.PurchaseID == p.ID {
			p.Items = append(p.Items, item)
		}
	}
	return p
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Purchase
	for _, id := range sortedIDs(r.s.data.purchases) {
		p := r.s.data.purchases[id]
		if p.UserID == userID {
			out = append(out, r.withItems(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *purchaseRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.purchases[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	p = r.withItems(p)
	return &p, nil
}

type purchaseItemRepo struct{ s *Store }

func (r *purchaseItemRepo) Create(ctx context.Context, item *models.PurchaseItem) error {
	if r.s.Hooks.CreatePurchaseItem != nil {
		if err := r.s.Hooks.CreatePurchaseItem(item); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.CalculateSubtotal()
	item.ID = r.s.id()
	r.s.data.purchaseItems[item.ID] = *item
	return nil
}

func (r *purchaseItemRepo) ListByPurchase(ctx context.Context, purchaseID uint64) ([]models.PurchaseItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PurchaseItem
	for _, id := range sortedIDs(r.s.data.purchaseItems) {
		if item := r.s.data.purchaseItems[id]; item.PurchaseID == purchaseID {
			out = append(out, item)
		}
	}
	return out, nil
}

var (
	_ repositories.UserRepositoryImpl     = (*userRepo)(nil)
	_ repositories.CategoryRepositoryImpl = (*categoryRepo)(nil)
	_ repositories.ProductRepositoryImpl  = (*productRepo)(nil)
	_ repositories.CartRepository         = (*cartRepo)(nil)
	_ repositories.CartItemRepositoryImpl = (*cartItemRepo)(nil)
	_ repositories.PurchaseRepository     = (*purchaseRepo)(nil)
	_ repositories.PurchaseItemRepository = (*purchaseItemRepo)(nil)
	_ repositories.Transactor             = (*Store)(nil)
)
