package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"go.uber.org/zap"
)

type CartService struct {
	cartRepo     repositories.CartRepository
	cartItemRepo repositories.CartItemRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
	log          *zap.Logger
}

func NewCartService(cartRepo repositories.CartRepository, cartItemRepo repositories.CartItemRepositoryImpl, productRepo repositories.ProductRepositoryImpl, log *zap.Logger) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// GetCart returns the caller's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID uint64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return s.reload(ctx, cart.ID)
}

func (s *CartService) reload(ctx context.Context, cartID uint64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetWithItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, notFound("cart")
	}
	return cart, nil
}

// AddItem merges into an existing line for the product. The returned bool is
// true when a new line was created.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint64, quantity int) (*models.CartItem, bool, error) {
	if quantity <= 0 {
		return nil, false, NewValidationError("quantity", "Quantity must be greater than 0.")
	}

	product, err := s.productRepo.GetActiveByID(ctx, productID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, false, notFound("product")
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create cart: %w", err)
	}

	existing, err := s.cartItemRepo.GetByCartAndProduct(ctx, cart.ID, product.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing cart item: %w", err)
	}
	if existing != nil {
		item, err := s.mergeItem(ctx, existing, product, quantity)
		return item, false, err
	}

	if quantity > product.Stock {
		return nil, false, stockShortage(product, quantity)
	}
	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	err = s.cartItemRepo.Create(ctx, item)
	if err == nil {
		item.Product = product
		return item, true, nil
	}
	if !repositories.IsDuplicateKey(err) {
		return nil, false, fmt.Errorf("failed to add item to cart: %w", err)
	}

	// Another request created the line first.
	existing, err = s.cartItemRepo.GetByCartAndProduct(ctx, cart.ID, product.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload cart item: %w", err)
	}
	if existing == nil {
		return nil, false, NewConflictError("product_id", "The cart changed while adding this product. Try again.")
	}
	merged, err := s.mergeItem(ctx, existing, product, quantity)
	return merged, false, err
}

// mergeItem adds quantity to an existing line with a single guarded update,
// so concurrent adds never lose units or push the line past stock.
func (s *CartService) mergeItem(ctx context.Context, item *models.CartItem, product *models.Product, quantity int) (*models.CartItem, error) {
	if item.Quantity+quantity > product.Stock {
		return nil, stockShortage(product, item.Quantity+quantity)
	}

	applied, err := s.cartItemRepo.IncrementQuantity(ctx, item.ID, quantity, product.Stock)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	current, err := s.cartItemRepo.GetByIDForCart(ctx, item.ID, item.CartID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart item: %w", err)
	}
	if current == nil {
		return nil, notFound("cart item")
	}
	if !applied {
		return nil, stockShortage(product, current.Quantity+quantity)
	}
	current.Product = product
	return current, nil
}

func stockShortage(product *models.Product, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: product.ID,
		Product:   product.Name,
		Available: product.Stock,
		Requested: requested,
	}
}

// SetItemQuantity replaces the quantity of one of the caller's cart lines.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, itemID uint64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, NewValidationError("quantity", "Quantity must be greater than 0.")
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	product := item.Product
	if product == nil {
		return nil, notFound("product")
	}
	if !product.IsAvailable(quantity) {
		shortage := stockShortage(product, quantity)
		if !product.IsActive {
			shortage.Available = 0
		}
		return nil, shortage
	}

	if err := s.cartItemRepo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = quantity
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint64) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.cartItemRepo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint64) error {
	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get or create cart: %w", err)
	}
	if err := s.cartItemRepo.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.log.Debug("cart cleared", zap.Uint64("cart_id", cart.ID))
	return nil
}

func (s *CartService) ownedItem(ctx context.Context, userID, itemID uint64) (*models.CartItem, error) {
	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	item, err := s.cartItemRepo.GetByIDForCart(ctx, itemID, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil {
		return nil, notFound("cart item")
	}
	return item, nil
}
