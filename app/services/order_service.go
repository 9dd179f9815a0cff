package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderLineInput struct {
	ProductID   *uint64         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type CreateOrderInput struct {
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	PaymentMethod    models.PaymentMethod `json:"payment_method" validate:"required,oneof=card paypal google_pay apple_pay"`
	PaymentReference *string              `json:"payment_intent_id" validate:"omitempty,max=255"`
	Items            []OrderLineInput     `json:"items"`
}

type resolvedLine struct {
	index     int
	productID uint64
	input     OrderLineInput
}

type OrderService struct {
	products  repositories.ProductRepositoryImpl
	purchases repositories.PurchaseRepository
	tx        repositories.Transactor
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

func NewOrderService(products repositories.ProductRepositoryImpl, purchases repositories.PurchaseRepository, tx repositories.Transactor, validate *validator.Validate, log *zap.Logger) *OrderService {
	return &OrderService{
		products:  products,
		purchases: purchases,
		tx:        tx,
		validate:  validate,
		log:       log,
		now:       time.Now,
	}
}

// CreateOrder validates every line against current stock, then creates the
// purchase and its items and decrements stock in one transaction. Either the
// whole order is written or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint64, in CreateOrderInput) (*models.Purchase, error) {
	if err := s.validateHeader(&in); err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(ctx, s.products, in.Items)
	if err != nil {
		return nil, err
	}

	var purchase *models.Purchase
	err = s.tx.WithTx(ctx, func(tx *repositories.Repository) error {
		p, err := s.commit(ctx, tx, userID, in, lines)
		if err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		var lineErrs LineItemErrors
		if errors.As(err, &lineErrs) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if itemsTotal := purchaseItemsTotal(purchase.Items); !itemsTotal.Equal(purchase.TotalAmount) {
		s.log.Debug("purchase total differs from item subtotals",
			zap.Uint64("purchase_id", purchase.ID),
			zap.String("total_amount", purchase.TotalAmount.StringFixed(2)),
			zap.String("items_total", itemsTotal.StringFixed(2)),
		)
	}

	s.log.Info("purchase created",
		zap.Uint64("purchase_id", purchase.ID),
		zap.String("order_code", purchase.OrderCode),
		zap.Uint64("user_id", userID),
		zap.Int("items", len(purchase.Items)),
	)
	return purchase, nil
}

func (s *OrderService) validateHeader(in *CreateOrderInput) error {
	fields := map[string]string{}
	if err := validateStruct(s.validate, *in); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		maps.Copy(fields, verr.Fields)
	}
	if in.TotalAmount.IsNegative() {
		fields["total_amount"] = "Ensure this value is greater than or equal to 0."
	}
	if len(in.Items) == 0 {
		fields["items"] = "At least one item is required."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if in.PaymentReference != nil {
		ref := strings.TrimSpace(*in.PaymentReference)
		if ref == "" {
			in.PaymentReference = nil
		} else {
			in.PaymentReference = &ref
		}
	}
	return nil
}

func (s *OrderService) resolveProduct(ctx context.Context, products repositories.ProductRepositoryImpl, line OrderLineInput) (*models.Product, error) {
	if line.ProductID != nil {
		return products.GetActiveByID(ctx, *line.ProductID)
	}
	if name := strings.TrimSpace(line.ProductName); name != "" {
		return products.FindActiveByName(ctx, name)
	}
	return nil, nil
}

// resolveLines reports every failing line at once. Demand for the same
// product across lines is accumulated before comparing with stock.
func (s *OrderService) resolveLines(ctx context.Context, products repositories.ProductRepositoryImpl, items []OrderLineInput) ([]resolvedLine, error) {
	errs := LineItemErrors{}
	demand := map[uint64]int{}
	lines := make([]resolvedLine, 0, len(items))

	for i, line := range items {
		if line.ProductID == nil && strings.TrimSpace(line.ProductName) == "" {
			errs[i] = LineItemError{Code: LineErrInvalid, Message: "Either product_id or product_name is required."}
			continue
		}
		if line.Quantity <= 0 {
			errs[i] = LineItemError{Code: LineErrInvalid, Message: "Quantity must be greater than 0."}
			continue
		}
		if line.Price.IsNegative() {
			errs[i] = LineItemError{Code: LineErrInvalid, Message: "Price must be greater than or equal to 0."}
			continue
		}

		product, err := s.resolveProduct(ctx, products, line)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product for item %d: %w", i, err)
		}
		if product == nil {
			errs[i] = LineItemError{Code: LineErrProductNotFound, Message: fmt.Sprintf("Product %s not found.", describeLine(line))}
			continue
		}

		if demand[product.ID]+line.Quantity > product.Stock {
			errs[i] = insufficientStock(product.Name, product.Stock-demand[product.ID])
			continue
		}
		demand[product.ID] += line.Quantity
		lines = append(lines, resolvedLine{index: i, productID: product.ID, input: line})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return lines, nil
}

func (s *OrderService) commit(ctx context.Context, tx *repositories.Repository, userID uint64, in CreateOrderInput, lines []resolvedLine) (*models.Purchase, error) {
	if in.PaymentReference != nil {
		exists, err := tx.Purchases.ExistsByPaymentReference(ctx, *in.PaymentReference)
		if err != nil {
			return nil, fmt.Errorf("failed to check payment reference: %w", err)
		}
		if exists {
			return nil, NewConflictError("payment_intent_id", "A purchase with this payment reference already exists.")
		}
	}

	purchase := &models.Purchase{
		OrderCode:        models.NewOrderCode(s.now()),
		UserID:           userID,
		TotalAmount:      in.TotalAmount.Round(2),
		PaymentReference: in.PaymentReference,
		PaymentMethod:    in.PaymentMethod,
		Status:           models.PurchaseStatusCompleted,
	}
	if err := tx.Purchases.Create(ctx, purchase); err != nil {
		if conflict, ok := conflictFromDuplicate(err, map[string]string{"payment_reference": "payment_intent_id"}); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	for _, line := range lines {
		product, err := tx.Products.GetByIDForUpdate(ctx, line.productID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock product %d: %w", line.productID, err)
		}
		if product == nil || !product.IsActive {
			return nil, LineItemErrors{line.index: {Code: LineErrProductNotFound, Message: fmt.Sprintf("Product %s not found.", describeLine(line.input))}}
		}
		if line.input.Quantity > product.Stock {
			return nil, LineItemErrors{line.index: insufficientStock(product.Name, product.Stock)}
		}

		item := &models.PurchaseItem{
			PurchaseID:  purchase.ID,
			ProductName: product.Name,
			Quantity:    line.input.Quantity,
			Price:       line.input.Price.Round(2),
		}
		item.CalculateSubtotal()
		if err := tx.PurchaseItems.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to insert purchase item %d: %w", line.index, err)
		}

		if err := tx.Products.DecrementStock(ctx, product.ID, line.input.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", product.ID, err)
		}

		purchase.Items = append(purchase.Items, *item)
	}

	return purchase, nil
}

func (s *OrderService) History(ctx context.Context, userID uint64) ([]models.Purchase, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (s *OrderService) Detail(ctx context.Context, userID, purchaseID uint64) (*models.Purchase, error) {
	purchase, err := s.purchases.GetByIDForUser(ctx, purchaseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase == nil {
		return nil, notFound("purchase")
	}
	return purchase, nil
}

func insufficientStock(name string, available int) LineItemError {
	if available < 0 {
		available = 0
	}
	return LineItemError{
		Code:      LineErrInsufficientStock,
		Message:   fmt.Sprintf("Insufficient stock for %s. Available: %d", name, available),
		Available: &available,
	}
}

func describeLine(line OrderLineInput) string {
	if line.ProductID != nil {
		return fmt.Sprintf("with id %d", *line.ProductID)
	}
	return fmt.Sprintf("%q", strings.TrimSpace(line.ProductName))
}

func purchaseItemsTotal(items []models.PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
