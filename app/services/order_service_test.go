package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories/repotest"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderDecrementsStock(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	p := f.product("Desk Lamp", "25.00", 10)

	purchase, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("50.00"),
		PaymentMethod: models.PaymentMethodCard,
		Items: []services.OrderLineInput{
			{ProductID: ptr(p.ID), Quantity: 2, Price: dec("25.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PurchaseStatusCompleted, purchase.Status)
	assert.NotEmpty(t, purchase.OrderCode)
	require.Len(t, purchase.Items, 1)
	assert.Equal(t, "Desk Lamp", purchase.Items[0].ProductName)
	assert.True(t, dec("50.00").Equal(purchase.Items[0].Subtotal))

	stored, _ := f.store.Product(p.ID)
	assert.Equal(t, 8, stored.Stock)
	assert.Equal(t, 1, f.store.PurchaseCount())
	assert.Equal(t, 1, f.store.PurchaseItemCount())
}

func TestCreateOrderRejectsWholeOrderOnStockShortage(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	inStock := f.product("Mug", "8.00", 4)
	soldOut := f.product("Teapot", "30.00", 0)

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("46.00"),
		PaymentMethod: models.PaymentMethodPaypal,
		Items: []services.OrderLineInput{
			{ProductID: ptr(inStock.ID), Quantity: 2, Price: dec("8.00")},
			{ProductID: ptr(soldOut.ID), Quantity: 1, Price: dec("30.00")},
		},
	})
	require.Error(t, err)

	var lineErrs services.LineItemErrors
	require.True(t, errors.As(err, &lineErrs))
	require.Len(t, lineErrs, 1)
	assert.Equal(t, services.LineErrInsufficientStock, lineErrs[1].Code)
	require.NotNil(t, lineErrs[1].Available)
	assert.Equal(t, 0, *lineErrs[1].Available)

	assert.Equal(t, 0, f.store.PurchaseCount())
	assert.Equal(t, 0, f.store.PurchaseItemCount())
	stored, _ := f.store.Product(inStock.ID)
	assert.Equal(t, 4, stored.Stock)
}

func TestCreateOrderReportsEveryFailingLine(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	p := f.product("Notebook", "3.50", 5)
	inactive := f.store.AddProduct(models.Product{Name: "Hidden", Price: dec("1"), Stock: 9})

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("10"),
		PaymentMethod: models.PaymentMethodCard,
		Items: []services.OrderLineInput{
			{ProductID: ptr(p.ID), Quantity: 1, Price: dec("3.50")},
			{ProductName: "Does Not Exist", Quantity: 1, Price: dec("1")},
			{ProductID: ptr(inactive.ID), Quantity: 1, Price: dec("1")},
			{ProductID: ptr(p.ID), Quantity: 0, Price: dec("3.50")},
			{ProductID: ptr(p.ID), Quantity: 5, Price: dec("3.50")},
		},
	})

	var lineErrs services.LineItemErrors
	require.True(t, errors.As(err, &lineErrs))
	assert.Len(t, lineErrs, 4)
	assert.NotContains(t, lineErrs, 0)
	assert.Equal(t, services.LineErrProductNotFound, lineErrs[1].Code)
	assert.Equal(t, services.LineErrProductNotFound, lineErrs[2].Code)
	assert.Equal(t, services.LineErrInvalid, lineErrs[3].Code)
	assert.Equal(t, services.LineErrInsufficientStock, lineErrs[4].Code)
	assert.Equal(t, 4, *lineErrs[4].Available)
	assert.Equal(t, 0, f.store.PurchaseCount())
}

func TestCreateOrderResolvesNameToLowestID(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	first := f.product("Poster", "10", 3)
	second := f.product("Poster", "12", 3)

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("10"),
		PaymentMethod: models.PaymentMethodCard,
		Items:         []services.OrderLineInput{{ProductName: "Poster", Quantity: 1, Price: dec("10")}},
	})
	require.NoError(t, err)

	a, _ := f.store.Product(first.ID)
	b, _ := f.store.Product(second.ID)
	assert.Equal(t, 2, a.Stock)
	assert.Equal(t, 3, b.Stock)
}

func TestCreateOrderValidatesHeader(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("-1"),
		PaymentMethod: "cash",
	})

	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items")
	assert.Contains(t, verr.Fields, "total_amount")
	assert.Contains(t, verr.Fields, "payment_method")
}

func TestCreateOrderRollsBackWhenAnItemInsertFails(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	a := f.product("Pen", "1.00", 10)
	b := f.product("Ink", "4.00", 10)

	calls := 0
	f.store.Hooks.CreatePurchaseItem = func(item *models.PurchaseItem) error {
		calls++
		if calls == 2 {
			return errors.New("disk full")
		}
		return nil
	}

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("5.00"),
		PaymentMethod: models.PaymentMethodCard,
		Items: []services.OrderLineInput{
			{ProductID: ptr(a.ID), Quantity: 1, Price: dec("1.00")},
			{ProductID: ptr(b.ID), Quantity: 1, Price: dec("4.00")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 0, f.store.PurchaseCount())
	assert.Equal(t, 0, f.store.PurchaseItemCount())
	pa, _ := f.store.Product(a.ID)
	assert.Equal(t, 10, pa.Stock)
}

func TestCreateOrderRechecksStockInsideTransaction(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	p := f.product("Chair", "40", 3)

	f.store.Hooks.BeginTx = func(s *repotest.Store) {
		s.SetStock(p.ID, 1)
	}

	_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
		TotalAmount:   dec("80"),
		PaymentMethod: models.PaymentMethodCard,
		Items:         []services.OrderLineInput{{ProductID: ptr(p.ID), Quantity: 2, Price: dec("40")}},
	})

	var lineErrs services.LineItemErrors
	require.True(t, errors.As(err, &lineErrs))
	assert.Equal(t, services.LineErrInsufficientStock, lineErrs[0].Code)
	assert.Equal(t, 1, *lineErrs[0].Available)
	assert.Equal(t, 0, f.store.PurchaseCount())
}

func TestCreateOrderDuplicatePaymentReference(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	p := f.product("Cable", "5", 10)

	in := services.CreateOrderInput{
		TotalAmount:      dec("5"),
		PaymentMethod:    models.PaymentMethodCard,
		PaymentReference: ptr("PI-123"),
		Items:            []services.OrderLineInput{{ProductID: ptr(p.ID), Quantity: 1, Price: dec("5")}},
	}
	_, err := f.orders.CreateOrder(ctx, buyer.ID, in)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctx, buyer.ID, in)
	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, conflict.Fields, "payment_intent_id")

	stored, _ := f.store.Product(p.ID)
	assert.Equal(t, 9, stored.Stock)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	p := f.product("Limited Print", "99", 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.CreateOrder(ctx, buyer.ID, services.CreateOrderInput{
				TotalAmount:   dec("99"),
				PaymentMethod: models.PaymentMethodCard,
				Items:         []services.OrderLineInput{{ProductID: ptr(p.ID), Quantity: 1, Price: dec("99")}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored, _ := f.store.Product(p.ID)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, stored.Stock)
	assert.Equal(t, 5, f.store.PurchaseCount())
}

func TestPurchaseHistoryAndDetailAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.product("Sticker", "1", 100)

	order := func() *models.Purchase {
		purchase, err := f.orders.CreateOrder(ctx, alice.ID, services.CreateOrderInput{
			TotalAmount:   dec("1"),
			PaymentMethod: models.PaymentMethodCard,
			Items:         []services.OrderLineInput{{ProductID: ptr(p.ID), Quantity: 1, Price: dec("1")}},
		})
		require.NoError(t, err)
		return purchase
	}
	first := order()
	second := order()

	history, err := f.orders.History(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Len(t, history[1].Items, 1)

	empty, err := f.orders.History(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	detail, err := f.orders.Detail(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.OrderCode, detail.OrderCode)

	_, err = f.orders.Detail(ctx, bob.ID, first.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
