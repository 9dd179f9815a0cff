package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddItemMergesUntilStockRunsOut(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Headphones", "59.90", 5)

	item, created, err := f.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, item.Quantity)

	_, _, err = f.cart.AddItem(ctx, u.ID, p.ID, 3)
	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 6, stockErr.Requested)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	cart, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	item, created, err = f.cart.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, item.Quantity)
}

func TestAddItemRejectsInactiveAndInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	hidden := f.store.AddProduct(models.Product{Name: "Draft", Price: dec("1"), Stock: 10})

	_, _, err := f.cart.AddItem(ctx, u.ID, hidden.ID, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, _, err = f.cart.AddItem(ctx, u.ID, hidden.ID, 0)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "quantity")
}

func TestGetCartIsLazyAndIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Socks", "4.00", 20)

	first, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.Equal(t, 1, f.store.CartCount())

	_, _, err = f.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	a, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	b, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, f.store.CartCount())
	assert.Equal(t, 3, a.TotalItems())
	assert.True(t, dec("12.00").Equal(a.TotalAmount()))
}

func TestSetItemQuantity(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	other := f.user(t, "other@example.com")
	p := f.product("Bottle", "12", 4)

	item, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	updated, err := f.cart.SetItemQuantity(ctx, u.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.cart.SetItemQuantity(ctx, u.ID, item.ID, 5)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = f.cart.SetItemQuantity(ctx, u.ID, item.ID, 0)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.cart.SetItemQuantity(ctx, other.ID, item.ID, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestSetItemQuantityRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Kettle", "35", 10)

	item, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	stored, _ := f.store.Product(p.ID)
	stored.IsActive = false
	f.store.AddProduct(stored)

	_, err = f.cart.SetItemQuantity(ctx, u.ID, item.ID, 2)
	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	a := f.product("A", "1", 10)
	b := f.product("B", "2", 10)

	itemA, _, err := f.cart.AddItem(ctx, u.ID, a.ID, 1)
	require.NoError(t, err)
	_, _, err = f.cart.AddItem(ctx, u.ID, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.cart.RemoveItem(ctx, u.ID, itemA.ID))
	assert.ErrorIs(t, f.cart.RemoveItem(ctx, u.ID, itemA.ID), services.ErrNotFound)

	cart, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, f.cart.Clear(ctx, u.ID))
	cart, err = f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

// cartLineHook intercepts the first cart line lookup. It can hide the line,
// as a request that read before a concurrent insert would, or run fn after
// the read to interleave another add.
type cartLineHook struct {
	repositories.CartItemRepositoryImpl
	hide  bool
	fn    func()
	calls int
}

func (h *cartLineHook) GetByCartAndProduct(ctx context.Context, cartID, productID uint64) (*models.CartItem, error) {
	item, err := h.CartItemRepositoryImpl.GetByCartAndProduct(ctx, cartID, productID)
	h.calls++
	if h.calls == 1 {
		if h.hide {
			return nil, err
		}
		if h.fn != nil {
			h.fn()
		}
	}
	return item, err
}

func (f *fixture) cartWith(items repositories.CartItemRepositoryImpl) *services.CartService {
	repos := f.store.Repository()
	return services.NewCartService(repos.Carts, items, repos.Products, zap.NewNop())
}

func TestAddItemMergesWhenLineWasCreatedConcurrently(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Notebook", "3.50", 10)

	_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	late := f.cartWith(&cartLineHook{CartItemRepositoryImpl: f.store.Repository().CartItems, hide: true})
	item, created, err := late.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, item.Quantity)

	cart, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemInterleavedMergesKeepEveryUnit(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Pencil", "1.20", 10)

	_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	hook := &cartLineHook{CartItemRepositoryImpl: f.store.Repository().CartItems}
	hook.fn = func() {
		_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 2)
		require.NoError(t, err)
	}
	item, created, err := f.cartWith(hook).AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 7, item.Quantity)
}

func TestAddItemInterleavedMergeStopsAtStock(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Eraser", "0.80", 6)

	_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	hook := &cartLineHook{CartItemRepositoryImpl: f.store.Repository().CartItems}
	hook.fn = func() {
		_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 2)
		require.NoError(t, err)
	}
	_, _, err = f.cartWith(hook).AddItem(ctx, u.ID, p.ID, 2)
	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 7, stockErr.Requested)

	cart, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestConcurrentAddsToSameLine(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cart@example.com")
	p := f.product("Marker", "2.00", 100)

	_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.cart.AddItem(ctx, u.ID, p.ID, 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := f.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 41, cart.Items[0].Quantity)
}
