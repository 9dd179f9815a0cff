package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories/repotest"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/hashing"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store   *repotest.Store
	auth    *services.AuthService
	catalog *services.CatalogService
	cart    *services.CartService
	orders  *services.OrderService
	hasher  *hashing.Bcrypt
	tokens  *token.HSProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repotest.NewStore()
	repos := store.Repository()
	log := zap.NewNop()
	validate := helpers.NewValidator()
	hasher := hashing.NewBcrypt(bcrypt.MinCost)
	tokens := token.NewHSProvider("test-secret", "storefront-api", "storefront-clients", time.Hour, 24*time.Hour)

	return &fixture{
		store:   store,
		auth:    services.NewAuthService(repos.Users, hasher, tokens, validate, log),
		catalog: services.NewCatalogService(repos.Categories, repos.Products, validate, log),
		cart:    services.NewCartService(repos.Carts, repos.CartItems, repos.Products, log),
		orders:  services.NewOrderService(repos.Products, repos.Purchases, store, validate, log),
		hasher:  hasher,
		tokens:  tokens,
	}
}

func (f *fixture) user(t *testing.T, email string) models.User {
	t.Helper()
	hash, err := f.hasher.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return f.store.AddUser(models.User{
		Email:    email,
		Username: email,
		Password: hash,
		IsActive: true,
	})
}

func (f *fixture) product(name, price string, stock int) models.Product {
	return f.store.AddProduct(models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

var ctx = context.Background()

func decimalNull(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
