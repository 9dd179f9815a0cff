// Package repotest provides an in-memory implementation of the repositories
// with snapshot/rollback transactions, for service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
)

// Hooks let tests inject failures or concurrent changes at precise points.
type Hooks struct {
	// BeginTx runs inside WithTx before the callback, with the store unlocked.
	BeginTx func(s *Store)
	// CreatePurchaseItem runs before a purchase item is stored.
	CreatePurchaseItem func(item *models.PurchaseItem) error
}

type state struct {
	users         map[uint64]models.User
	categories    map[uint64]models.Category
	products      map[uint64]models.Product
	carts         map[uint64]models.Cart
	cartItems     map[uint64]models.CartItem
	purchases     map[uint64]models.Purchase
	purchaseItems map[uint64]models.PurchaseItem
	nextID        uint64
}

func newState() state {
	return state{
		users:         map[uint64]models.User{},
		categories:    map[uint64]models.Category{},
		products:      map[uint64]models.Product{},
		carts:         map[uint64]models.Cart{},
		cartItems:     map[uint64]models.CartItem{},
		purchases:     map[uint64]models.Purchase{},
		purchaseItems: map[uint64]models.PurchaseItem{},
	}
}

func (s state) clone() state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	for k, v := range s.purchaseItems {
		c.purchaseItems[k] = v
	}
	return c
}

// Store is a goroutine-safe in-memory database.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  state
	now   func() time.Time
	Hooks Hooks
}

func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

func (s *Store) id() uint64 {
	s.data.nextID++
	return s.data.nextID
}

// Repository returns repositories backed by the store.
func (s *Store) Repository() *repositories.Repository {
	return &repositories.Repository{
		Users:         &userRepo{s},
		Categories:    &categoryRepo{s},
		Products:      &productRepo{s},
		Carts:         &cartRepo{s},
		CartItems:     &cartItemRepo{s},
		Purchases:     &purchaseRepo{s},
		PurchaseItems: &purchaseItemRepo{s},
	}
}

// WithTx serializes transactions and restores the pre-transaction state when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx *repositories.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if s.Hooks.BeginTx != nil {
		s.Hooks.BeginTx(s)
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.Repository()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func duplicate(key string) error {
	return &repositories.DuplicateKeyError{Key: key, Err: fmt.Errorf("Duplicate entry for key '%s'", key)}
}

// Seeding and inspection helpers.

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.data.users[u.ID] = u
	return u
}

func (s *Store) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.data.categories[c.ID] = c
	return c
}

func (s *Store) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	if p.Slug == "" {
		p.Slug = fmt.Sprintf("product-%d", p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.data.products[p.ID] = p
	return p
}

func (s *Store) Product(id uint64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.products[id]
	return p, ok
}

func (s *Store) SetStock(id uint64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.data.products[id]
	p.Stock = stock
	s.data.products[id] = p
}

func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.purchases)
}

func (s *Store) PurchaseItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.purchaseItems)
}

func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.carts)
}

// withProduct attaches a copy of the product and its category, like a gorm Preload.
func (s *Store) withProduct(id uint64) *models.Product {
	p, ok := s.data.products[id]
	if !ok {
		return nil
	}
	if p.CategoryID != nil {
		if c, ok := s.data.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	return &p
}

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
