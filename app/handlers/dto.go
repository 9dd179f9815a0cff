package handlers

import (
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID         uint64     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	IsStaff    bool       `json:"is_staff"`
	LastLogin  *time.Time `json:"last_login"`
	DateJoined time.Time  `json:"date_joined"`
}

type CategoryResponse struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	ImageURL      *string   `json:"image_url"`
	ProductsCount *int64    `json:"products_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductResponse struct {
	ID                 uint64            `json:"id"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description"`
	Price              string            `json:"price"`
	DiscountPrice      *string           `json:"discount_price"`
	FinalPrice         string            `json:"final_price"`
	DisplayPrice       string            `json:"display_price"`
	HasDiscount        bool              `json:"has_discount"`
	DiscountPercentage int               `json:"discount_percentage"`
	ImageURL           *string           `json:"image_url"`
	Stock              int               `json:"stock"`
	Category           *CategoryResponse `json:"category"`
	IsFeatured         bool              `json:"is_featured"`
	IsActive           bool              `json:"is_active"`
	IsAvailable        bool              `json:"is_available"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type ProductPageResponse struct {
	Count   int64             `json:"count"`
	Results []ProductResponse `json:"results"`
}

type CartItemResponse struct {
	ID        uint64           `json:"id"`
	Product   *ProductResponse `json:"product"`
	ProductID uint64           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Subtotal  string           `json:"subtotal"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type CartResponse struct {
	ID                 uint64             `json:"id"`
	Items              []CartItemResponse `json:"items"`
	TotalItems         int                `json:"total_items"`
	TotalAmount        string             `json:"total_amount"`
	DisplayTotalAmount string             `json:"display_total_amount"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type PurchaseItemResponse struct {
	ID          uint64 `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Subtotal    string `json:"subtotal"`
}

type PurchaseResponse struct {
	ID              uint64                 `json:"id"`
	OrderCode       string                 `json:"order_code"`
	User            uint64                 `json:"user"`
	UserEmail       string                 `json:"user_email,omitempty"`
	TotalAmount     string                 `json:"total_amount"`
	PaymentIntentID *string                `json:"payment_intent_id"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method"`
	Status          models.PurchaseStatus  `json:"status"`
	Items           []PurchaseItemResponse `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type TokenResponse struct {
	Access           string     `json:"access"`
	AccessExpiresAt  time.Time  `json:"access_expires_at"`
	Refresh          string     `json:"refresh,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

type AuthResponse struct {
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user"`
	TokenResponse
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	RedirectURL     string `json:"redirect_url,omitempty"`
}

// Presenter turns models into response bodies.
type Presenter struct {
	money *format.Money
}

func NewPresenter(money *format.Money) *Presenter {
	return &Presenter{money: money}
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (p *Presenter) User(u *models.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsStaff:    u.IsStaff,
		LastLogin:  u.LastLogin,
		DateJoined: u.CreatedAt,
	}
}

func (p *Presenter) Category(c *models.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (p *Presenter) CategoryWithCount(c services.CategoryWithCount) CategoryResponse {
	out := p.Category(&c.Category)
	count := c.ProductsCount
	out.ProductsCount = &count
	return *out
}

func (p *Presenter) Product(m *models.Product) *ProductResponse {
	out := &ProductResponse{
		ID:                 m.ID,
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		Price:              amount(m.Price),
		FinalPrice:         amount(m.FinalPrice()),
		DisplayPrice:       p.money.Format(m.FinalPrice()),
		HasDiscount:        m.HasDiscount(),
		DiscountPercentage: m.DiscountPercentage(),
		ImageURL:           m.ImageURL,
		Stock:              m.Stock,
		IsFeatured:         m.IsFeatured,
		IsActive:           m.IsActive,
		IsAvailable:        m.InStock(),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.DiscountPrice.Valid {
		discount := amount(m.DiscountPrice.Decimal)
		out.DiscountPrice = &discount
	}
	if m.Category != nil {
		out.Category = p.Category(m.Category)
	}
	return out
}

func (p *Presenter) Products(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *p.Product(&products[i]))
	}
	return out
}

func (p *Presenter) CartItem(item *models.CartItem) *CartItemResponse {
	out := &CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Subtotal:  amount(item.Subtotal()),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Product != nil {
		out.Product = p.Product(item.Product)
	}
	return out
}

func (p *Presenter) Cart(c *models.Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, *p.CartItem(&c.Items[i]))
	}
	total := c.TotalAmount()
	return &CartResponse{
		ID:                 c.ID,
		Items:              items,
		TotalItems:         c.TotalItems(),
		TotalAmount:        amount(total),
		DisplayTotalAmount: p.money.Format(total),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (p *Presenter) Purchase(m *models.Purchase) *PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, PurchaseItemResponse{
			ID:          it.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       amount(it.Price),
			Subtotal:    amount(it.Subtotal),
		})
	}
	out := &PurchaseResponse{
		ID:              m.ID,
		OrderCode:       m.OrderCode,
		User:            m.UserID,
		TotalAmount:     amount(m.TotalAmount),
		PaymentIntentID: m.PaymentReference,
		PaymentMethod:   m.PaymentMethod,
		Status:          m.Status,
		Items:           items,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.User != nil {
		out.UserEmail = m.User.Email
	}
	return out
}

func (p *Presenter) Purchases(purchases []models.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		out = append(out, *p.Purchase(&purchases[i]))
	}
	return out
}

func (p *Presenter) Tokens(t services.TokenPair) TokenResponse {
	out := TokenResponse{
		Access:          t.Access,
		AccessExpiresAt: t.AccessExpiresAt,
		Refresh:         t.Refresh,
	}
	if !t.RefreshExpiresAt.IsZero() {
		exp := t.RefreshExpiresAt
		out.RefreshExpiresAt = &exp
	}
	return out
}
