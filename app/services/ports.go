package services

import (
	"context"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    uint64
	Email     string
	Username  string
	IsStaff   bool
	Type      string
	ExpiresAt time.Time
}

type TokenProvider interface {
	SignAccess(ctx context.Context, user *models.User) (token string, exp time.Time, err error)
	SignRefresh(ctx context.Context, user *models.User) (token string, exp time.Time, err error)
	Parse(ctx context.Context, token, tokenType string) (*Claims, error)
}

type PaymentIntentRequest struct {
	AmountMinor int64
	Amount      decimal.Decimal
	UserID      uint64
	Email       string
	FirstName   string
	LastName    string
}

type PaymentIntent struct {
	ClientSecret    string
	PaymentIntentID string
	RedirectURL     string
}

// PaymentGateway creates a client-side payment handle at an external processor.
type PaymentGateway interface {
	Configured() bool
	CreateIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
}
