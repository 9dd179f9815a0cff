package token

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// HSProvider signs access and refresh JWTs with a shared HMAC secret.
type HSProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewHSProvider(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *HSProvider {
	return &HSProvider{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type customClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

func (p *HSProvider) SignAccess(ctx context.Context, user *models.User) (string, time.Time, error) {
	return p.sign(user, services.TokenTypeAccess, p.accessTTL)
}

func (p *HSProvider) SignRefresh(ctx context.Context, user *models.User) (string, time.Time, error) {
	return p.sign(user, services.TokenTypeRefresh, p.refreshTTL)
}

func (p *HSProvider) sign(user *models.User, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(ttl)

	claims := customClaims{
		Email:    user.Email,
		Username: user.Username,
		Staff:    user.IsStaff,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    p.issuer,
			Subject:   strconv.FormatUint(user.ID, 10),
			Audience:  []string{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.secret)
	return signed, exp, err
}

// Parse validates signature, issuer, audience, expiry and the token type.
func (p *HSProvider) Parse(ctx context.Context, token, tokenType string) (*services.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &customClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	},
		jwt.WithAudience(p.audience),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}

	cc, ok := parsed.Claims.(*customClaims)
	if !ok || !parsed.Valid || cc.Type != tokenType {
		return nil, ErrInvalidToken
	}

	uid, err := strconv.ParseUint(cc.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &services.Claims{
		UserID:    uid,
		Email:     cc.Email,
		Username:  cc.Username,
		IsStaff:   cc.Staff,
		Type:      cc.Type,
		ExpiresAt: cc.ExpiresAt.Time,
	}, nil
}
