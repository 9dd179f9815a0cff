package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type Auth struct {
	auth Authenticator
	resp *handlers.Responder
	log  *zap.Logger
}

func NewAuth(auth Authenticator, resp *handlers.Responder, log *zap.Logger) *Auth {
	return &Auth{auth: auth, resp: resp, log: log}
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			a.resp.Error(w, r, services.ErrUnauthorized)
			return
		}
		token, ok := ExtractBearerToken(header)
		if !ok || token == "" {
			a.resp.Error(w, r, services.ErrUnauthorized)
			return
		}

		user, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				a.log.Error("authentication lookup failed", zap.Error(err))
			}
			a.resp.Error(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(helpers.WithPrincipal(r.Context(), principalOf(user))))
	})
}

// RequireStaff must run after RequireAuth.
func (a *Auth) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := helpers.PrincipalFromContext(r.Context())
		if !ok {
			a.resp.Error(w, r, services.ErrUnauthorized)
			return
		}
		if !p.IsStaff {
			a.log.Warn("non-staff user attempted a staff action",
				zap.Uint64("user_id", p.ID),
				zap.String("path", r.URL.Path),
			)
			a.resp.Error(w, r, services.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func principalOf(u *models.User) *helpers.Principal {
	return &helpers.Principal{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>" header.
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = t[:i]
	}
	return t, true
}
