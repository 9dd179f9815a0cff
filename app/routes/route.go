package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handlers struct {
	Home      *handlers.HomeHandler
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Cart      *handlers.CartHandler
	Purchases *handlers.PurchaseHandler
}

// NewRouter wires every endpoint. Fixed segments such as /featured and /mine
// are registered before the /{slug} catch-all.
func NewRouter(h Handlers, auth *middlewares.Auth, resp *handlers.Responder, log *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(middlewares.RequestID, middlewares.Recoverer(log), middlewares.RequestLogger(log), middlewares.SecurityHeaders)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp.JSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{"code": "not_found", "message": "Not found."},
		})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp.JSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"error": map[string]string{"code": "method_not_allowed", "message": "Method \"" + r.Method + "\" not allowed."},
		})
	})

	router.HandleFunc("/healthz", h.Home.Healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", h.Home.APIInfo).Methods(http.MethodGet)

	protected := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(fn)
	}
	staff := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireStaff(fn))
	}

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/token/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	authRoutes.Handle("/me", protected(h.Auth.Me)).Methods(http.MethodGet)
	authRoutes.Handle("/me", protected(h.Auth.UpdateMe)).Methods(http.MethodPut, http.MethodPatch)

	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("/categories", h.Products.Categories).Methods(http.MethodGet)
	products.Handle("/categories", staff(h.Products.CreateCategory)).Methods(http.MethodPost)
	products.Handle("/categories/{slug}", staff(h.Products.DeleteCategory)).Methods(http.MethodDelete)
	products.HandleFunc("/categories/{slug}/products", h.Products.ProductsByCategory).Methods(http.MethodGet)
	products.HandleFunc("", h.Products.Products).Methods(http.MethodGet)
	products.Handle("", protected(h.Products.CreateProduct)).Methods(http.MethodPost)
	products.HandleFunc("/featured", h.Products.Featured).Methods(http.MethodGet)
	products.Handle("/mine", protected(h.Products.MyProducts)).Methods(http.MethodGet)
	products.Handle("/mine/{id:[0-9]+}", protected(h.Products.MyProduct)).Methods(http.MethodGet)
	products.Handle("/mine/{id:[0-9]+}", protected(h.Products.UpdateMyProduct)).Methods(http.MethodPut, http.MethodPatch)
	products.HandleFunc("/{id:[0-9]+}/recommended", h.Products.Recommended).Methods(http.MethodGet)
	products.HandleFunc("/{slug}", h.Products.ProductDetail).Methods(http.MethodGet)

	cart := api.PathPrefix("/cart").Subrouter()
	cart.Handle("", protected(h.Cart.GetCart)).Methods(http.MethodGet)
	cart.Handle("/add", protected(h.Cart.AddToCart)).Methods(http.MethodPost)
	cart.Handle("/items/{id:[0-9]+}", protected(h.Cart.UpdateItem)).Methods(http.MethodPut, http.MethodPatch)
	cart.Handle("/items/{id:[0-9]+}/remove", protected(h.Cart.RemoveItem)).Methods(http.MethodDelete)
	cart.Handle("/clear", protected(h.Cart.Clear)).Methods(http.MethodDelete)

	purchases := api.PathPrefix("/purchases").Subrouter()
	purchases.Handle("/history", protected(h.Purchases.History)).Methods(http.MethodGet)
	purchases.Handle("/create-payment-intent", protected(h.Purchases.CreatePaymentIntent)).Methods(http.MethodPost)
	purchases.Handle("/create", protected(h.Purchases.Create)).Methods(http.MethodPost)
	purchases.Handle("/{id:[0-9]+}", protected(h.Purchases.Detail)).Methods(http.MethodGet)

	return middlewares.StripTrailingSlash(router)
}
