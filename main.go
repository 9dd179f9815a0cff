package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-storefront/app/cmd"
	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/routes"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/hashing"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		if err := cmd.RunCli(ctx, os.Args, cfg, log); err != nil {
			log.Fatal("command failed", zap.Error(err))
		}
		return
	}

	if err := serve(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func serve(ctx context.Context, cfg *configs.Config, log *zap.Logger) error {
	db, err := configs.OpenConnection(cfg.DB, cfg.AppEnv, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if !cfg.Midtrans.Configured() {
		log.Warn("MIDTRANS_SERVER_KEY is not set, payment intents will fail until it is configured")
	}

	repo := repositories.New(db)
	validate := helpers.NewValidator()
	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	authSvc := services.NewAuthService(repo.Users, hashing.NewBcrypt(bcrypt.DefaultCost), tokens, validate, log)
	catalog := services.NewCatalogService(repo.Categories, repo.Products, validate, log)
	carts := services.NewCartService(repo.Carts, repo.CartItems, repo.Products, log)
	orders := services.NewOrderService(repo.Products, repo.Purchases, repo, validate, log)
	payments := services.NewPaymentService(services.NewMidtransGateway(cfg.Midtrans), repo.Users, log)

	resp := handlers.NewResponder(renderer.New(cfg.IsDevelopment()), log)
	present := handlers.NewPresenter(format.NewMoney(cfg.CurrencySymbol))

	router := routes.NewRouter(routes.Handlers{
		Home:      handlers.NewHomeHandler(resp, sqlDB, cfg.AppURL, log),
		Auth:      handlers.NewAuthHandler(authSvc, resp, present, log),
		Products:  handlers.NewProductHandler(catalog, resp, present),
		Cart:      handlers.NewCartHandler(carts, resp, present, log),
		Purchases: handlers.NewPurchaseHandler(orders, payments, resp, present),
	}, middlewares.NewAuth(authSvc, resp, log), resp, log)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
