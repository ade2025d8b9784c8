package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/api"
	"github.com/qzaway/foodcourt/internal/cache"
	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/identity"
	"github.com/qzaway/foodcourt/internal/qzaway"
	"github.com/qzaway/foodcourt/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := qzaway.NewClient(cfg.API, logger)

	store, closeStore, err := identity.OpenStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open identity store: %w", err)
	}
	defer closeStore()
	users := identity.NewProvider(store, logger)

	var catalogCache cache.CatalogCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Catalog cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			catalogCache = cache.NewRedisCache(redisClient, cfg.Catalog.CacheTTL)
		}
	}

	cart := service.NewCartService(client, users, cfg.Cart, logger)
	defer cart.Close()

	router := api.NewRouter(cfg, api.Services{
		Cart:    cart,
		Orders:  service.NewOrderService(client, users, cart, cfg.Orders, logger),
		Catalog: service.NewCatalogService(client, catalogCache, cfg.Catalog, logger),
	}, logger)

	server := newServer(":"+cfg.Port, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting food court client",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.API.BaseURL),
			zap.String("identity_store", cfg.Identity.Store),
		)
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

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newServer builds the HTTP server. Request contexts are cancelled as soon as
// Shutdown starts so open event streams end instead of holding it up.
func newServer(addr string, handler http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	server.RegisterOnShutdown(cancel)
	return server
}
