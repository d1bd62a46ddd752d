package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/msomdec/product-catalog/internal/auth/password"
	"github.com/msomdec/product-catalog/internal/auth/token"
	"github.com/msomdec/product-catalog/internal/config"
	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/handler"
	"github.com/msomdec/product-catalog/internal/logger"
	"github.com/msomdec/product-catalog/internal/repository/postgres"
	"github.com/msomdec/product-catalog/internal/repository/sqlite"
	"github.com/msomdec/product-catalog/internal/service"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env-file", "", "path to a .env file (default ./.env if present)")
	flag.Parse()

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open database")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		l.Fatal().Err(err).Msg("failed to run migrations")
	}
	l.Info().Str("driver", cfg.Database.Driver).Msg("database migrations applied")

	issuer, err := token.NewIssuer(cfg.JWT)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create token issuer")
	}
	validator, err := token.NewValidator(cfg.JWT)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create token validator")
	}

	limiter := service.NewTokenBucket(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	defer limiter.Close()

	services := handler.Services{
		DB:          store,
		Auth:        service.NewAuthService(store.Users(), password.NewHasher(cfg.Password), issuer, validator),
		Products:    service.NewProductService(store.Products(), store.Categories(), store.Suppliers()),
		Categories:  service.NewCategoryService(store.Categories()),
		Suppliers:   service.NewSupplierService(store.Suppliers()),
		AuthLimiter: limiter,
	}

	engine, err := handler.NewEngine(l, cfg.Server.CORSOrigins, cfg.Server.TrustedProxies)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to build router")
	}
	handler.RegisterRoutes(engine, services)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server shutdown error")
		return
	}
	l.Info().Msg("server stopped")
}

// openStore opens the backend selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (domain.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.DSN)
	case config.DriverPostgres:
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return postgres.New(pingCtx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
