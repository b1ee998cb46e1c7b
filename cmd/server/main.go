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

	"github.com/gin-gonic/gin"
	"puja-booking-api/internal/api"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/job"
	"puja-booking-api/internal/services"
	"puja-booking-api/internal/sources"
	"puja-booking-api/internal/store"
	"puja-booking-api/pkg/cache"
	"puja-booking-api/pkg/idcodec"
	"puja-booking-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLogger.Sync() }()
	log := logger.NewZapAdapter(zapLogger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := idcodec.New(cfg.IDCodec.Key)
	if err != nil {
		return err
	}

	source, err := sources.NewCatalogAPI(cfg.Catalog, log)
	if err != nil {
		return err
	}

	redisCache := cache.NewRedisCache(ctx, cfg.Redis, log)
	defer func() { _ = redisCache.Close() }()

	catalog := services.NewCatalogService(store.NewCatalogStore(), source, redisCache, codec, log)
	bookings := services.NewBookingService(cfg.Booking, catalog, log)

	refreshJob, err := job.NewRefreshJob(cfg.Catalog.RefreshCron, cfg.Catalog.RefreshTimeout, catalog, log)
	if err != nil {
		return err
	}
	// Serve right away; listings answer CATALOG_UNAVAILABLE until this lands.
	go func() {
		_ = refreshJob.RunOnce(ctx)
	}()
	refreshJob.Start()

	handler := api.NewHandler(cfg, catalog, bookings, api.NewRateLimiter(cfg.RateLimit), log)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", map[string]interface{}{
			"port":        cfg.Server.Port,
			"environment": cfg.App.Environment,
			"catalog":     cfg.Catalog.BaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	refreshJob.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped", nil)
	return nil
}
