package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/config"
	"github.com/sangkips/invoicer/internal/domain/calculator"
	"github.com/sangkips/invoicer/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/database"
	"github.com/sangkips/invoicer/internal/infrastructure/pdf"
	"github.com/sangkips/invoicer/internal/infrastructure/render"
	"github.com/sangkips/invoicer/internal/infrastructure/repository"
	"github.com/sangkips/invoicer/internal/infrastructure/storage"
	"github.com/sangkips/invoicer/internal/presentation/http/handler"
	"github.com/sangkips/invoicer/internal/presentation/http/routes"
	"github.com/sangkips/invoicer/pkg/logger"
	"github.com/sangkips/invoicer/pkg/metrics"
	"github.com/sangkips/invoicer/pkg/utils"
	"go.uber.org/zap"
)

const (
	shutdownTimeout         = 15 * time.Second
	idempotencyCleanupEvery = time.Hour
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	creds, err := config.LoadCredentials(cfg.Auth.CredentialsFile)
	if err != nil {
		return err
	}

	store, err := database.Open(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zlog.Error("failed to close store", zap.Error(err))
		}
	}()

	m := metrics.New("invoicer")
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Initialize repositories
	credRepo := repository.NewStaticCredentialRepository(creds)
	clientRepo := repository.NewClientRepository(store)
	invoiceRepo := repository.NewInvoiceRepository(store)
	idempotencyRepo := repository.NewIdempotencyRepository(store)

	// File storage
	invoiceFiles, err := storage.NewInvoiceStore(&cfg.Storage)
	if err != nil {
		return err
	}
	logoFiles, err := storage.NewLocalStore(cfg.Storage.LogoDir)
	if err != nil {
		return err
	}

	renderer, err := render.New(cfg.Invoice.TemplatePath, cfg.Invoice.CurrencySymbol)
	if err != nil {
		return err
	}
	exporter := pdf.New(pdf.Options{FontPath: cfg.Invoice.FontPath, Author: cfg.App.Name})

	defaultType, err := enum.ParseInvoiceType(cfg.Invoice.DefaultType)
	if err != nil {
		return err
	}

	// Initialize services
	authService, err := service.NewAuthService(credRepo, jwtManager, m, zlog)
	if err != nil {
		return err
	}
	clientService := service.NewClientService(clientRepo, zlog)
	logoService := service.NewLogoService(logoFiles, cfg.Storage.UploadMaxSize, zlog)
	invoiceService := service.NewInvoiceService(
		calculator.New(cfg.Invoice.MaxLineItems),
		renderer,
		exporter,
		invoiceFiles,
		logoService,
		clientRepo,
		invoiceRepo,
		m,
		zlog,
		service.InvoiceServiceOptions{DefaultType: defaultType, CurrencyCode: cfg.Invoice.CurrencyCode},
	)

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(&routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Client:  handler.NewClientHandler(clientService),
		Logo:    handler.NewLogoHandler(logoService),
		Invoice: handler.NewInvoiceHandler(invoiceService),
	}, &routes.Deps{
		Tokens:          authService,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         m,
		Logger:          zlog,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupIdempotencyKeys(ctx, idempotencyRepo, zlog)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server",
			zap.String("port", port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("storage_backend", cfg.Storage.Backend),
			zap.Int("users", len(creds)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cleanupIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(idempotencyCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				zlog.Warn("idempotency cleanup failed", zap.Error(err))
			}
		}
	}
}
