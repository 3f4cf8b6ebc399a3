// Package main serves the key catalog and the cryptographic operations of
// the facade over HTTP.
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

	v1 "github.com/MGTheTrain/crypto-facade/internal/api/rest/v1"
	"github.com/MGTheTrain/crypto-facade/internal/app"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/metrics"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/persistence"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../../configs/rest-app.yaml"
	}

	restConfig, err := config.InitializeRestConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	if err := logger.InitLogger(&restConfig.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	deps, err := initializeDependencies(restConfig, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	serveErr := startServerWithGracefulShutdown(restConfig, deps, log)
	return multierr.Append(serveErr, deps.close())
}

// appDependencies holds all initialized application components
type appDependencies struct {
	db       *gorm.DB
	keyStore keys.KeyStore
	gatherer prometheus.Gatherer

	cryptoKeyGenerate keys.CryptoKeyGenerateService
	cryptoKeyExport   keys.CryptoKeyExportService
	cryptoKeyMetadata keys.CryptoKeyMetadataService
	cryptoOperation   keys.CryptoOperationService
}

// close releases every live key before the database goes away
func (d *appDependencies) close() error {
	return multierr.Combine(d.keyStore.Close(), persistence.CloseDB(d.db))
}

// initializeDependencies sets up all application components
func initializeDependencies(cfg *config.RestConfig, log logger.Logger) (*appDependencies, error) {
	db, err := persistence.NewDBConnection(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	cryptoKeyRepo, err := persistence.NewGormCryptoKeyRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto key repository: %w", err)
	}

	software, err := engine.NewSoftwareEngine(&cfg.Engine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	provider, err := cryptography.NewProvider(software, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	collectors, err := metrics.NewMetrics(software)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	instrumented := metrics.NewInstrumentedProvider(provider, collectors)

	keyStore := app.NewInMemoryKeyStore()

	generateService, err := app.NewCryptoKeyGenerateService(instrumented, keyStore, cryptoKeyRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto key generate service: %w", err)
	}

	exportService, err := app.NewCryptoKeyExportService(instrumented, keyStore, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto key export service: %w", err)
	}

	metadataService, err := app.NewCryptoKeyMetadataService(keyStore, cryptoKeyRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto key metadata service: %w", err)
	}

	operationService, err := app.NewCryptoOperationService(instrumented, keyStore, cfg.Engine.DefaultDigest, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto operation service: %w", err)
	}

	log.Info("Application services initialized successfully")
	return &appDependencies{
		db:                db,
		keyStore:          keyStore,
		gatherer:          collectors.Gatherer(),
		cryptoKeyGenerate: generateService,
		cryptoKeyExport:   exportService,
		cryptoKeyMetadata: metadataService,
		cryptoOperation:   operationService,
	}, nil
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.RestConfig, deps *appDependencies, log logger.Logger) error {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1.SetupRoutes(r,
		deps.cryptoKeyGenerate,
		deps.cryptoKeyExport,
		deps.cryptoKeyMetadata,
		deps.cryptoOperation,
		deps.gatherer,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info("Received signal ", sig, ", initiating graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
