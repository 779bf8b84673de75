// Package main initializes and starts the NovaBank HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/NovaBank/internal/config"
	"github.com/atinyakov/NovaBank/internal/db"
	"github.com/atinyakov/NovaBank/internal/logger"
	"github.com/atinyakov/NovaBank/internal/repository"
	"github.com/atinyakov/NovaBank/internal/server/handler/http"
	"github.com/atinyakov/NovaBank/internal/service"
	"github.com/atinyakov/NovaBank/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT secret is required (flag -s or env JWT_SECRET)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Prune consumed idempotency keys in the background.
	db.StartIdempotencyKeyCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		24*time.Hour,    // retention: 1 day
		zapLogger,
	)

	// Initialize repositories for identity and ledger operations.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	ledgerRepo := repository.NewPostgresLedgerRepository(postgresDB)

	// Token provider for issuing and verifying bearer tokens.
	tokens := token.NewProvider(options.JWTSecret, options.TokenTTL)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, ledgerRepo, tokens)
	bankService := service.NewBankService(ledgerRepo)

	// Create HTTP handlers for auth and banking endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	bankHandler := &http.BankHandler{AuthService: authService, BankService: bankService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, bankHandler, tokens, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
