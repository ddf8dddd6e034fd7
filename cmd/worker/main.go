package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/veritaschain/pociv-backend/internal/clients/discord"
	"github.com/veritaschain/pociv-backend/internal/data/db"
	"github.com/veritaschain/pociv-backend/internal/data/repos"
	"github.com/veritaschain/pociv-backend/internal/eas"
	"github.com/veritaschain/pociv-backend/internal/platform/envutil"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/temporalx"
	"github.com/veritaschain/pociv-backend/internal/temporalx/rating"
	"github.com/veritaschain/pociv-backend/internal/temporalx/temporalworker"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	userRepo := repos.NewUserRepo(thePG, log)
	validationRepo := repos.NewValidationRepo(thePG, log, userRepo)
	attestationRepo := repos.NewAttestationRepo(thePG, log)

	easClient, err := eas.NewClient(log)
	if err != nil {
		log.Fatal("EAS client init failed", "error", err)
	}

	temporalClient, err := temporalx.NewClient(log)
	if err != nil {
		log.Fatal("Temporal client init failed", "error", err)
	}
	if temporalClient == nil {
		log.Fatal("TEMPORAL_ADDRESS is required for the worker")
	}
	defer temporalClient.Close()

	acts := &rating.Activities{
		Log:          log,
		Users:        userRepo,
		Validations:  validationRepo,
		Attestations: attestationRepo,
		Minter:       easClient,
		Notifier:     discord.NewNotifierFromEnv(log),
		MintRetry:    rating.DefaultMintRetryConfig(),
	}

	runner, err := temporalworker.NewRunner(log, temporalClient, acts)
	if err != nil {
		log.Fatal("Worker init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		log.Fatal("Worker start failed", "error", err)
	}

	<-ctx.Done()
	log.Info("Shutting down worker")
}
