package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/veritaschain/pociv-backend/internal/handlers"
	"github.com/veritaschain/pociv-backend/internal/platform/envutil"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/server"
	"github.com/veritaschain/pociv-backend/internal/services"
	"github.com/veritaschain/pociv-backend/internal/temporalx"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	temporalClient, err := temporalx.NewClient(log)
	if err != nil {
		log.Fatal("Temporal client init failed", "error", err)
	}
	if temporalClient == nil {
		log.Fatal("TEMPORAL_ADDRESS is required for the intake API")
	}
	defer temporalClient.Close()

	ratingService := services.NewRatingService(temporalClient, log)
	ratingHandler := handlers.NewRatingHandler(ratingService)

	router := server.NewRouter(server.RouterConfig{
		RatingHandler: ratingHandler,
	})

	port := envutil.String("API_PORT", "8000")
	log.Info("API server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
