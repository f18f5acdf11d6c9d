package main

import (
	"log"

	config "restaurant-demand-api/configs"
	"restaurant-demand-api/pkg/handlers"
	"restaurant-demand-api/pkg/logging"
	"restaurant-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 成果物は起動時に一度だけ読み込み、以後は読み取り専用で共有する
	artifacts, err := services.LoadArtifacts(services.ArtifactPaths{
		Encoder:    cfg.EncoderPath(),
		Model:      cfg.ModelPath(),
		Categories: cfg.CategoriesPath(),
	})
	if err != nil {
		logger.Fatal("Failed to load model artifacts", zap.Error(err))
	}
	logger.Info("🟢 成果物を読み込みました",
		zap.String("model_id", artifacts.ModelID()),
		zap.String("algorithm", artifacts.Model().Algorithm()),
		zap.Strings("categories", artifacts.Categories()))

	r := handlers.NewRouter(handlers.RouterDeps{
		Artifacts:             artifacts,
		Monitoring:            services.NewMonitoringService(logger),
		Logger:                logger,
		StrictInputValidation: cfg.StrictInputValidation,
	})

	logger.Info("Starting restaurant demand API server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
