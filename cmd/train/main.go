package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	config "restaurant-demand-api/configs"
	"restaurant-demand-api/pkg/logging"
	"restaurant-demand-api/pkg/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()
	logger := logging.NewOrNop(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	dataPath := cfg.Training.DataPath
	if len(os.Args) > 1 {
		dataPath = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := services.TrainingOptions{
		DataPath:    dataPath,
		Algorithm:   cfg.Training.Algorithm,
		NEstimators: cfg.Training.NEstimators,
		RandomSeed:  cfg.Training.RandomSeed,
		MaxDepth:    cfg.Training.MaxDepth,
		RidgeAlpha:  cfg.Training.RidgeAlpha,
	}
	paths := services.ArtifactPaths{
		Encoder:    cfg.EncoderPath(),
		Model:      cfg.ModelPath(),
		Categories: cfg.CategoriesPath(),
	}

	result, err := services.NewTrainingService(logger).TrainAndSave(ctx, opts, paths)
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}

	fmt.Println("=== 学習結果 ===")
	fmt.Printf("明細行数: %d / 学習行数: %d\n", result.RecordCount, result.RowCount)
	fmt.Printf("カテゴリ: %v\n", result.Categories)
	fmt.Printf("R² (全体): %.3f / MAE (全体): %.3f\n", result.Metrics.OverallR2, result.Metrics.OverallMAE)

	for _, cat := range result.Categories {
		fmt.Printf("  - %s: R²=%.3f MAE=%.3f\n", cat, result.Metrics.CategoryR2[cat], result.Metrics.CategoryMAE[cat])
	}
	fmt.Println("Model trained and saved successfully.")
}
