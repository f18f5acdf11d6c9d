package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	config "restaurant-demand-api/configs"
	"restaurant-demand-api/pkg/logging"
	"restaurant-demand-api/pkg/models"
	"restaurant-demand-api/pkg/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 例の条件（フラグで変更可能）
	day := flag.String("day", "Mon", "day of week, e.g. Mon, Tue")
	session := flag.String("session", "Dinner", "Lunch or Dinner")
	weather := flag.String("weather", "Rain", "Rain, Wind, Cloud, Sunny")
	waiter := flag.String("waiter", "Jim", "waiter name, e.g. Jim, Dwight, Toby")
	flag.Parse()

	cfg := config.LoadConfig()
	logger := logging.NewOrNop(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	input := models.FeatureContext{Day: *day, Session: *session, Weather: *weather, Waiter: *waiter}
	if err := printRecommendations(os.Stdout, cfg, input); err != nil {
		logger.Fatal("Prediction failed", zap.Error(err), zap.Any("input", input))
	}
}

// printRecommendations 成果物を読み込み、input に対する推奨を w に出力する
func printRecommendations(w io.Writer, cfg *config.Config, input models.FeatureContext) error {
	artifacts, err := services.LoadArtifacts(services.ArtifactPaths{
		Encoder:    cfg.EncoderPath(),
		Model:      cfg.ModelPath(),
		Categories: cfg.CategoriesPath(),
	})
	if err != nil {
		return err
	}

	recommendations, err := services.NewRecommendationService(artifacts).Recommend(input)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Recommendations for %s on %s, %s, Weather: %s\n", input.Waiter, input.Day, input.Session, input.Weather)
	for _, r := range recommendations {
		fmt.Fprintf(w, "- Category: %s\n", r.Category)
		fmt.Fprintf(w, "  Predicted Quantity: %.2f\n", r.PredictedQuantity)
		fmt.Fprintf(w, "  Target Quantity: %d\n", r.TargetQuantity)
		fmt.Fprintln(w)
	}
	return nil
}
