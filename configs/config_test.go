package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":                    "8080",
		"ENVIRONMENT":             "test",
		"ARTIFACT_DIR":            "/tmp/artifacts",
		"MODEL_FILE":              "model.json",
		"STRICT_INPUT_VALIDATION": "true",
		"REGRESSOR":               "linear",
		"N_ESTIMATORS":            "25",
		"RANDOM_SEED":             "7",
		"RIDGE_ALPHA":             "0.5",
	}

	// 環境変数を設定
	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	// 設定を読み込み
	cfg := LoadConfig()

	// 検証
	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.ModelPath() != filepath.Join("/tmp/artifacts", "model.json") {
		t.Errorf("Unexpected ModelPath: '%s'", cfg.ModelPath())
	}

	if !cfg.StrictInputValidation {
		t.Error("Expected StrictInputValidation to be true")
	}

	if cfg.Training.Algorithm != "linear" {
		t.Errorf("Expected Algorithm to be 'linear', got '%s'", cfg.Training.Algorithm)
	}

	if cfg.Training.NEstimators != 25 {
		t.Errorf("Expected NEstimators to be 25, got %d", cfg.Training.NEstimators)
	}

	if cfg.Training.RandomSeed != 7 {
		t.Errorf("Expected RandomSeed to be 7, got %d", cfg.Training.RandomSeed)
	}

	if cfg.Training.RidgeAlpha != 0.5 {
		t.Errorf("Expected RidgeAlpha to be 0.5, got %f", cfg.Training.RidgeAlpha)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "ARTIFACT_DIR", "ENCODER_FILE",
		"MODEL_FILE", "CATEGORIES_FILE", "STRICT_INPUT_VALIDATION",
		"TRAINING_DATA_PATH", "REGRESSOR", "N_ESTIMATORS", "RANDOM_SEED",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	// 設定を読み込み
	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "5000" {
		t.Errorf("Expected default Port to be '5000', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if cfg.EncoderPath() != "encoder.json" {
		t.Errorf("Expected default EncoderPath to be 'encoder.json', got '%s'", cfg.EncoderPath())
	}

	if cfg.CategoriesPath() != "categories.json" {
		t.Errorf("Expected default CategoriesPath to be 'categories.json', got '%s'", cfg.CategoriesPath())
	}

	if cfg.StrictInputValidation {
		t.Error("Expected StrictInputValidation to default to false")
	}

	if cfg.Training.DataPath != "sales_data.csv" {
		t.Errorf("Expected default DataPath to be 'sales_data.csv', got '%s'", cfg.Training.DataPath)
	}

	if cfg.Training.NEstimators != 100 || cfg.Training.RandomSeed != 42 {
		t.Errorf("Unexpected forest defaults: n=%d seed=%d", cfg.Training.NEstimators, cfg.Training.RandomSeed)
	}
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	os.Setenv("N_ESTIMATORS", "many")
	os.Setenv("STRICT_INPUT_VALIDATION", "maybe")
	defer os.Unsetenv("N_ESTIMATORS")
	defer os.Unsetenv("STRICT_INPUT_VALIDATION")

	cfg := LoadConfig()

	if cfg.Training.NEstimators != 100 {
		t.Errorf("Expected fallback NEstimators 100, got %d", cfg.Training.NEstimators)
	}
	if cfg.StrictInputValidation {
		t.Error("Expected fallback StrictInputValidation false")
	}
}
