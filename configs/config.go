package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Port                  string
	Environment           string
	LogLevel              string
	ArtifactDir           string
	EncoderFile           string
	ModelFile             string
	CategoriesFile        string
	StrictInputValidation bool
	Training              *TrainingConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "5000"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ArtifactDir:           getEnv("ARTIFACT_DIR", "."),
		EncoderFile:           getEnv("ENCODER_FILE", "encoder.json"),
		ModelFile:             getEnv("MODEL_FILE", "category_model.json"),
		CategoriesFile:        getEnv("CATEGORIES_FILE", "categories.json"),
		StrictInputValidation: getEnvBool("STRICT_INPUT_VALIDATION", false),
		Training:              GetTrainingConfig(),
	}
}

// EncoderPath エンコーダー成果物のパスを返す
func (c *Config) EncoderPath() string {
	return filepath.Join(c.ArtifactDir, c.EncoderFile)
}

// ModelPath モデル成果物のパスを返す
func (c *Config) ModelPath() string {
	return filepath.Join(c.ArtifactDir, c.ModelFile)
}

// CategoriesPath カテゴリ一覧成果物のパスを返す
func (c *Config) CategoriesPath() string {
	return filepath.Join(c.ArtifactDir, c.CategoriesFile)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
