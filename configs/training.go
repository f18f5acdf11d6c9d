package config

// TrainingConfig 学習パイプラインの設定
type TrainingConfig struct {
	DataPath    string
	Algorithm   string
	NEstimators int
	RandomSeed  int64
	MaxDepth    int
	RidgeAlpha  float64
}

// GetTrainingConfig 学習設定を取得
func GetTrainingConfig() *TrainingConfig {
	return &TrainingConfig{
		DataPath:    getEnv("TRAINING_DATA_PATH", "sales_data.csv"),
		Algorithm:   getEnv("REGRESSOR", "random_forest"),
		NEstimators: getEnvInt("N_ESTIMATORS", 100),
		RandomSeed:  getEnvInt64("RANDOM_SEED", 42),
		MaxDepth:    getEnvInt("MAX_DEPTH", 0),
		RidgeAlpha:  getEnvFloat("RIDGE_ALPHA", 1.0),
	}
}
