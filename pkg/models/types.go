package models

import "time"

// SaleRecord 売上明細1行（1品目）を表す
type SaleRecord struct {
	Date     string  `json:"date"`
	Day      string  `json:"day"`
	Session  string  `json:"session"`  // "Lunch" or "Dinner"
	Waiter   string  `json:"waiter"`
	Weather  string  `json:"weather"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
}

// TrainingRow は (Date, Session, Waiter) ごとに集約された学習用の1行です。
type TrainingRow struct {
	Date       string             `json:"date"`
	Session    string             `json:"session"`
	Waiter     string             `json:"waiter"`
	Day        string             `json:"day"`
	Weather    string             `json:"weather"`    // グループ内の最頻値
	Quantities map[string]float64 `json:"quantities"` // カテゴリ -> 数量（全カテゴリ分、未販売は0）
}

// Context 学習行から特徴量コンテキストを取り出す
func (r TrainingRow) Context() FeatureContext {
	return FeatureContext{
		Day:     r.Day,
		Session: r.Session,
		Weather: r.Weather,
		Waiter:  r.Waiter,
	}
}

// FeatureContext 予測の入力となるカテゴリ変数の組
type FeatureContext struct {
	Day     string `json:"day"`
	Session string `json:"session"`
	Weather string `json:"weather"`
	Waiter  string `json:"waiter"`
}

// Recommendation 推奨カテゴリ1件
type Recommendation struct {
	Category          string  `json:"category"`
	PredictedQuantity float64 `json:"predicted_quantity"` // 小数第2位で丸め
	TargetQuantity    int     `json:"target_quantity"`    // 予測値の+20%を整数に丸めた仕入れ目標
}

// RecommendCategoriesRequest represents a category recommendation request
type RecommendCategoriesRequest struct {
	Day     string `json:"day" binding:"required"`
	Session string `json:"session" binding:"required"`
	Weather string `json:"weather" binding:"required"`
	Waiter  string `json:"waiter" binding:"required"`
}

// Context リクエストを特徴量コンテキストに変換
func (r RecommendCategoriesRequest) Context() FeatureContext {
	return FeatureContext{
		Day:     r.Day,
		Session: r.Session,
		Weather: r.Weather,
		Waiter:  r.Waiter,
	}
}

// RecommendCategoriesResponse represents the recommendation response
type RecommendCategoriesResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// SimulateDailyRequest 日次シミュレーションのリクエスト
// day_of_week は型を問わず存在のみを確認するため interface{} で受ける
type SimulateDailyRequest struct {
	DayOfWeek      interface{} `json:"day_of_week"`
	Weather        string      `json:"weather"`
	DailyTarget    float64     `json:"daily_target"`
	SalesDoneToday float64     `json:"sales_done_today"`
}

// ErrorResponse エラー応答
type ErrorResponse struct {
	Error string `json:"error"`
}

// TrainingMetrics 学習データに対する適合度
type TrainingMetrics struct {
	Rows        int                `json:"rows"`
	OverallR2   float64            `json:"overall_r2"`
	OverallMAE  float64            `json:"overall_mae"`
	CategoryR2  map[string]float64 `json:"category_r2"`
	CategoryMAE map[string]float64 `json:"category_mae"`
}

// ModelInfo 読み込み済みモデルのメタデータ（GET /api/model）
type ModelInfo struct {
	ModelID       string              `json:"model_id"`
	SchemaVersion int                 `json:"schema_version"`
	Algorithm     string              `json:"algorithm"`
	TrainedAt     time.Time           `json:"trained_at"`
	Categories    []string            `json:"categories"`
	FeatureNames  []string            `json:"feature_names"`
	Vocabulary    map[string][]string `json:"vocabulary"`
	Metrics       *TrainingMetrics    `json:"metrics,omitempty"`
}
