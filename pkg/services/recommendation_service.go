package services

import (
	"fmt"
	"math"
	"sort"

	"restaurant-demand-api/pkg/models"
)

const (
	// DefaultTopN 推奨するカテゴリ数
	DefaultTopN = 3
	// TargetMultiplier 仕入れ目標の上乗せ率（+20%）
	TargetMultiplier = 1.2
)

// RecommendationService 読み込み済み成果物を使ってカテゴリ推奨を行う
type RecommendationService struct {
	artifacts *Artifacts
	topN      int
}

// NewRecommendationService 新しい推奨サービスを作成
func NewRecommendationService(artifacts *Artifacts) *RecommendationService {
	return &RecommendationService{artifacts: artifacts, topN: DefaultTopN}
}

// Artifacts 保持している成果物ハンドル
func (s *RecommendationService) Artifacts() *Artifacts {
	return s.artifacts
}

// Validate 語彙に無い値を含むコンテキストを検出する（厳格モード用）
func (s *RecommendationService) Validate(ctx models.FeatureContext) error {
	return s.artifacts.Encoder().Validate(ctx)
}

// Predict カテゴリ一覧と同じ順序で丸め前の予測数量を返す
func (s *RecommendationService) Predict(ctx models.FeatureContext) ([]float64, error) {
	x, err := s.artifacts.Encoder().Transform(ctx)
	if err != nil {
		return nil, err
	}
	preds, err := s.artifacts.Model().Predict(x)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(s.artifacts.categories) {
		return nil, fmt.Errorf("%w: model returned %d predictions for %d categories",
			ErrShapeMismatch, len(preds), len(s.artifacts.categories))
	}
	return preds, nil
}

// Recommend 予測数量の多い順に上位カテゴリを返す
func (s *RecommendationService) Recommend(ctx models.FeatureContext) ([]models.Recommendation, error) {
	preds, err := s.Predict(ctx)
	if err != nil {
		return nil, err
	}
	return rankRecommendations(s.artifacts.categories, preds, s.topN), nil
}

type categoryPrediction struct {
	category string
	quantity float64
}

// rankRecommendations 降順の安定ソート（同値はカテゴリ順を維持）で上位 n 件を選ぶ
func rankRecommendations(categories []string, preds []float64, n int) []models.Recommendation {
	ranked := make([]categoryPrediction, len(categories))
	for i, cat := range categories {
		ranked[i] = categoryPrediction{category: cat, quantity: preds[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].quantity > ranked[j].quantity
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]models.Recommendation, 0, n)
	for _, cp := range ranked[:n] {
		out = append(out, models.Recommendation{
			Category:          cp.category,
			PredictedQuantity: roundTo2(cp.quantity),
			TargetQuantity:    targetQuantity(cp.quantity),
		})
	}
	return out
}

// targetQuantity 丸め前の予測値に1.2を掛け、偶数丸めで整数にする
func targetQuantity(pred float64) int {
	return int(math.RoundToEven(pred * TargetMultiplier))
}

// roundTo2 100倍して偶数丸めした後に100で割る（numpyのround(x, 2)と同じ結果になる）
func roundTo2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}
