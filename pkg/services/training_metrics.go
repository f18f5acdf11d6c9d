package services

import (
	"math"

	"restaurant-demand-api/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// evaluateFit 学習データに対する R²（決定係数）と MAE をカテゴリごとに計算
func evaluateFit(model Regressor, X [][]float64, Y [][]float64, categories []string) (*models.TrainingMetrics, error) {
	metrics := &models.TrainingMetrics{
		Rows:        len(X),
		CategoryR2:  make(map[string]float64, len(categories)),
		CategoryMAE: make(map[string]float64, len(categories)),
	}
	if len(X) == 0 {
		return metrics, nil
	}

	preds := make([][]float64, len(X))
	for i, x := range X {
		p, err := model.Predict(x)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}

	var r2Sum, absSum float64
	actual := make([]float64, len(Y))
	predicted := make([]float64, len(Y))
	for j, cat := range categories {
		for i := range Y {
			actual[i] = Y[i][j]
			predicted[i] = preds[i][j]
		}
		r2 := rSquared(actual, predicted)
		mae := meanAbsoluteError(actual, predicted)
		metrics.CategoryR2[cat] = r2
		metrics.CategoryMAE[cat] = mae
		r2Sum += r2
		absSum += mae
	}
	if len(categories) > 0 {
		metrics.OverallR2 = r2Sum / float64(len(categories))
		metrics.OverallMAE = absSum / float64(len(categories))
	}
	return metrics, nil
}

// rSquared 実測値が一定の場合は、完全一致なら1、そうでなければ0
func rSquared(actual, predicted []float64) float64 {
	meanY := stat.Mean(actual, nil)
	var ssTotal, ssResidual float64
	for i := range actual {
		ssTotal += (actual[i] - meanY) * (actual[i] - meanY)
		ssResidual += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
	}
	if ssTotal == 0 {
		if ssResidual == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssResidual/ssTotal
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}
