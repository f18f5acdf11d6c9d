package services

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	AlgorithmRandomForest = "random_forest"
	AlgorithmLinear       = "linear"
)

// Regressor 特徴量ベクトルからカテゴリごとの数量ベクトルを予測する多出力回帰モデル
type Regressor interface {
	// Fit X (N×特徴量数) と Y (N×カテゴリ数) から学習する
	Fit(X, Y *mat.Dense) error
	// Predict 1件の特徴量ベクトルから、カテゴリ順に並んだ予測値を返す
	Predict(x []float64) ([]float64, error)
	NumFeatures() int
	NumOutputs() int
	Algorithm() string
}

// NewRegressor 学習オプションに応じたモデルを作成
func NewRegressor(opts TrainingOptions) (Regressor, error) {
	switch opts.Algorithm {
	case AlgorithmRandomForest, "":
		return NewRandomForestRegressor(opts.NEstimators, opts.RandomSeed, opts.MaxDepth), nil
	case AlgorithmLinear:
		return NewLinearRegressor(opts.RidgeAlpha), nil
	default:
		return nil, fmt.Errorf("unsupported regressor %q", opts.Algorithm)
	}
}

func checkFitShapes(X, Y *mat.Dense) (int, int, int, error) {
	if X == nil || Y == nil {
		return 0, 0, 0, fmt.Errorf("%w: nil training matrix", ErrInsufficientData)
	}
	n, d := X.Dims()
	ny, k := Y.Dims()
	if n == 0 {
		return 0, 0, 0, fmt.Errorf("%w: no training rows", ErrInsufficientData)
	}
	if n != ny {
		return 0, 0, 0, fmt.Errorf("%w: X has %d rows but Y has %d", ErrShapeMismatch, n, ny)
	}
	return n, d, k, nil
}

func checkPredictShape(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: expected %d features, got %d", ErrShapeMismatch, want, len(x))
	}
	return nil
}
