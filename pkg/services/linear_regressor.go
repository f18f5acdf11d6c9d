package services

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegressor 多出力のリッジ回帰（切片は正則化しない）
// one-hot特徴量は列の和が切片と一致するため、alpha > 0 で正則化して解く
type LinearRegressor struct {
	Alpha        float64     `json:"alpha"`
	Features     int         `json:"n_features"`
	Outputs      int         `json:"n_outputs"`
	Coefficients [][]float64 `json:"coefficients"` // (特徴量数+1)×出力数、最終行が切片
}

// NewLinearRegressor リッジ回帰モデルを作成
func NewLinearRegressor(alpha float64) *LinearRegressor {
	return &LinearRegressor{Alpha: alpha}
}

func (lr *LinearRegressor) Algorithm() string { return AlgorithmLinear }
func (lr *LinearRegressor) NumFeatures() int  { return lr.Features }
func (lr *LinearRegressor) NumOutputs() int   { return lr.Outputs }

// Fit (XᵀX + αI)β = XᵀY を解く
func (lr *LinearRegressor) Fit(X, Y *mat.Dense) error {
	n, d, k, err := checkFitShapes(X, Y)
	if err != nil {
		return err
	}

	// 切片列を追加
	Xa := mat.NewDense(n, d+1, nil)
	Xa.Copy(X)
	for i := 0; i < n; i++ {
		Xa.Set(i, d, 1)
	}

	var A mat.Dense
	A.Mul(Xa.T(), Xa)
	for i := 0; i < d; i++ {
		A.Set(i, i, A.At(i, i)+lr.Alpha)
	}

	var B mat.Dense
	B.Mul(Xa.T(), Y)

	var beta mat.Dense
	if err := beta.Solve(&A, &B); err != nil {
		return fmt.Errorf("failed to solve ridge system (alpha=%g): %w", lr.Alpha, err)
	}

	coef := make([][]float64, d+1)
	for i := range coef {
		coef[i] = mat.Row(nil, i, &beta)
	}

	lr.Features = d
	lr.Outputs = k
	lr.Coefficients = coef
	return nil
}

// Predict implements Regressor
func (lr *LinearRegressor) Predict(x []float64) ([]float64, error) {
	if lr.Coefficients == nil {
		return nil, fmt.Errorf("linear regressor: %w", ErrNotFitted)
	}
	if err := checkPredictShape(x, lr.Features); err != nil {
		return nil, err
	}
	out := append([]float64(nil), lr.Coefficients[lr.Features]...)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		for j := range out {
			out[j] += xi * lr.Coefficients[i][j]
		}
	}
	return out, nil
}

func (lr *LinearRegressor) validate() error {
	if len(lr.Coefficients) != lr.Features+1 {
		return fmt.Errorf("linear regressor has %d coefficient rows, expected %d", len(lr.Coefficients), lr.Features+1)
	}
	for i, row := range lr.Coefficients {
		if len(row) != lr.Outputs {
			return fmt.Errorf("coefficient row %d has %d outputs, expected %d", i, len(row), lr.Outputs)
		}
	}
	return nil
}
