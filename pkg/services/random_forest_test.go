package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoClassData 2種類の入力パターンがそれぞれ10行ずつあるデータ
func twoClassData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(20, 2, nil)
	Y := mat.NewDense(20, 2, nil)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			X.SetRow(i, []float64{1, 0})
			Y.SetRow(i, []float64{1, 10})
		} else {
			X.SetRow(i, []float64{0, 1})
			Y.SetRow(i, []float64{5, 2})
		}
	}
	return X, Y
}

func TestRandomForestFitPredict(t *testing.T) {
	X, Y := twoClassData()
	rf := NewRandomForestRegressor(10, 42, 0)
	require.NoError(t, rf.Fit(X, Y))

	assert.Equal(t, 2, rf.NumFeatures())
	assert.Equal(t, 2, rf.NumOutputs())
	assert.Len(t, rf.Trees, 10)

	a, err := rf.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 10}, a, 1e-9)

	b, err := rf.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, 2}, b, 1e-9)
}

func TestRandomForestDeterministicForSeed(t *testing.T) {
	X, Y := twoClassData()
	first := NewRandomForestRegressor(5, 7, 0)
	second := NewRandomForestRegressor(5, 7, 0)
	require.NoError(t, first.Fit(X, Y))
	require.NoError(t, second.Fit(X, Y))
	assert.Equal(t, first.Trees, second.Trees)
}

func TestRandomForestMaxDepth(t *testing.T) {
	X := mat.NewDense(8, 3, nil)
	Y := mat.NewDense(8, 1, nil)
	for i := 0; i < 8; i++ {
		X.SetRow(i, []float64{float64(i & 1), float64(i >> 1 & 1), float64(i >> 2 & 1)})
		Y.Set(i, 0, float64(i))
	}

	rf := NewRandomForestRegressor(4, 1, 1)
	require.NoError(t, rf.Fit(X, Y))
	for _, tree := range rf.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3)
	}
}

func TestRandomForestShapeErrors(t *testing.T) {
	rf := NewRandomForestRegressor(3, 1, 0)

	_, err := rf.Predict([]float64{1, 0})
	assert.True(t, errors.Is(err, ErrNotFitted))

	err = rf.Fit(mat.NewDense(3, 2, nil), mat.NewDense(2, 1, nil))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	X, Y := twoClassData()
	require.NoError(t, rf.Fit(X, Y))
	_, err = rf.Predict([]float64{1, 0, 0})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestRandomForestFitContextCancelled(t *testing.T) {
	X, Y := twoClassData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRandomForestRegressor(3, 1, 0)
	err := rf.FitContext(ctx, X, Y)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rf.Trees)
}

func TestRandomForestValidate(t *testing.T) {
	X, Y := twoClassData()
	rf := NewRandomForestRegressor(2, 3, 0)
	require.NoError(t, rf.Fit(X, Y))
	require.NoError(t, rf.validate())

	root := &rf.Trees[0].Nodes[0]
	require.NotEqual(t, leafFeature, root.Feature)
	root.Left = 0
	assert.Error(t, rf.validate())

	empty := &RandomForestRegressor{}
	assert.Error(t, empty.validate())
}
