package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const leafFeature = -1

// treeNode 回帰木のノード（配列で保持し、子はインデックスで参照する）
type treeNode struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t"`
	Left      int       `json:"l"`
	Right     int       `json:"r"`
	Value     []float64 `json:"v,omitempty"`
}

// RegressionTree 多出力の回帰木
type RegressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *RegressionTree) predict(x []float64) []float64 {
	i := 0
	for {
		node := &t.Nodes[i]
		if node.Feature == leafFeature {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// RandomForestRegressor ブートストラップ標本で学習した回帰木の平均で予測する
type RandomForestRegressor struct {
	NEstimators int              `json:"n_estimators"`
	RandomSeed  int64            `json:"random_state"`
	MaxDepth    int              `json:"max_depth"` // 0 は無制限
	Features    int              `json:"n_features"`
	Outputs     int              `json:"n_outputs"`
	Trees       []RegressionTree `json:"trees"`
}

// NewRandomForestRegressor ランダムフォレストを作成
func NewRandomForestRegressor(nEstimators int, seed int64, maxDepth int) *RandomForestRegressor {
	if nEstimators <= 0 {
		nEstimators = 100
	}
	return &RandomForestRegressor{
		NEstimators: nEstimators,
		RandomSeed:  seed,
		MaxDepth:    maxDepth,
	}
}

func (rf *RandomForestRegressor) Algorithm() string { return AlgorithmRandomForest }
func (rf *RandomForestRegressor) NumFeatures() int  { return rf.Features }
func (rf *RandomForestRegressor) NumOutputs() int   { return rf.Outputs }

// Fit implements Regressor
func (rf *RandomForestRegressor) Fit(X, Y *mat.Dense) error {
	return rf.FitContext(context.Background(), X, Y)
}

// FitContext 木を1本学習するごとにキャンセルを確認する
func (rf *RandomForestRegressor) FitContext(ctx context.Context, X, Y *mat.Dense) error {
	n, d, k, err := checkFitShapes(X, Y)
	if err != nil {
		return err
	}

	xs := make([][]float64, n)
	ys := make([][]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = X.RawRowView(i)
		ys[i] = Y.RawRowView(i)
	}

	rng := rand.New(rand.NewSource(rf.RandomSeed))
	trees := make([]RegressionTree, 0, rf.NEstimators)
	for t := 0; t < rf.NEstimators; t++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("random forest training cancelled after %d trees: %w", t, err)
		}
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		samples := make([]int, n)
		for i := range samples {
			samples[i] = treeRng.Intn(n)
		}
		b := &treeBuilder{xs: xs, ys: ys, features: d, outputs: k, maxDepth: rf.MaxDepth}
		b.build(samples, 0)
		trees = append(trees, RegressionTree{Nodes: b.nodes})
	}

	rf.Features = d
	rf.Outputs = k
	rf.Trees = trees
	return nil
}

// Predict implements Regressor
func (rf *RandomForestRegressor) Predict(x []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("random forest: %w", ErrNotFitted)
	}
	if err := checkPredictShape(x, rf.Features); err != nil {
		return nil, err
	}
	out := make([]float64, rf.Outputs)
	for i := range rf.Trees {
		leaf := rf.Trees[i].predict(x)
		if len(leaf) != rf.Outputs {
			return nil, fmt.Errorf("%w: tree %d yields %d outputs, expected %d", ErrShapeMismatch, i, len(leaf), rf.Outputs)
		}
		for j, v := range leaf {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(rf.Trees))
	}
	return out, nil
}

// validate 読み込んだ木構造の参照が壊れていないか確認する
func (rf *RandomForestRegressor) validate() error {
	if len(rf.Trees) == 0 {
		return fmt.Errorf("random forest has no trees")
	}
	for ti, tree := range rf.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Feature == leafFeature {
				if len(node.Value) != rf.Outputs {
					return fmt.Errorf("tree %d node %d: leaf has %d outputs, expected %d", ti, ni, len(node.Value), rf.Outputs)
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= rf.Features {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, node.Feature)
			}
			// 子は必ず親より後ろに格納される
			if node.Left <= ni || node.Right <= ni || node.Left >= len(tree.Nodes) || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid child reference", ti, ni)
			}
		}
	}
	return nil
}

type treeBuilder struct {
	xs       [][]float64
	ys       [][]float64
	features int
	outputs  int
	maxDepth int
	nodes    []treeNode
}

// build samples から部分木を作成し、そのルートのインデックスを返す
func (b *treeBuilder) build(samples []int, depth int) int {
	sum := make([]float64, b.outputs)
	sumSq := 0.0
	for _, s := range samples {
		for j, v := range b.ys[s] {
			sum[j] += v
			sumSq += v * v
		}
	}
	n := float64(len(samples))
	sse := sumSq
	for _, v := range sum {
		sse -= v * v / n
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: leafFeature})

	split, ok := splitCandidate{}, false
	if len(samples) >= 2 && sse > 1e-12 && (b.maxDepth <= 0 || depth < b.maxDepth) {
		split, ok = b.bestSplit(samples, sum)
	}
	if !ok {
		mean := make([]float64, b.outputs)
		for j, v := range sum {
			mean[j] = v / n
		}
		b.nodes[id].Value = mean
		return id
	}

	var left, right []int
	for _, s := range samples {
		if b.xs[s][split.feature] <= split.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id] = treeNode{Feature: split.feature, Threshold: split.threshold, Left: l, Right: r}
	return id
}

type splitCandidate struct {
	feature   int
	threshold float64
	score     float64
}

// bestSplit 二乗誤差の合計が最小になる分割を探す。
// score = Σ_k (L_k²/n_L + R_k²/n_R) が大きいほど誤差は小さい。
func (b *treeBuilder) bestSplit(samples []int, total []float64) (splitCandidate, bool) {
	best := splitCandidate{feature: leafFeature}
	found := false

	order := make([]int, len(samples))
	left := make([]float64, b.outputs)
	for f := 0; f < b.features; f++ {
		copy(order, samples)
		sort.SliceStable(order, func(i, j int) bool {
			return b.xs[order[i]][f] < b.xs[order[j]][f]
		})

		for j := range left {
			left[j] = 0
		}
		for i := 0; i < len(order)-1; i++ {
			for j, v := range b.ys[order[i]] {
				left[j] += v
			}
			cur, next := b.xs[order[i]][f], b.xs[order[i+1]][f]
			if cur == next {
				continue
			}
			nl := float64(i + 1)
			nr := float64(len(order) - i - 1)
			score := 0.0
			for j := range left {
				r := total[j] - left[j]
				score += left[j]*left[j]/nl + r*r/nr
			}
			if !found || score > best.score {
				best = splitCandidate{feature: f, threshold: (cur + next) / 2, score: score}
				found = true
			}
		}
	}
	return best, found
}
