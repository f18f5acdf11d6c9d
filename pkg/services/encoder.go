package services

import (
	"fmt"
	"strings"

	"restaurant-demand-api/pkg/models"

	"github.com/ezoic/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// FeatureFields エンコード対象の列（この順序で特徴量ベクトルを構成する）
var FeatureFields = []string{"Day", "Session", "Weather", "Waiter"}

func fieldValue(ctx models.FeatureContext, field string) string {
	switch field {
	case "Day":
		return ctx.Day
	case "Session":
		return ctx.Session
	case "Weather":
		return ctx.Weather
	case "Waiter":
		return ctx.Waiter
	}
	return ""
}

// OneHotEncoder はscigoのOneHotEncoderを特徴量コンテキスト用に包んだものです。
// 学習時に見ていない値は、その列のブロックがすべて0になります（エラーにはしない）。
type OneHotEncoder struct {
	Fields  []string                     `json:"fields"`
	Encoder *preprocessing.OneHotEncoder `json:"onehot"`
}

// NewOneHotEncoder 未学習のエンコーダーを作成
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{
		Fields:  append([]string(nil), FeatureFields...),
		Encoder: preprocessing.NewOneHotEncoder(),
	}
}

func (e *OneHotEncoder) row(ctx models.FeatureContext) []string {
	row := make([]string, len(e.Fields))
	for i, field := range e.Fields {
		row[i] = fieldValue(ctx, field)
	}
	return row
}

// Fit 学習データから各列の語彙を学習する
func (e *OneHotEncoder) Fit(contexts []models.FeatureContext) error {
	if len(contexts) == 0 {
		return fmt.Errorf("%w: encoder requires at least one row", ErrInsufficientData)
	}
	if e.Encoder == nil {
		e.Encoder = preprocessing.NewOneHotEncoder()
	}

	data := make([][]string, len(contexts))
	for i, ctx := range contexts {
		data[i] = e.row(ctx)
	}
	if err := e.Encoder.Fit(data); err != nil {
		return fmt.Errorf("failed to fit encoder: %w", err)
	}
	return nil
}

// restore 読み込んだ語彙から値→インデックスの対応を作り直し、学習済み状態に戻す
func (e *OneHotEncoder) restore() error {
	if e.Encoder == nil || len(e.Encoder.Categories) != len(e.Fields) {
		return fmt.Errorf("encoder vocabulary does not cover fields %v", e.Fields)
	}
	inner := e.Encoder
	inner.NFeatures = len(inner.Categories)
	inner.NOutputs = 0
	inner.CategoryToIdx = make([]map[string]int, len(inner.Categories))
	for j, values := range inner.Categories {
		idx := make(map[string]int, len(values))
		for i, v := range values {
			if _, dup := idx[v]; dup {
				return fmt.Errorf("encoder field %s lists %q twice", e.Fields[j], v)
			}
			idx[v] = i
		}
		inner.CategoryToIdx[j] = idx
		inner.NOutputs += len(values)
	}
	inner.SetFitted()
	return nil
}

// Fitted 学習済みかどうか
func (e *OneHotEncoder) Fitted() bool {
	return e.Encoder != nil && e.Encoder.IsFitted()
}

// Width 特徴量ベクトルの次元数
func (e *OneHotEncoder) Width() int {
	if !e.Fitted() {
		return 0
	}
	return e.Encoder.NOutputs
}

// FeatureNames 特徴量の列名（例: "Day_Mon"）
func (e *OneHotEncoder) FeatureNames() []string {
	if !e.Fitted() {
		return nil
	}
	return e.Encoder.GetFeatureNamesOut(e.Fields)
}

// Vocabulary 列ごとの既知の値（コピー）
func (e *OneHotEncoder) Vocabulary() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	if !e.Fitted() {
		return out
	}
	for j, field := range e.Fields {
		out[field] = append([]string(nil), e.Encoder.Categories[j]...)
	}
	return out
}

// Transform 1件のコンテキストを特徴量ベクトルに変換
func (e *OneHotEncoder) Transform(ctx models.FeatureContext) ([]float64, error) {
	X, err := e.TransformAll([]models.FeatureContext{ctx})
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, X), nil
}

// TransformAll 複数件を行列に変換
func (e *OneHotEncoder) TransformAll(contexts []models.FeatureContext) (*mat.Dense, error) {
	if !e.Fitted() {
		return nil, fmt.Errorf("encoder: %w", ErrNotFitted)
	}
	if len(contexts) == 0 {
		return nil, fmt.Errorf("%w: nothing to transform", ErrInsufficientData)
	}

	data := make([][]string, len(contexts))
	for i, ctx := range contexts {
		data[i] = e.row(ctx)
	}
	m, err := e.Encoder.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}
	if d, ok := m.(*mat.Dense); ok {
		return d, nil
	}
	return mat.DenseCopyOf(m), nil
}

// Validate 語彙に無い値を含む場合、最初に見つかった列についてエラーを返す
func (e *OneHotEncoder) Validate(ctx models.FeatureContext) error {
	if !e.Fitted() {
		return fmt.Errorf("encoder: %w", ErrNotFitted)
	}
	for j, field := range e.Fields {
		value := fieldValue(ctx, field)
		if _, ok := e.Encoder.CategoryToIdx[j][value]; !ok {
			return fmt.Errorf("%w: %s %q is not one of [%s]",
				ErrUnknownValue, strings.ToLower(field), value, strings.Join(e.Encoder.Categories[j], ", "))
		}
	}
	return nil
}
