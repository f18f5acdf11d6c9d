package services

import "errors"

var (
	// ErrInsufficientData 学習に必要なデータが無い
	ErrInsufficientData = errors.New("insufficient data")
	// ErrShapeMismatch 入力ベクトル・行列の次元が学習時と一致しない
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrUnknownValue 学習時の語彙に存在しない値
	ErrUnknownValue = errors.New("unknown value")
	// ErrArtifactSchema 成果物のスキーマ・組み合わせが不正
	ErrArtifactSchema = errors.New("artifact schema mismatch")
	// ErrNotFitted 学習前のエンコーダー・モデルを使用した
	ErrNotFitted = errors.New("not fitted")
)
