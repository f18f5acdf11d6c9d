package services

import (
	"context"
	"fmt"
	"time"

	"restaurant-demand-api/pkg/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// TrainingOptions 学習の設定
type TrainingOptions struct {
	DataPath    string  `validate:"required"`
	Algorithm   string  `validate:"oneof=random_forest linear"`
	NEstimators int     `validate:"gte=1"`
	RandomSeed  int64   `validate:"-"`
	MaxDepth    int     `validate:"gte=0"`
	RidgeAlpha  float64 `validate:"gt=0"`
}

// DefaultTrainingOptions 既定の学習設定（100本・乱数シード42）
func DefaultTrainingOptions(dataPath string) TrainingOptions {
	return TrainingOptions{
		DataPath:    dataPath,
		Algorithm:   AlgorithmRandomForest,
		NEstimators: 100,
		RandomSeed:  42,
		RidgeAlpha:  1.0,
	}
}

// TrainingResult 学習結果
type TrainingResult struct {
	Artifacts   *Artifacts
	RecordCount int
	RowCount    int
	Categories  []string
	Metrics     *models.TrainingMetrics
	Duration    time.Duration
}

// TrainingService 売上明細からモデルを学習し、成果物を保存する
type TrainingService struct {
	logger   *zap.Logger
	validate *validator.Validate
}

// NewTrainingService 新しい学習サービスを作成
func NewTrainingService(logger *zap.Logger) *TrainingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{
		logger:   logger,
		validate: validator.New(),
	}
}

// Train ファイルを読み込んで学習する
func (s *TrainingService) Train(ctx context.Context, opts TrainingOptions) (*TrainingResult, error) {
	if err := s.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid training options: %w", err)
	}

	records, err := LoadSalesRecords(opts.DataPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("📂 売上明細を読み込みました",
		zap.String("path", opts.DataPath),
		zap.Int("records", len(records)))

	return s.TrainRecords(ctx, records, opts)
}

// TrainRecords 読み込み済みの売上明細から学習する
func (s *TrainingService) TrainRecords(ctx context.Context, records []models.SaleRecord, opts TrainingOptions) (*TrainingResult, error) {
	if err := s.validate.StructExcept(opts, "DataPath"); err != nil {
		return nil, fmt.Errorf("invalid training options: %w", err)
	}
	start := time.Now()

	set, err := Aggregate(records)
	if err != nil {
		return nil, err
	}
	s.logger.Info("📊 集約が完了しました",
		zap.Int("rows", len(set.Rows)),
		zap.Strings("categories", set.Categories))

	encoder := NewOneHotEncoder()
	if err := encoder.Fit(set.Contexts()); err != nil {
		return nil, err
	}
	X, err := encoder.TransformAll(set.Contexts())
	if err != nil {
		return nil, err
	}

	labels := set.Labels()
	Y := mat.NewDense(len(labels), len(set.Categories), nil)
	for i, row := range labels {
		Y.SetRow(i, row)
	}

	model, err := NewRegressor(opts)
	if err != nil {
		return nil, err
	}
	if cf, ok := model.(interface {
		FitContext(context.Context, *mat.Dense, *mat.Dense) error
	}); ok {
		err = cf.FitContext(ctx, X, Y)
	} else {
		err = model.Fit(X, Y)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", model.Algorithm(), err)
	}

	rows := make([][]float64, len(labels))
	for i := range rows {
		rows[i] = X.RawRowView(i)
	}
	metrics, err := evaluateFit(model, rows, labels, set.Categories)
	if err != nil {
		return nil, err
	}

	artifacts, err := NewArtifacts(encoder, model, set.Categories, metrics)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	s.logger.Info("✅ 学習が完了しました",
		zap.String("model_id", artifacts.ModelID()),
		zap.String("algorithm", model.Algorithm()),
		zap.Int("features", encoder.Width()),
		zap.Float64("r2", metrics.OverallR2),
		zap.Float64("mae", metrics.OverallMAE),
		zap.Duration("elapsed", duration))

	return &TrainingResult{
		Artifacts:   artifacts,
		RecordCount: len(records),
		RowCount:    len(set.Rows),
		Categories:  set.Categories,
		Metrics:     metrics,
		Duration:    duration,
	}, nil
}

// TrainAndSave 学習して成果物を保存する
func (s *TrainingService) TrainAndSave(ctx context.Context, opts TrainingOptions, paths ArtifactPaths) (*TrainingResult, error) {
	result, err := s.Train(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := SaveArtifacts(paths, result.Artifacts); err != nil {
		return nil, err
	}
	s.logger.Info("💾 成果物を保存しました",
		zap.String("encoder", paths.Encoder),
		zap.String("model", paths.Model),
		zap.String("categories", paths.Categories))
	return result, nil
}
