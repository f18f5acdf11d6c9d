package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"restaurant-demand-api/pkg/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ArtifactSchemaVersion 成果物ファイルの形式バージョン。学習側と推論側で一致している必要がある
const ArtifactSchemaVersion = 1

const (
	kindEncoder    = "encoder"
	kindModel      = "model"
	kindCategories = "categories"
)

// ArtifactPaths 3つの成果物ファイルのパス
type ArtifactPaths struct {
	Encoder    string
	Model      string
	Categories string
}

// artifactEnvelope 各成果物ファイル共通のヘッダー
type artifactEnvelope struct {
	SchemaVersion int                     `json:"schema_version"`
	Kind          string                  `json:"kind"`
	ModelID       string                  `json:"model_id"`
	CreatedAt     time.Time               `json:"created_at"`
	Algorithm     string                  `json:"algorithm,omitempty"`
	Metrics       *models.TrainingMetrics `json:"metrics,omitempty"`
	Payload       json.RawMessage         `json:"payload"`
}

// Artifacts は学習済みのエンコーダー・モデル・カテゴリ一覧をまとめた読み取り専用のハンドルです。
// 起動時に一度だけ作成し、以後は変更しません。
type Artifacts struct {
	encoder    *OneHotEncoder
	model      Regressor
	categories []string
	modelID    string
	createdAt  time.Time
	metrics    *models.TrainingMetrics
}

// NewArtifacts 学習結果から成果物ハンドルを作成（新しいモデルIDを割り当てる）
func NewArtifacts(encoder *OneHotEncoder, model Regressor, categories []string, metrics *models.TrainingMetrics) (*Artifacts, error) {
	a := &Artifacts{
		encoder:    encoder,
		model:      model,
		categories: append([]string(nil), categories...),
		modelID:    uuid.New().String(),
		createdAt:  time.Now().UTC(),
		metrics:    metrics,
	}
	if err := a.checkConsistency(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Artifacts) Encoder() *OneHotEncoder { return a.encoder }
func (a *Artifacts) Model() Regressor        { return a.model }
func (a *Artifacts) ModelID() string         { return a.modelID }

// Categories カテゴリ一覧（コピー）
func (a *Artifacts) Categories() []string {
	return append([]string(nil), a.categories...)
}

// Info API用のメタデータ
func (a *Artifacts) Info() models.ModelInfo {
	return models.ModelInfo{
		ModelID:       a.modelID,
		SchemaVersion: ArtifactSchemaVersion,
		Algorithm:     a.model.Algorithm(),
		TrainedAt:     a.createdAt,
		Categories:    a.Categories(),
		FeatureNames:  a.encoder.FeatureNames(),
		Vocabulary:    a.encoder.Vocabulary(),
		Metrics:       a.metrics,
	}
}

func (a *Artifacts) checkConsistency() error {
	if a.encoder == nil || !a.encoder.Fitted() {
		return fmt.Errorf("%w: encoder is missing or not fitted", ErrArtifactSchema)
	}
	if a.model == nil {
		return fmt.Errorf("%w: model is missing", ErrArtifactSchema)
	}
	if len(a.categories) == 0 {
		return fmt.Errorf("%w: category list is empty", ErrArtifactSchema)
	}
	seen := make(map[string]struct{}, len(a.categories))
	for _, c := range a.categories {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrArtifactSchema, c)
		}
		seen[c] = struct{}{}
	}
	if a.encoder.Width() != a.model.NumFeatures() {
		return fmt.Errorf("%w: encoder produces %d features but model expects %d",
			ErrArtifactSchema, a.encoder.Width(), a.model.NumFeatures())
	}
	if len(a.categories) != a.model.NumOutputs() {
		return fmt.Errorf("%w: %d categories but model predicts %d outputs",
			ErrArtifactSchema, len(a.categories), a.model.NumOutputs())
	}
	return nil
}

// SaveArtifacts 成果物を3つのファイルに書き出す
func SaveArtifacts(paths ArtifactPaths, a *Artifacts) error {
	base := artifactEnvelope{
		SchemaVersion: ArtifactSchemaVersion,
		ModelID:       a.modelID,
		CreatedAt:     a.createdAt,
	}

	enc := base
	enc.Kind = kindEncoder
	if err := writeEnvelope(paths.Encoder, enc, a.encoder); err != nil {
		return err
	}

	mdl := base
	mdl.Kind = kindModel
	mdl.Algorithm = a.model.Algorithm()
	mdl.Metrics = a.metrics
	if err := writeEnvelope(paths.Model, mdl, a.model); err != nil {
		return err
	}

	cats := base
	cats.Kind = kindCategories
	return writeEnvelope(paths.Categories, cats, a.categories)
}

func writeEnvelope(path string, env artifactEnvelope, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", env.Kind, err)
	}
	env.Payload = raw

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s artifact: %w", env.Kind, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}

	// 書き込み途中のファイルを読まれないよう一時ファイル経由で置き換える
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// LoadArtifacts 成果物を読み込み、スキーマと相互の整合性を検証する
func LoadArtifacts(paths ArtifactPaths) (*Artifacts, error) {
	encEnv, err := readEnvelope(paths.Encoder, kindEncoder)
	if err != nil {
		return nil, err
	}
	mdlEnv, err := readEnvelope(paths.Model, kindModel)
	if err != nil {
		return nil, err
	}
	catEnv, err := readEnvelope(paths.Categories, kindCategories)
	if err != nil {
		return nil, err
	}

	if encEnv.ModelID != mdlEnv.ModelID || catEnv.ModelID != mdlEnv.ModelID {
		return nil, fmt.Errorf("%w: artifacts come from different training runs (encoder=%s, model=%s, categories=%s)",
			ErrArtifactSchema, encEnv.ModelID, mdlEnv.ModelID, catEnv.ModelID)
	}

	encoder := &OneHotEncoder{}
	if err := json.Unmarshal(encEnv.Payload, encoder); err != nil {
		return nil, fmt.Errorf("%w: invalid encoder payload: %v", ErrArtifactSchema, err)
	}
	if !sameFields(encoder.Fields, FeatureFields) {
		return nil, fmt.Errorf("%w: encoder fields %v, expected %v", ErrArtifactSchema, encoder.Fields, FeatureFields)
	}
	if err := encoder.restore(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactSchema, err)
	}

	model, err := decodeModel(mdlEnv)
	if err != nil {
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal(catEnv.Payload, &categories); err != nil {
		return nil, fmt.Errorf("%w: invalid categories payload: %v", ErrArtifactSchema, err)
	}

	a := &Artifacts{
		encoder:    encoder,
		model:      model,
		categories: categories,
		modelID:    mdlEnv.ModelID,
		createdAt:  mdlEnv.CreatedAt,
		metrics:    mdlEnv.Metrics,
	}
	if err := a.checkConsistency(); err != nil {
		return nil, err
	}
	return a, nil
}

func readEnvelope(path, kind string) (*artifactEnvelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s artifact: %w", kind, err)
	}
	var env artifactEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid artifact: %v", ErrArtifactSchema, path, err)
	}
	if env.Kind != kind {
		return nil, fmt.Errorf("%w: %s contains %q, expected %q", ErrArtifactSchema, path, env.Kind, kind)
	}
	if env.SchemaVersion != ArtifactSchemaVersion {
		return nil, fmt.Errorf("%w: %s has schema version %d, expected %d",
			ErrArtifactSchema, path, env.SchemaVersion, ArtifactSchemaVersion)
	}
	return &env, nil
}

func decodeModel(env *artifactEnvelope) (Regressor, error) {
	switch env.Algorithm {
	case AlgorithmRandomForest:
		rf := &RandomForestRegressor{}
		if err := json.Unmarshal(env.Payload, rf); err != nil {
			return nil, fmt.Errorf("%w: invalid random forest payload: %v", ErrArtifactSchema, err)
		}
		if err := rf.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArtifactSchema, err)
		}
		return rf, nil
	case AlgorithmLinear:
		lr := &LinearRegressor{}
		if err := json.Unmarshal(env.Payload, lr); err != nil {
			return nil, fmt.Errorf("%w: invalid linear payload: %v", ErrArtifactSchema, err)
		}
		if err := lr.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArtifactSchema, err)
		}
		return lr, nil
	default:
		return nil, fmt.Errorf("%w: unknown model algorithm %q", ErrArtifactSchema, env.Algorithm)
	}
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
