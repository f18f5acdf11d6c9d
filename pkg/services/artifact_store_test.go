package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"restaurant-demand-api/pkg/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainSample(t *testing.T, algorithm string) *Artifacts {
	t.Helper()
	opts := DefaultTrainingOptions("")
	opts.Algorithm = algorithm
	opts.NEstimators = 5
	result, err := NewTrainingService(nil).TrainRecords(context.Background(), sampleRecords(), opts)
	require.NoError(t, err)
	return result.Artifacts
}

func artifactPaths(dir string) ArtifactPaths {
	return ArtifactPaths{
		Encoder:    filepath.Join(dir, "encoder.json"),
		Model:      filepath.Join(dir, "category_model.json"),
		Categories: filepath.Join(dir, "categories.json"),
	}
}

var sampleContext = models.FeatureContext{Day: "Mon", Session: "Dinner", Weather: "Rain", Waiter: "Jim"}

func TestSaveLoadArtifactsRoundTrip(t *testing.T) {
	for _, algorithm := range []string{AlgorithmRandomForest, AlgorithmLinear} {
		t.Run(algorithm, func(t *testing.T) {
			saved := trainSample(t, algorithm)
			paths := artifactPaths(t.TempDir())
			require.NoError(t, SaveArtifacts(paths, saved))

			loaded, err := LoadArtifacts(paths)
			require.NoError(t, err)

			assert.Equal(t, saved.ModelID(), loaded.ModelID())
			assert.Equal(t, saved.Categories(), loaded.Categories())
			assert.Equal(t, saved.Encoder().FeatureNames(), loaded.Encoder().FeatureNames())
			assert.Equal(t, algorithm, loaded.Model().Algorithm())

			want, err := NewRecommendationService(saved).Predict(sampleContext)
			require.NoError(t, err)
			got, err := NewRecommendationService(loaded).Predict(sampleContext)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want, got, 1e-9)

			info := loaded.Info()
			assert.Equal(t, ArtifactSchemaVersion, info.SchemaVersion)
			require.NotNil(t, info.Metrics)
			assert.Equal(t, saved.Info().Metrics.Rows, info.Metrics.Rows)
		})
	}
}

func TestLoadArtifactsRejectsMixedTrainingRuns(t *testing.T) {
	first := artifactPaths(t.TempDir())
	second := artifactPaths(t.TempDir())
	require.NoError(t, SaveArtifacts(first, trainSample(t, AlgorithmLinear)))
	require.NoError(t, SaveArtifacts(second, trainSample(t, AlgorithmLinear)))

	mixed := first
	mixed.Encoder = second.Encoder
	_, err := LoadArtifacts(mixed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactSchema))
}

func TestLoadArtifactsRejectsSchemaVersion(t *testing.T) {
	paths := artifactPaths(t.TempDir())
	require.NoError(t, SaveArtifacts(paths, trainSample(t, AlgorithmLinear)))

	data, err := os.ReadFile(paths.Model)
	require.NoError(t, err)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &env))
	env["schema_version"] = ArtifactSchemaVersion + 1
	data, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.Model, data, 0o644))

	_, err = LoadArtifacts(paths)
	assert.True(t, errors.Is(err, ErrArtifactSchema))
	assert.Contains(t, err.Error(), "schema version")
}

func TestLoadArtifactsRejectsWrongKind(t *testing.T) {
	paths := artifactPaths(t.TempDir())
	require.NoError(t, SaveArtifacts(paths, trainSample(t, AlgorithmLinear)))

	swapped := paths
	swapped.Model = paths.Categories
	_, err := LoadArtifacts(swapped)
	assert.True(t, errors.Is(err, ErrArtifactSchema))
}

func TestLoadArtifactsRejectsCorruptedFile(t *testing.T) {
	paths := artifactPaths(t.TempDir())
	require.NoError(t, SaveArtifacts(paths, trainSample(t, AlgorithmLinear)))
	require.NoError(t, os.WriteFile(paths.Categories, []byte("not json"), 0o644))

	_, err := LoadArtifacts(paths)
	assert.True(t, errors.Is(err, ErrArtifactSchema))
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	_, err := LoadArtifacts(artifactPaths(t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewArtifactsChecksConsistency(t *testing.T) {
	a := trainSample(t, AlgorithmLinear)

	_, err := NewArtifacts(a.Encoder(), a.Model(), a.Categories()[:2], nil)
	assert.True(t, errors.Is(err, ErrArtifactSchema))

	_, err = NewArtifacts(NewOneHotEncoder(), a.Model(), a.Categories(), nil)
	assert.True(t, errors.Is(err, ErrArtifactSchema))

	_, err = NewArtifacts(a.Encoder(), a.Model(), []string{"A", "A", "B", "C"}, nil)
	assert.True(t, errors.Is(err, ErrArtifactSchema))

	b, err := NewArtifacts(a.Encoder(), a.Model(), a.Categories(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ModelID(), b.ModelID())
}
