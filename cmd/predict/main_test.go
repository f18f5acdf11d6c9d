package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	config "restaurant-demand-api/configs"
	"restaurant-demand-api/pkg/models"
	"restaurant-demand-api/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRecommendations(t *testing.T) {
	dir := t.TempDir()
	var records []models.SaleRecord
	for _, session := range []string{"Lunch", "Dinner"} {
		for _, date := range []string{"2024-01-01", "2024-01-08"} {
			records = append(records,
				models.SaleRecord{Date: date, Day: "Mon", Session: session, Waiter: "Jim", Weather: "Rain", Category: "Mains", Quantity: 10},
				models.SaleRecord{Date: date, Day: "Mon", Session: session, Waiter: "Jim", Weather: "Rain", Category: "Drinks", Quantity: 4},
			)
		}
	}
	opts := services.DefaultTrainingOptions("")
	opts.NEstimators = 3
	result, err := services.NewTrainingService(nil).TrainRecords(context.Background(), records, opts)
	require.NoError(t, err)

	t.Setenv("ARTIFACT_DIR", dir)
	cfg := config.LoadConfig()
	require.NoError(t, services.SaveArtifacts(services.ArtifactPaths{
		Encoder:    cfg.EncoderPath(),
		Model:      cfg.ModelPath(),
		Categories: cfg.CategoriesPath(),
	}, result.Artifacts))

	var out bytes.Buffer
	input := models.FeatureContext{Day: "Mon", Session: "Dinner", Weather: "Rain", Waiter: "Jim"}
	require.NoError(t, printRecommendations(&out, cfg, input))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Recommendations for Jim on Mon, Dinner, Weather: Rain\n"))
	assert.Contains(t, text, "- Category: Mains\n  Predicted Quantity: 10.00\n  Target Quantity: 12\n")
	assert.Less(t, strings.Index(text, "Mains"), strings.Index(text, "Drinks"))
}

func TestPrintRecommendationsMissingArtifacts(t *testing.T) {
	t.Setenv("ARTIFACT_DIR", filepath.Join(t.TempDir(), "missing"))
	var out bytes.Buffer
	err := printRecommendations(&out, config.LoadConfig(), models.FeatureContext{})
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
