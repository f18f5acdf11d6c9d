package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"restaurant-demand-api/pkg/models"
	"restaurant-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecommendationHandler カテゴリ推奨ハンドラー
type RecommendationHandler struct {
	service    *services.RecommendationService
	monitoring *services.MonitoringService
	logger     *zap.Logger
	strict     bool // trueの場合、学習時の語彙に無い値を400で拒否する
}

// NewRecommendationHandler 新しいカテゴリ推奨ハンドラーを作成
func NewRecommendationHandler(service *services.RecommendationService, monitoring *services.MonitoringService, logger *zap.Logger, strict bool) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{
		service:    service,
		monitoring: monitoring,
		logger:     logger,
		strict:     strict,
	}
}

// RecommendCategories 予測数量の多いカテゴリ上位3件と仕入れ目標を返す
func (h *RecommendationHandler) RecommendCategories(c *gin.Context) {
	var request models.RecommendCategoriesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, msgMissingOrInvalidInput)
		return
	}

	input := request.Context()
	if h.strict {
		if err := h.service.Validate(input); err != nil {
			if errors.Is(err, services.ErrUnknownValue) {
				abortWithError(c, http.StatusBadRequest, err.Error())
				return
			}
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	recommendations, err := h.recommend(input)
	if err != nil {
		h.logger.Error("❌ 推奨の計算に失敗しました",
			zap.Error(err),
			zap.String("request_id", c.GetString("request_id")))
		if h.monitoring != nil {
			h.monitoring.RecordPredictionError()
		}
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if h.monitoring != nil {
		categories := make([]string, len(recommendations))
		for i, r := range recommendations {
			categories[i] = r.Category
		}
		h.monitoring.RecordRecommendations(categories)
	}

	c.JSON(http.StatusOK, models.RecommendCategoriesResponse{Recommendations: recommendations})
}

// recommend モデル内部のpanicもエラーとして扱う
func (h *RecommendationHandler) recommend(input models.FeatureContext) (recs []models.Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return h.service.Recommend(input)
}

// GetModelInfo 読み込み済みモデルのメタデータを返す
func (h *RecommendationHandler) GetModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Artifacts().Info())
}
